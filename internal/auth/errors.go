package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated = errors.New("no access token available, please authenticate first")
	ErrNoRefreshToken   = errors.New("no refresh token available")
)

// ConfigurationError reports OAuth client settings that must be present
// before any token call can be made.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing Withings client configuration: " + strings.Join(e.Missing, ", ")
}

// TokenExchangeError carries the vendor's rejection of an authorization code.
type TokenExchangeError struct {
	Status  int
	Payload string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed (status %d): %s", e.Status, e.Payload)
}

// TokenRefreshError carries the vendor's rejection of a refresh token.
type TokenRefreshError struct {
	Status  int
	Payload string
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh failed (status %d): %s", e.Status, e.Payload)
}
