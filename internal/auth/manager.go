package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"withings-mcp/internal/models"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/structures"

	"github.com/go-resty/resty/v2"
)

const (
	TokenPath        = "/v2/oauth2"
	refreshMargin    = 5 * time.Minute
	defaultExpiresIn = 3600
)

// TokenStatus is a snapshot of the credential state for health reporting.
type TokenStatus struct {
	Authenticated   bool       `json:"authenticated"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	TokenFile       string     `json:"token_file"`
}

// Manager drives the OAuth2 lifecycle against the Withings token endpoint:
// code exchange, refresh, and proactive renewal shortly before expiry.
type Manager struct {
	conf      structures.WithingsConfig
	client    *resty.Client
	store     *TokenStore
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	now       func() time.Time
	refreshMu sync.Mutex
}

func NewManager(conf *structures.Config, store *TokenStore, logger providers.Logger, metrics providers.MetricsProviderInterface) *Manager {
	client := resty.New().
		SetTimeout(conf.Withings.Timeout).
		SetHeader("Accept", "application/json")

	return &Manager{
		conf:    conf.Withings,
		client:  client,
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// BuildAuthorizationURL makes no network call and changes no state.
func (m *Manager) BuildAuthorizationURL(scope, state string) (string, error) {
	if m.conf.ClientID == "" {
		return "", &ConfigurationError{Missing: []string{"WITHINGS_CLIENT_ID"}}
	}
	if scope == "" {
		scope = m.conf.Scope
	}

	params := [][2]string{
		{"response_type", "code"},
		{"client_id", m.conf.ClientID},
		{"redirect_uri", m.conf.RedirectURI},
		{"scope", scope},
		{"state", state},
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p[0]+"="+url.QueryEscape(p[1]))
	}
	return m.conf.AuthURL + "?" + strings.Join(parts, "&"), nil
}

func (m *Manager) ExchangeCode(ctx context.Context, code string) (Token, error) {
	if err := m.requireCredentials(); err != nil {
		return Token{}, err
	}

	body, status, payload, err := m.requestToken(ctx, map[string]string{
		"action":        "requesttoken",
		"grant_type":    "authorization_code",
		"client_id":     m.conf.ClientID,
		"client_secret": m.conf.ClientSecret,
		"code":          code,
		"redirect_uri":  m.conf.RedirectURI,
	})
	if err != nil {
		return Token{}, err
	}
	if status != 0 {
		m.logger.Warnf(providers.TypeAuth, "Authorization code rejected with status %d", status)
		return Token{}, &TokenExchangeError{Status: status, Payload: payload}
	}

	t := m.accept(body)
	m.logger.Infof(providers.TypeAuth, "Authorization code exchanged, token valid until %s", t.ExpiresAt.Format(time.RFC3339))
	return t, nil
}

func (m *Manager) RefreshAccessToken(ctx context.Context) (Token, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	current := m.store.Token()
	if current.RefreshToken == "" {
		return Token{}, ErrNoRefreshToken
	}
	if err := m.requireCredentials(); err != nil {
		return Token{}, err
	}

	body, status, payload, err := m.requestToken(ctx, map[string]string{
		"action":        "requesttoken",
		"grant_type":    "refresh_token",
		"client_id":     m.conf.ClientID,
		"client_secret": m.conf.ClientSecret,
		"refresh_token": current.RefreshToken,
	})
	if err != nil {
		m.metrics.IncTokenRefreshes(true)
		return Token{}, err
	}
	if status != 0 {
		m.metrics.IncTokenRefreshes(true)
		m.logger.Warnf(providers.TypeAuth, "Refresh token rejected with status %d", status)
		return Token{}, &TokenRefreshError{Status: status, Payload: payload}
	}

	m.metrics.IncTokenRefreshes(false)
	t := m.accept(body)
	m.logger.Infof(providers.TypeAuth, "Access token refreshed, valid until %s", t.ExpiresAt.Format(time.RFC3339))
	return t, nil
}

// EnsureValidToken refreshes inline when the token expires within five
// minutes. Without a known expiry the token is used as is and a later 401
// triggers the refresh instead.
func (m *Manager) EnsureValidToken(ctx context.Context) error {
	t := m.store.Token()
	if t.AccessToken == "" {
		return ErrNotAuthenticated
	}
	if t.ExpiresAt == nil {
		return nil
	}
	if m.now().Before(t.ExpiresAt.Add(-refreshMargin)) {
		return nil
	}

	m.logger.Debugf(providers.TypeAuth, "Access token expires at %s, refreshing", t.ExpiresAt.Format(time.RFC3339))
	_, err := m.RefreshAccessToken(ctx)
	return err
}

func (m *Manager) AccessToken() string {
	return m.store.Token().AccessToken
}

func (m *Manager) Status() TokenStatus {
	t := m.store.Token()
	return TokenStatus{
		Authenticated:   t.AccessToken != "",
		HasRefreshToken: t.RefreshToken != "",
		ExpiresAt:       t.ExpiresAt,
		TokenFile:       m.store.Path(),
	}
}

func (m *Manager) requireCredentials() error {
	var missing []string
	if m.conf.ClientID == "" {
		missing = append(missing, "WITHINGS_CLIENT_ID")
	}
	if m.conf.ClientSecret == "" {
		missing = append(missing, "WITHINGS_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// requestToken returns the decoded body on vendor status 0, otherwise the
// vendor status with the raw response for the caller to wrap.
func (m *Manager) requestToken(ctx context.Context, form map[string]string) (models.TokenBody, int, string, error) {
	var body models.TokenBody

	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(strings.TrimRight(m.conf.BaseURL, "/") + TokenPath)
	if err != nil {
		return body, 0, "", fmt.Errorf("token request failed: %w", err)
	}
	if resp.IsError() {
		return body, 0, "", fmt.Errorf("token request failed: HTTP %d: %s", resp.StatusCode(), resp.String())
	}

	var env models.Envelope
	if err = models.Decode(resp.Body(), &env); err != nil {
		return body, 0, "", fmt.Errorf("token response is not JSON: %w", err)
	}
	if env.Status != 0 {
		return body, env.Status, resp.String(), nil
	}
	if err = models.Decode(env.Body, &body); err != nil {
		return body, 0, "", fmt.Errorf("unable to decode token body: %w", err)
	}
	return body, 0, "", nil
}

// accept installs a freshly issued token pair and writes it to the token
// file. A failed write is logged; the in-memory pair stays usable.
func (m *Manager) accept(body models.TokenBody) Token {
	expiresIn := body.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpiresIn
	}
	expiresAt := m.now().Add(time.Duration(expiresIn) * time.Second)

	t := Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    &expiresAt,
	}
	m.store.Update(t)
	m.metrics.SetTokenExpiry(expiresAt)

	if err := m.store.Persist(); err != nil {
		m.logger.Errorf(providers.TypeAuth, "Unable to save tokens to %s: %s", m.store.Path(), err)
	}
	return t
}
