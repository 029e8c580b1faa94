package withings

import (
	"context"
	"errors"
	"fmt"
	"time"
	"withings-mcp/internal/auth"
	"withings-mcp/internal/models"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/structures"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
)

// StatusUnauthorized is the vendor status for a rejected access token. The
// HTTP status of such a response is still 200.
const StatusUnauthorized = 401

var ErrUnauthorizedRetryExhausted = errors.New("access token rejected again after refresh (status 401)")

// VendorAPIError is any non-zero vendor status other than 401.
type VendorAPIError struct {
	Status  int
	Payload string
}

func (e *VendorAPIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Payload)
}

// TokenSource is the part of the OAuth lifecycle a data request needs.
type TokenSource interface {
	EnsureValidToken(ctx context.Context) error
	RefreshAccessToken(ctx context.Context) (auth.Token, error)
	AccessToken() string
}

type Client struct {
	http    *resty.Client
	tokens  TokenSource
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, tokens TokenSource, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	httpClient := resty.New().
		SetBaseURL(conf.Withings.BaseURL).
		SetTimeout(conf.Withings.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics,
	}
}

// Call performs an authenticated GET and returns the envelope body. A 401
// is answered with one refresh and one retry; a second 401 is returned as
// ErrUnauthorizedRetryExhausted.
func (c *Client) Call(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	if err := c.tokens.EnsureValidToken(ctx); err != nil {
		return nil, err
	}

	body, status, payload, err := c.do(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if status == StatusUnauthorized {
		c.logger.Infof(providers.TypeApi, "%s %s: access token rejected, refreshing", path, params["action"])
		if _, err = c.tokens.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}
		body, status, payload, err = c.do(ctx, path, params)
		if err != nil {
			return nil, err
		}
		if status == StatusUnauthorized {
			c.logger.Errorf(providers.TypeApi, "%s %s: refreshed token rejected", path, params["action"])
			return nil, ErrUnauthorizedRetryExhausted
		}
	}

	if status != 0 {
		c.logger.Warnf(providers.TypeApi, "%s %s: vendor status %d", path, params["action"], status)
		return nil, &VendorAPIError{Status: status, Payload: payload}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, path string, params map[string]string) (json.RawMessage, int, string, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.tokens.AccessToken()).
		SetQueryParams(params).
		Get(path)
	c.metrics.ObserveVendorDuration(path, time.Since(start))
	if err != nil {
		return nil, 0, "", fmt.Errorf("%s %s: %w", path, params["action"], err)
	}

	var env models.Envelope
	if err = models.Decode(resp.Body(), &env); err != nil {
		return nil, 0, "", fmt.Errorf("%s %s: unexpected response (HTTP %d): %w", path, params["action"], resp.StatusCode(), err)
	}
	c.metrics.IncVendorRequests(path, env.Status)
	c.logger.Debugf(providers.TypeApi, "%s %s: status %d in %s", path, params["action"], env.Status, time.Since(start))

	if env.Status != 0 {
		return nil, env.Status, resp.String(), nil
	}
	return env.Body, 0, "", nil
}
