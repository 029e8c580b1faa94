package services

import (
	"context"
	"fmt"
	"withings-mcp/internal/auth"
	"withings-mcp/internal/models"
	"withings-mcp/internal/normalize"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/withings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DataSource is the vendor API surface, one call per category.
type DataSource interface {
	Devices(ctx context.Context) (models.Fields, error)
	Measurements(ctx context.Context, q withings.Query) (models.MeasureBody, error)
	Activity(ctx context.Context, q withings.Query) (models.ActivityBody, error)
	SleepSummary(ctx context.Context, q withings.Query) (models.SleepSummaryBody, error)
	SleepDetail(ctx context.Context, q withings.Query) (models.SleepDetailBody, error)
	Workouts(ctx context.Context, q withings.Query) (models.WorkoutBody, error)
	HeartRate(ctx context.Context, q withings.Query) (models.HeartRateBody, error)
}

type Authenticator interface {
	BuildAuthorizationURL(scope, state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (auth.Token, error)
	EnsureValidToken(ctx context.Context) error
	Status() auth.TokenStatus
}

type HealthDataServiceInterface interface {
	UserInfo(ctx context.Context) (models.Fields, error)
	Measurements(ctx context.Context, q withings.Query) ([]any, error)
	Activity(ctx context.Context, q withings.Query) ([]any, error)
	SleepSummary(ctx context.Context, q withings.Query) ([]any, error)
	SleepDetails(ctx context.Context, q withings.Query) (normalize.SleepDetail, error)
	Workouts(ctx context.Context, q withings.Query) ([]any, error)
	HeartRate(ctx context.Context, q withings.Query) (normalize.HeartRate, error)
	AuthorizationURL(scope string) (string, error)
	ExchangeCode(ctx context.Context, code string) (auth.Token, error)
	TokenStatus() auth.TokenStatus
}

// HealthDataService fetches one category, normalizes it and keeps the raw
// vendor body in the response cache keyed by category and requested range.
type HealthDataService struct {
	source   DataSource
	auth     Authenticator
	cache    providers.CacheProviderInterface
	logger   providers.Logger
	newState func() string
}

func NewHealthDataService(api *withings.API, manager *auth.Manager, cache providers.CacheProviderInterface, logger providers.Logger) HealthDataServiceInterface {
	return &HealthDataService{
		source:   api,
		auth:     manager,
		cache:    cache,
		logger:   logger,
		newState: uuid.NewString,
	}
}

func cacheKey(category string, q withings.Query) string {
	return fmt.Sprintf("%s:%s:%s", category, q.Start, q.End)
}

// fetchCached rejects malformed dates before any token refresh can reach the
// network, then checks the token before touching the cache so cached data is
// never served to an unauthenticated session.
func fetchCached[T any](ctx context.Context, s *HealthDataService, key string, q withings.Query, fetch func(context.Context) (T, error)) (T, error) {
	var body T
	if err := q.Validate(); err != nil {
		return body, err
	}
	if err := s.auth.EnsureValidToken(ctx); err != nil {
		return body, err
	}

	if data, ok := s.cache.Get(key); ok {
		if err := models.Decode(data, &body); err == nil {
			return body, nil
		}
		s.logger.Warnf(providers.TypeApi, "Cached entry %s is unreadable, refetching", key)
	}

	body, err := fetch(ctx)
	if err != nil {
		return body, err
	}

	data, err := json.Marshal(body)
	if err != nil {
		s.logger.Warnf(providers.TypeApi, "Cannot cache %s: %s", key, err)
		return body, nil
	}
	s.cache.Set(key, data)
	return body, nil
}

func (s *HealthDataService) UserInfo(ctx context.Context) (models.Fields, error) {
	return fetchCached(ctx, s, "devices", withings.Query{}, s.source.Devices)
}

func (s *HealthDataService) Measurements(ctx context.Context, q withings.Query) ([]any, error) {
	body, err := fetchCached(ctx, s, cacheKey("measurements", q), q, func(ctx context.Context) (models.MeasureBody, error) {
		return s.source.Measurements(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return normalize.Measurements(body), nil
}

func (s *HealthDataService) Activity(ctx context.Context, q withings.Query) ([]any, error) {
	body, err := fetchCached(ctx, s, cacheKey("activity", q), q, func(ctx context.Context) (models.ActivityBody, error) {
		return s.source.Activity(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return normalize.Activity(body), nil
}

func (s *HealthDataService) SleepSummary(ctx context.Context, q withings.Query) ([]any, error) {
	body, err := fetchCached(ctx, s, cacheKey("sleep_summary", q), q, func(ctx context.Context) (models.SleepSummaryBody, error) {
		return s.source.SleepSummary(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return normalize.SleepSummary(body), nil
}

func (s *HealthDataService) SleepDetails(ctx context.Context, q withings.Query) (normalize.SleepDetail, error) {
	body, err := fetchCached(ctx, s, cacheKey("sleep_details", q), q, func(ctx context.Context) (models.SleepDetailBody, error) {
		return s.source.SleepDetail(ctx, q)
	})
	if err != nil {
		return normalize.SleepDetail{}, err
	}
	return normalize.SleepDetails(body), nil
}

func (s *HealthDataService) Workouts(ctx context.Context, q withings.Query) ([]any, error) {
	body, err := fetchCached(ctx, s, cacheKey("workouts", q), q, func(ctx context.Context) (models.WorkoutBody, error) {
		return s.source.Workouts(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return normalize.Workouts(body), nil
}

func (s *HealthDataService) HeartRate(ctx context.Context, q withings.Query) (normalize.HeartRate, error) {
	body, err := fetchCached(ctx, s, cacheKey("heart_rate", q), q, func(ctx context.Context) (models.HeartRateBody, error) {
		return s.source.HeartRate(ctx, q)
	})
	if err != nil {
		return normalize.HeartRate{}, err
	}
	return normalize.HeartRateSeries(body), nil
}

// AuthorizationURL builds the consent URL with a fresh random state.
func (s *HealthDataService) AuthorizationURL(scope string) (string, error) {
	return s.auth.BuildAuthorizationURL(scope, s.newState())
}

// ExchangeCode trades an authorization code for tokens. Cached responses
// belong to the previous grant and are dropped.
func (s *HealthDataService) ExchangeCode(ctx context.Context, code string) (auth.Token, error) {
	token, err := s.auth.ExchangeCode(ctx, code)
	if err != nil {
		return token, err
	}
	s.cache.Clear()
	s.logger.Infof(providers.TypeAuth, "Authorization code exchanged, response cache cleared")
	return token, nil
}

func (s *HealthDataService) TokenStatus() auth.TokenStatus {
	return s.auth.Status()
}
