package withings

import (
	"context"
	"time"
	"withings-mcp/internal/models"

	json "github.com/goccy/go-json"
)

const (
	PathUser    = "/v2/user"
	PathMeasure = "/measure"
	PathMeasV2  = "/v2/measure"
	PathSleep   = "/v2/sleep"
)

// Default look-back windows used when a query carries no bounds.
const (
	MeasurementsDays = 30
	ActivityDays     = 7
	SleepSummaryDays = 7
	SleepDetailDays  = 1
	WorkoutsDays     = 30
)

type Caller interface {
	Call(ctx context.Context, path string, params map[string]string) (json.RawMessage, error)
}

// API maps each data category onto its Withings endpoint and action.
type API struct {
	caller Caller
	now    func() time.Time
}

func NewAPI(client *Client) *API {
	return &API{caller: client, now: time.Now}
}

func (a *API) Devices(ctx context.Context) (models.Fields, error) {
	var body models.Fields
	err := a.fetch(ctx, PathUser, map[string]string{"action": "getdevice"}, &body)
	return body, err
}

func (a *API) Measurements(ctx context.Context, q Query) (models.MeasureBody, error) {
	var body models.MeasureBody
	params := map[string]string{"action": "getmeas"}
	if err := timestampParams(params, q, lastDays(a.now, MeasurementsDays)); err != nil {
		return body, err
	}
	err := a.fetch(ctx, PathMeasure, params, &body)
	return body, err
}

func (a *API) Activity(ctx context.Context, q Query) (models.ActivityBody, error) {
	var body models.ActivityBody
	params := map[string]string{"action": "getactivity"}
	if err := ymdParams(params, q, lastDays(a.now, ActivityDays)); err != nil {
		return body, err
	}
	err := a.fetch(ctx, PathMeasV2, params, &body)
	return body, err
}

func (a *API) SleepSummary(ctx context.Context, q Query) (models.SleepSummaryBody, error) {
	var body models.SleepSummaryBody
	params := map[string]string{"action": "getsummary"}
	if err := ymdParams(params, q, lastDays(a.now, SleepSummaryDays)); err != nil {
		return body, err
	}
	err := a.fetch(ctx, PathSleep, params, &body)
	return body, err
}

func (a *API) SleepDetail(ctx context.Context, q Query) (models.SleepDetailBody, error) {
	var body models.SleepDetailBody
	params := map[string]string{"action": "get"}
	if err := timestampParams(params, q, lastDays(a.now, SleepDetailDays)); err != nil {
		return body, err
	}
	err := a.fetch(ctx, PathSleep, params, &body)
	return body, err
}

func (a *API) Workouts(ctx context.Context, q Query) (models.WorkoutBody, error) {
	var body models.WorkoutBody
	params := map[string]string{"action": "getworkouts"}
	if err := ymdParams(params, q, lastDays(a.now, WorkoutsDays)); err != nil {
		return body, err
	}
	err := a.fetch(ctx, PathMeasV2, params, &body)
	return body, err
}

func (a *API) HeartRate(ctx context.Context, q Query) (models.HeartRateBody, error) {
	var body models.HeartRateBody
	params := map[string]string{"action": "getintradayactivity"}
	if err := timestampParams(params, q, sinceMidnight(a.now)); err != nil {
		return body, err
	}
	err := a.fetch(ctx, PathMeasV2, params, &body)
	return body, err
}

// fetch treats a missing body as empty.
func (a *API) fetch(ctx context.Context, path string, params map[string]string, out any) error {
	raw, err := a.caller.Call(ctx, path, params)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	return models.Decode(raw, out)
}
