package models

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Envelope is the wrapper every Withings endpoint answers with. Status 0 is
// success; the HTTP status is 200 even for expired credentials.
type Envelope struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
	Error  string          `json:"error,omitempty"`
}

// TokenBody is the body of a successful requesttoken call.
type TokenBody struct {
	UserID       any    `json:"userid"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

type DeviceBody struct {
	Devices []Fields `json:"devices"`
}

type Measure struct {
	Value int64 `json:"value"`
	Type  int   `json:"type"`
	Unit  int   `json:"unit"`
}

type MeasureGroup struct {
	GroupID  int64     `json:"grpid"`
	Date     int64     `json:"date"`
	Category int       `json:"category"`
	Measures []Measure `json:"measures"`
}

type MeasureBody struct {
	MeasureGroups []MeasureGroup `json:"measuregrps"`
	More          int            `json:"more"`
	Offset        int            `json:"offset"`
}

// ActivityBody holds one Fields map per calendar day, keyed by the raw
// vendor names (steps, distance, soft, ...).
type ActivityBody struct {
	Activities []Fields `json:"activities"`
	More       bool     `json:"more"`
	Offset     int      `json:"offset"`
}

type SleepSummary struct {
	Date      string `json:"date"`
	StartDate int64  `json:"startdate"`
	EndDate   int64  `json:"enddate"`
	Data      Fields `json:"data"`
}

type SleepSummaryBody struct {
	Series []SleepSummary `json:"series"`
	More   bool           `json:"more"`
	Offset int            `json:"offset"`
}

// SleepPhase is one contiguous sleep state interval with the heart-rate
// samples recorded during it, keyed by Unix timestamp.
type SleepPhase struct {
	StartDate int64                  `json:"startdate"`
	EndDate   int64                  `json:"enddate"`
	State     *int                   `json:"state"`
	HR        map[string]json.Number `json:"hr"`
}

type SleepDetailBody struct {
	Series []SleepPhase `json:"series"`
}

type Workout struct {
	Date      string `json:"date"`
	Category  *int   `json:"category"`
	StartDate int64  `json:"startdate"`
	EndDate   int64  `json:"enddate"`
	Data      Fields `json:"data"`
}

type WorkoutBody struct {
	Series []Workout `json:"series"`
	More   bool      `json:"more"`
	Offset int       `json:"offset"`
}

// HeartRateBody keeps series raw: the vendor sends an object keyed by
// timestamp, but an empty result comes back as an empty array.
type HeartRateBody struct {
	Series json.RawMessage `json:"series"`
}

// Samples decodes the intraday series. A missing or non-object series
// yields nil.
func (b HeartRateBody) Samples() map[string]Fields {
	raw := bytes.TrimSpace(b.Series)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var samples map[string]Fields
	if err := Decode(raw, &samples); err != nil {
		return nil
	}
	return samples
}

// Decode unmarshals vendor JSON keeping numbers as json.Number, so integer
// fields stay integers when passed through.
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
