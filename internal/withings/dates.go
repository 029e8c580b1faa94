package withings

import (
	"fmt"
	"strconv"
	"time"
)

const ymdLayout = "2006-01-02"

// MalformedDateError rejects a date that is neither a Unix timestamp nor
// YYYY-MM-DD.
type MalformedDateError struct {
	Input string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("invalid date format: %s. Use YYYY-MM-DD or Unix timestamp", e.Input)
}

// Query holds the caller's optional range bounds exactly as given.
type Query struct {
	Start string
	End   string
}

func (q Query) IsEmpty() bool {
	return q.Start == "" && q.End == ""
}

// Validate rejects a malformed bound without resolving the range. Both
// parameter styles accept the same inputs, so one check covers every
// endpoint.
func (q Query) Validate() error {
	for _, bound := range []string{q.Start, q.End} {
		if bound == "" {
			continue
		}
		if _, err := ParseTimestamp(bound); err != nil {
			return err
		}
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseTimestamp accepts a Unix timestamp or a local calendar date, which
// resolves to local midnight.
func ParseTimestamp(s string) (int64, error) {
	if isDigits(s) {
		ts, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &MalformedDateError{Input: s}
		}
		return ts, nil
	}
	t, err := time.ParseInLocation(ymdLayout, s, time.Local)
	if err != nil {
		return 0, &MalformedDateError{Input: s}
	}
	return t.Unix(), nil
}

// ParseYMD normalizes either accepted form to YYYY-MM-DD in local time.
func ParseYMD(s string) (string, error) {
	if isDigits(s) {
		ts, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", &MalformedDateError{Input: s}
		}
		return time.Unix(ts, 0).Local().Format(ymdLayout), nil
	}
	t, err := time.ParseInLocation(ymdLayout, s, time.Local)
	if err != nil {
		return "", &MalformedDateError{Input: s}
	}
	return t.Format(ymdLayout), nil
}

// timestampParams resolves q into startdate/enddate. The default window only
// applies when neither bound was given.
func timestampParams(params map[string]string, q Query, window func() (time.Time, time.Time)) error {
	if q.IsEmpty() {
		start, end := window()
		params["startdate"] = strconv.FormatInt(start.Unix(), 10)
		params["enddate"] = strconv.FormatInt(end.Unix(), 10)
		return nil
	}
	if q.Start != "" {
		ts, err := ParseTimestamp(q.Start)
		if err != nil {
			return err
		}
		params["startdate"] = strconv.FormatInt(ts, 10)
	}
	if q.End != "" {
		ts, err := ParseTimestamp(q.End)
		if err != nil {
			return err
		}
		params["enddate"] = strconv.FormatInt(ts, 10)
	}
	return nil
}

func ymdParams(params map[string]string, q Query, window func() (time.Time, time.Time)) error {
	if q.IsEmpty() {
		start, end := window()
		params["startdateymd"] = start.Format(ymdLayout)
		params["enddateymd"] = end.Format(ymdLayout)
		return nil
	}
	if q.Start != "" {
		ymd, err := ParseYMD(q.Start)
		if err != nil {
			return err
		}
		params["startdateymd"] = ymd
	}
	if q.End != "" {
		ymd, err := ParseYMD(q.End)
		if err != nil {
			return err
		}
		params["enddateymd"] = ymd
	}
	return nil
}

// lastDays is the window ending now and starting days*24h earlier.
func lastDays(now func() time.Time, days int) func() (time.Time, time.Time) {
	return func() (time.Time, time.Time) {
		end := now()
		return end.Add(-time.Duration(days) * 24 * time.Hour), end
	}
}

// sinceMidnight is the window from local midnight to now.
func sinceMidnight(now func() time.Time) func() (time.Time, time.Time) {
	return func() (time.Time, time.Time) {
		end := now().Local()
		start := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.Local)
		return start, end
	}
}
