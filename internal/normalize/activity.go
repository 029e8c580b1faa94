package normalize

import (
	"withings-mcp/internal/models"
)

// Activity keeps the allow-listed daily metrics, renamed, with zero and
// missing values dropped.
func Activity(body models.ActivityBody) []any {
	days := body.Activities
	out := make([]any, 0, min(len(days), EntryPolicy.Limit)+1)

	for _, day := range Head(days, EntryPolicy) {
		rec := NewRecord()
		rec.Set("date", day["date"])
		copyMetrics(rec, day, activityFields)
		out = append(out, rec)
	}

	return EntryPolicy.Finish(out, len(days))
}
