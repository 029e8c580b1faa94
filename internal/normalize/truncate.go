package normalize

import (
	"fmt"
	"time"
	"withings-mcp/internal/models"
	"withings-mcp/internal/units"
)

// Note is the trailing marker appended to capped entry lists.
type Note struct {
	Note string `json:"note"`
}

// Policy caps a normalized list at Limit entries, always keeping the first
// ones in vendor order, and describes the cut with a trailing marker.
type Policy struct {
	Limit  int
	Marker func(shown, total int) any
}

var MeasurementPolicy = Policy{
	Limit: 50,
	Marker: func(shown, total int) any {
		return fmt.Sprintf("(showing %d of %d total, use narrower date range)", shown, total)
	},
}

// EntryPolicy applies to activity, sleep summary and workouts.
var EntryPolicy = Policy{
	Limit: 30,
	Marker: func(shown, total int) any {
		return Note{Note: fmt.Sprintf("%d entries truncated (showing %d of %d)", total-shown, shown, total)}
	},
}

// Head returns the entries that survive the policy.
func Head[T any](items []T, p Policy) []T {
	if len(items) > p.Limit {
		return items[:p.Limit]
	}
	return items
}

// Finish appends the marker when total exceeded the limit.
func (p Policy) Finish(out []any, total int) []any {
	if total > p.Limit {
		out = append(out, p.Marker(p.Limit, total))
	}
	return out
}

// Records filters the plain records out of a normalized list, skipping markers.
func Records(items []any) []*Record {
	out := make([]*Record, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(*Record); ok {
			out = append(out, rec)
		}
	}
	return out
}

func localTime(ts int64) time.Time {
	return time.Unix(ts, 0).Local()
}

// copyMetrics applies a rename table to src, skipping absent, null and zero
// values. Distances are converted from meters to kilometers.
func copyMetrics(rec *Record, src models.Fields, table []rename) {
	for _, f := range table {
		v, ok := src.Lookup(f.from)
		if !ok || models.IsZero(v) {
			continue
		}
		if f.from == "distance" {
			if meters, ok := models.ToFloat(v); ok {
				rec.Set(f.to, units.MetersToKilometers(meters))
			}
			continue
		}
		rec.Set(f.to, v)
	}
}
