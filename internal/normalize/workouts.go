package normalize

import (
	"fmt"
	"withings-mcp/internal/models"
	"withings-mcp/internal/units"
)

// WorkoutType resolves a category code, naming unknown codes explicitly.
func WorkoutType(category *int) string {
	code := -1
	if category != nil {
		code = *category
	}
	if name, ok := WorkoutCategories[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (code %d)", code)
}

func Workouts(body models.WorkoutBody) []any {
	sessions := body.Series
	out := make([]any, 0, min(len(sessions), EntryPolicy.Limit)+1)

	for _, w := range Head(sessions, EntryPolicy) {
		rec := NewRecord()
		rec.Set("date", w.Date)
		rec.Set("type", WorkoutType(w.Category))
		rec.Set("duration_min", units.SpanMinutes(w.StartDate, w.EndDate))
		copyMetrics(rec, w.Data, workoutFields)
		out = append(out, rec)
	}

	return EntryPolicy.Finish(out, len(sessions))
}
