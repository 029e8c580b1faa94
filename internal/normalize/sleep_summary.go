package normalize

import (
	"withings-mcp/internal/models"
	"withings-mcp/internal/units"
)

// SleepSummary produces one record per night. Durations become hours,
// latencies become whole minutes and the scoring fields pass through.
func SleepSummary(body models.SleepSummaryBody) []any {
	nights := body.Series
	out := make([]any, 0, min(len(nights), EntryPolicy.Limit)+1)

	for _, night := range Head(nights, EntryPolicy) {
		rec := NewRecord()
		rec.Set("date", night.Date)
		data := night.Data

		for _, f := range sleepDurationFields {
			if seconds, ok := data.Float(f.from); ok {
				rec.Set(f.to, units.SecondsToHours(seconds))
			}
		}
		for _, f := range sleepLatencyFields {
			if seconds, ok := data.Float(f.from); ok {
				rec.Set(f.to, units.SecondsToMinutes(seconds))
			}
		}
		for _, f := range sleepRenamedFields {
			if v, ok := data[f.from]; ok {
				rec.Set(f.to, v)
			}
		}
		for _, key := range sleepPassthroughFields {
			if v, ok := data[key]; ok {
				rec.Set(key, v)
			}
		}

		out = append(out, rec)
	}

	return EntryPolicy.Finish(out, len(nights))
}
