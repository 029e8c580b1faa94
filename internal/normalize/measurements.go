package normalize

import (
	"withings-mcp/internal/models"
	"withings-mcp/internal/units"
)

// Measurements turns measure groups into one record per group: the local date
// followed by every recognized reading formatted with its unit.
func Measurements(body models.MeasureBody) []any {
	groups := body.MeasureGroups
	out := make([]any, 0, min(len(groups), MeasurementPolicy.Limit)+1)

	for _, grp := range Head(groups, MeasurementPolicy) {
		rec := NewRecord()
		rec.Set("date", localTime(grp.Date).Format("2006-01-02"))
		for _, m := range grp.Measures {
			mt, ok := MeasurementTypes[m.Type]
			if !ok {
				continue
			}
			rec.Set(mt.Name, units.FormatMeasurement(units.ScaledToReal(m.Value, m.Unit), mt.Unit))
		}
		out = append(out, rec)
	}

	return MeasurementPolicy.Finish(out, len(groups))
}
