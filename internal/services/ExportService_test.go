package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
	"withings-mcp/internal/auth"
	"withings-mcp/internal/models"
	"withings-mcp/internal/withings"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportNow = time.Unix(1740052800, 0)

func newExportFixture(t *testing.T) (*ExportService, *serviceFixture) {
	t.Helper()
	f := newServiceFixture()
	return &ExportService{
		data:   f.service,
		dir:    t.TempDir(),
		logger: f.logger,
		now:    func() time.Time { return exportNow },
	}, f
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExport_ActivityCSV(t *testing.T) {
	svc, f := newExportFixture(t)
	f.source.activity = models.ActivityBody{Activities: []models.Fields{
		{"date": "2025-02-20", "steps": json.Number("8432"), "totalcalories": json.Number("2310.5"), "distance": json.Number("6500")},
		{"date": "2025-02-21", "hr_average": json.Number("64")},
	}}

	res, err := svc.Export(context.Background(), ExportRequest{
		DataType: DataActivity,
		Query:    withings.Query{Start: "2025-02-20", End: "2025-02-21"},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(svc.dir, "withings_export_activity_1740052800.csv"), res.FilePath)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, DataActivity, res.DataType)
	assert.Equal(t, withings.Query{Start: "2025-02-20", End: "2025-02-21"}, f.source.lastQuery)

	assert.Equal(t, "date,steps,calories,total_calories,distance_km,elevation_m,light_activity_min,"+
		"moderate_activity_min,intense_activity_min,hr_average,hr_min,hr_max\n"+
		"2025-02-20,8432,,2310.5,6.5,,,,,,,\n"+
		"2025-02-21,,,,,,,,,64,,\n", readFile(t, res.FilePath))
}

func TestExport_MeasurementsUseFirstRecordColumns(t *testing.T) {
	svc, f := newExportFixture(t)
	day := time.Date(2025, 2, 20, 8, 0, 0, 0, time.Local).Unix()
	f.source.measurements = models.MeasureBody{MeasureGroups: []models.MeasureGroup{
		{Date: day, Measures: []models.Measure{{Value: 75500, Type: 1, Unit: -3}, {Value: 182, Type: 6, Unit: -1}}},
		{Date: day + 86400, Measures: []models.Measure{{Value: 70, Type: 1, Unit: 0}, {Value: 60, Type: 11, Unit: 0}}},
	}}

	res, err := svc.Export(context.Background(), ExportRequest{DataType: DataMeasurements})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "date,Body fat,Weight\n"+
		"2025-02-20,18.2%,75.5 kg\n"+
		"2025-02-21,,70.0 kg\n", readFile(t, res.FilePath))
}

func TestExport_EmptyMeasurements(t *testing.T) {
	svc, _ := newExportFixture(t)

	res, err := svc.Export(context.Background(), ExportRequest{DataType: DataMeasurements})
	require.NoError(t, err)
	assert.Zero(t, res.Rows)
	assert.Equal(t, "date\n", readFile(t, res.FilePath))
}

func TestExport_WorkoutsSkipTruncationNote(t *testing.T) {
	svc, f := newExportFixture(t)
	series := make([]models.Workout, 31)
	for i := range series {
		series[i] = models.Workout{Date: fmt.Sprintf("2025-01-%02d", i+1), Category: intPtr(2), StartDate: 0, EndDate: 600}
	}
	f.source.workouts = models.WorkoutBody{Series: series}

	res, err := svc.Export(context.Background(), ExportRequest{DataType: DataWorkouts})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Rows)
	assert.Contains(t, readFile(t, res.FilePath), "2025-01-01,Run,10,,,,,,,,\n")
	assert.NotContains(t, readFile(t, res.FilePath), "note")
}

func TestExport_SleepColumns(t *testing.T) {
	svc, f := newExportFixture(t)
	f.source.sleepSummary = models.SleepSummaryBody{Series: []models.SleepSummary{{
		Date: "2025-02-19",
		Data: models.Fields{
			"total_sleep_time":  json.Number("25200"),
			"deepsleepduration": json.Number("4320"),
			"sleep_score":       json.Number("81"),
		},
	}}}

	res, err := svc.Export(context.Background(), ExportRequest{DataType: DataSleep})
	require.NoError(t, err)
	assert.Equal(t, "date,total_sleep_hours,deep_hours,light_hours,rem_hours,awake_hours,sleep_score,hr_average\n"+
		"2025-02-19,7.0,1.2,,,,81,\n", readFile(t, res.FilePath))
}

func TestExport_HeartRateHourly(t *testing.T) {
	svc, f := newExportFixture(t)
	nine := time.Date(2025, 2, 20, 9, 0, 0, 0, time.Local).Unix()
	f.source.heartRate = models.HeartRateBody{Series: json.RawMessage(fmt.Sprintf(
		`{"%d":{"heart_rate":60},"%d":{"heart_rate":72}}`, nine, nine+300))}

	res, err := svc.Export(context.Background(), ExportRequest{DataType: DataHeartRate})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "hour,avg,min,max,samples\n09:00,66,60,72,2\n", readFile(t, res.FilePath))
}

func TestExport_HeartRateDaily(t *testing.T) {
	svc, f := newExportFixture(t)
	start := time.Date(2025, 2, 20, 0, 30, 0, 0, time.Local)
	series := map[string]map[string]int{}
	for h := 0; h < 30; h++ {
		series[fmt.Sprint(start.Add(time.Duration(h)*time.Hour).Unix())] = map[string]int{"heart_rate": 60 + h%2}
	}
	raw, err := json.Marshal(series)
	require.NoError(t, err)
	f.source.heartRate = models.HeartRateBody{Series: raw}

	res, err := svc.Export(context.Background(), ExportRequest{DataType: DataHeartRate})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	content := readFile(t, res.FilePath)
	assert.Contains(t, content, "date,avg,min,max\n2025-02-20,")
	assert.Contains(t, content, "\n2025-02-21,")
}

func TestExport_XLSX(t *testing.T) {
	svc, f := newExportFixture(t)
	f.source.activity = models.ActivityBody{Activities: []models.Fields{
		{"date": "2025-02-20", "steps": json.Number("8432")},
	}}

	res, err := svc.Export(context.Background(), ExportRequest{DataType: DataActivity, Format: FormatXLSX})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.dir, "withings_export_activity_1740052800.xlsx"), res.FilePath)

	book, err := excelize.OpenFile(res.FilePath)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(DataActivity)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, activityColumns, rows[0])
	assert.Equal(t, "2025-02-20", rows[1][0])
	assert.Equal(t, "8432", rows[1][1])
}

func TestExport_UnknownDataType(t *testing.T) {
	svc, f := newExportFixture(t)

	_, err := svc.Export(context.Background(), ExportRequest{DataType: "steps"})
	var typeErr *UnknownDataTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "Unknown data_type: steps", err.Error())
	assert.Empty(t, f.source.calls)
}

func TestExport_UnknownFormat(t *testing.T) {
	svc, f := newExportFixture(t)

	_, err := svc.Export(context.Background(), ExportRequest{DataType: DataSleep, Format: "pdf"})
	var formatErr *UnknownFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Empty(t, f.source.calls)
}

func TestExport_FetchErrorWritesNothing(t *testing.T) {
	svc, f := newExportFixture(t)
	f.auth.ensureErr = auth.ErrNotAuthenticated

	_, err := svc.Export(context.Background(), ExportRequest{DataType: DataWorkouts})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	entries, err := os.ReadDir(svc.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
