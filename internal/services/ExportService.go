package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
	"withings-mcp/internal/normalize"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/structures"
	"withings-mcp/internal/units"
	"withings-mcp/internal/withings"

	json "github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

const (
	DataMeasurements = "measurements"
	DataActivity     = "activity"
	DataSleep        = "sleep"
	DataWorkouts     = "workouts"
	DataHeartRate    = "heart_rate"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var DataTypes = []string{DataMeasurements, DataActivity, DataSleep, DataWorkouts, DataHeartRate}

var (
	activityColumns = []string{
		"date", "steps", "calories", "total_calories", "distance_km",
		"elevation_m", "light_activity_min", "moderate_activity_min",
		"intense_activity_min", "hr_average", "hr_min", "hr_max",
	}
	sleepColumns = []string{
		"date", "total_sleep_hours", "deep_hours", "light_hours",
		"rem_hours", "awake_hours", "sleep_score", "hr_average",
	}
	workoutColumns = []string{
		"date", "type", "duration_min", "calories", "distance_km",
		"elevation_m", "steps", "hr_average", "hr_min", "hr_max", "spo2_average",
	}
	hourlyColumns = []string{"hour", "avg", "min", "max", "samples"}
	dailyColumns  = []string{"date", "avg", "min", "max"}
)

type UnknownDataTypeError struct {
	DataType string
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("Unknown data_type: %s", e.DataType)
}

type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("Unknown format: %s", e.Format)
}

type ExportRequest struct {
	DataType string
	Query    withings.Query
	Format   string
}

type ExportResult struct {
	FilePath string `json:"file_path"`
	Rows     int    `json:"rows"`
	DataType string `json:"data_type"`
}

// Table is a header plus string cells, shared by both writers.
type Table struct {
	Header []string
	Rows   [][]string
}

type ExportServiceInterface interface {
	Export(ctx context.Context, req ExportRequest) (ExportResult, error)
}

type ExportService struct {
	data   HealthDataServiceInterface
	dir    string
	logger providers.Logger
	now    func() time.Time
}

func NewExportService(conf *structures.Config, data HealthDataServiceInterface, logger providers.Logger) ExportServiceInterface {
	return &ExportService{
		data:   data,
		dir:    conf.Export.Dir,
		logger: logger,
		now:    time.Now,
	}
}

// Export fetches one category and writes it to
// withings_export_<type>_<unix>.<format> in the export directory.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	format := req.Format
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return ExportResult{}, &UnknownFormatError{Format: format}
	}

	table, err := s.table(ctx, req.DataType, req.Query)
	if err != nil {
		return ExportResult{}, err
	}

	if err = os.MkdirAll(s.dir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("export dir: %w", err)
	}
	name := fmt.Sprintf("withings_export_%s_%d.%s", req.DataType, s.now().Unix(), format)
	path := filepath.Join(s.dir, name)

	if format == FormatXLSX {
		err = writeXLSX(path, req.DataType, table)
	} else {
		err = writeCSV(path, table)
	}
	if err != nil {
		return ExportResult{}, err
	}

	s.logger.Infof(providers.TypeTool, "Exported %d %s rows to %s", len(table.Rows), req.DataType, path)
	return ExportResult{FilePath: path, Rows: len(table.Rows), DataType: req.DataType}, nil
}

func (s *ExportService) table(ctx context.Context, dataType string, q withings.Query) (Table, error) {
	switch dataType {
	case DataMeasurements:
		items, err := s.data.Measurements(ctx, q)
		if err != nil {
			return Table{}, err
		}
		records := normalize.Records(items)
		return recordTable(measurementColumns(records), records), nil
	case DataActivity:
		items, err := s.data.Activity(ctx, q)
		if err != nil {
			return Table{}, err
		}
		return recordTable(activityColumns, normalize.Records(items)), nil
	case DataSleep:
		items, err := s.data.SleepSummary(ctx, q)
		if err != nil {
			return Table{}, err
		}
		return recordTable(sleepColumns, normalize.Records(items)), nil
	case DataWorkouts:
		items, err := s.data.Workouts(ctx, q)
		if err != nil {
			return Table{}, err
		}
		return recordTable(workoutColumns, normalize.Records(items)), nil
	case DataHeartRate:
		hr, err := s.data.HeartRate(ctx, q)
		if err != nil {
			return Table{}, err
		}
		return heartRateTable(hr), nil
	}
	return Table{}, &UnknownDataTypeError{DataType: dataType}
}

// measurementColumns is date followed by the sorted keys of the first
// record; later records may carry other keys, which are not exported.
func measurementColumns(records []*normalize.Record) []string {
	if len(records) == 0 {
		return []string{"date"}
	}
	var keys []string
	for _, k := range records[0].Keys() {
		if k != "date" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return append([]string{"date"}, keys...)
}

func recordTable(header []string, records []*normalize.Record) Table {
	t := Table{Header: header, Rows: make([][]string, 0, len(records))}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, col := range header {
			if v, ok := rec.Get(col); ok {
				row[i] = cell(v)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func heartRateTable(hr normalize.HeartRate) Table {
	if hr.IsDaily() {
		t := Table{Header: dailyColumns, Rows: make([][]string, 0, len(hr.Daily))}
		for _, d := range hr.Daily {
			t.Rows = append(t.Rows, []string{d.Date, strconv.Itoa(d.Avg), strconv.Itoa(d.Min), strconv.Itoa(d.Max)})
		}
		return t
	}
	t := Table{Header: hourlyColumns, Rows: make([][]string, 0, len(hr.Hourly))}
	for _, h := range hr.Hourly {
		t.Rows = append(t.Rows, []string{h.Hour, strconv.Itoa(h.Avg), strconv.Itoa(h.Min), strconv.Itoa(h.Max), strconv.Itoa(h.Samples)})
	}
	return t
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case units.Decimal:
		return x.String()
	case float64:
		return units.FormatDecimal(x)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprint(v)
}

func writeCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(t.Header); err != nil {
		return err
	}
	if err = w.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeXLSX(path, sheet string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	rows := append([][]string{t.Header}, t.Rows...)
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = xlsxValue(v)
		}
		if err = f.SetSheetRow(sheet, cellName, &values); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsx panes: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// xlsxValue stores numeric cells as numbers so spreadsheets can sum them.
func xlsxValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
