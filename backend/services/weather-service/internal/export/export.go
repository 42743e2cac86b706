// Package export serializes weather logs into downloadable files.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"weatherwatch/backend/services/weather-service/internal/models"
)

// ErrNoRecords is returned for an empty record set. Callers answer "no content"
// instead of sending an empty file.
var ErrNoRecords = errors.New("export: no records")

// EncodingError reports a serialization failure; the export is aborted.
type EncodingError struct {
	Format string
	Row    int
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("export %s: row %d: %v", e.Format, e.Row, e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Format identifies an export file type.
type Format struct {
	Name        string
	Extension   string
	ContentType string
}

var (
	FormatCSV  = Format{Name: "csv", Extension: "csv", ContentType: "text/csv; charset=utf-8"}
	FormatXLSX = Format{Name: "xlsx", Extension: "xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
)

// Filename returns the download name for an export produced at now.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("weather_logs_%d.%s", now.UnixMilli(), f.Extension)
}

type column struct {
	field models.Field
	title string
	width float64
}

var baseColumns = []column{
	{models.FieldCity, "City", 20},
	{models.FieldTimestamp, "Timestamp", 25},
	{models.FieldTemperatureCelsius, "Temp (°C)", 12},
	{models.FieldHumidityPercent, "Humidity (%)", 12},
	{models.FieldWindSpeedMS, "Wind (m/s)", 12},
	{models.FieldConditionDescription, "Condition", 30},
}

var optionalColumns = []column{
	{models.FieldRainProbabilityPercent, "Rain Probability (%)", 18},
	{models.FieldCloudinessPercent, "Cloudiness (%)", 14},
	{models.FieldRainVolume3hMM, "Rain 3h (mm)", 14},
	{models.FieldWindGustMS, "Wind Gust (m/s)", 15},
}

// columnsFor returns the base columns plus every optional column that at least one
// record carries. Older records simply leave those cells empty.
func columnsFor(logs []models.WeatherLog) []column {
	cols := append([]column(nil), baseColumns...)
	for _, c := range optionalColumns {
		for i := range logs {
			if v, _ := logs[i].Optional(c.field); v != nil {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

func checkText(format string, row int, log *models.WeatherLog) error {
	for _, s := range []string{log.City, log.ConditionDescription} {
		if !utf8.ValidString(s) {
			return &EncodingError{Format: format, Row: row, Err: fmt.Errorf("invalid UTF-8 in %q", s)}
		}
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
