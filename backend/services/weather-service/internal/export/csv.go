package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"weatherwatch/backend/services/weather-service/internal/models"
)

// DefaultTimeLayout renders timestamps the way a pt-BR locale prints date and time.
const DefaultTimeLayout = "02/01/2006, 15:04:05"

// CSVOptions controls how timestamps are localized.
type CSVOptions struct {
	Location *time.Location
	Layout   string
}

// CSV writes one header row of field names and one row per log, in the given order.
// Timestamps are localized strings; absent optional values are empty cells.
func CSV(logs []models.WeatherLog, opts CSVOptions) ([]byte, error) {
	if len(logs) == 0 {
		return nil, ErrNoRecords
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Layout == "" {
		opts.Layout = DefaultTimeLayout
	}

	cols := columnsFor(logs)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = string(c.field)
	}
	if err := w.Write(header); err != nil {
		return nil, &EncodingError{Format: FormatCSV.Name, Err: err}
	}

	record := make([]string, len(cols))
	for row := range logs {
		log := &logs[row]
		if err := checkText(FormatCSV.Name, row+1, log); err != nil {
			return nil, err
		}
		for i, c := range cols {
			record[i] = csvCell(log, c.field, opts)
		}
		if err := w.Write(record); err != nil {
			return nil, &EncodingError{Format: FormatCSV.Name, Row: row + 1, Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &EncodingError{Format: FormatCSV.Name, Err: err}
	}
	return buf.Bytes(), nil
}

func csvCell(log *models.WeatherLog, f models.Field, opts CSVOptions) string {
	if f == models.FieldTimestamp {
		return log.Timestamp.In(opts.Location).Format(opts.Layout)
	}
	if s, ok := log.Text(f); ok {
		return s
	}
	if v, ok := log.Number(f); ok {
		return formatNumber(v)
	}
	return ""
}
