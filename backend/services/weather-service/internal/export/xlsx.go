package export

import (
	"github.com/xuri/excelize/v2"

	"weatherwatch/backend/services/weather-service/internal/models"
)

// SheetName is the single worksheet in the XLSX export.
const SheetName = "Weather Logs"

// XLSX builds a one-sheet workbook with readable column titles. Timestamps are written
// as typed date cells holding the raw instant, unlike the localized strings of CSV.
func XLSX(logs []models.WeatherLog) ([]byte, error) {
	if len(logs) == 0 {
		return nil, ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	fail := func(row int, err error) error {
		return &EncodingError{Format: FormatXLSX.Name, Row: row, Err: err}
	}

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fail(0, err)
	}

	cols := columnsFor(logs)
	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fail(0, err)
		}
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			return nil, fail(0, err)
		}
		if err := f.SetCellValue(SheetName, name+"1", c.title); err != nil {
			return nil, fail(0, err)
		}
	}

	for row := range logs {
		log := &logs[row]
		if err := checkText(FormatXLSX.Name, row+1, log); err != nil {
			return nil, err
		}
		for i, c := range cols {
			value, ok := xlsxCell(log, c.field)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, row+2)
			if err != nil {
				return nil, fail(row+1, err)
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return nil, fail(row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fail(0, err)
	}
	return buf.Bytes(), nil
}

func xlsxCell(log *models.WeatherLog, f models.Field) (interface{}, bool) {
	if f == models.FieldTimestamp {
		return log.Timestamp.UTC(), true
	}
	if s, ok := log.Text(f); ok {
		return s, true
	}
	return log.Number(f)
}
