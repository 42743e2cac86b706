package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"weatherwatch/backend/services/weather-service/internal/models"
)

var base = time.Date(2025, 3, 15, 13, 0, 0, 0, time.UTC)

func sample() []models.WeatherLog {
	return []models.WeatherLog{
		{
			City:                 "Toritama",
			Timestamp:            base,
			TemperatureCelsius:   28.5,
			HumidityPercent:      75,
			WindSpeedMS:          5.2,
			ConditionDescription: "light rain",
		},
		{
			City:                 "Toritama",
			Timestamp:            base.Add(time.Hour),
			TemperatureCelsius:   -1.25,
			HumidityPercent:      0,
			WindSpeedMS:          0,
			ConditionDescription: `broken "clouds", windy`,
		},
	}
}

func TestCSVZeroRecords(t *testing.T) {
	out, err := CSV(nil, CSVOptions{})
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Nil(t, out)
}

func TestXLSXZeroRecords(t *testing.T) {
	out, err := XLSX([]models.WeatherLog{})
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Nil(t, out)
}

func TestCSVHeaderRowsAndQuoting(t *testing.T) {
	recife, err := time.LoadLocation("America/Recife")
	require.NoError(t, err)

	out, err := CSV(sample(), CSVOptions{Location: recife})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "city,timestamp,temperatureCelsius,humidityPercent,windSpeedMS,conditionDescription", lines[0])
	assert.Equal(t, `Toritama,"15/03/2025, 10:00:00",28.5,75,5.2,light rain`, lines[1])
	assert.Equal(t, `Toritama,"15/03/2025, 11:00:00",-1.25,0,0,"broken ""clouds"", windy"`, lines[2])

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `broken "clouds", windy`, rows[2][5])
}

func TestCSVOptionalColumnsOnlyWhenPresent(t *testing.T) {
	logs := sample()
	logs[1].RainProbabilityPercent = models.Float(0)

	out, err := CSV(logs, CSVOptions{})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "rainProbabilityPercent", rows[0][6])
	assert.Len(t, rows[0], 7)
	assert.Equal(t, "", rows[1][6])
	assert.Equal(t, "0", rows[2][6])
	assert.Equal(t, "15/03/2025, 13:00:00", rows[1][1])
}

func TestCSVRejectsInvalidText(t *testing.T) {
	logs := sample()
	logs[1].City = "Tori\xfftama"

	_, err := CSV(logs, CSVOptions{})
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, 2, encErr.Row)
}

func TestXLSXWorkbook(t *testing.T) {
	logs := sample()
	logs[0].WindGustMS = models.Float(9.1)

	out, err := XLSX(logs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"City", "Timestamp", "Temp (°C)", "Humidity (%)", "Wind (m/s)", "Condition", "Wind Gust (m/s)"}, rows[0])

	city, err := f.GetCellValue(SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Toritama", city)

	temp, err := f.GetCellValue(SheetName, "C3")
	require.NoError(t, err)
	assert.Equal(t, "-1.25", temp)

	gust, err := f.GetCellValue(SheetName, "G2")
	require.NoError(t, err)
	assert.Equal(t, "9.1", gust)
	empty, err := f.GetCellValue(SheetName, "G3")
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	raw, err := f.GetCellValue(SheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	serial, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err, "timestamp should be a typed date cell, got %q", raw)
	assert.InDelta(t, 45731.0+13.0/24.0, serial, 1e-3)
}

func TestXLSXTimestampIgnoresLocation(t *testing.T) {
	logs := sample()[:1]
	logs[0].Timestamp = base.In(time.FixedZone("-03", -3*60*60))

	out, err := XLSX(logs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	raw, err := f.GetCellValue(SheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	serial, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	assert.InDelta(t, 45731.0+13.0/24.0, serial, 1e-3)
}

func TestFilename(t *testing.T) {
	now := time.UnixMilli(1742043600123)
	assert.Equal(t, "weather_logs_1742043600123.csv", Filename(FormatCSV, now))
	assert.Equal(t, "weather_logs_1742043600123.xlsx", Filename(FormatXLSX, now))
}
