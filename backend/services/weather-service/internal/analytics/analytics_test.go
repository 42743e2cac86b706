package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/repository"
	"weatherwatch/backend/services/weather-service/internal/service"
)

var base = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func series(temps ...float64) []models.WeatherLog {
	logs := make([]models.WeatherLog, len(temps))
	for i, temp := range temps {
		logs[i] = models.WeatherLog{Timestamp: base.Add(time.Duration(i) * time.Hour), TemperatureCelsius: temp}
	}
	return logs
}

func averages(points []TrendPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.MovingAvg
	}
	return out
}

func TestMovingAverageExpandingWindow(t *testing.T) {
	got := MovingAverage(series(10, 20, 30, 40, 50), TrendWindow)
	assert.Equal(t, []float64{10, 15, 20, 25, 30}, averages(got))
	for i, p := range got {
		assert.Equal(t, base.Add(time.Duration(i)*time.Hour), p.Timestamp)
	}
}

func TestMovingAverageFixedTrailingWindow(t *testing.T) {
	got := MovingAverage(series(10, 20, 30, 40, 50, 60, 70), TrendWindow)
	assert.Equal(t, []float64{10, 15, 20, 25, 30, 40, 50}, averages(got))
}

func TestMovingAverageRoundsToTwoDecimals(t *testing.T) {
	got := MovingAverage(series(20, 20, 21), TrendWindow)
	assert.Equal(t, []float64{20, 20, 20.33}, averages(got))

	got = MovingAverage(series(-1.005, -1.005, -1.01), TrendWindow)
	assert.InDelta(t, -1.01, got[2].MovingAvg, 1e-9)
}

func TestMovingAverageEmptyAndSingle(t *testing.T) {
	empty := MovingAverage(nil, TrendWindow)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	single := MovingAverage(series(23.4), TrendWindow)
	require.Len(t, single, 1)
	assert.Equal(t, TrendPoint{Timestamp: base, MovingAvg: 23.4}, single[0])
}

func TestMovingAverageShortSeriesUsesAllPoints(t *testing.T) {
	got := MovingAverage(series(1, 2, 3), TrendWindow)
	assert.Equal(t, []float64{1, 1.5, 2}, averages(got))
}

func TestTimelinesEmptyEncodeAsArrays(t *testing.T) {
	raw, err := json.Marshal(TemperatureTimeline(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRainTimelineKeepsAbsentValues(t *testing.T) {
	logs := series(1, 2)
	logs[1].RainProbabilityPercent = models.Float(0)

	raw, err := json.Marshal(RainTimeline(logs))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"timestamp":"2025-03-15T10:00:00Z","rainProbabilityPercent":null},
		{"timestamp":"2025-03-15T11:00:00Z","rainProbabilityPercent":0}
	]`, string(raw))
}

func TestTempVsHumidityShape(t *testing.T) {
	logs := series(25)
	logs[0].HumidityPercent = 80
	raw, err := json.Marshal(TempVsHumidity(logs))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"timestamp":"2025-03-15T10:00:00Z","x":25,"y":80}]`, string(raw))
}

func TestSummarize(t *testing.T) {
	empty := Summarize(nil)
	assert.Equal(t, int64(0), empty.Count)
	assert.Nil(t, empty.MeanTemperature)
	assert.Nil(t, empty.From)

	logs := series(10, 20, 30)
	logs[0].RainProbabilityPercent = models.Float(40)
	got := Summarize(logs)
	assert.Equal(t, int64(3), got.Count)
	require.NotNil(t, got.MeanTemperature)
	assert.Equal(t, 20.0, *got.MeanTemperature)
	require.NotNil(t, got.TemperatureStdDev)
	assert.Equal(t, 10.0, *got.TemperatureStdDev)
	assert.Equal(t, 40.0, *got.MeanRainProbability)
	assert.Equal(t, int64(1), got.RainProbabilityCount)
	assert.Equal(t, base, *got.From)
	assert.Equal(t, base.Add(2*time.Hour), *got.To)
}

func newEngine(t *testing.T) (*Engine, *service.IngestionService) {
	t.Helper()
	store := repository.NewMemoryStore(clockwork.NewFakeClockAt(base))
	return NewEngine(service.NewQueryService(store)), service.NewIngestionService(store, nil, nil)
}

func ingest(t *testing.T, svc *service.IngestionService, ts time.Time, temp, hum, wind float64, cond string) {
	t.Helper()
	_, err := svc.CreateLog(context.Background(), models.RawReading{
		City:                 "Toritama",
		Timestamp:            models.NewFlexibleTime(ts),
		TemperatureCelsius:   models.Float(temp),
		HumidityPercent:      models.Float(hum),
		WindSpeedMS:          models.Float(wind),
		ConditionDescription: cond,
	})
	require.NoError(t, err)
}

func TestEngineConditionsByCountDescending(t *testing.T) {
	engine, svc := newEngine(t)
	ingest(t, svc, base, 20, 50, 1, "clear")
	ingest(t, svc, base.Add(time.Hour), 21, 50, 1, "rain")
	ingest(t, svc, base.Add(2*time.Hour), 22, 50, 1, "rain")

	got, err := engine.Conditions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ConditionCount{{Condition: "rain", Count: 2}, {Condition: "clear", Count: 1}}, got)
}

func TestEngineConditionsEmpty(t *testing.T) {
	engine, _ := newEngine(t)
	got, err := engine.Conditions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEngineExtremesEmptyStoreAreAbsent(t *testing.T) {
	engine, _ := newEngine(t)
	got, err := engine.Extremes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Extremes{}, got)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"maxTemperature":null,"minTemperature":null,"maxWindSpeed":null,"minWindSpeed":null,"maxHumidity":null,"minHumidity":null}`, string(raw))
}

func TestEngineExtremes(t *testing.T) {
	engine, svc := newEngine(t)
	ingest(t, svc, base, 20, 90, 3, "mist")
	ingest(t, svc, base.Add(time.Hour), 35, 40, 1, "clear")
	ingest(t, svc, base.Add(2*time.Hour), -2, 60, 12, "snow")

	got, err := engine.Extremes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.MaxTemperature.TemperatureCelsius)
	assert.Equal(t, -2.0, got.MinTemperature.TemperatureCelsius)
	assert.Equal(t, 12.0, got.MaxWindSpeed.WindSpeedMS)
	assert.Equal(t, 1.0, got.MinWindSpeed.WindSpeedMS)
	assert.Equal(t, 90.0, got.MaxHumidity.HumidityPercent)
	assert.Equal(t, 40.0, got.MinHumidity.HumidityPercent)
	assert.Empty(t, got.MaxTemperature.ID)
	assert.Equal(t, "Toritama", got.MaxTemperature.City)
}

func TestEngineTrendUsesAscendingOrder(t *testing.T) {
	engine, svc := newEngine(t)
	ingest(t, svc, base.Add(2*time.Hour), 30, 50, 1, "clear")
	ingest(t, svc, base, 10, 50, 1, "clear")
	ingest(t, svc, base.Add(time.Hour), 20, 50, 1, "clear")

	got, err := engine.Trend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 15, 20}, averages(got))
}

type brokenReader struct{}

func (brokenReader) Timeline(context.Context, ...models.Field) ([]models.WeatherLog, error) {
	return nil, &repository.StoreError{Op: "find", Err: errors.New("down")}
}

func (brokenReader) Extreme(context.Context, models.Field, repository.Direction) (*models.WeatherLog, error) {
	return nil, &repository.StoreError{Op: "find", Err: errors.New("down")}
}

func (brokenReader) CountBy(context.Context, models.Field) ([]repository.GroupCount, error) {
	return nil, &repository.StoreError{Op: "aggregate", Err: errors.New("down")}
}

func TestEngineSurfacesStoreErrors(t *testing.T) {
	engine := NewEngine(brokenReader{})
	ctx := context.Background()

	_, err := engine.Trend(ctx)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	_, err = engine.Extremes(ctx)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	_, err = engine.Conditions(ctx)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
}
