package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/observability"
	"weatherwatch/backend/services/weather-service/internal/repository"
)

var base = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

type failingStore struct {
	repository.WeatherLogStore
	inserts int
}

func (f *failingStore) Insert(context.Context, *models.WeatherLog) error {
	f.inserts++
	return &repository.StoreError{Op: "insert", Err: errors.New("connection refused")}
}

func reading(ts time.Time, temp float64) models.RawReading {
	return models.RawReading{
		City:                 "Toritama",
		Timestamp:            models.NewFlexibleTime(ts),
		TemperatureCelsius:   models.Float(temp),
		HumidityPercent:      models.Float(75),
		WindSpeedMS:          models.Float(5.2),
		ConditionDescription: "light rain",
	}
}

func newServices(t *testing.T) (*IngestionService, *QueryService, *repository.MemoryStore, *observability.Metrics) {
	t.Helper()
	store := repository.NewMemoryStore(clockwork.NewFakeClockAt(base))
	metrics := observability.NewMetrics(nil)
	return NewIngestionService(store, metrics, zap.NewNop()), NewQueryService(store), store, metrics
}

func TestCreateLogThenListNewestFirst(t *testing.T) {
	ingest, query, _, metrics := newServices(t)
	ctx := context.Background()

	_, err := ingest.CreateLog(ctx, reading(base, 20))
	require.NoError(t, err)
	latest, err := ingest.CreateLog(ctx, reading(base.Add(time.Hour), 28.5))
	require.NoError(t, err)
	_, err = ingest.CreateLog(ctx, reading(base.Add(-time.Hour), 18))
	require.NoError(t, err)

	page, err := query.ListLogs(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, latest.ID, page[0].ID)
	assert.Equal(t, 28.5, page[0].TemperatureCelsius)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.LogsIngested))
}

func TestCreateLogNormalizesTimestampToUTC(t *testing.T) {
	ingest, _, _, _ := newServices(t)
	zone := time.FixedZone("BRT", -3*60*60)

	log, err := ingest.CreateLog(context.Background(), reading(time.Date(2025, 3, 15, 7, 0, 0, 0, zone), 25))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, log.Timestamp.Location())
	assert.True(t, base.Equal(log.Timestamp))
	assert.Equal(t, base, log.CreatedAt)
}

func TestCreateLogAcceptsDuplicates(t *testing.T) {
	ingest, _, store, _ := newServices(t)

	for i := 0; i < 2; i++ {
		_, err := ingest.CreateLog(context.Background(), reading(base, 20))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.Len())
}

func TestCreateLogValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(r *models.RawReading)
		field  string
	}{
		"missing city":         {func(r *models.RawReading) { r.City = "  " }, "city"},
		"missing timestamp":    {func(r *models.RawReading) { r.Timestamp = nil }, "timestamp"},
		"missing temperature":  {func(r *models.RawReading) { r.TemperatureCelsius = nil }, "temperatureCelsius"},
		"temperature too high": {func(r *models.RawReading) { r.TemperatureCelsius = models.Float(100.5) }, "temperatureCelsius"},
		"temperature too low":  {func(r *models.RawReading) { r.TemperatureCelsius = models.Float(-101) }, "temperatureCelsius"},
		"humidity over 100":    {func(r *models.RawReading) { r.HumidityPercent = models.Float(101) }, "humidityPercent"},
		"negative wind":        {func(r *models.RawReading) { r.WindSpeedMS = models.Float(-0.1) }, "windSpeedMS"},
		"missing condition":    {func(r *models.RawReading) { r.ConditionDescription = "" }, "conditionDescription"},
		"rain over 100":        {func(r *models.RawReading) { r.RainProbabilityPercent = models.Float(120) }, "rainProbabilityPercent"},
		"negative gust":        {func(r *models.RawReading) { r.WindGustMS = models.Float(-1) }, "windGustMS"},
		"infinite wind":        {func(r *models.RawReading) { r.WindSpeedMS = models.Float(math.Inf(1)) }, "windSpeedMS"},
		"NaN temperature":      {func(r *models.RawReading) { r.TemperatureCelsius = models.Float(math.NaN()) }, "temperatureCelsius"},
		"infinite rain volume": {func(r *models.RawReading) { r.RainVolume3hMM = models.Float(math.Inf(1)) }, "rainVolume3hMM"},
		"infinite gust":        {func(r *models.RawReading) { r.WindGustMS = models.Float(math.Inf(1)) }, "windGustMS"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ingest, _, store, metrics := newServices(t)
			r := reading(base, 20)
			tc.mutate(&r)

			_, err := ingest.CreateLog(context.Background(), r)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve.Fields, 1)
			assert.Equal(t, tc.field, ve.Fields[0].Field)
			assert.Equal(t, 0, store.Len())
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.IngestRejected.WithLabelValues("validation")))
		})
	}
}

func TestCreateLogNonFiniteMessage(t *testing.T) {
	ingest, _, _, _ := newServices(t)
	r := reading(base, 20)
	r.WindSpeedMS = models.Float(math.Inf(1))

	_, err := ingest.CreateLog(context.Background(), r)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, FieldError{Field: "windSpeedMS", Message: "must be a finite number"}, ve.Fields[0])
}

func TestCreateLogAcceptsBoundaryValues(t *testing.T) {
	ingest, _, _, _ := newServices(t)
	r := reading(base, -100)
	r.HumidityPercent = models.Float(0)
	r.WindSpeedMS = models.Float(0)
	r.RainProbabilityPercent = models.Float(100)

	log, err := ingest.CreateLog(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, -100.0, log.TemperatureCelsius)
	require.NotNil(t, log.RainProbabilityPercent)
	assert.Equal(t, 100.0, *log.RainProbabilityPercent)
	assert.Nil(t, log.CloudinessPercent)
}

func TestCreateLogSurfacesStoreFailure(t *testing.T) {
	store := &failingStore{}
	metrics := observability.NewMetrics(nil)
	ingest := NewIngestionService(store, metrics, zap.NewNop())

	_, err := ingest.CreateLog(context.Background(), reading(base, 20))
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.False(t, IsValidation(err))
	assert.Equal(t, 1, store.inserts)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.IngestRejected.WithLabelValues("store")))
}

func TestCreateLogSkipsStoreOnValidationFailure(t *testing.T) {
	store := &failingStore{}
	ingest := NewIngestionService(store, nil, zap.NewNop())

	r := reading(base, 20)
	r.City = ""
	_, err := ingest.CreateLog(context.Background(), r)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, store.inserts)
}

func TestListLogsPagination(t *testing.T) {
	ingest, query, _, _ := newServices(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := ingest.CreateLog(ctx, reading(base.Add(time.Duration(i)*time.Hour), float64(i)))
		require.NoError(t, err)
	}

	page2, err := query.ListLogs(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, 2.0, page2[0].TemperatureCelsius)
	assert.Equal(t, 1.0, page2[1].TemperatureCelsius)

	again, err := query.ListLogs(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, page2, again)

	past, err := query.ListLogs(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestListLogsHugePageIsEmpty(t *testing.T) {
	ingest, query, _, _ := newServices(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := ingest.CreateLog(ctx, reading(base.Add(time.Duration(i)*time.Hour), float64(i)))
		require.NoError(t, err)
	}

	for _, tc := range []struct{ page, limit int }{
		{1<<62 + 1, 4},
		{math.MaxInt/100 + 2, 100},
		{math.MaxInt, 1},
		{math.MaxInt, MaxPageLimit},
	} {
		logs, err := query.ListLogs(ctx, tc.page, tc.limit)
		require.NoError(t, err, "page=%d limit=%d", tc.page, tc.limit)
		assert.NotNil(t, logs)
		assert.Empty(t, logs, "page=%d limit=%d", tc.page, tc.limit)
	}
}

func TestListLogsRejectsBadPaging(t *testing.T) {
	_, query, _, _ := newServices(t)
	for _, tc := range []struct{ page, limit int }{{0, 10}, {1, 0}, {1, 101}, {-1, 5}} {
		_, err := query.ListLogs(context.Background(), tc.page, tc.limit)
		assert.True(t, IsValidation(err), "page=%d limit=%d", tc.page, tc.limit)
	}
}

func TestLogsForExportRoundTrip(t *testing.T) {
	ingest, query, _, _ := newServices(t)
	r := reading(base, 28.5)
	r.RainProbabilityPercent = models.Float(60)
	_, err := ingest.CreateLog(context.Background(), r)
	require.NoError(t, err)

	logs, err := query.LogsForExport(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)

	got := logs[0]
	assert.Empty(t, got.ID)
	assert.True(t, got.CreatedAt.IsZero())
	assert.Equal(t, "Toritama", got.City)
	assert.True(t, base.Equal(got.Timestamp))
	assert.Equal(t, 28.5, got.TemperatureCelsius)
	assert.Equal(t, 75.0, got.HumidityPercent)
	assert.Equal(t, 5.2, got.WindSpeedMS)
	assert.Equal(t, "light rain", got.ConditionDescription)
	require.NotNil(t, got.RainProbabilityPercent)
	assert.Equal(t, 60.0, *got.RainProbabilityPercent)
	assert.Nil(t, got.WindGustMS)
}

func TestTimelineAscending(t *testing.T) {
	ingest, query, _, _ := newServices(t)
	ctx := context.Background()
	for _, h := range []int{3, 1, 2} {
		_, err := ingest.CreateLog(ctx, reading(base.Add(time.Duration(h)*time.Hour), float64(h)))
		require.NoError(t, err)
	}

	logs, err := query.Timeline(ctx, models.FieldTemperatureCelsius)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for i, log := range logs {
		assert.Equal(t, float64(i+1), log.TemperatureCelsius)
		assert.Empty(t, log.City)
	}
}

func TestExtremeEmptyStore(t *testing.T) {
	_, query, _, _ := newServices(t)
	got, err := query.Extreme(context.Background(), models.FieldWindSpeedMS, repository.Descending)
	require.NoError(t, err)
	assert.Nil(t, got)
}
