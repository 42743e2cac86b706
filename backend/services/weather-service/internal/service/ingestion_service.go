package service

import (
	"context"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/observability"
	"weatherwatch/backend/services/weather-service/internal/repository"
)

// IngestionService validates readings and appends them to the record store.
type IngestionService struct {
	store    repository.WeatherLogStore
	validate *validator.Validate
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewIngestionService returns service instance.
func NewIngestionService(store repository.WeatherLogStore, metrics *observability.Metrics, logger *zap.Logger) *IngestionService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// only fails on a bad tag, which the tests would catch
	_ = v.RegisterValidation("finite", finite)
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestionService{
		store:    store,
		validate: v,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateLog validates raw and persists it as a new WeatherLog. Store failures are
// returned as-is and never retried here.
func (s *IngestionService) CreateLog(ctx context.Context, raw models.RawReading) (*models.WeatherLog, error) {
	raw.City = strings.TrimSpace(raw.City)
	raw.ConditionDescription = strings.TrimSpace(raw.ConditionDescription)

	if err := s.validate.StructCtx(ctx, raw); err != nil {
		s.metrics.IngestRejected.WithLabelValues("validation").Inc()
		return nil, fromValidator(err)
	}

	log := &models.WeatherLog{
		City:                   raw.City,
		Timestamp:              raw.Timestamp.UTC(),
		TemperatureCelsius:     *raw.TemperatureCelsius,
		HumidityPercent:        *raw.HumidityPercent,
		WindSpeedMS:            *raw.WindSpeedMS,
		ConditionDescription:   raw.ConditionDescription,
		RainProbabilityPercent: raw.RainProbabilityPercent,
		CloudinessPercent:      raw.CloudinessPercent,
		RainVolume3hMM:         raw.RainVolume3hMM,
		WindGustMS:             raw.WindGustMS,
	}

	if err := s.store.Insert(ctx, log); err != nil {
		s.metrics.IngestRejected.WithLabelValues("store").Inc()
		s.logger.Error("failed to store weather log", zap.String("city", log.City), zap.Error(err))
		return nil, err
	}

	s.metrics.LogsIngested.Inc()
	s.logger.Debug("weather log stored",
		zap.String("id", log.ID),
		zap.String("city", log.City),
		zap.Time("timestamp", log.Timestamp),
	)
	return log, nil
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// finite rejects NaN and infinities.
func finite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		v := fl.Field().Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return true
}
