package service

import (
	"context"
	"fmt"
	"math"

	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/repository"
)

// Paging limits for ListLogs.
const (
	MaxPageLimit     = 100
	DefaultPageLimit = 50
)

// ExportFields is the projection used for exports: the canonical columns first,
// then the optional measurements.
var ExportFields = append([]models.Field{
	models.FieldCity,
	models.FieldTimestamp,
	models.FieldTemperatureCelsius,
	models.FieldHumidityPercent,
	models.FieldWindSpeedMS,
	models.FieldConditionDescription,
}, models.OptionalFields...)

// QueryService serves read-only views over the record store.
type QueryService struct {
	store repository.WeatherLogStore
}

// NewQueryService returns service instance.
func NewQueryService(store repository.WeatherLogStore) *QueryService {
	return &QueryService{store: store}
}

// ListLogs returns one page of logs, newest first. A page past the end is empty.
func (s *QueryService) ListLogs(ctx context.Context, page, limit int) ([]models.WeatherLog, error) {
	if page < 1 {
		return nil, invalid("page", "must not be less than 1")
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxPageLimit))
	}
	// an offset that does not fit in an int is past any store's end
	if page-1 > math.MaxInt/limit {
		return []models.WeatherLog{}, nil
	}
	return s.store.Find(ctx, repository.FindOptions{
		Sort:  []repository.SortKey{{Field: models.FieldTimestamp, Direction: repository.Descending}},
		Skip:  (page - 1) * limit,
		Limit: limit,
	})
}

// LogsForExport returns every log projected to ExportFields, in store order.
func (s *QueryService) LogsForExport(ctx context.Context) ([]models.WeatherLog, error) {
	return s.store.Find(ctx, repository.FindOptions{Fields: ExportFields})
}

// Timeline returns timestamp plus the given fields for every log, oldest first.
func (s *QueryService) Timeline(ctx context.Context, fields ...models.Field) ([]models.WeatherLog, error) {
	projection := append([]models.Field{models.FieldTimestamp}, fields...)
	return s.store.Find(ctx, repository.FindOptions{
		Fields: projection,
		Sort:   []repository.SortKey{{Field: models.FieldTimestamp, Direction: repository.Ascending}},
	})
}

// Extreme returns the log holding the highest (Descending) or lowest (Ascending) value
// of field, without its identifier. It returns nil on an empty store.
func (s *QueryService) Extreme(ctx context.Context, field models.Field, dir repository.Direction) (*models.WeatherLog, error) {
	return s.store.FindOne(ctx, repository.FindOptions{
		Fields: withoutID,
		Sort:   []repository.SortKey{{Field: field, Direction: dir}},
	})
}

// CountBy returns per-value counts of a text field, most frequent first.
func (s *QueryService) CountBy(ctx context.Context, field models.Field) ([]repository.GroupCount, error) {
	return s.store.Aggregate(ctx, repository.GroupOptions{By: field, CountOrder: repository.Descending})
}

var withoutID = models.AllFields[1:]
