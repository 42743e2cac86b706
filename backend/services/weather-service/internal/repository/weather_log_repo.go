package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"weatherwatch/backend/services/weather-service/internal/models"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS weather_logs (
		seq                      BIGSERIAL UNIQUE,
		id                       UUID PRIMARY KEY,
		city                     TEXT NOT NULL,
		recorded_at              TIMESTAMPTZ NOT NULL,
		temperature_celsius      DOUBLE PRECISION NOT NULL,
		humidity_percent         DOUBLE PRECISION NOT NULL,
		wind_speed_ms            DOUBLE PRECISION NOT NULL,
		condition_description    TEXT NOT NULL,
		rain_probability_percent DOUBLE PRECISION,
		cloudiness_percent       DOUBLE PRECISION,
		rain_volume_3h_mm        DOUBLE PRECISION,
		wind_gust_ms             DOUBLE PRECISION,
		created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS weather_logs_recorded_at_idx ON weather_logs (recorded_at);
	CREATE INDEX IF NOT EXISTS weather_logs_city_idx ON weather_logs (city);
`

// WeatherLogRepository is the PostgreSQL record store.
type WeatherLogRepository struct {
	db *sql.DB
}

// NewWeatherLogRepository returns repository.
func NewWeatherLogRepository(db *sql.DB) *WeatherLogRepository {
	return &WeatherLogRepository{db: db}
}

// EnsureSchema creates the weather_logs table and its indexes when missing.
func (r *WeatherLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return unavailable("ensure schema", err)
	}
	return nil
}

// Insert stores a new weather log.
func (r *WeatherLogRepository) Insert(ctx context.Context, log *models.WeatherLog) error {
	const query = `
		INSERT INTO weather_logs (
			id, city, recorded_at, temperature_celsius, humidity_percent, wind_speed_ms,
			condition_description, rain_probability_percent, cloudiness_percent,
			rain_volume_3h_mm, wind_gust_ms, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx, query,
		log.ID,
		log.City,
		log.Timestamp,
		log.TemperatureCelsius,
		log.HumidityPercent,
		log.WindSpeedMS,
		log.ConditionDescription,
		log.RainProbabilityPercent,
		log.CloudinessPercent,
		log.RainVolume3hMM,
		log.WindGustMS,
	).Scan(&log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return unavailable("insert", err)
	}
	toUTC(log)
	return nil
}

// Find runs a projected, sorted and paginated select.
func (r *WeatherLogRepository) Find(ctx context.Context, opts FindOptions) ([]models.WeatherLog, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = models.AllFields
	}
	query, args := buildFindQuery(fields, opts)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("find", err)
	}
	defer rows.Close()

	logs := []models.WeatherLog{}
	for rows.Next() {
		var log models.WeatherLog
		if err := rows.Scan(scanTargets(&log, fields)...); err != nil {
			return nil, unavailable("find", err)
		}
		toUTC(&log)
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("find", err)
	}
	return logs, nil
}

// FindOne returns the first matching log or nil.
func (r *WeatherLogRepository) FindOne(ctx context.Context, opts FindOptions) (*models.WeatherLog, error) {
	opts.Limit = 1
	logs, err := r.Find(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// Aggregate counts rows per distinct value of opts.By.
func (r *WeatherLogRepository) Aggregate(ctx context.Context, opts GroupOptions) ([]GroupCount, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	query, args := buildGroupQuery(opts)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("aggregate", err)
	}
	defer rows.Close()

	groups := []GroupCount{}
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, unavailable("aggregate", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("aggregate", err)
	}
	return groups, nil
}

func buildFindQuery(fields []models.Field, opts FindOptions) (string, []any) {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM weather_logs", strings.Join(cols, ", "))
	where, args := buildWhere(opts.Filter)
	b.WriteString(where)

	order := make([]string, 0, len(opts.Sort)+1)
	for _, k := range opts.Sort {
		dir := "ASC"
		if k.Direction == Descending {
			dir = "DESC"
		}
		order = append(order, fmt.Sprintf("%s %s", k.Field.Column(), dir))
	}
	order = append(order, "seq ASC")
	fmt.Fprintf(&b, " ORDER BY %s", strings.Join(order, ", "))

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if opts.Skip > 0 {
		args = append(args, opts.Skip)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args
}

func buildGroupQuery(opts GroupOptions) (string, []any) {
	col := opts.By.Column()
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s, COUNT(*) FROM weather_logs", col)
	where, args := buildWhere(opts.Filter)
	b.WriteString(where)
	fmt.Fprintf(&b, " GROUP BY %s", col)
	switch opts.CountOrder {
	case Descending:
		b.WriteString(" ORDER BY COUNT(*) DESC, MIN(seq) ASC")
	case Ascending:
		b.WriteString(" ORDER BY COUNT(*) ASC, MIN(seq) ASC")
	default:
		b.WriteString(" ORDER BY MIN(seq) ASC")
	}
	return b.String(), args
}

func buildWhere(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.City != "" {
		args = append(args, f.City)
		conds = append(conds, fmt.Sprintf("city = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("recorded_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("recorded_at < $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// toUTC drops the session location pgx attaches to timestamptz values.
func toUTC(log *models.WeatherLog) {
	log.Timestamp = log.Timestamp.UTC()
	log.CreatedAt = log.CreatedAt.UTC()
	log.UpdatedAt = log.UpdatedAt.UTC()
}

func scanTargets(log *models.WeatherLog, fields []models.Field) []any {
	targets := make([]any, len(fields))
	for i, f := range fields {
		switch f {
		case models.FieldID:
			targets[i] = &log.ID
		case models.FieldCity:
			targets[i] = &log.City
		case models.FieldTimestamp:
			targets[i] = &log.Timestamp
		case models.FieldTemperatureCelsius:
			targets[i] = &log.TemperatureCelsius
		case models.FieldHumidityPercent:
			targets[i] = &log.HumidityPercent
		case models.FieldWindSpeedMS:
			targets[i] = &log.WindSpeedMS
		case models.FieldConditionDescription:
			targets[i] = &log.ConditionDescription
		case models.FieldRainProbabilityPercent:
			targets[i] = &log.RainProbabilityPercent
		case models.FieldCloudinessPercent:
			targets[i] = &log.CloudinessPercent
		case models.FieldRainVolume3hMM:
			targets[i] = &log.RainVolume3hMM
		case models.FieldWindGustMS:
			targets[i] = &log.WindGustMS
		case models.FieldCreatedAt:
			targets[i] = &log.CreatedAt
		case models.FieldUpdatedAt:
			targets[i] = &log.UpdatedAt
		}
	}
	return targets
}
