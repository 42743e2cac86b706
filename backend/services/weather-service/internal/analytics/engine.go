package analytics

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/repository"
)

// Reader is the slice of the query service the engine needs.
type Reader interface {
	Timeline(ctx context.Context, fields ...models.Field) ([]models.WeatherLog, error)
	Extreme(ctx context.Context, field models.Field, dir repository.Direction) (*models.WeatherLog, error)
	CountBy(ctx context.Context, field models.Field) ([]repository.GroupCount, error)
}

// Extremes holds the records achieving each metric's maximum and minimum.
// A nil entry means the store was empty.
type Extremes struct {
	MaxTemperature *models.WeatherLog `json:"maxTemperature"`
	MinTemperature *models.WeatherLog `json:"minTemperature"`
	MaxWindSpeed   *models.WeatherLog `json:"maxWindSpeed"`
	MinWindSpeed   *models.WeatherLog `json:"minWindSpeed"`
	MaxHumidity    *models.WeatherLog `json:"maxHumidity"`
	MinHumidity    *models.WeatherLog `json:"minHumidity"`
}

// Summary is the dashboard header: counts and means over the whole series.
type Summary struct {
	Count                int64      `json:"count"`
	From                 *time.Time `json:"from"`
	To                   *time.Time `json:"to"`
	MeanTemperature      *float64   `json:"meanTemperatureCelsius"`
	TemperatureStdDev    *float64   `json:"temperatureStdDev"`
	MeanHumidity         *float64   `json:"meanHumidityPercent"`
	MeanWindSpeed        *float64   `json:"meanWindSpeedMS"`
	MeanRainProbability  *float64   `json:"meanRainProbabilityPercent"`
	RainProbabilityCount int64      `json:"rainProbabilityCount"`
}

// Engine loads series through a Reader and applies the pure transforms in this package.
// It keeps no state between calls.
type Engine struct {
	reader Reader
}

// NewEngine returns engine.
func NewEngine(reader Reader) *Engine {
	return &Engine{reader: reader}
}

func (e *Engine) Temperature(ctx context.Context) ([]TemperaturePoint, error) {
	logs, err := e.reader.Timeline(ctx, models.FieldTemperatureCelsius)
	if err != nil {
		return nil, err
	}
	return TemperatureTimeline(logs), nil
}

func (e *Engine) Humidity(ctx context.Context) ([]HumidityPoint, error) {
	logs, err := e.reader.Timeline(ctx, models.FieldHumidityPercent)
	if err != nil {
		return nil, err
	}
	return HumidityTimeline(logs), nil
}

func (e *Engine) Wind(ctx context.Context) ([]WindPoint, error) {
	logs, err := e.reader.Timeline(ctx, models.FieldWindSpeedMS)
	if err != nil {
		return nil, err
	}
	return WindTimeline(logs), nil
}

func (e *Engine) Rain(ctx context.Context) ([]RainPoint, error) {
	logs, err := e.reader.Timeline(ctx, models.FieldRainProbabilityPercent)
	if err != nil {
		return nil, err
	}
	return RainTimeline(logs), nil
}

func (e *Engine) TempVsHumidity(ctx context.Context) ([]XYPoint, error) {
	logs, err := e.reader.Timeline(ctx, models.FieldTemperatureCelsius, models.FieldHumidityPercent)
	if err != nil {
		return nil, err
	}
	return TempVsHumidity(logs), nil
}

func (e *Engine) TempHumidity(ctx context.Context) ([]TempHumidityPoint, error) {
	logs, err := e.reader.Timeline(ctx, models.FieldTemperatureCelsius, models.FieldHumidityPercent)
	if err != nil {
		return nil, err
	}
	return TempHumidity(logs), nil
}

func (e *Engine) ScatterTempHumidityWind(ctx context.Context) ([]ScatterPoint, error) {
	logs, err := e.reader.Timeline(ctx,
		models.FieldTemperatureCelsius,
		models.FieldHumidityPercent,
		models.FieldWindSpeedMS,
	)
	if err != nil {
		return nil, err
	}
	return ScatterTempHumidityWind(logs), nil
}

// Conditions returns the condition histogram, most frequent first. Tie order is
// whatever the store produced.
func (e *Engine) Conditions(ctx context.Context) ([]ConditionCount, error) {
	groups, err := e.reader.CountBy(ctx, models.FieldConditionDescription)
	if err != nil {
		return nil, err
	}
	return ConditionFrequency(groups), nil
}

// Trend returns the temperature moving average with window TrendWindow.
func (e *Engine) Trend(ctx context.Context) ([]TrendPoint, error) {
	logs, err := e.reader.Timeline(ctx, models.FieldTemperatureCelsius)
	if err != nil {
		return nil, err
	}
	return MovingAverage(logs, TrendWindow), nil
}

// Extremes runs the six single-record lookups. Any lookup error aborts the whole view.
func (e *Engine) Extremes(ctx context.Context) (*Extremes, error) {
	out := &Extremes{}
	lookups := []struct {
		dst   **models.WeatherLog
		field models.Field
		dir   repository.Direction
	}{
		{&out.MaxTemperature, models.FieldTemperatureCelsius, repository.Descending},
		{&out.MinTemperature, models.FieldTemperatureCelsius, repository.Ascending},
		{&out.MaxWindSpeed, models.FieldWindSpeedMS, repository.Descending},
		{&out.MinWindSpeed, models.FieldWindSpeedMS, repository.Ascending},
		{&out.MaxHumidity, models.FieldHumidityPercent, repository.Descending},
		{&out.MinHumidity, models.FieldHumidityPercent, repository.Ascending},
	}
	for _, l := range lookups {
		log, err := e.reader.Extreme(ctx, l.field, l.dir)
		if err != nil {
			return nil, fmt.Errorf("extreme %s: %w", l.field, err)
		}
		*l.dst = log
	}
	return out, nil
}

// Summary computes the dashboard summary over the full series.
func (e *Engine) Summary(ctx context.Context) (*Summary, error) {
	logs, err := e.reader.Timeline(ctx,
		models.FieldTemperatureCelsius,
		models.FieldHumidityPercent,
		models.FieldWindSpeedMS,
		models.FieldRainProbabilityPercent,
	)
	if err != nil {
		return nil, err
	}
	return Summarize(logs), nil
}

// Summarize is the pure part of Summary. Logs must be sorted by timestamp ascending.
// Means over an empty series are absent rather than zero.
func Summarize(logs []models.WeatherLog) *Summary {
	s := &Summary{Count: int64(len(logs))}
	if len(logs) == 0 {
		return s
	}

	from, to := logs[0].Timestamp, logs[len(logs)-1].Timestamp
	s.From, s.To = &from, &to

	temps := make([]float64, len(logs))
	hums := make([]float64, len(logs))
	winds := make([]float64, len(logs))
	var rain []float64
	for i, l := range logs {
		temps[i] = l.TemperatureCelsius
		hums[i] = l.HumidityPercent
		winds[i] = l.WindSpeedMS
		if l.RainProbabilityPercent != nil {
			rain = append(rain, *l.RainProbabilityPercent)
		}
	}

	s.MeanTemperature = models.Float(Round2(stat.Mean(temps, nil)))
	s.MeanHumidity = models.Float(Round2(stat.Mean(hums, nil)))
	s.MeanWindSpeed = models.Float(Round2(stat.Mean(winds, nil)))
	if len(temps) > 1 {
		s.TemperatureStdDev = models.Float(Round2(stat.StdDev(temps, nil)))
	}
	if len(rain) > 0 {
		s.MeanRainProbability = models.Float(Round2(stat.Mean(rain, nil)))
		s.RainProbabilityCount = int64(len(rain))
	}
	return s
}
