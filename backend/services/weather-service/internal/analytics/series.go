// Package analytics derives chart-ready series from weather logs.
//
// Every function here is pure: it takes the records it needs and returns a fresh slice.
// Empty input yields an empty, non-nil slice so JSON callers see [] rather than null.
package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/repository"
)

// TrendWindow is the moving-average window size.
const TrendWindow = 5

// TemperaturePoint is one sample of the temperature timeline.
type TemperaturePoint struct {
	Timestamp          time.Time `json:"timestamp"`
	TemperatureCelsius float64   `json:"temperatureCelsius"`
}

// HumidityPoint is one sample of the humidity timeline.
type HumidityPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	HumidityPercent float64   `json:"humidityPercent"`
}

// WindPoint is one sample of the wind timeline.
type WindPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	WindSpeedMS float64   `json:"windSpeedMS"`
}

// RainPoint is one sample of the rain probability timeline; a nil value was not reported.
type RainPoint struct {
	Timestamp              time.Time `json:"timestamp"`
	RainProbabilityPercent *float64  `json:"rainProbabilityPercent"`
}

// XYPoint pairs temperature (x) with humidity (y) for scatter plots.
type XYPoint struct {
	Timestamp time.Time `json:"timestamp"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
}

// TempHumidityPoint feeds the combined temperature/humidity chart.
type TempHumidityPoint struct {
	Timestamp          time.Time `json:"timestamp"`
	TemperatureCelsius float64   `json:"temperatureCelsius"`
	HumidityPercent    float64   `json:"humidityPercent"`
}

// ScatterPoint carries temperature, humidity and wind for the three-way scatter plot.
type ScatterPoint struct {
	Timestamp          time.Time `json:"timestamp"`
	TemperatureCelsius float64   `json:"temperatureCelsius"`
	HumidityPercent    float64   `json:"humidityPercent"`
	WindSpeedMS        float64   `json:"windSpeedMS"`
}

// TrendPoint is one moving-average sample.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	MovingAvg float64   `json:"movingAvg"`
}

// ConditionCount is one bar of the condition histogram.
type ConditionCount struct {
	Condition string `json:"condition"`
	Count     int64  `json:"count"`
}

func TemperatureTimeline(logs []models.WeatherLog) []TemperaturePoint {
	out := make([]TemperaturePoint, len(logs))
	for i, l := range logs {
		out[i] = TemperaturePoint{Timestamp: l.Timestamp, TemperatureCelsius: l.TemperatureCelsius}
	}
	return out
}

func HumidityTimeline(logs []models.WeatherLog) []HumidityPoint {
	out := make([]HumidityPoint, len(logs))
	for i, l := range logs {
		out[i] = HumidityPoint{Timestamp: l.Timestamp, HumidityPercent: l.HumidityPercent}
	}
	return out
}

func WindTimeline(logs []models.WeatherLog) []WindPoint {
	out := make([]WindPoint, len(logs))
	for i, l := range logs {
		out[i] = WindPoint{Timestamp: l.Timestamp, WindSpeedMS: l.WindSpeedMS}
	}
	return out
}

func RainTimeline(logs []models.WeatherLog) []RainPoint {
	out := make([]RainPoint, len(logs))
	for i, l := range logs {
		out[i] = RainPoint{Timestamp: l.Timestamp, RainProbabilityPercent: l.RainProbabilityPercent}
	}
	return out
}

func TempVsHumidity(logs []models.WeatherLog) []XYPoint {
	out := make([]XYPoint, len(logs))
	for i, l := range logs {
		out[i] = XYPoint{Timestamp: l.Timestamp, X: l.TemperatureCelsius, Y: l.HumidityPercent}
	}
	return out
}

func TempHumidity(logs []models.WeatherLog) []TempHumidityPoint {
	out := make([]TempHumidityPoint, len(logs))
	for i, l := range logs {
		out[i] = TempHumidityPoint{
			Timestamp:          l.Timestamp,
			TemperatureCelsius: l.TemperatureCelsius,
			HumidityPercent:    l.HumidityPercent,
		}
	}
	return out
}

func ScatterTempHumidityWind(logs []models.WeatherLog) []ScatterPoint {
	out := make([]ScatterPoint, len(logs))
	for i, l := range logs {
		out[i] = ScatterPoint{
			Timestamp:          l.Timestamp,
			TemperatureCelsius: l.TemperatureCelsius,
			HumidityPercent:    l.HumidityPercent,
			WindSpeedMS:        l.WindSpeedMS,
		}
	}
	return out
}

// MovingAverage computes the trailing mean of temperature over at most window points
// ending at each index. The window grows from 1 at the start of the series, so the
// result never looks ahead. Logs must already be sorted by timestamp ascending.
func MovingAverage(logs []models.WeatherLog, window int) []TrendPoint {
	if window < 1 {
		window = 1
	}
	temps := make([]float64, len(logs))
	for i, l := range logs {
		temps[i] = l.TemperatureCelsius
	}

	out := make([]TrendPoint, len(logs))
	for i := range logs {
		start := max(0, i-window+1)
		out[i] = TrendPoint{
			Timestamp: logs[i].Timestamp,
			MovingAvg: Round2(stat.Mean(temps[start:i+1], nil)),
		}
	}
	return out
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ConditionFrequency turns grouped counts into histogram bars, keeping their order.
func ConditionFrequency(groups []repository.GroupCount) []ConditionCount {
	out := make([]ConditionCount, len(groups))
	for i, g := range groups {
		out[i] = ConditionCount{Condition: g.Key, Count: g.Count}
	}
	return out
}
