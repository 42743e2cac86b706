package models

import "time"

// WeatherLog is one immutable sensor reading for a city at a point in time.
// Optional measurements are pointers: nil means the producer did not report them.
type WeatherLog struct {
	ID                     string    `db:"id" json:"id,omitempty"`
	City                   string    `db:"city" json:"city"`
	Timestamp              time.Time `db:"recorded_at" json:"timestamp"`
	TemperatureCelsius     float64   `db:"temperature_celsius" json:"temperatureCelsius"`
	HumidityPercent        float64   `db:"humidity_percent" json:"humidityPercent"`
	WindSpeedMS            float64   `db:"wind_speed_ms" json:"windSpeedMS"`
	ConditionDescription   string    `db:"condition_description" json:"conditionDescription"`
	RainProbabilityPercent *float64  `db:"rain_probability_percent" json:"rainProbabilityPercent,omitempty"`
	CloudinessPercent      *float64  `db:"cloudiness_percent" json:"cloudinessPercent,omitempty"`
	RainVolume3hMM         *float64  `db:"rain_volume_3h_mm" json:"rainVolume3hMM,omitempty"`
	WindGustMS             *float64  `db:"wind_gust_ms" json:"windGustMS,omitempty"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// Float returns a pointer to v, for building optional measurements.
func Float(v float64) *float64 {
	return &v
}
