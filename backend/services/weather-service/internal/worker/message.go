package worker

import (
	"encoding/json"
	"fmt"

	"weatherwatch/backend/services/weather-service/internal/models"
)

// CollectorMessage is the snake_case payload collectors push onto the queue.
type CollectorMessage struct {
	City                   string               `json:"city"`
	Timestamp              *models.FlexibleTime `json:"timestamp"`
	TemperatureCelsius     *float64             `json:"temperature_celsius"`
	HumidityPercent        *float64             `json:"humidity_percent"`
	WindSpeedMS            *float64             `json:"wind_speed_m_s"`
	ConditionDescription   string               `json:"condition_description"`
	RainProbabilityPercent *float64             `json:"rain_probability_percent,omitempty"`
	CloudinessPercent      *float64             `json:"cloudiness_percent,omitempty"`
	RainVolume3hMM         *float64             `json:"rain_volume_3h_mm,omitempty"`
	WindGustMS             *float64             `json:"wind_gust_m_s,omitempty"`
}

// DecodeMessage parses a queue payload into a reading ready for ingestion.
func DecodeMessage(payload []byte) (models.RawReading, error) {
	var msg CollectorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return models.RawReading{}, fmt.Errorf("decode collector message: %w", err)
	}
	return models.RawReading{
		City:                   msg.City,
		Timestamp:              msg.Timestamp,
		TemperatureCelsius:     msg.TemperatureCelsius,
		HumidityPercent:        msg.HumidityPercent,
		WindSpeedMS:            msg.WindSpeedMS,
		ConditionDescription:   msg.ConditionDescription,
		RainProbabilityPercent: msg.RainProbabilityPercent,
		CloudinessPercent:      msg.CloudinessPercent,
		RainVolume3hMM:         msg.RainVolume3hMM,
		WindGustMS:             msg.WindGustMS,
	}, nil
}
