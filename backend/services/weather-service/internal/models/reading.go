package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawReading is a reading as received from a producer, before validation.
// Required numbers are pointers so that an explicit 0 differs from a missing field.
type RawReading struct {
	City                   string        `json:"city" validate:"required"`
	Timestamp              *FlexibleTime `json:"timestamp" validate:"required"`
	TemperatureCelsius     *float64      `json:"temperatureCelsius" validate:"required,finite,gte=-100,lte=100"`
	HumidityPercent        *float64      `json:"humidityPercent" validate:"required,finite,gte=0,lte=100"`
	WindSpeedMS            *float64      `json:"windSpeedMS" validate:"required,finite,gte=0"`
	ConditionDescription   string        `json:"conditionDescription" validate:"required"`
	RainProbabilityPercent *float64      `json:"rainProbabilityPercent,omitempty" validate:"omitempty,finite,gte=0,lte=100"`
	CloudinessPercent      *float64      `json:"cloudinessPercent,omitempty" validate:"omitempty,finite,gte=0,lte=100"`
	RainVolume3hMM         *float64      `json:"rainVolume3hMM,omitempty" validate:"omitempty,finite,gte=0"`
	WindGustMS             *float64      `json:"windGustMS,omitempty" validate:"omitempty,finite,gte=0"`
}

// FlexibleTime decodes either Unix epoch seconds or an ISO-8601 string.
// The collector historically sent epoch integers, newer producers send ISO text.
type FlexibleTime struct {
	time.Time
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Epoch seconds accepted by ParseTimestamp: years 0001 through 9999, the range
// RFC 3339 can render.
var (
	minEpoch = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxEpoch = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// ParseTimestamp converts an epoch-seconds or ISO-8601 value into a UTC instant.
// Strings without a zone are read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("timestamp: empty value")
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs < minEpoch || secs > maxEpoch {
			return time.Time{}, fmt.Errorf("timestamp: epoch %d out of range", secs)
		}
		return time.Unix(secs, 0).UTC(), nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || secs < float64(minEpoch) || secs > float64(maxEpoch) {
			return time.Time{}, fmt.Errorf("timestamp: epoch %q out of range", raw)
		}
		whole := math.Floor(secs)
		return time.Unix(int64(whole), int64((secs-whole)*float64(time.Second))).UTC(), nil
	}
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: unsupported format %q", raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexibleTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = ts
	return nil
}

// MarshalJSON renders the instant as RFC 3339.
func (t FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// NewFlexibleTime wraps ts.
func NewFlexibleTime(ts time.Time) *FlexibleTime {
	return &FlexibleTime{Time: ts}
}
