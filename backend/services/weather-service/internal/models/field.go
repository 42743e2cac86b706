package models

// Field names a WeatherLog attribute. The value is the JSON name, the Column the SQL name.
type Field string

const (
	FieldID                     Field = "id"
	FieldCity                   Field = "city"
	FieldTimestamp              Field = "timestamp"
	FieldTemperatureCelsius     Field = "temperatureCelsius"
	FieldHumidityPercent        Field = "humidityPercent"
	FieldWindSpeedMS            Field = "windSpeedMS"
	FieldConditionDescription   Field = "conditionDescription"
	FieldRainProbabilityPercent Field = "rainProbabilityPercent"
	FieldCloudinessPercent      Field = "cloudinessPercent"
	FieldRainVolume3hMM         Field = "rainVolume3hMM"
	FieldWindGustMS             Field = "windGustMS"
	FieldCreatedAt              Field = "createdAt"
	FieldUpdatedAt              Field = "updatedAt"
)

// AllFields lists every WeatherLog field in storage column order.
var AllFields = []Field{
	FieldID,
	FieldCity,
	FieldTimestamp,
	FieldTemperatureCelsius,
	FieldHumidityPercent,
	FieldWindSpeedMS,
	FieldConditionDescription,
	FieldRainProbabilityPercent,
	FieldCloudinessPercent,
	FieldRainVolume3hMM,
	FieldWindGustMS,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// OptionalFields are the measurements older producers never send.
var OptionalFields = []Field{
	FieldRainProbabilityPercent,
	FieldCloudinessPercent,
	FieldRainVolume3hMM,
	FieldWindGustMS,
}

var columns = map[Field]string{
	FieldID:                     "id",
	FieldCity:                   "city",
	FieldTimestamp:              "recorded_at",
	FieldTemperatureCelsius:     "temperature_celsius",
	FieldHumidityPercent:        "humidity_percent",
	FieldWindSpeedMS:            "wind_speed_ms",
	FieldConditionDescription:   "condition_description",
	FieldRainProbabilityPercent: "rain_probability_percent",
	FieldCloudinessPercent:      "cloudiness_percent",
	FieldRainVolume3hMM:         "rain_volume_3h_mm",
	FieldWindGustMS:             "wind_gust_ms",
	FieldCreatedAt:              "created_at",
	FieldUpdatedAt:              "updated_at",
}

// Column returns the SQL column backing the field, or "" for unknown fields.
func (f Field) Column() string {
	return columns[f]
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	_, ok := columns[f]
	return ok
}

// Numeric reports whether the field holds a float measurement.
func (f Field) Numeric() bool {
	switch f {
	case FieldTemperatureCelsius, FieldHumidityPercent, FieldWindSpeedMS,
		FieldRainProbabilityPercent, FieldCloudinessPercent, FieldRainVolume3hMM, FieldWindGustMS:
		return true
	}
	return false
}

// Optional returns the optional measurement stored under f. The second result is false
// when f is not an optional field.
func (l *WeatherLog) Optional(f Field) (*float64, bool) {
	switch f {
	case FieldRainProbabilityPercent:
		return l.RainProbabilityPercent, true
	case FieldCloudinessPercent:
		return l.CloudinessPercent, true
	case FieldRainVolume3hMM:
		return l.RainVolume3hMM, true
	case FieldWindGustMS:
		return l.WindGustMS, true
	}
	return nil, false
}

// Number returns the numeric value of f and whether it is present.
func (l *WeatherLog) Number(f Field) (float64, bool) {
	switch f {
	case FieldTemperatureCelsius:
		return l.TemperatureCelsius, true
	case FieldHumidityPercent:
		return l.HumidityPercent, true
	case FieldWindSpeedMS:
		return l.WindSpeedMS, true
	}
	if v, ok := l.Optional(f); ok && v != nil {
		return *v, true
	}
	return 0, false
}

// Text returns the string value of a text field.
func (l *WeatherLog) Text(f Field) (string, bool) {
	switch f {
	case FieldID:
		return l.ID, true
	case FieldCity:
		return l.City, true
	case FieldConditionDescription:
		return l.ConditionDescription, true
	}
	return "", false
}

// Project returns a copy of l holding only the given fields. An empty list keeps everything.
func (l WeatherLog) Project(fields []Field) WeatherLog {
	if len(fields) == 0 {
		return l
	}
	var out WeatherLog
	for _, f := range fields {
		switch f {
		case FieldID:
			out.ID = l.ID
		case FieldCity:
			out.City = l.City
		case FieldTimestamp:
			out.Timestamp = l.Timestamp
		case FieldTemperatureCelsius:
			out.TemperatureCelsius = l.TemperatureCelsius
		case FieldHumidityPercent:
			out.HumidityPercent = l.HumidityPercent
		case FieldWindSpeedMS:
			out.WindSpeedMS = l.WindSpeedMS
		case FieldConditionDescription:
			out.ConditionDescription = l.ConditionDescription
		case FieldRainProbabilityPercent:
			out.RainProbabilityPercent = l.RainProbabilityPercent
		case FieldCloudinessPercent:
			out.CloudinessPercent = l.CloudinessPercent
		case FieldRainVolume3hMM:
			out.RainVolume3hMM = l.RainVolume3hMM
		case FieldWindGustMS:
			out.WindGustMS = l.WindGustMS
		case FieldCreatedAt:
			out.CreatedAt = l.CreatedAt
		case FieldUpdatedAt:
			out.UpdatedAt = l.UpdatedAt
		}
	}
	return out
}
