package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/analytics"
)

// ChartHandler exposes the analytics engine under /weather/chart/.
type ChartHandler struct {
	engine *analytics.Engine
	logger *zap.Logger
}

// NewChartHandler returns handler.
func NewChartHandler(engine *analytics.Engine, logger *zap.Logger) *ChartHandler {
	return &ChartHandler{engine: engine, logger: logger}
}

// Views maps chart names to handlers, for registration under /weather/chart/{name}.
func (h *ChartHandler) Views() map[string]http.HandlerFunc {
	e := h.engine
	return map[string]http.HandlerFunc{
		"temperature":           serveChart(h.logger, e.Temperature),
		"humidity":              serveChart(h.logger, e.Humidity),
		"wind":                  serveChart(h.logger, e.Wind),
		"rain":                  serveChart(h.logger, e.Rain),
		"temp-vs-humidity":      serveChart(h.logger, e.TempVsHumidity),
		"temp-humidity":         serveChart(h.logger, e.TempHumidity),
		"scatter-temp-humidity": serveChart(h.logger, e.ScatterTempHumidityWind),
		"conditions":            serveChart(h.logger, e.Conditions),
		"trend":                 serveChart(h.logger, e.Trend),
		"extremes":              serveChart(h.logger, e.Extremes),
		"summary":               serveChart(h.logger, e.Summary),
	}
}

func serveChart[T any](logger *zap.Logger, load func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := load(r.Context())
		if err != nil {
			writeServiceError(w, logger, "failed to build chart", err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}
