package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/export"
	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/observability"
	"weatherwatch/backend/services/weather-service/internal/service"
)

// ExportHandler serves the CSV and XLSX downloads.
type ExportHandler struct {
	query    *service.QueryService
	location *time.Location
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewExportHandler returns handler. location localizes CSV timestamps.
func NewExportHandler(
	query *service.QueryService,
	location *time.Location,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ExportHandler {
	if location == nil {
		location = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	return &ExportHandler{
		query:    query,
		location: location,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// CSV handles GET /weather/export.csv.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatCSV, func(logs []models.WeatherLog) ([]byte, error) {
		return export.CSV(logs, export.CSVOptions{Location: h.location})
	})
}

// XLSX handles GET /weather/export.xlsx.
func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatXLSX, export.XLSX)
}

func (h *ExportHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	format export.Format,
	encode func([]models.WeatherLog) ([]byte, error),
) {
	logs, err := h.query.LogsForExport(r.Context())
	if err != nil {
		h.metrics.Exports.WithLabelValues(format.Name, "error").Inc()
		writeServiceError(w, h.logger, "failed to load logs for export", err)
		return
	}
	if len(logs) == 0 {
		h.metrics.Exports.WithLabelValues(format.Name, "empty").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	started := h.clock.Now()
	body, err := encode(logs)
	h.metrics.ExportDuration.WithLabelValues(format.Name).Observe(h.clock.Since(started).Seconds())
	if err != nil {
		h.metrics.Exports.WithLabelValues(format.Name, "error").Inc()
		var encErr *export.EncodingError
		if errors.As(err, &encErr) {
			h.logger.Error("export encoding failed", zap.String("format", format.Name), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to encode export")
			return
		}
		writeServiceError(w, h.logger, "failed to build export", err)
		return
	}
	h.metrics.Exports.WithLabelValues(format.Name, "ok").Inc()
	h.metrics.ExportRows.Observe(float64(len(logs)))

	w.Header().Set("Content-Type", format.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(format, h.clock.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
