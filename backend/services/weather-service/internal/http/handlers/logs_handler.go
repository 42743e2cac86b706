package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/http/middleware"
	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/service"
)

const maxBodyBytes = 1 << 20

// LogsHandler serves /weather/logs.
type LogsHandler struct {
	ingestion *service.IngestionService
	query     *service.QueryService
	logger    *zap.Logger
}

// NewLogsHandler returns handler.
func NewLogsHandler(ingestion *service.IngestionService, query *service.QueryService, logger *zap.Logger) *LogsHandler {
	return &LogsHandler{
		ingestion: ingestion,
		query:     query,
		logger:    logger,
	}
}

// Create handles POST /weather/logs.
func (h *LogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var reading models.RawReading
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&reading); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	log, err := h.ingestion.CreateLog(r.Context(), reading)
	if err != nil {
		writeServiceError(w, h.logger, "failed to store weather log", err)
		return
	}
	if sub, ok := middleware.SubjectFromContext(r.Context()); ok {
		h.logger.Info("weather log submitted",
			zap.String("id", log.ID),
			zap.String("city", log.City),
			zap.String("subject", sub),
		)
	}
	writeJSON(w, http.StatusCreated, log)
}

// List handles GET /weather/logs?page=&limit=. A limit above the maximum is capped.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page", 1)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", service.DefaultPageLimit)
	if !ok {
		return
	}
	if limit > service.MaxPageLimit {
		limit = service.MaxPageLimit
	}

	logs, err := h.query.ListLogs(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, h.logger, "failed to list weather logs", err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}
