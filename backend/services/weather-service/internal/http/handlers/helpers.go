package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/repository"
	"weatherwatch/backend/services/weather-service/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	case errors.Is(err, repository.ErrStoreUnavailable):
		logger.Error(msg, zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "record store unavailable")
	default:
		logger.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}
