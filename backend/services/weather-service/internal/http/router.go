package httpserver

import (
	"net/http"

	"weatherwatch/backend/services/weather-service/internal/http/handlers"
	"weatherwatch/backend/services/weather-service/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	LogsHandler    *handlers.LogsHandler
	ExportHandler  *handlers.ExportHandler
	ChartHandler   *handlers.ChartHandler
	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler
}

// NewRouter wires HTTP routes. authMiddleware guards everything under /weather/.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))
	if deps.MetricsHandler != nil {
		mux.Handle("/metrics", method(http.MethodGet, deps.MetricsHandler))
	}

	authenticated := func(handler http.Handler) http.Handler {
		return middleware.Chain(handler, authMiddleware)
	}

	mux.Handle("/weather/logs", authenticated(methods(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(deps.LogsHandler.Create),
		http.MethodGet:  http.HandlerFunc(deps.LogsHandler.List),
	})))

	mux.Handle("/weather/export.csv", authenticated(method(http.MethodGet, http.HandlerFunc(deps.ExportHandler.CSV))))
	mux.Handle("/weather/export.xlsx", authenticated(method(http.MethodGet, http.HandlerFunc(deps.ExportHandler.XLSX))))

	for name, h := range deps.ChartHandler.Views() {
		mux.Handle("/weather/chart/"+name, authenticated(method(http.MethodGet, h)))
	}

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return methods(map[string]http.Handler{expected: handler})
}

func methods(handlers map[string]http.Handler) http.Handler {
	allow := ""
	for m := range handlers {
		if allow != "" {
			allow += ", "
		}
		allow += m
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
