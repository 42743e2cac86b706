package app

import (
	"context"
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/analytics"
	appconfig "weatherwatch/backend/services/weather-service/internal/config"
	"weatherwatch/backend/services/weather-service/internal/http"
	"weatherwatch/backend/services/weather-service/internal/http/handlers"
	"weatherwatch/backend/services/weather-service/internal/http/middleware"
	"weatherwatch/backend/services/weather-service/internal/observability"
	"weatherwatch/backend/services/weather-service/internal/service"
)

// App wires dependencies for the weather HTTP service.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	store, sqlDB, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	ingestion := service.NewIngestionService(store, metrics, logger)
	query := service.NewQueryService(store)
	engine := analytics.NewEngine(query)

	deps := httpserver.RouterDeps{
		LogsHandler:    handlers.NewLogsHandler(ingestion, query, logger),
		ExportHandler:  handlers.NewExportHandler(query, cfg.ExportLocation(), clockwork.NewRealClock(), metrics, logger),
		ChartHandler:   handlers.NewChartHandler(engine, logger),
		HealthHandler:  handlers.NewHealthHandler(),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("bearer verification disabled; AUTH_JWT_SECRET is empty")
	}
	router := httpserver.NewRouter(deps, middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger, middleware.RequestLogger(logger))

	return &App{
		server: server,
		db:     sqlDB,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	closeDB(a.db, a.logger)
}
