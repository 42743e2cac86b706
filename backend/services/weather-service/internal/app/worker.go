package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	libredis "weatherwatch/backend/libs/redis"
	appconfig "weatherwatch/backend/services/weather-service/internal/config"
	httpserver "weatherwatch/backend/services/weather-service/internal/http"
	"weatherwatch/backend/services/weather-service/internal/http/handlers"
	"weatherwatch/backend/services/weather-service/internal/observability"
	"weatherwatch/backend/services/weather-service/internal/queue"
	"weatherwatch/backend/services/weather-service/internal/service"
	"weatherwatch/backend/services/weather-service/internal/worker"
)

// Worker wires dependencies for the queue ingestion worker. It also serves /health and
// /metrics so the worker can be scraped like the API.
type Worker struct {
	worker *worker.Worker
	server *httpserver.Server
	source queue.Source
	db     *sql.DB
	logger *zap.Logger
}

// NewWorker builds the worker graph for the configured ingest source.
func NewWorker(cfg *appconfig.Config, logger *zap.Logger) (*Worker, error) {
	if err := cfg.ValidateWorker(); err != nil {
		return nil, err
	}

	source, err := openSource(cfg)
	if err != nil {
		return nil, err
	}

	store, sqlDB, err := openStore(cfg, logger)
	if err != nil {
		source.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	ingestion := service.NewIngestionService(store, metrics, logger)
	w := worker.New(source, ingestion, metrics, logger, worker.Options{
		SourceName:  cfg.Ingest.Source,
		MaxAttempts: cfg.Ingest.MaxAttempts,
		RetryDelay:  cfg.RetryDelay(),
		Clock:       clockwork.NewRealClock(),
	})

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Worker{
		worker: w,
		server: httpserver.NewServer(cfg.HTTPAddress(), mux, logger),
		source: source,
		db:     sqlDB,
		logger: logger,
	}, nil
}

func openSource(cfg *appconfig.Config) (queue.Source, error) {
	switch cfg.Ingest.Source {
	case appconfig.SourceKafka:
		return queue.NewKafkaSource(queue.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
	case appconfig.SourceRedis:
		client, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return queue.NewRedisListSource(client, cfg.Redis.Queue, cfg.RedisBlock()), nil
	default:
		return nil, fmt.Errorf("unknown ingest source %q", cfg.Ingest.Source)
	}
}

// Run consumes messages until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- w.server.Run(ctx)
	}()

	err := w.worker.Run(ctx)
	cancel()
	if srvErr := <-serverErr; srvErr != nil {
		w.logger.Error("metrics server stopped with error", zap.Error(srvErr))
	}
	return err
}

// Close releases acquired resources.
func (w *Worker) Close() {
	if err := w.source.Close(); err != nil {
		w.logger.Warn("failed to close queue source", zap.Error(err))
	}
	closeDB(w.db, w.logger)
}
