package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"go.uber.org/zap"

	"weatherwatch/backend/libs/logging"
	app "weatherwatch/backend/services/weather-service/internal/app"
	"weatherwatch/backend/services/weather-service/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger("weather-worker")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // best-effort flush

	w, err := app.NewWorker(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize worker", zap.Error(err))
	}
	defer w.Close()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker stopped with error", zap.Error(err))
	}
}
