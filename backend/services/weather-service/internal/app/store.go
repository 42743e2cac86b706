package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	appconfig "weatherwatch/backend/services/weather-service/internal/config"
	"weatherwatch/backend/services/weather-service/internal/db"
	"weatherwatch/backend/services/weather-service/internal/repository"
)

// openStore builds the configured record store. The returned *sql.DB is nil for the
// memory driver.
func openStore(cfg *appconfig.Config, logger *zap.Logger) (repository.WeatherLogStore, *sql.DB, error) {
	if cfg.Storage.Driver == appconfig.StorageMemory {
		logger.Warn("using in-memory record store; data is lost on restart")
		return repository.NewMemoryStore(clockwork.NewRealClock()), nil, nil
	}

	sqlDB, err := db.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	repo := repository.NewWeatherLogRepository(sqlDB)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repo, sqlDB, nil
}

func closeDB(sqlDB *sql.DB, logger *zap.Logger) {
	if sqlDB == nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close db", zap.Error(err))
	}
}
