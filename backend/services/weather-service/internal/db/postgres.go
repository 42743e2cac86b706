package db

import (
	"database/sql"

	libdb "weatherwatch/backend/libs/db"
	appconfig "weatherwatch/backend/services/weather-service/internal/config"
)

// NewPostgres connects to Postgres using shared library helper.
func NewPostgres(cfg appconfig.DatabaseConfig) (*sql.DB, error) {
	return libdb.NewPostgresDB(cfg.DSN, libdb.PoolOptions{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
}
