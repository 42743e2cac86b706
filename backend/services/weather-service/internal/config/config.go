package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "weatherwatch/backend/libs/config"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	SourceRedis = "redis"
	SourceKafka = "kafka"
)

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"WEATHER_HTTP_PORT"`
}

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"WEATHER_STORAGE_DRIVER"`
}

// DatabaseConfig holds Postgres settings.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn" env:"WEATHER_POSTGRES_DSN"`
	MaxOpenConns int    `yaml:"maxOpenConns" env:"WEATHER_POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"maxIdleConns" env:"WEATHER_POSTGRES_MAX_IDLE_CONNS"`
}

// AuthConfig enables bearer verification when Secret is set.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret" env:"AUTH_JWT_SECRET"`
}

// RedisConfig describes the collector queue list.
type RedisConfig struct {
	Addr         string `yaml:"addr" env:"WEATHER_REDIS_ADDR"`
	Password     string `yaml:"password" env:"WEATHER_REDIS_PASSWORD"`
	DB           int    `yaml:"db" env:"WEATHER_REDIS_DB"`
	Queue        string `yaml:"queue" env:"WEATHER_REDIS_QUEUE"`
	BlockSeconds int    `yaml:"blockSeconds" env:"WEATHER_REDIS_BLOCK_SECONDS"`
}

// KafkaConfig describes the collector topic.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"WEATHER_KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"WEATHER_KAFKA_TOPIC"`
	GroupID string   `yaml:"groupId" env:"WEATHER_KAFKA_GROUP_ID"`
}

// IngestConfig tunes the queue worker.
type IngestConfig struct {
	Source            string `yaml:"source" env:"WEATHER_INGEST_SOURCE"`
	MaxAttempts       int    `yaml:"maxAttempts" env:"WEATHER_INGEST_MAX_ATTEMPTS"`
	RetryDelaySeconds int    `yaml:"retryDelaySeconds" env:"WEATHER_INGEST_RETRY_DELAY_SECONDS"`
}

// ExportConfig controls export rendering.
type ExportConfig struct {
	Timezone string `yaml:"timezone" env:"WEATHER_EXPORT_TIMEZONE"`
}

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Export   ExportConfig   `yaml:"export"`
}

func defaults() *Config {
	return &Config{
		HTTP:    HTTPConfig{Port: "8080"},
		Storage: StorageConfig{Driver: StoragePostgres},
		Redis: RedisConfig{
			Queue:        "weather_data_queue",
			BlockSeconds: 30,
		},
		Kafka: KafkaConfig{
			Topic:   "weather-readings",
			GroupID: "weather-worker",
		},
		Ingest: IngestConfig{
			Source:            SourceRedis,
			MaxAttempts:       3,
			RetryDelaySeconds: 5,
		},
		Export: ExportConfig{Timezone: "America/Recife"},
	}
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.DSN == "" {
			return errors.New("config: database DSN is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	c.Ingest.Source = strings.ToLower(strings.TrimSpace(c.Ingest.Source))
	if c.Ingest.Source != SourceRedis && c.Ingest.Source != SourceKafka {
		return fmt.Errorf("config: unknown ingest source %q", c.Ingest.Source)
	}
	if c.Ingest.MaxAttempts <= 0 {
		c.Ingest.MaxAttempts = 3
	}
	if c.Ingest.RetryDelaySeconds < 0 {
		return errors.New("config: ingest retry delay must not be negative")
	}

	if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
		return fmt.Errorf("config: export timezone: %w", err)
	}
	return nil
}

// ValidateWorker checks the settings only the queue worker needs.
func (c *Config) ValidateWorker() error {
	switch c.Ingest.Source {
	case SourceRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("config: redis addr is required for the redis source")
		}
	case SourceKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("config: kafka brokers are required for the kafka source")
		}
		if c.Kafka.Topic == "" {
			return errors.New("config: kafka topic is required for the kafka source")
		}
	}
	return nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ExportLocation returns the timezone CSV timestamps are rendered in.
func (c *Config) ExportLocation() *time.Location {
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RetryDelay converts the configured delay to a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Ingest.RetryDelaySeconds) * time.Second
}

// RedisBlock bounds each BLPOP call.
func (c *Config) RedisBlock() time.Duration {
	if c.Redis.BlockSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Redis.BlockSeconds) * time.Second
}
