package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"SAMPLE_HTTP_PORT"`
	} `yaml:"http"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
	} `yaml:"kafka"`
	Retries int     `yaml:"retries"`
	Ratio   float64 `yaml:"ratio" env:"-"`
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: \"9000\"\nretries: 2\nratio: 0.5\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DOTENV_FILE", "")
	t.Setenv("SAMPLE_HTTP_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("RATIO", "0.9")

	var cfg sampleConfig
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, 0.5, cfg.Ratio)
}

func TestLoadConfigDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RETRIES=7\n"), 0o600))

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DOTENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("RETRIES") })

	var cfg sampleConfig
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, 7, cfg.Retries)
}

func TestLoadConfigMissingExplicitDotenv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DOTENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	var cfg sampleConfig
	assert.Error(t, LoadConfig(&cfg))
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	assert.Error(t, LoadConfig(nil))
	assert.Error(t, LoadConfig(sampleConfig{}))
}

func TestLoadConfigBadValue(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DOTENV_FILE", "")
	t.Setenv("RETRIES", "many")

	var cfg sampleConfig
	err := LoadConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETRIES")
}
