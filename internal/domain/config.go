package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "RETENTION_"

// Config holds the complete service configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server" envPrefix:"SERVER_"`

	// Model artifacts
	Model ModelConfig `json:"model" envPrefix:"MODEL_"`

	// Component configurations
	Repository RepositoryConfig `json:"repository" envPrefix:"REPOSITORY_"`
	Cache      CacheConfig      `json:"cache" envPrefix:"CACHE_"`

	// Observability
	Logging LoggingConfig `json:"logging" envPrefix:"LOG_"`
	Tracing TracingConfig `json:"tracing" envPrefix:"TRACING_"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host" env:"HOST"`
	Port         int    `json:"port" env:"PORT"`
	ReadTimeout  int    `json:"readTimeout" env:"READ_TIMEOUT"`   // seconds
	WriteTimeout int    `json:"writeTimeout" env:"WRITE_TIMEOUT"` // seconds

	// AllowedOrigins lists the browser origins allowed to call the API.
	// Empty allows none; "*" allows any.
	AllowedOrigins []string `json:"allowedOrigins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Model artifact sources.
const (
	ModelSourceFile     = "file"
	ModelSourceSQLite   = "sqlite"
	ModelSourcePostgres = "postgres"
)

// ModelConfig says where the clustering model and its scaler come from.
type ModelConfig struct {
	// Source is "file", "sqlite" or "postgres"
	Source string `json:"source" env:"SOURCE"`

	// Path of the bundle file when Source is "file"
	Path string `json:"path" env:"PATH"`

	// Name and Version select the stored artifact; empty Version means latest
	Name    string `json:"name" env:"NAME"`
	Version string `json:"version" env:"VERSION"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `json:"format" env:"FORMAT"` // json, text
}

// TracingConfig holds OpenTelemetry settings. When Enabled is false no
// spans are recorded and the request id stands in for the trace id.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" env:"ENABLED"`
	ServiceName string  `json:"serviceName" env:"SERVICE_NAME"`
	SampleRatio float64 `json:"sampleRatio" env:"SAMPLE_RATIO"` // 0..1, root spans only
}

// DefaultConfig returns the default configuration: bundle file on disk,
// in-process cache, SQLite for the artifact store.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Model: ModelConfig{
			Source: ModelSourceFile,
			Path:   "./models/segmentation.yaml",
			Name:   "customer-segmentation",
		},
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./retention.db",
		},
		Cache: CacheConfig{
			Type:          "memory",
			LocalMaxSize:  10000,
			LocalTTL:      5 * time.Minute,
			AssignmentTTL: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "retention",
			SampleRatio: 1,
		},
	}
}

// LoadConfig starts from DefaultConfig, loads the given .env files (missing
// files are skipped) and overlays RETENTION_* environment variables.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Model.Source {
	case ModelSourceFile:
		if c.Model.Path == "" {
			return fmt.Errorf("model path is required for source %q", c.Model.Source)
		}
	case ModelSourceSQLite, ModelSourcePostgres:
		if c.Model.Name == "" {
			return fmt.Errorf("model name is required for source %q", c.Model.Source)
		}
	default:
		return fmt.Errorf("unsupported model source: %s", c.Model.Source)
	}

	switch c.Cache.Type {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("invalid tracing sample ratio: %v", c.Tracing.SampleRatio)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}
