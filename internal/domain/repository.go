// Package domain defines the core interfaces and types for the retention engine.
package domain

import (
	"context"
	"time"
)

// ArtifactRepository stores serialized model bundles.
// Artifacts are written by operators and read once at startup.
type ArtifactRepository interface {
	SaveArtifact(ctx context.Context, artifact *ModelArtifact) error
	GetArtifact(ctx context.Context, name string, version string) (*ModelArtifact, error)
	LatestArtifact(ctx context.Context, name string) (*ModelArtifact, error)
	ListArtifacts(ctx context.Context, name string) ([]*ModelArtifact, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `env:"DRIVER"`

	// SQLite specific
	SQLitePath string `env:"SQLITE_PATH"`

	// PostgreSQL specific
	PostgresHost     string `env:"POSTGRES_HOST"`
	PostgresPort     int    `env:"POSTGRES_PORT"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE"`

	// Connection pool settings
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME"`
}
