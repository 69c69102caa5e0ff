// Package repository provides the SQL-backed model artifact store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opensource-finance/retention/internal/domain"
)

var (
	ErrNotFound     = domain.ErrNotFound
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.ArtifactRepository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (*SQLRepository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveArtifact stores an artifact, replacing any existing name/version pair.
func (r *SQLRepository) SaveArtifact(ctx context.Context, a *domain.ModelArtifact) error {
	if a == nil || a.Name == "" || a.Version == "" {
		return fmt.Errorf("%w: artifact name and version are required", ErrInvalidInput)
	}
	if len(a.Payload) == 0 {
		return fmt.Errorf("%w: artifact payload is empty", ErrInvalidInput)
	}

	query := `
		INSERT INTO model_artifacts (name, version, format, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name, version) DO UPDATE SET
			format = excluded.format,
			payload = excluded.payload,
			created_at = excluded.created_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		a.Name, a.Version, a.Format, string(a.Payload), a.CreatedAt.UTC(),
	)
	return err
}

// GetArtifact retrieves one artifact version.
func (r *SQLRepository) GetArtifact(ctx context.Context, name string, version string) (*domain.ModelArtifact, error) {
	query := `
		SELECT name, version, format, payload, created_at
		FROM model_artifacts
		WHERE name = ? AND version = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, r.rebind(query), name, version))
}

// LatestArtifact retrieves the most recently stored version of an artifact.
func (r *SQLRepository) LatestArtifact(ctx context.Context, name string) (*domain.ModelArtifact, error) {
	query := `
		SELECT name, version, format, payload, created_at
		FROM model_artifacts
		WHERE name = ?
		ORDER BY created_at DESC, version DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, r.rebind(query), name))
}

// ListArtifacts lists every stored version of an artifact, newest first.
// Payloads are not loaded.
func (r *SQLRepository) ListArtifacts(ctx context.Context, name string) ([]*domain.ModelArtifact, error) {
	query := `
		SELECT name, version, format, created_at
		FROM model_artifacts
		WHERE name = ?
		ORDER BY created_at DESC, version DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*domain.ModelArtifact
	for rows.Next() {
		var a domain.ModelArtifact
		if err := rows.Scan(&a.Name, &a.Version, &a.Format, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, &a)
	}

	return artifacts, rows.Err()
}

func (r *SQLRepository) scanOne(row *sql.Row) (*domain.ModelArtifact, error) {
	var a domain.ModelArtifact
	var payload string

	err := row.Scan(&a.Name, &a.Version, &a.Format, &payload, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Payload = []byte(payload)
	return &a, nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
