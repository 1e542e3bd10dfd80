// Package store is the Postgres-backed job ledger.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evokelektrique/trendyol-scrapper/internal/jobs"
)

const schema = `
CREATE TABLE IF NOT EXISTS scraper_jobs (
	id         UUID PRIMARY KEY,
	kind       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	state      TEXT NOT NULL,
	attempts   INT NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Store records job lifecycle transitions in Postgres. It implements
// jobs.Store.
type Store struct {
	pool *pgxpool.Pool
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	MaxConns int32
}

// New connects to Postgres and ensures the ledger table exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Insert(ctx context.Context, job *jobs.Job) error {
	query := `
		INSERT INTO scraper_jobs (id, kind, payload, state, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		job.ID, string(job.Kind), job.Payload, string(job.State), job.Attempts, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, job *jobs.Job) error {
	query := `
		UPDATE scraper_jobs
		SET state = $1, attempts = $2, last_error = $3, updated_at = $4
		WHERE id = $5
	`

	_, err := s.pool.Exec(ctx, query,
		string(job.State), job.Attempts, job.LastError, time.Now().UTC(), job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	return nil
}

func (s *Store) Stats(ctx context.Context) (*jobs.Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN state = 'queued' THEN 1 END) AS queued,
			COUNT(CASE WHEN state = 'active' THEN 1 END) AS active,
			COUNT(CASE WHEN state = 'completed' THEN 1 END) AS completed,
			COUNT(CASE WHEN state = 'dead' THEN 1 END) AS dead
		FROM scraper_jobs
	`

	stats := &jobs.Stats{}
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.TotalJobs, &stats.QueuedJobs, &stats.ActiveJobs,
		&stats.CompletedJobs, &stats.DeadJobs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}
