// Package db provides PostgreSQL storage for normalized job postings,
// pipeline runs and posting embeddings.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, storeError("connect to database", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeError("ping database", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return storeError("ping database", err)
	}
	return nil
}

// Initialize recreates the jobs table and its indexes, discarding every stored
// posting and embedding. The pipeline_runs table is created if missing and
// otherwise kept. Running it twice leaves the same empty schema.
func (db *DB) Initialize(ctx context.Context) error {
	for _, stmt := range []string{dropJobsSQL, createJobsSQL, createRunsSQL} {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return storeError("initialize schema", err)
		}
	}
	return nil
}

// EnsureEmbeddingSchema enables pgvector and creates the job_embeddings table.
// It is separate from Initialize so that a server without the vector
// extension can still store postings.
func (db *DB) EnsureEmbeddingSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, createEmbeddingsSQL); err != nil {
		return storeError("create embedding schema", err)
	}
	return nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}
