package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one recorded pipeline batch.
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Trigger      string     `json:"trigger"`
	Status       string     `json:"status"`
	Requested    int        `json:"requested"`
	Scraped      int        `json:"scraped"`
	Stored       int        `json:"stored"`
	Failed       int        `json:"failed"`
	Duplicates   int        `json:"duplicates"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunResult holds the final counts written by CompleteRun.
type RunResult struct {
	Status     string
	Scraped    int
	Stored     int
	Failed     int
	Duplicates int
	Error      string
}

// CreateRun records a new running batch and returns its ID. trigger names
// what started it ("cli", "api", "schedule", "agent").
func (db *DB) CreateRun(ctx context.Context, trigger string, requested int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, trigger, status, requested)
		 VALUES ($1, $2, $3, $4)`,
		id, trigger, RunStatusRunning, requested,
	)
	if err != nil {
		return uuid.Nil, storeError("create run", err)
	}
	return id, nil
}

// CompleteRun stores the final counts and status of a run.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, result RunResult) error {
	var errMsg *string
	if result.Error != "" {
		errMsg = &result.Error
	}

	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, scraped = $2, stored = $3, failed = $4, duplicates = $5,
		     error_message = $6, completed_at = NOW()
		 WHERE id = $7`,
		result.Status, result.Scraped, result.Stored, result.Failed, result.Duplicates,
		errMsg, runID,
	)
	if err != nil {
		return storeError("complete run", err)
	}
	return nil
}

const runColumns = `id, trigger, status, requested, scraped, stored, failed, duplicates,
    error_message, created_at, completed_at`

func scanRun(row pgx.Row) (*Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Trigger, &r.Status, &r.Requested, &r.Scraped, &r.Stored,
		&r.Failed, &r.Duplicates, &r.ErrorMessage, &r.CreatedAt, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRun retrieves a pipeline run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	r, err := scanRun(db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("get run", err)
	}
	return r, nil
}

// ListRuns retrieves recent pipeline runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storeError("list runs", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, storeError("scan run", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list runs", err)
	}
	return runs, nil
}
