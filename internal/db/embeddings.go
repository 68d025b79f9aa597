package db

import (
	"context"
	"fmt"

	"github.com/jonathan/job-harvester/internal/types"
	"github.com/pgvector/pgvector-go"
)

// SimilarJob is a posting returned by a nearest-neighbour lookup.
type SimilarJob struct {
	Job      types.JobPosting `json:"job"`
	Distance float64          `json:"distance"`
}

// SaveEmbedding stores or replaces the embedding of a posting.
func (db *DB) SaveEmbedding(ctx context.Context, jobID, model string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("empty embedding for job %s", jobID)
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_embeddings (job_id, model, embedding)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id) DO UPDATE SET model = $2, embedding = $3, created_at = NOW()`,
		jobID, model, pgvector.NewVector(vec),
	)
	if err != nil {
		return storeError("save embedding for job "+jobID, err)
	}
	return nil
}

// JobsWithoutEmbedding returns up to limit postings that have no embedding
// for model.
func (db *DB) JobsWithoutEmbedding(ctx context.Context, model string, limit int) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE NOT EXISTS (
		     SELECT 1 FROM job_embeddings e WHERE e.job_id = jobs.job_id AND e.model = $1
		 )
		 ORDER BY created_at, job_id
		 LIMIT $2`,
		model, limit,
	)
	if err != nil {
		return nil, storeError("list jobs without embedding", err)
	}
	defer rows.Close()

	var jobs []types.JobPosting
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, storeError("scan job", err)
		}
		jobs = append(jobs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list jobs without embedding", err)
	}
	return jobs, nil
}

// SimilarJobs returns the k postings whose model embeddings are closest to
// query by Euclidean distance, nearest first.
func (db *DB) SimilarJobs(ctx context.Context, model string, query []float32, k int) ([]SimilarJob, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}
	if k <= 0 {
		k = DefaultSearchLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+`, nn.distance
		 FROM jobs
		 JOIN (
		     SELECT job_id, embedding <-> $1 AS distance
		     FROM job_embeddings
		     WHERE model = $2
		     ORDER BY distance
		     LIMIT $3
		 ) AS nn USING (job_id)
		 ORDER BY nn.distance`,
		pgvector.NewVector(query), model, k,
	)
	if err != nil {
		return nil, storeError("query similar jobs", err)
	}
	defer rows.Close()

	out := []SimilarJob{}
	for rows.Next() {
		var distance float64
		p, err := scanJob(rows, &distance)
		if err != nil {
			return nil, storeError("scan similar job", err)
		}
		out = append(out, SimilarJob{Job: *p, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("query similar jobs", err)
	}
	return out, nil
}
