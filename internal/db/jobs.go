package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-harvester/internal/types"
)

// DefaultSearchLimit is used when SearchOptions.Limit is not positive.
const DefaultSearchLimit = 5

// SearchOptions filters SearchJobs. Empty filters (or the literal "None")
// match everything.
type SearchOptions struct {
	Title    string
	Location string
	Limit    int
}

// InsertJob stores p if no posting with the same job ID exists. A duplicate
// returns *DuplicateKeyError and leaves the stored row unchanged. On success
// p.CreatedAt is set to the stored timestamp.
func (db *DB) InsertJob(ctx context.Context, p *types.JobPosting) error {
	if p == nil || strings.TrimSpace(p.JobID) == "" {
		return fmt.Errorf("job ID is required")
	}

	education, err := encodeList(p.Education, true)
	if err != nil {
		return fmt.Errorf("failed to encode education for job %s: %w", p.JobID, err)
	}
	skills, err := encodeList(p.Skills, false)
	if err != nil {
		return fmt.Errorf("failed to encode skills for job %s: %w", p.JobID, err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs (job_id, job_url, source, title, company_name,
		                   location, city, state, country, remote,
		                   industry, seniority_level, employment_type, job_function,
		                   salary_raw, salary_min, salary_max, salary_avg,
		                   yoe_raw, yoe_min, yoe_max, yoe_avg,
		                   education, skills, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		         $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		 ON CONFLICT (job_id) DO NOTHING
		 RETURNING created_at`,
		p.JobID, p.JobURL, p.Source, p.Title, p.CompanyName,
		p.Location.Location, p.City, p.State, p.Country, p.Remote,
		p.Industry, p.SeniorityLevel, p.EmploymentType, p.JobFunction,
		p.Salary.Raw, p.Salary.Min, p.Salary.Max, p.Salary.Avg,
		p.YOE.Raw, p.YOE.Min, p.YOE.Max, p.YOE.Avg,
		*education, skills, p.Description,
	).Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &DuplicateKeyError{JobID: p.JobID}
		}
		return storeError("insert job "+p.JobID, err)
	}
	return nil
}

// GetJobByID returns the posting with jobID, or nil if none is stored.
func (db *DB) GetJobByID(ctx context.Context, jobID string) (*types.JobPosting, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = $1`, jobID)
	p, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("get job "+jobID, err)
	}
	return p, nil
}

// GetAllJobs returns every stored posting in insertion order.
func (db *DB) GetAllJobs(ctx context.Context) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at, job_id`)
	if err != nil {
		return nil, storeError("list jobs", err)
	}
	defer rows.Close()

	jobs := []types.JobPosting{}
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, storeError("scan job", err)
		}
		jobs = append(jobs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list jobs", err)
	}
	return jobs, nil
}

// SearchJobs streams postings in insertion order and returns the first
// opts.Limit whose title and location contain the given filters,
// case-insensitively. Scanning stops as soon as the limit is reached.
func (db *DB) SearchJobs(ctx context.Context, opts SearchOptions) ([]types.JobPosting, error) {
	title := NormalizeFilter(opts.Title)
	location := NormalizeFilter(opts.Location)
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	rows, err := db.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at, job_id`)
	if err != nil {
		return nil, storeError("search jobs", err)
	}
	defer rows.Close()

	matches := []types.JobPosting{}
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, storeError("scan job", err)
		}
		if !MatchesFilters(p, title, location) {
			continue
		}
		matches = append(matches, *p)
		if len(matches) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("search jobs", err)
	}
	return matches, nil
}

// MatchesFilters reports whether p's title and location contain the given
// lower-cased filters. An empty filter matches anything, including nil fields.
func MatchesFilters(p *types.JobPosting, title, location string) bool {
	if title != "" && (p.Title == nil || !strings.Contains(strings.ToLower(*p.Title), title)) {
		return false
	}
	if location != "" && (p.Location.Location == nil || !strings.Contains(strings.ToLower(*p.Location.Location), location)) {
		return false
	}
	return true
}

// NormalizeFilter lower-cases a filter and maps "None" to no filter.
func NormalizeFilter(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return ""
	}
	return s
}

// ClearJobs deletes every posting and returns how many were removed. The
// schema is kept.
func (db *DB) ClearJobs(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, storeError("clear jobs", err)
	}
	return tag.RowsAffected(), nil
}

// CountJobs returns the number of stored postings.
func (db *DB) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, storeError("count jobs", err)
	}
	return n, nil
}

// JobsWithoutSkills returns up to limit postings with a description but no
// extracted skills yet.
func (db *DB) JobsWithoutSkills(ctx context.Context, limit int) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE skills IS NULL AND description IS NOT NULL
		 ORDER BY created_at, job_id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storeError("list jobs without skills", err)
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
		return nil, storeError("list jobs without skills", err)
	}
	return jobs, nil
}

// UpdateSkills replaces the extracted skills of a posting. It is the only
// update the jobs table receives; normalized fields are never rewritten.
func (db *DB) UpdateSkills(ctx context.Context, jobID string, skills []string) error {
	encoded, err := encodeList(skills, true)
	if err != nil {
		return fmt.Errorf("failed to encode skills for job %s: %w", jobID, err)
	}

	tag, err := db.pool.Exec(ctx, `UPDATE jobs SET skills = $1 WHERE job_id = $2`, encoded, jobID)
	if err != nil {
		return storeError("update skills for job "+jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return nil
}

// scanJob reads one row selected with jobColumns followed by any extra
// columns, which are scanned into extra.
func scanJob(row pgx.Row, extra ...any) (*types.JobPosting, error) {
	var p types.JobPosting
	var education string
	var skills *string

	dest := []any{
		&p.JobID, &p.JobURL, &p.Source, &p.Title, &p.CompanyName,
		&p.Location.Location, &p.City, &p.State, &p.Country, &p.Remote,
		&p.Industry, &p.SeniorityLevel, &p.EmploymentType, &p.JobFunction,
		&p.Salary.Raw, &p.Salary.Min, &p.Salary.Max, &p.Salary.Avg,
		&p.YOE.Raw, &p.YOE.Min, &p.YOE.Max, &p.YOE.Avg,
		&education, &skills, &p.Description, &p.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p.Education = decodeList(&education)
	if skills != nil {
		p.Skills = decodeList(skills)
	}
	return &p, nil
}

// encodeList renders a string list as JSON array text. A nil or empty list
// encodes as "[]" when keepEmpty is set and as NULL otherwise.
func encodeList(items []string, keepEmpty bool) (*string, error) {
	if len(items) == 0 {
		if !keepEmpty {
			return nil, nil
		}
		empty := "[]"
		return &empty, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// decodeList parses JSON array text; malformed or NULL values decode to an
// empty list.
func decodeList(s *string) []string {
	out := []string{}
	if s == nil || *s == "" {
		return out
	}
	if err := json.Unmarshal([]byte(*s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
