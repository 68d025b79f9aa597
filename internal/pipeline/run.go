// Package pipeline runs one scrape batch: fetch detail pages, normalize each
// into a JobPosting and insert it into the job store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/fetch"
	"github.com/jonathan/job-harvester/internal/types"
)

// ErrNoPostings is returned when the fetch step produced nothing to store.
var ErrNoPostings = errors.New("no postings fetched")

// Triggers recorded with each run.
const (
	TriggerCLI      = "cli"
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
	TriggerAgent    = "agent"
)

// Fetcher supplies raw detail pages with their job IDs.
type Fetcher interface {
	FetchBatch(ctx context.Context, n int) ([]fetch.RawPosting, error)
}

// Normalizer turns one detail page into a JobPosting.
type Normalizer interface {
	Normalize(jobID, pageURL, fragment string) (*types.JobPosting, error)
}

// Store persists normalized postings.
type Store interface {
	InsertJob(ctx context.Context, p *types.JobPosting) error
	ClearJobs(ctx context.Context) (int64, error)
}

// RunRecorder keeps a history of batches.
type RunRecorder interface {
	CreateRun(ctx context.Context, trigger string, requested int) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, result db.RunResult) error
}

// SeenTracker records job IDs that reached the store so later fetches skip
// them, and forgets them when the store is cleared.
type SeenTracker interface {
	MarkSeen(ctx context.Context, ids ...string) error
	Forget(ctx context.Context) (int, error)
}

// Notifier is told about every finished batch.
type Notifier interface {
	NotifyRun(ctx context.Context, s *Summary) error
}

// ProgressEvent reports the outcome for one posting.
type ProgressEvent struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
}

// Progress statuses.
const (
	StatusStored    = "stored"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
)

// ProgressCallback is called after each posting is processed.
type ProgressCallback func(event ProgressEvent)

// Config wires the optional collaborators of a Driver.
type Config struct {
	Runs       RunRecorder
	Seen       SeenTracker
	Notifiers  []Notifier
	OnProgress ProgressCallback
	Verbose    bool
}

// RunOptions holds the parameters of one batch.
type RunOptions struct {
	NumPostings   int
	ClearExisting bool
	Trigger       string
}

// Summary is the aggregate result of a batch.
type Summary struct {
	RunID          string  `json:"run_id,omitempty"`
	Trigger        string  `json:"trigger,omitempty"`
	Requested      int     `json:"requested"`
	Scraped        int     `json:"scraped"`
	Stored         int     `json:"stored"`
	Failed         int     `json:"failed"`
	Duplicates     int     `json:"duplicates"`
	Cleared        int64   `json:"cleared,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

// Driver sequences fetch, normalize and store.
type Driver struct {
	fetcher    Fetcher
	normalizer Normalizer
	store      Store
	cfg        Config
}

// NewDriver creates a Driver.
func NewDriver(fetcher Fetcher, normalizer Normalizer, store Store, cfg Config) *Driver {
	return &Driver{fetcher: fetcher, normalizer: normalizer, store: store, cfg: cfg}
}

// Run executes one batch. Per-posting failures are counted, logged and
// skipped. The batch fails only when clearing fails, nothing was fetched, or
// ctx is cancelled; the summary is returned in every case.
func (d *Driver) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	start := time.Now()
	if opts.Trigger == "" {
		opts.Trigger = TriggerCLI
	}
	summary := &Summary{Trigger: opts.Trigger, Requested: opts.NumPostings}

	if opts.NumPostings <= 0 {
		return summary, fmt.Errorf("num postings must be positive, got %d", opts.NumPostings)
	}

	runID := d.createRun(ctx, opts)
	if runID != uuid.Nil {
		summary.RunID = runID.String()
	}

	err := d.run(ctx, opts, summary)
	summary.ElapsedSeconds = time.Since(start).Seconds()
	if err != nil {
		summary.Error = err.Error()
	}

	d.completeRun(ctx, runID, summary)
	d.notify(ctx, summary)

	log.Printf("[pipeline] batch done: scraped=%d stored=%d failed=%d duplicates=%d elapsed=%.1fs",
		summary.Scraped, summary.Stored, summary.Failed, summary.Duplicates, summary.ElapsedSeconds)
	return summary, err
}

func (d *Driver) run(ctx context.Context, opts RunOptions, summary *Summary) error {
	if opts.ClearExisting {
		n, err := d.store.ClearJobs(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear existing jobs: %w", err)
		}
		summary.Cleared = n
		log.Printf("[pipeline] cleared %d existing jobs", n)

		if d.cfg.Seen != nil {
			if _, err := d.cfg.Seen.Forget(ctx); err != nil {
				log.Printf("[pipeline] warning: failed to reset seen-job cache: %v", err)
			}
		}
	}

	log.Printf("[pipeline] fetching %d postings", opts.NumPostings)
	postings, err := d.fetcher.FetchBatch(ctx, opts.NumPostings)
	if len(postings) == 0 {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNoPostings, err)
		}
		return ErrNoPostings
	}
	if err != nil {
		log.Printf("[pipeline] warning: fetch returned %d postings with error: %v", len(postings), err)
	}
	summary.Scraped = len(postings)

	for i, raw := range postings {
		if err := ctx.Err(); err != nil {
			return err
		}
		event := d.process(ctx, raw, summary)
		event.Index = i + 1
		event.Total = len(postings)
		if d.cfg.OnProgress != nil {
			d.cfg.OnProgress(event)
		}
	}
	return nil
}

func (d *Driver) process(ctx context.Context, raw fetch.RawPosting, summary *Summary) ProgressEvent {
	event := ProgressEvent{JobID: raw.JobID}

	posting, err := d.normalizer.Normalize(raw.JobID, raw.URL, raw.HTML)
	if err != nil {
		summary.Failed++
		log.Printf("[pipeline] failed to normalize job %s: %v", raw.JobID, err)
		event.Status, event.Message = StatusFailed, err.Error()
		return event
	}
	if err := d.store.InsertJob(ctx, posting); err != nil {
		summary.Failed++
		if db.IsDuplicate(err) {
			summary.Duplicates++
			log.Printf("[pipeline] job %s already stored, skipping", raw.JobID)
			d.markSeen(ctx, raw.JobID)
			event.Status = StatusDuplicate
			return event
		}
		log.Printf("[pipeline] failed to store job %s: %v", raw.JobID, err)
		event.Status, event.Message = StatusFailed, err.Error()
		return event
	}

	summary.Stored++
	if d.cfg.Verbose {
		log.Printf("[VERBOSE] [pipeline] stored %s", posting.Summary())
	}
	d.markSeen(ctx, raw.JobID)
	event.Status = StatusStored
	return event
}

// markSeen runs only for postings present in the store, so a failed insert
// is fetched again by the next batch.
func (d *Driver) markSeen(ctx context.Context, jobID string) {
	if d.cfg.Seen == nil {
		return
	}
	if err := d.cfg.Seen.MarkSeen(ctx, jobID); err != nil {
		log.Printf("[pipeline] warning: failed to record job %s as seen: %v", jobID, err)
	}
}

func (d *Driver) createRun(ctx context.Context, opts RunOptions) uuid.UUID {
	if d.cfg.Runs == nil {
		return uuid.Nil
	}
	id, err := d.cfg.Runs.CreateRun(ctx, opts.Trigger, opts.NumPostings)
	if err != nil {
		log.Printf("[pipeline] warning: failed to record run: %v", err)
		return uuid.Nil
	}
	if d.cfg.Verbose {
		log.Printf("[VERBOSE] [pipeline] created run %s", id)
	}
	return id
}

func (d *Driver) completeRun(ctx context.Context, runID uuid.UUID, s *Summary) {
	if d.cfg.Runs == nil || runID == uuid.Nil {
		return
	}
	status := db.RunStatusCompleted
	if s.Error != "" {
		status = db.RunStatusFailed
	}
	// The batch context may already be cancelled; the run row should still close.
	ctx = context.WithoutCancel(ctx)
	err := d.cfg.Runs.CompleteRun(ctx, runID, db.RunResult{
		Status:     status,
		Scraped:    s.Scraped,
		Stored:     s.Stored,
		Failed:     s.Failed,
		Duplicates: s.Duplicates,
		Error:      s.Error,
	})
	if err != nil {
		log.Printf("[pipeline] warning: failed to complete run %s: %v", runID, err)
	}
}

func (d *Driver) notify(ctx context.Context, s *Summary) {
	ctx = context.WithoutCancel(ctx)
	for _, n := range d.cfg.Notifiers {
		if err := n.NotifyRun(ctx, s); err != nil {
			log.Printf("[pipeline] warning: notification failed: %v", err)
		}
	}
}
