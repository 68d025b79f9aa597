// Package scheduler re-runs the scrape pipeline on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/job-harvester/internal/pipeline"
)

// Runner executes one pipeline batch.
type Runner interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.Summary, error)
}

// Scheduler wraps robfig/cron. Overlapping ticks are skipped so at most one
// batch writes to the store at a time.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	opts   pipeline.RunOptions
	spec   string

	mu   sync.Mutex
	last *pipeline.Summary
}

// New creates a Scheduler that fires every interval.
func New(runner Runner, interval time.Duration, opts pipeline.RunOptions) *Scheduler {
	opts.Trigger = pipeline.TriggerSchedule
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cron.DefaultLogger),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		runner: runner,
		opts:   opts,
		spec:   Spec(interval),
	}
}

// Spec returns the cron spec for interval.
func Spec(interval time.Duration) string {
	return fmt.Sprintf("@every %s", interval)
}

// Start registers the job and starts the cron loop. One batch also runs
// immediately so the store is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	go s.runOnce(ctx)
	return nil
}

// Stop halts the cron loop and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

// Last returns the summary of the most recent batch, or nil.
func (s *Scheduler) Last() *pipeline.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	opts := s.opts
	// Only the first batch may clear the store.
	s.opts.ClearExisting = false
	s.mu.Unlock()

	log.Println("[scheduler] Scrape cycle started")
	summary, err := s.runner.Run(ctx, opts)
	if err != nil {
		log.Printf("[scheduler] Scrape cycle failed: %v", err)
	}

	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()
	log.Println("[scheduler] Scrape cycle complete")
}
