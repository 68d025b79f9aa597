package ingestion

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/job-harvester/internal/fetch"
	"github.com/jonathan/job-harvester/internal/pipeline"
	"github.com/jonathan/job-harvester/internal/types"
)

// DetailFetcher downloads one detail page.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, jobID string) (*fetch.RawPosting, error)
}

// Ingester fetches, normalizes and stores single postings.
type Ingester struct {
	fetcher    DetailFetcher
	normalizer pipeline.Normalizer
	store      pipeline.Store
	verbose    bool
}

// NewIngester creates an Ingester.
func NewIngester(fetcher DetailFetcher, normalizer pipeline.Normalizer, store pipeline.Store, verbose bool) *Ingester {
	return &Ingester{fetcher: fetcher, normalizer: normalizer, store: store, verbose: verbose}
}

// Ingest stores the posting named by input. A posting that is already stored
// returns the normalized record together with the store's duplicate error.
func (i *Ingester) Ingest(ctx context.Context, input string) (*types.JobPosting, error) {
	jobID, err := ParseJobID(input)
	if err != nil {
		return nil, err
	}
	if i.verbose {
		log.Printf("[VERBOSE] [ingest] job ID %s from %s", jobID, input)
	}

	raw, err := i.fetcher.FetchDetail(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job %s: %w", jobID, err)
	}

	posting, err := i.normalizer.Normalize(raw.JobID, raw.URL, raw.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize job %s: %w", jobID, err)
	}
	if err := i.store.InsertJob(ctx, posting); err != nil {
		return posting, err
	}
	log.Printf("[ingest] stored %s", posting.Summary())
	return posting, nil
}
