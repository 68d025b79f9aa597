// Package embedding turns stored postings into vectors and answers
// nearest-neighbour queries over them.
package embedding

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/types"
)

// DefaultBatchSize is how many postings are embedded per request.
const DefaultBatchSize = 16

// Embedder converts texts to vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Model names the embedding model; vectors are stored per model.
	Model() string
}

// Store is the persistence needed to index and query embeddings.
type Store interface {
	JobsWithoutEmbedding(ctx context.Context, model string, limit int) ([]types.JobPosting, error)
	SaveEmbedding(ctx context.Context, jobID, model string, vec []float32) error
	SimilarJobs(ctx context.Context, model string, query []float32, k int) ([]db.SimilarJob, error)
}

// PrepareJobText combines the fields that describe a posting into one text.
func PrepareJobText(p *types.JobPosting) string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nDescription: %s",
		types.Deref(p.Title, ""),
		types.Deref(p.CompanyName, ""),
		types.Deref(p.Description, ""),
	)
}

// Indexer embeds postings that have no vector yet.
type Indexer struct {
	embedder  Embedder
	store     Store
	batchSize int
	verbose   bool
}

// NewIndexer creates an Indexer. A non-positive batchSize uses
// DefaultBatchSize.
func NewIndexer(embedder Embedder, store Store, batchSize int, verbose bool) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Indexer{embedder: embedder, store: store, batchSize: batchSize, verbose: verbose}
}

// Run embeds up to limit postings (all when limit <= 0) and returns how many
// were saved. A failed save is logged and skipped; a failed embedding request
// ends the run.
func (ix *Indexer) Run(ctx context.Context, limit int) (int, error) {
	model := ix.embedder.Model()
	saved := 0
	failed := map[string]bool{}

	for limit <= 0 || saved < limit {
		want := ix.batchSize
		if limit > 0 {
			want = min(want, limit-saved)
		}

		jobs, err := ix.store.JobsWithoutEmbedding(ctx, model, want+len(failed))
		if err != nil {
			return saved, err
		}
		jobs = skipFailed(jobs, failed, want)
		if len(jobs) == 0 {
			break
		}

		texts := make([]string, len(jobs))
		for i := range jobs {
			texts[i] = PrepareJobText(&jobs[i])
		}

		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return saved, fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(vectors) != len(jobs) {
			return saved, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(jobs))
		}

		for i, job := range jobs {
			if err := ix.store.SaveEmbedding(ctx, job.JobID, model, vectors[i]); err != nil {
				log.Printf("[embedding] failed to save embedding for %s: %v", job.JobID, err)
				failed[job.JobID] = true
				continue
			}
			saved++
		}
		if ix.verbose {
			log.Printf("[VERBOSE] [embedding] embedded %d postings with %s", saved, model)
		}
	}
	return saved, nil
}

func skipFailed(jobs []types.JobPosting, failed map[string]bool, n int) []types.JobPosting {
	out := jobs[:0]
	for _, j := range jobs {
		if !failed[j.JobID] && len(out) < n {
			out = append(out, j)
		}
	}
	return out
}

// Similar embeds query and returns the k nearest stored postings.
func Similar(ctx context.Context, embedder Embedder, store Store, query string, k int) ([]db.SimilarJob, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	vectors, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 text", len(vectors))
	}
	return store.SimilarJobs(ctx, embedder.Model(), vectors[0], k)
}

// Searcher binds an embedder to a store for repeated similarity queries.
type Searcher struct {
	embedder Embedder
	store    Store
}

// NewSearcher creates a Searcher.
func NewSearcher(embedder Embedder, store Store) *Searcher {
	return &Searcher{embedder: embedder, store: store}
}

// Similar returns the k stored postings nearest to query.
func (s *Searcher) Similar(ctx context.Context, query string, k int) ([]db.SimilarJob, error) {
	return Similar(ctx, s.embedder, s.store, query, k)
}
