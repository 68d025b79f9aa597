package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/job-harvester/internal/llm"
	"github.com/jonathan/job-harvester/internal/types"
)

// DefaultMaxSkills caps the skills kept per posting.
const DefaultMaxSkills = 10

// Store is the part of the job store the batch extractor needs.
type Store interface {
	JobsWithoutSkills(ctx context.Context, limit int) ([]types.JobPosting, error)
	UpdateSkills(ctx context.Context, jobID string, skills []string) error
}

// Extractor asks an LLM for the key skills of a job description.
type Extractor struct {
	client    llm.Client
	maxSkills int
	verbose   bool
}

// NewExtractor creates an Extractor. maxSkills <= 0 uses DefaultMaxSkills.
func NewExtractor(client llm.Client, maxSkills int, verbose bool) *Extractor {
	if maxSkills <= 0 {
		maxSkills = DefaultMaxSkills
	}
	return &Extractor{client: client, maxSkills: maxSkills, verbose: verbose}
}

type skillsResponse struct {
	Skills []string `json:"skills"`
}

// Extract returns the normalized skills of description. An empty description
// yields an empty list without calling the model.
func (e *Extractor) Extract(ctx context.Context, description *string) ([]string, error) {
	if description == nil || strings.TrimSpace(*description) == "" {
		return []string{}, nil
	}

	prompt := llm.BuildExtractionPrompt(llm.SkillsSchema(e.maxSkills), *description)
	text, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("failed to extract skills: %w", err)
	}

	var resp skillsResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse skills response: %w", err)
	}

	out := Normalize(resp.Skills)
	if len(out) > e.maxSkills {
		out = out[:e.maxSkills]
	}
	return out, nil
}

// Run extracts skills for up to limit stored postings that have none yet and
// saves them. Per-posting failures are logged and skipped. It returns the
// number of postings updated.
func (e *Extractor) Run(ctx context.Context, store Store, limit int) (int, error) {
	jobs, err := store.JobsWithoutSkills(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load postings: %w", err)
	}

	updated := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		found, err := e.Extract(ctx, job.Description)
		if err != nil {
			log.Printf("[skills] job %s: %v", job.JobID, err)
			continue
		}
		if err := store.UpdateSkills(ctx, job.JobID, found); err != nil {
			log.Printf("[skills] failed to save skills for job %s: %v", job.JobID, err)
			continue
		}
		if e.verbose {
			log.Printf("[VERBOSE] [skills] job %s: %s", job.JobID, strings.Join(found, ", "))
		}
		updated++
	}
	return updated, nil
}
