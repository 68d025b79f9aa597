package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/pipeline"
	"github.com/jonathan/job-harvester/internal/schemas"
	"github.com/jonathan/job-harvester/internal/skills"
	"github.com/jonathan/job-harvester/internal/types"
)

// Defaults applied when a tool call omits a bound.
const (
	DefaultSearchLimit  = db.DefaultSearchLimit
	DefaultSimilarK     = 5
	DefaultSkillJobs    = 10
	DefaultTopSkills    = 10
	statsTopCompanies   = 5
	maxDescriptionChars = 600
)

// ErrNotConfigured is returned by tools whose backend was not set up.
var ErrNotConfigured = errors.New("not configured")

// JobStore is the read side of the job store plus skill updates.
type JobStore interface {
	SearchJobs(ctx context.Context, opts db.SearchOptions) ([]types.JobPosting, error)
	GetJobByID(ctx context.Context, jobID string) (*types.JobPosting, error)
	JobStats(ctx context.Context, topN int) (*db.Stats, error)
	UpdateSkills(ctx context.Context, jobID string, skills []string) error
}

// Scraper runs a pipeline batch.
type Scraper interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.Summary, error)
}

// Mailer emails a list of postings.
type Mailer interface {
	SendJobs(ctx context.Context, recipient string, jobs []types.JobPosting) (string, error)
}

// SimilarFinder answers nearest-neighbour queries.
type SimilarFinder interface {
	Similar(ctx context.Context, query string, k int) ([]db.SimilarJob, error)
}

// SkillExtractor lists the key skills of a description.
type SkillExtractor interface {
	Extract(ctx context.Context, description *string) ([]string, error)
}

// Toolbox executes tool calls. Store is required; the other backends are
// optional and their tools report ErrNotConfigured when nil.
type Toolbox struct {
	Store   JobStore
	Scraper Scraper
	Mailer  Mailer
	Similar SimilarFinder
	Skills  SkillExtractor
	Verbose bool
}

type handler func(ctx context.Context, tb *Toolbox, args json.RawMessage) (any, error)

var handlers = map[string]handler{
	"search_jobs":    searchJobs,
	"get_job_by_id":  getJobByID,
	"scrape_jobs":    scrapeJobs,
	"send_email":     sendEmail,
	"similar_jobs":   similarJobs,
	"extract_skills": extractSkills,
	"job_stats":      jobStats,
}

// Execute validates args against the tool's schema and runs it. Every
// failure, including an unknown tool, comes back as an {"error": ...}
// result so the model can recover.
func (tb *Toolbox) Execute(ctx context.Context, name string, args json.RawMessage) map[string]any {
	h, ok := handlers[name]
	if !ok {
		return errorResult(fmt.Errorf("unknown tool %q", name))
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := schemas.ValidateToolArgs(name, string(args)); err != nil {
		return errorResult(err)
	}

	if tb.Verbose {
		log.Printf("[VERBOSE] [agent] calling %s %s", name, string(args))
	}
	out, err := h(ctx, tb, args)
	if err != nil {
		log.Printf("[agent] tool %s failed: %v", name, err)
		return errorResult(err)
	}
	return map[string]any{"result": out}
}

func errorResult(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

// jobView is the trimmed posting shape returned to the model.
type jobView struct {
	JobID          string   `json:"job_id"`
	Title          string   `json:"title,omitempty"`
	Company        string   `json:"company,omitempty"`
	Location       string   `json:"location,omitempty"`
	Remote         bool     `json:"remote"`
	Salary         string   `json:"salary,omitempty"`
	YOE            string   `json:"years_of_experience,omitempty"`
	Education      []string `json:"education,omitempty"`
	SeniorityLevel string   `json:"seniority_level,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	URL            string   `json:"url,omitempty"`
	Description    string   `json:"description,omitempty"`
}

func viewOf(p *types.JobPosting, withDescription bool) jobView {
	v := jobView{
		JobID:          p.JobID,
		Title:          types.Deref(p.Title, ""),
		Company:        types.Deref(p.CompanyName, ""),
		Location:       types.Deref(p.Location.Location, ""),
		Remote:         p.Remote,
		Salary:         types.Deref(p.Salary.Raw, ""),
		YOE:            types.Deref(p.YOE.Raw, ""),
		Education:      p.Education,
		SeniorityLevel: types.Deref(p.SeniorityLevel, ""),
		EmploymentType: types.Deref(p.EmploymentType, ""),
		Skills:         p.Skills,
		URL:            types.Deref(p.JobURL, ""),
	}
	if withDescription {
		desc := []rune(types.Deref(p.Description, ""))
		if len(desc) > maxDescriptionChars {
			desc = append(desc[:maxDescriptionChars], '…')
		}
		v.Description = string(desc)
	}
	return v
}

func viewsOf(jobs []types.JobPosting) []jobView {
	out := make([]jobView, len(jobs))
	for i := range jobs {
		out[i] = viewOf(&jobs[i], false)
	}
	return out
}

type searchArgs struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
}

func (a searchArgs) options() db.SearchOptions {
	limit := a.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return db.SearchOptions{Title: a.Title, Location: a.Location, Limit: limit}
}

func searchJobs(ctx context.Context, tb *Toolbox, raw json.RawMessage) (any, error) {
	var args searchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	jobs, err := tb.Store.SearchJobs(ctx, args.options())
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": len(jobs), "jobs": viewsOf(jobs)}, nil
}

func getJobByID(ctx context.Context, tb *Toolbox, raw json.RawMessage) (any, error) {
	var args struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	job, err := tb.Store.GetJobByID(ctx, args.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s not found", args.JobID)
	}
	return viewOf(job, true), nil
}

func scrapeJobs(ctx context.Context, tb *Toolbox, raw json.RawMessage) (any, error) {
	if tb.Scraper == nil {
		return nil, fmt.Errorf("scraping is %w", ErrNotConfigured)
	}
	var args struct {
		NumPostings   int  `json:"num_postings"`
		ClearExisting bool `json:"clear_existing"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	summary, err := tb.Scraper.Run(ctx, pipeline.RunOptions{
		NumPostings:   args.NumPostings,
		ClearExisting: args.ClearExisting,
		Trigger:       pipeline.TriggerAgent,
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func sendEmail(ctx context.Context, tb *Toolbox, raw json.RawMessage) (any, error) {
	if tb.Mailer == nil {
		return nil, fmt.Errorf("email is %w", ErrNotConfigured)
	}
	var args struct {
		RecipientEmail string `json:"recipient_email"`
		searchArgs
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	jobs, err := tb.Store.SearchJobs(ctx, args.options())
	if err != nil {
		return nil, err
	}
	id, err := tb.Mailer.SendJobs(ctx, args.RecipientEmail, jobs)
	if err != nil {
		return nil, err
	}
	return map[string]any{"message_id": id, "sent": len(jobs)}, nil
}

func similarJobs(ctx context.Context, tb *Toolbox, raw json.RawMessage) (any, error) {
	if tb.Similar == nil {
		return nil, fmt.Errorf("similarity search is %w", ErrNotConfigured)
	}
	var args struct {
		Query string `json:"query"`
		K     int    `json:"k"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.K <= 0 {
		args.K = DefaultSimilarK
	}
	matches, err := tb.Similar.Similar(ctx, args.Query, args.K)
	if err != nil {
		return nil, err
	}

	type match struct {
		jobView
		Distance float64 `json:"distance"`
	}
	out := make([]match, len(matches))
	for i := range matches {
		out[i] = match{jobView: viewOf(&matches[i].Job, false), Distance: matches[i].Distance}
	}
	return map[string]any{"count": len(out), "jobs": out}, nil
}

func extractSkills(ctx context.Context, tb *Toolbox, raw json.RawMessage) (any, error) {
	var args struct {
		Title    string `json:"title"`
		Location string `json:"location"`
		NumJobs  int    `json:"num_jobs"`
		Top      int    `json:"top"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args.NumJobs <= 0 {
		args.NumJobs = DefaultSkillJobs
	}
	if args.Top <= 0 {
		args.Top = DefaultTopSkills
	}

	jobs, err := tb.Store.SearchJobs(ctx, db.SearchOptions{Title: args.Title, Location: args.Location, Limit: args.NumJobs})
	if err != nil {
		return nil, err
	}

	extracted := 0
	for i := range jobs {
		if len(jobs[i].Skills) > 0 || tb.Skills == nil {
			continue
		}
		found, err := tb.Skills.Extract(ctx, jobs[i].Description)
		if err != nil {
			log.Printf("[agent] skill extraction failed for %s: %v", jobs[i].JobID, err)
			continue
		}
		if err := tb.Store.UpdateSkills(ctx, jobs[i].JobID, found); err != nil {
			log.Printf("[agent] failed to save skills for %s: %v", jobs[i].JobID, err)
		}
		jobs[i].Skills = found
		extracted++
	}

	return map[string]any{
		"jobs_analyzed": len(jobs),
		"newly_tagged":  extracted,
		"skills":        skills.TopSkills(jobs, args.Top),
	}, nil
}

func jobStats(ctx context.Context, tb *Toolbox, _ json.RawMessage) (any, error) {
	return tb.Store.JobStats(ctx, statsTopCompanies)
}
