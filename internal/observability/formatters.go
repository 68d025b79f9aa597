// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/pipeline"
	"github.com/jonathan/job-harvester/internal/skills"
	"github.com/jonathan/job-harvester/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// descriptionPreview bounds the description excerpt in a job card
	descriptionPreview = 160
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// FormatRange renders a salary or YOE range; unit is appended to numbers.
func FormatRange(r types.Range, unit string) string {
	switch {
	case r.Min != nil && r.Max != nil && *r.Min != *r.Max:
		return fmt.Sprintf("%s%s - %s%s", formatNumber(*r.Min), unit, formatNumber(*r.Max), unit)
	case r.Avg != nil:
		return fmt.Sprintf("~%s%s", formatNumber(*r.Avg), unit)
	case r.Raw != nil:
		return *r.Raw
	default:
		return "n/a"
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// PrintJob outputs a card for one posting.
func (p *Printer) PrintJob(job *types.JobPosting) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:    %s\n", types.Deref(job.CompanyName, "n/a")))
	sb.WriteString(fmt.Sprintf("Location:   %s", types.Deref(job.Location.Location, "n/a")))
	if job.Remote {
		sb.WriteString(" (remote)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Salary:     %s\n", FormatRange(job.Salary, "")))
	sb.WriteString(fmt.Sprintf("Experience: %s\n", FormatRange(job.YOE, "y")))
	if len(job.Education) > 0 {
		sb.WriteString(fmt.Sprintf("Education:  %s\n", strings.Join(job.Education, ", ")))
	}
	if job.SeniorityLevel != nil || job.EmploymentType != nil {
		sb.WriteString(fmt.Sprintf("Level:      %s / %s\n",
			types.Deref(job.SeniorityLevel, "n/a"), types.Deref(job.EmploymentType, "n/a")))
	}
	if len(job.Skills) > 0 {
		skills := job.Skills
		if len(skills) > maxItemsToShow {
			skills = skills[:maxItemsToShow]
		}
		sb.WriteString(fmt.Sprintf("Skills:     %s\n", strings.Join(skills, ", ")))
	}
	if job.JobURL != nil {
		sb.WriteString(fmt.Sprintf("URL:        %s\n", *job.JobURL))
	}
	if job.Description != nil {
		desc := *job.Description
		if len([]rune(desc)) > descriptionPreview {
			desc = string([]rune(desc)[:descriptionPreview]) + "..."
		}
		sb.WriteString("\n" + desc)
	}

	title := fmt.Sprintf("%s [%s]", types.Deref(job.Title, "(untitled)"), job.JobID)
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobList outputs one line per posting.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJobList(jobs []types.JobPosting) {
	if len(jobs) == 0 {
		fmt.Fprintln(p.out, "No jobs found.")
		return
	}
	for i := range jobs {
		job := &jobs[i]
		remote := ""
		if job.Remote {
			remote = " [remote]"
		}
		fmt.Fprintf(p.out, "%-12s %s @ %s, %s%s\n",
			job.JobID,
			types.Deref(job.Title, "(untitled)"),
			types.Deref(job.CompanyName, "(unknown company)"),
			types.Deref(job.Location.Location, "n/a"),
			remote,
		)
	}
	fmt.Fprintf(p.out, "\n%d job(s)\n", len(jobs))
}

// PrintSummary outputs the result of a pipeline batch.
func (p *Printer) PrintSummary(s *pipeline.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:        %s\n", s.RunID))
	}
	if s.Cleared > 0 {
		sb.WriteString(fmt.Sprintf("Cleared:    %d\n", s.Cleared))
	}
	sb.WriteString(fmt.Sprintf("Requested:  %d\n", s.Requested))
	sb.WriteString(fmt.Sprintf("Scraped:    %d\n", s.Scraped))
	sb.WriteString(fmt.Sprintf("Stored:     %d\n", s.Stored))
	sb.WriteString(fmt.Sprintf("Failed:     %d", s.Failed))
	if s.Duplicates > 0 {
		sb.WriteString(fmt.Sprintf(" (%d duplicate)", s.Duplicates))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Elapsed:    %.1fs", s.ElapsedSeconds))
	if s.Error != "" {
		sb.WriteString(fmt.Sprintf("\nError:      %s", s.Error))
	}

	p.printBox("PIPELINE SUMMARY", sb.String())
}

// PrintStats outputs aggregate statistics of the job store.
func (p *Printer) PrintStats(s *db.Stats) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total jobs:     %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Remote:         %d\n", s.Remote))
	sb.WriteString(fmt.Sprintf("With salary:    %d\n", s.WithSalary))
	sb.WriteString(fmt.Sprintf("With YOE:       %d\n", s.WithYOE))
	if s.AvgSalary != nil {
		sb.WriteString(fmt.Sprintf("Avg salary:     %s\n", formatNumber(*s.AvgSalary)))
	}
	if s.AvgYOE != nil {
		sb.WriteString(fmt.Sprintf("Avg YOE:        %.1f\n", *s.AvgYOE))
	}
	if len(s.TopCompanies) > 0 {
		sb.WriteString("\nTop companies:\n")
		for _, c := range s.TopCompanies {
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", c.Company, c.Count))
		}
	}

	p.printBox("JOB STORE STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRuns outputs recent pipeline runs, newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRuns(runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "No runs recorded.")
		return
	}
	for _, r := range runs {
		elapsed := "running"
		if r.CompletedAt != nil {
			elapsed = r.CompletedAt.Sub(r.CreatedAt).Round(time.Second).String()
		}
		fmt.Fprintf(p.out, "%s  %-9s %-8s %-9s stored=%d/%d failed=%d dup=%d  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Status, r.Trigger, elapsed,
			r.Stored, r.Requested, r.Failed, r.Duplicates,
			r.ID,
		)
		if r.ErrorMessage != nil {
			fmt.Fprintf(p.out, "    error: %s\n", *r.ErrorMessage)
		}
	}
}

// PrintSimilar outputs nearest-neighbour results with their distance.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSimilar(results []db.SimilarJob) {
	if len(results) == 0 {
		fmt.Fprintln(p.out, "No similar jobs found.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(p.out, "%2d. %.3f  %s\n", i+1, r.Distance, r.Job.Summary())
	}
}

// PrintSkills outputs skill frequencies as a box.
func (p *Printer) PrintSkills(counts []skills.SkillCount) {
	if len(counts) == 0 {
		p.printBox("TOP SKILLS", "No skills extracted yet.")
		return
	}
	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("%-40s %d", c.Skill, c.Count))
	}
	p.printBox("TOP SKILLS", strings.Join(lines, "\n"))
}
