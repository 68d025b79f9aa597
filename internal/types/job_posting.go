// Package types provides type definitions for structured data used throughout the job harvester.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Range is a numeric range extracted from free text (salary, years of experience).
// Any field may be nil. When both Min and Max are set, Avg is their midpoint.
type Range struct {
	Raw *string  `json:"raw"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`
}

// NewRange builds a bounded range and fills in the midpoint.
func NewRange(raw string, lo, hi float64) Range {
	avg := (lo + hi) / 2
	return Range{Raw: &raw, Min: &lo, Max: &hi, Avg: &avg}
}

// NewAverageRange builds a range that only carries an average.
func NewAverageRange(raw string, avg float64) Range {
	return Range{Raw: &raw, Avg: &avg}
}

// IsEmpty reports whether nothing was extracted.
func (r Range) IsEmpty() bool {
	return r.Raw == nil && r.Min == nil && r.Max == nil && r.Avg == nil
}

// Location is the decomposition of a single posting location string.
type Location struct {
	Location *string `json:"location"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	Country  *string `json:"country"`
}

// Criteria holds the four classification fields from the job-criteria list.
type Criteria struct {
	SeniorityLevel *string `json:"seniority_level"`
	EmploymentType *string `json:"employment_type"`
	JobFunction    *string `json:"job_function"`
	Industry       *string `json:"industry"`
}

// JobPosting is one normalized job record keyed by the source's job ID.
type JobPosting struct {
	JobID       string  `json:"job_id"`
	JobURL      *string `json:"job_url"`
	Source      *string `json:"source"`
	Title       *string `json:"title"`
	CompanyName *string `json:"company_name"`
	Description *string `json:"description"`

	Location
	Remote bool `json:"remote"`

	Criteria

	Salary    Range    `json:"salary"`
	YOE       Range    `json:"yoe"`
	Education []string `json:"education"`
	Skills    []string `json:"skills,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Summary is a short one-line label for logs.
func (p *JobPosting) Summary() string {
	title, company := "(untitled)", "(unknown company)"
	if p.Title != nil {
		title = *p.Title
	}
	if p.CompanyName != nil {
		company = *p.CompanyName
	}
	return p.JobID + " " + title + " @ " + company
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or fallback when nil.
func Deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
