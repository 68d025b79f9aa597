// Package ingestion adds individual postings by URL or job ID, outside the
// paged search.
package ingestion

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL is returned when input is neither a job ID nor a LinkedIn job URL.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrNoJobID is returned when a LinkedIn URL carries no job ID.
	ErrNoJobID = errors.New("no job ID in URL")
)

var (
	numericID = regexp.MustCompile(`^\d{6,}$`)
	// /jobs/view/<slug>-<id>/ or /jobs/view/<id>
	viewPath = regexp.MustCompile(`/jobs(?:-guest)?/view/(?:[^/]*-)?(\d{6,})/?$`)
	// /jobs-guest/jobs/api/jobPosting/<id>
	guestPath = regexp.MustCompile(`/jobPosting/(\d{6,})/?$`)
)

// ParseJobID extracts a LinkedIn job ID from a bare ID, a /jobs/view/ URL, a
// guest detail URL or a search URL carrying currentJobId.
func ParseJobID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if numericID.MatchString(input) {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, input)
	}
	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return "", fmt.Errorf("%w: %s is not a LinkedIn host", ErrInvalidURL, host)
	}

	if id := u.Query().Get("currentJobId"); numericID.MatchString(id) {
		return id, nil
	}
	if m := viewPath.FindStringSubmatch(u.Path); m != nil {
		return m[1], nil
	}
	if m := guestPath.FindStringSubmatch(u.Path); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoJobID, input)
}
