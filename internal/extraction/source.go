package extraction

import (
	"regexp"
	"strings"
)

var schemePrefixRe = regexp.MustCompile(`^https?://(www\.)?`)

// SourceFromURL returns the host label of a job URL, e.g. "linkedin.com" for
// "https://www.linkedin.com/jobs/view/123". A URL without a path yields nil.
func SourceFromURL(url *string) *string {
	if url == nil || *url == "" {
		return nil
	}

	u := schemePrefixRe.ReplaceAllString(strings.ToLower(*url), "")
	host, _, found := strings.Cut(u, "/")
	if !found || host == "" {
		return nil
	}
	return &host
}
