// Package notify tells external channels about finished pipeline batches.
package notify

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-harvester/internal/pipeline"
)

// FormatSummary renders a batch summary as a short HTML message.
func FormatSummary(s *pipeline.Summary) string {
	var sb strings.Builder
	if s.Error != "" {
		sb.WriteString("⚠️ <b>Job harvest failed</b>\n")
	} else {
		sb.WriteString("✅ <b>Job harvest complete</b>\n")
	}
	fmt.Fprintf(&sb, "Trigger: %s\n", s.Trigger)
	fmt.Fprintf(&sb, "Scraped: %d, stored: %d, failed: %d", s.Scraped, s.Stored, s.Failed)
	if s.Duplicates > 0 {
		fmt.Fprintf(&sb, " (%d duplicate)", s.Duplicates)
	}
	fmt.Fprintf(&sb, "\nElapsed: %.1fs", s.ElapsedSeconds)
	if s.Error != "" {
		fmt.Fprintf(&sb, "\nError: %s", escapeHTML(s.Error))
	}
	return sb.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
