package extraction

import (
	"strings"

	"github.com/jonathan/job-harvester/internal/types"
)

var remoteTitleKeywords = []string{"remote", "work from home", "wfh", "virtual"}

var remoteDescriptionPhrases = []string{
	"remote work",
	"work remotely",
	"work from home",
	"wfh",
	"virtual position",
	"remote position",
	"remote role",
	"work from anywhere",
	"remote-first",
	"remote friendly",
}

// cleanedRemotePhrases are the description phrases as CleanDescription
// spells them ("remote-first" becomes "remotefirst").
var cleanedRemotePhrases = func() []string {
	out := make([]string, 0, len(remoteDescriptionPhrases))
	for _, phrase := range remoteDescriptionPhrases {
		if c := CleanDescription(phrase); c != nil {
			out = append(out, *c)
		}
	}
	return out
}()

// IsRemote infers whether a posting allows remote work. Title keywords are
// checked first, then an exact "remote" location, then description phrases.
// description may be raw or already cleaned.
func IsRemote(title, location, description *string) bool {
	if title != nil && containsAny(strings.ToLower(*title), remoteTitleKeywords) {
		return true
	}
	if location != nil && strings.EqualFold(strings.TrimSpace(*location), "remote") {
		return true
	}
	if description != nil {
		text := strings.ToLower(*description)
		if containsAny(text, remoteDescriptionPhrases) || containsAny(text, cleanedRemotePhrases) {
			return true
		}
	}
	return false
}

// RecomputeRemote refreshes p.Remote from its title, location and description.
// Call it after changing any of those fields.
func RecomputeRemote(p *types.JobPosting) {
	if p == nil {
		return
	}
	p.Remote = IsRemote(p.Title, p.Location.Location, p.Description)
}
