// Package prompts holds the fixed LLM texts: the agent system prompt, the
// skill extraction instructions and the results email subject. They live in
// embedded JSON files keyed by name.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Key names one prompt: the embedded file and the entry inside it.
type Key struct {
	File string
	Name string
}

func (k Key) String() string { return k.File + ":" + k.Name }

// Prompts used by the agent, the skill extractor and the mailer.
var (
	AgentSystem   = Key{File: "agent.json", Name: "system"}
	EmailSubject  = Key{File: "agent.json", Name: "email-subject"}
	ExtractSkills = Key{File: "skills.json", Name: "extract-skills"}
)

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// all parses every embedded file once.
var all = sync.OnceValues(func() (map[Key]string, error) {
	out := make(map[Key]string)
	files, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		data, err := promptFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
		}
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
		}
		for name, text := range entries {
			out[Key{File: file, Name: name}] = text
		}
	}
	return out, nil
})

// Get returns the prompt text for k.
func Get(k Key) (string, error) {
	texts, err := all()
	if err != nil {
		return "", err
	}
	text, ok := texts[k]
	if !ok {
		return "", fmt.Errorf("prompt %s not found", k)
	}
	return text, nil
}

// MustGet is Get for prompts that ship with the binary. It panics on a
// missing key.
func MustGet(k Key) string {
	text, err := Get(k)
	if err != nil {
		panic(err)
	}
	return text
}

// Format substitutes {{.Name}} placeholders. Placeholders without a value
// are left in place.
func Format(template string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := data[placeholder.FindStringSubmatch(m)[1]]; ok {
			return v
		}
		return m
	})
}

// Render is Format over the prompt for k. Unlike Format it fails when a
// placeholder has no value.
func Render(k Key, data map[string]string) (string, error) {
	text, err := Get(k)
	if err != nil {
		return "", err
	}
	out := Format(text, data)
	if m := placeholder.FindAllStringSubmatch(out, -1); len(m) > 0 {
		missing := make([]string, 0, len(m))
		for _, sub := range m {
			missing = append(missing, sub[1])
		}
		return "", fmt.Errorf("prompt %s: no value for %s", k, strings.Join(missing, ", "))
	}
	return out, nil
}

// Keys lists every embedded prompt, sorted by file then name.
func Keys() ([]Key, error) {
	texts, err := all()
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(texts))
	for k := range texts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int { return strings.Compare(a.String(), b.String()) })
	return keys, nil
}
