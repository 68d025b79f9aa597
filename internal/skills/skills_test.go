package skills

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/job-harvester/internal/llm"
	"github.com/jonathan/job-harvester/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateContent(ctx, prompt, tier)
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeLLM) Close() error                  { return nil }

type fakeStore struct {
	jobs    []types.JobPosting
	updated map[string][]string
	failFor string
}

func (s *fakeStore) JobsWithoutSkills(_ context.Context, limit int) ([]types.JobPosting, error) {
	if limit > 0 && len(s.jobs) > limit {
		return s.jobs[:limit], nil
	}
	return s.jobs, nil
}

func (s *fakeStore) UpdateSkills(_ context.Context, jobID string, found []string) error {
	if jobID == s.failFor {
		return errors.New("store down")
	}
	if s.updated == nil {
		s.updated = map[string][]string{}
	}
	s.updated[jobID] = found
	return nil
}

func strPtr(s string) *string { return &s }

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"golang", "Go"},
		{"  K8S ", "Kubernetes"},
		{"postgres", "PostgreSQL"},
		{"GraphQL", "GraphQL"},
		{"python", "Python"},
		{"DOCKER", "Docker"},
		{"distributed   systems", "distributed systems"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSkillName(tt.input))
		})
	}
}

func TestNormalize_DedupesKeepingOrder(t *testing.T) {
	got := Normalize([]string{"golang", "Python", "Go", "", "python", "SQL"})
	assert.Equal(t, []string{"Go", "Python", "SQL"}, got)
}

func TestTopSkills(t *testing.T) {
	postings := []types.JobPosting{
		{JobID: "1", Skills: []string{"Go", "SQL"}},
		{JobID: "2", Skills: []string{"golang", "Kafka"}},
		{JobID: "3", Skills: []string{"sql", "Go", "go"}},
		{JobID: "4"},
	}

	got := TopSkills(postings, 2)
	require.Len(t, got, 2)
	assert.Equal(t, SkillCount{Skill: "Go", Count: 3}, got[0])
	assert.Equal(t, SkillCount{Skill: "SQL", Count: 2}, got[1])

	assert.Len(t, TopSkills(postings, 0), 3)
	assert.Empty(t, TopSkills(nil, 5))
}

func TestExtractor_Extract(t *testing.T) {
	client := &fakeLLM{response: `{"skills": ["golang", "PostgreSQL", "Go", "redis"]}`}
	e := NewExtractor(client, 0, false)

	got, err := e.Extract(t.Context(), strPtr("we build services in go on postgres"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Redis"}, got)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "we build services in go on postgres")
	assert.Contains(t, client.prompts[0], "at most 10 skills")
}

func TestExtractor_Extract_CapsResult(t *testing.T) {
	client := &fakeLLM{response: `{"skills": ["a1", "b2", "c3", "d4"]}`}
	got, err := NewExtractor(client, 2, false).Extract(t.Context(), strPtr("text"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, got)
}

func TestExtractor_Extract_EmptyDescription(t *testing.T) {
	client := &fakeLLM{}
	e := NewExtractor(client, 5, false)

	for _, desc := range []*string{nil, strPtr("  ")} {
		got, err := e.Extract(t.Context(), desc)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Empty(t, client.prompts)
}

func TestExtractor_Extract_Errors(t *testing.T) {
	_, err := NewExtractor(&fakeLLM{err: errors.New("quota")}, 5, false).Extract(t.Context(), strPtr("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract skills")

	_, err = NewExtractor(&fakeLLM{response: "not json"}, 5, false).Extract(t.Context(), strPtr("x"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to parse"))
}

func TestExtractor_Run(t *testing.T) {
	store := &fakeStore{
		jobs: []types.JobPosting{
			{JobID: "1", Description: strPtr("go services")},
			{JobID: "2", Description: strPtr("python data")},
			{JobID: "3", Description: strPtr("rust")},
		},
		failFor: "2",
	}
	client := &fakeLLM{response: `{"skills": ["Go"]}`}

	updated, err := NewExtractor(client, 5, true).Run(t.Context(), store, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, []string{"Go"}, store.updated["1"])
	assert.NotContains(t, store.updated, "2")
	assert.Contains(t, store.updated, "3")
}
