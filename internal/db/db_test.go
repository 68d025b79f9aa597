package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jonathan/job-harvester/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDuplicateKeyError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &DuplicateKeyError{JobID: "123"})

	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "123", dup.JobID)
	assert.True(t, IsDuplicate(err))
	assert.False(t, errors.Is(err, ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "job 123 already exists")
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := storeError("insert job 1", cause)

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsDuplicate(err))
	assert.Equal(t, "failed to insert job 1: store unavailable: connection refused", err.Error())
}

func TestEncodeList(t *testing.T) {
	got, err := encodeList([]string{"bachelor's", "phd"}, true)
	require.NoError(t, err)
	assert.Equal(t, `["bachelor's","phd"]`, *got)

	got, err = encodeList(nil, true)
	require.NoError(t, err)
	assert.Equal(t, "[]", *got)

	got, err = encodeList([]string{}, false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		want  []string
	}{
		{"array", strPtr(`["master's","phd"]`), []string{"master's", "phd"}},
		{"empty array", strPtr("[]"), []string{}},
		{"null literal", strPtr("null"), []string{}},
		{"malformed", strPtr("{not json"), []string{}},
		{"empty string", strPtr(""), []string{}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeList(tt.input)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeFilter(t *testing.T) {
	assert.Equal(t, "", NormalizeFilter("None"))
	assert.Equal(t, "", NormalizeFilter(" none "))
	assert.Equal(t, "", NormalizeFilter(""))
	assert.Equal(t, "data engineer", NormalizeFilter(" Data Engineer "))
}

func TestMatchesFilters(t *testing.T) {
	job := &types.JobPosting{
		JobID:    "1",
		Title:    strPtr("Senior Data Engineer"),
		Location: types.Location{Location: strPtr("Austin, TX")},
	}
	untitled := &types.JobPosting{JobID: "2"}

	tests := []struct {
		name     string
		job      *types.JobPosting
		title    string
		location string
		want     bool
	}{
		{"no filters", job, "", "", true},
		{"title substring", job, "data", "", true},
		{"location substring", job, "", "austin", true},
		{"both match", job, "engineer", "tx", true},
		{"title mismatch", job, "nurse", "", false},
		{"location mismatch", job, "", "denver", false},
		{"nil fields pass empty filters", untitled, "", "", true},
		{"nil title fails title filter", untitled, "engineer", "", false},
		{"nil location fails location filter", untitled, "", "austin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesFilters(tt.job, tt.title, tt.location))
		})
	}
}

func TestRunStatusConstants(t *testing.T) {
	for _, s := range []string{RunStatusRunning, RunStatusCompleted, RunStatusFailed} {
		assert.NotEmpty(t, s)
	}
	assert.Nil(t, Run{Status: RunStatusRunning}.CompletedAt)
}
