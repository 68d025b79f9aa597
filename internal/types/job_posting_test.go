package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRange_Midpoint(t *testing.T) {
	r := NewRange("$100,000 - $150,000", 100000, 150000)

	require.NotNil(t, r.Avg)
	assert.Equal(t, 125000.0, *r.Avg)
	assert.Equal(t, 100000.0, *r.Min)
	assert.Equal(t, 150000.0, *r.Max)
	assert.Equal(t, "$100,000 - $150,000", *r.Raw)
	assert.False(t, r.IsEmpty())
}

func TestNewAverageRange(t *testing.T) {
	r := NewAverageRange("5", 5)

	assert.Nil(t, r.Min)
	assert.Nil(t, r.Max)
	require.NotNil(t, r.Avg)
	assert.Equal(t, 5.0, *r.Avg)
}

func TestRange_IsEmpty(t *testing.T) {
	assert.True(t, Range{}.IsEmpty())
}

func TestJobPosting_FlattenedJSON(t *testing.T) {
	p := JobPosting{
		JobID:    "123",
		Title:    StringPtr("Backend Engineer"),
		Location: Location{City: StringPtr("Austin")},
		Criteria: Criteria{Industry: StringPtr("Software")},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "123", m["job_id"])
	assert.Equal(t, "Austin", m["city"])
	assert.Equal(t, "Software", m["industry"])
	assert.Nil(t, m["state"])
	assert.NotContains(t, m, "skills")
}

func TestJobPosting_Summary(t *testing.T) {
	p := &JobPosting{JobID: "42"}
	assert.Equal(t, "42 (untitled) @ (unknown company)", p.Summary())

	p.Title = StringPtr("SRE")
	p.CompanyName = StringPtr("Acme")
	assert.Equal(t, "42 SRE @ Acme", p.Summary())
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", *StringPtr("x"))
	assert.Equal(t, "fallback", Deref(nil, "fallback"))
}
