//go:build integration

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/server/ratelimit"
	"github.com/jonathan/job-harvester/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires TEST_DATABASE_URL pointing at a disposable database; the jobs
// table is recreated.
func TestIntegration_ServerOverPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.Initialize(ctx))

	for _, p := range []*types.JobPosting{
		{JobID: "4001", Title: types.StringPtr("Platform Engineer"), Location: types.Location{Location: types.StringPtr("Denver, CO")}},
		{JobID: "4002", Title: types.StringPtr("Data Engineer"), Location: types.Location{Location: types.StringPtr("Remote")}},
	} {
		require.NoError(t, database.InsertJob(ctx, p))
	}

	s, err := New(Config{Store: database, RateLimit: &ratelimit.Config{Enabled: false}})
	require.NoError(t, err)
	defer s.rateLimiter.Stop()
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/jobs/search?title=data", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res ListJobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "4002", res.Jobs[0].JobID)

	w = do(t, h, http.MethodGet, "/jobs/4001", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats db.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
}
