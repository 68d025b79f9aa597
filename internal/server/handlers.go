package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/job-harvester/internal/db"
	"github.com/jonathan/job-harvester/internal/pipeline"
	"github.com/jonathan/job-harvester/internal/server/middleware"
	"github.com/jonathan/job-harvester/internal/types"
)

// ListJobsResponse is the body of GET /jobs and GET /jobs/search.
type ListJobsResponse struct {
	Jobs  []types.JobPosting `json:"jobs"`
	Count int                `json:"count"`
}

// parseQueryInt reads a non-negative integer query parameter, clamped to
// maxValue when maxValue > 0.
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// handleListJobs returns every stored posting in insertion order.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.GetAllJobs(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, ListJobsResponse{Jobs: jobs, Count: len(jobs)})
}

// handleSearchJobs filters by ?title= and ?location= substrings.
func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := s.store.SearchJobs(r.Context(), db.SearchOptions{
		Title:    q.Get("title"),
		Location: q.Get("location"),
		Limit:    parseQueryInt(r, "limit", db.DefaultSearchLimit, 50),
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, ListJobsResponse{Jobs: jobs, Count: len(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.JobStats(r.Context(), parseQueryInt(r, "top", 5, 50))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), parseQueryInt(r, "limit", 20, 100))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// handleRunPipeline runs one scrape batch synchronously and returns its
// summary. A second request while a batch is running gets 409.
func (s *Server) handleRunPipeline(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "pipeline is not configured")
		return
	}

	var req types.RunPipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if !s.runMu.TryLock() {
		s.errorResponse(w, HTTPStatus(ErrRunInProgress), ErrRunInProgress.Error())
		return
	}
	defer s.runMu.Unlock()

	operator, _ := middleware.GetOperator(r)
	log.Printf("[server] Pipeline run requested by %s: %d posting(s), clear=%t", operator, req.NumPostings, req.ClearExisting)

	summary, err := s.runner.Run(r.Context(), pipeline.RunOptions{
		NumPostings:   req.NumPostings,
		ClearExisting: req.ClearExisting,
		Trigger:       pipeline.TriggerAPI,
	})
	switch {
	case errors.Is(err, pipeline.ErrNoPostings):
		// An empty batch is a result, not a server fault.
		s.jsonResponse(w, http.StatusOK, summary)
	case err != nil && summary == nil:
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	case err != nil:
		s.jsonResponse(w, http.StatusBadGateway, summary)
	default:
		s.jsonResponse(w, http.StatusOK, summary)
	}
}

// handleClearJobs deletes every stored posting.
func (s *Server) handleClearJobs(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		s.errorResponse(w, HTTPStatus(ErrRunInProgress), ErrRunInProgress.Error())
		return
	}
	defer s.runMu.Unlock()

	n, err := s.store.ClearJobs(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	operator, _ := middleware.GetOperator(r)
	log.Printf("[server] %s cleared %d job(s)", operator, n)
	s.jsonResponse(w, http.StatusOK, types.ClearJobsResponse{Deleted: n})
}
