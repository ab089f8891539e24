package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/jobdesc/internal/pipeline"
)

type generateRequest struct {
	pipeline.Request
	// PostID saves the result as the description of that job post.
	PostID string `json:"post_id,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Orchestrator == nil {
		jsonError(w, "generation unavailable", http.StatusServiceUnavailable)
		return
	}
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Request.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PostID != "" && s.deps.Store == nil {
		jsonError(w, "description store unavailable", http.StatusServiceUnavailable)
		return
	}

	job := pipeline.NewJob(req.Request, req.PostID)
	if err := s.deps.Orchestrator.Submit(job); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/generate/%s/status", job.ID),
	})
}

func (s *Server) handleGenerateStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Orchestrator == nil {
		jsonError(w, "generation unavailable", http.StatusServiceUnavailable)
		return
	}
	job := s.deps.Orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
