package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/render"
	"github.com/dgallion1/jobdesc/internal/store"
)

type putDescriptionRequest struct {
	Document           json.RawMessage `json:"document"`
	CompanyDescription string          `json:"company_description"`
}

type descriptionResponse struct {
	JobID              string          `json:"job_id"`
	Document           json.RawMessage `json:"document,omitempty"`
	CompanyDescription string          `json:"company_description"`
	ContentHash        string          `json:"content_hash"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.deps.Store == nil {
		jsonError(w, "description store unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (s *Server) handlePutDescription(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	jobID := chi.URLParam(r, "jobID")
	var req putDescriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := doctree.Unmarshal(req.Document)
	if err != nil {
		documentError(w, err)
		return
	}
	rec, err := s.saveDescription(r, jobID, doc, req.CompanyDescription)
	if err != nil {
		s.log.Error("save description failed", "job_id", jobID, "error", err)
		jsonError(w, "failed to save description", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, descriptionResponse{
		JobID:              rec.JobID,
		CompanyDescription: rec.CompanyDescription,
		ContentHash:        rec.ContentHash,
		UpdatedAt:          rec.UpdatedAt,
	})
}

func (s *Server) saveDescription(r *http.Request, jobID string, doc doctree.Document, company string) (store.Record, error) {
	rec, err := store.NewRecord(jobID, doc, company)
	if err != nil {
		return store.Record{}, err
	}
	s.deps.Metrics.Sanitize(false)
	return rec, s.deps.Store.Save(r.Context(), rec)
}

func (s *Server) loadDescription(w http.ResponseWriter, r *http.Request) (store.Record, bool) {
	jobID := chi.URLParam(r, "jobID")
	rec, err := s.deps.Store.Load(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "description not found", http.StatusNotFound)
		return store.Record{}, false
	}
	if err != nil {
		s.log.Error("load description failed", "job_id", jobID, "error", err)
		jsonError(w, "failed to load description", http.StatusInternalServerError)
		return store.Record{}, false
	}
	return rec, true
}

func (s *Server) handleGetDescription(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	rec, ok := s.loadDescription(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, descriptionResponse{
		JobID:              rec.JobID,
		Document:           rec.Document,
		CompanyDescription: rec.CompanyDescription,
		ContentHash:        rec.ContentHash,
		UpdatedAt:          rec.UpdatedAt,
	})
}

// handleGetDescriptionHTML renders the stored document. A stored document
// that no longer validates renders as the fallback notice.
func (s *Server) handleGetDescriptionHTML(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	rec, ok := s.loadDescription(w, r)
	if !ok {
		return
	}
	out := render.SafeBlob(rec.Document, s.log.With("job_id", rec.JobID))
	s.deps.Metrics.Render(out != render.FallbackNotice)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
}

func (s *Server) handleDeleteDescription(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	jobID := chi.URLParam(r, "jobID")
	err := s.deps.Store.Delete(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "description not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete description failed", "job_id", jobID, "error", err)
		jsonError(w, "failed to delete description", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
