package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/editor"
	"github.com/dgallion1/jobdesc/internal/store"
	"github.com/dgallion1/jobdesc/internal/suggest"
)

type createSessionRequest struct {
	Document json.RawMessage `json:"document,omitempty"`
	// JobID binds the session to a stored description. Without a document
	// the stored one is loaded.
	JobID string `json:"job_id,omitempty"`
}

type sessionResponse struct {
	SessionID string              `json:"session_id"`
	JobID     string              `json:"job_id,omitempty"`
	Document  doctree.Document    `json:"document"`
	Cursor    editor.Position     `json:"cursor"`
	State     string              `json:"state"`
	Dirty     bool                `json:"dirty"`
	Popup     *suggest.PopupState `json:"popup,omitempty"`
}

func sessionView(e *editSession) sessionResponse {
	resp := sessionResponse{
		SessionID: e.id,
		JobID:     e.jobID,
		Document:  e.session.Document(),
		Cursor:    e.session.Cursor(),
		State:     e.session.State().String(),
		Dirty:     e.session.Dirty(),
	}
	if e.popup != nil {
		st := e.popup.State()
		resp.Popup = &st
	}
	return resp
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var doc doctree.Document
	switch {
	case len(req.Document) > 0:
		d, err := doctree.Unmarshal(req.Document)
		if err != nil {
			documentError(w, err)
			return
		}
		doc = d
	case req.JobID != "" && s.deps.Store != nil:
		rec, err := s.deps.Store.Load(r.Context(), req.JobID)
		switch {
		case err == nil:
			d, err := rec.Decode()
			if err != nil {
				documentError(w, err)
				return
			}
			doc = d
		case !errors.Is(err, store.ErrNotFound):
			s.log.Error("load description for session failed", "job_id", req.JobID, "error", err)
			jsonError(w, "failed to load description", http.StatusInternalServerError)
			return
		}
	}

	e, err := s.sessions.create(doc, req.JobID, s.deps.Suggest)
	if err != nil {
		documentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionView(e))
}

// session resolves the {sessionID} route parameter, answering 404 itself.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editSession, bool) {
	e := s.sessions.get(chi.URLParam(r, "sessionID"))
	if e == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return e, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionView(e))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	dirty, ok := s.sessions.remove(chi.URLParam(r, "sessionID"))
	if !ok {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"discarded_changes": dirty})
}

type commandsRequest struct {
	Commands []json.RawMessage `json:"commands"`
}

// handleSessionCommands applies all commands as one edit.
func (s *Server) handleSessionCommands(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	var req commandsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cmds := make([]editor.Command, 0, len(req.Commands))
	for _, raw := range req.Commands {
		cmd, err := editor.DecodeCommand(raw)
		if err != nil {
			s.deps.Metrics.EditorCommand("decode", err)
			editorError(w, err)
			return
		}
		cmds = append(cmds, cmd)
	}
	err := e.session.Apply(cmds...)
	for _, cmd := range cmds {
		s.deps.Metrics.EditorCommand(cmd.Op(), err)
	}
	if err != nil {
		editorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(e))
}

type flushRequest struct {
	JobID              string `json:"job_id"`
	CompanyDescription string `json:"company_description"`
}

// handleSessionFlush persists the session document. The company description
// already stored is kept unless the request supplies one.
func (s *Server) handleSessionFlush(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	var req flushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	jobID := req.JobID
	if jobID == "" {
		jobID = e.jobID
	}
	if jobID == "" {
		jsonError(w, "job_id is required", http.StatusBadRequest)
		return
	}
	company := req.CompanyDescription
	if company == "" {
		if prev, err := s.deps.Store.Load(r.Context(), jobID); err == nil {
			company = prev.CompanyDescription
		}
	}

	rec, err := s.saveDescription(r, jobID, e.session.Document(), company)
	if err != nil {
		s.log.Error("flush session failed", "session_id", e.id, "job_id", jobID, "error", err)
		jsonError(w, "failed to save description", http.StatusInternalServerError)
		return
	}
	e.session.MarkClean()
	writeJSON(w, http.StatusOK, descriptionResponse{
		JobID:              rec.JobID,
		CompanyDescription: rec.CompanyDescription,
		ContentHash:        rec.ContentHash,
		UpdatedAt:          rec.UpdatedAt,
	})
}

// editorError maps editor failures: a position that does not resolve is a
// conflict with the current document, a closed session is gone.
func editorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrInvalidPosition):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, editor.ErrClosed):
		jsonError(w, err.Error(), http.StatusGone)
	case errors.Is(err, doctree.ErrMalformedDocument):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		jsonError(w, err.Error(), http.StatusBadRequest)
	}
}
