package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/jobdesc/internal/editor"
	"github.com/dgallion1/jobdesc/internal/suggest"
)

func (s *Server) popup(w http.ResponseWriter, r *http.Request) (*editSession, bool) {
	e, ok := s.session(w, r)
	if !ok {
		return nil, false
	}
	if e.popup == nil {
		jsonError(w, "suggestions unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return e, true
}

type popupUpdateRequest struct {
	Query string `json:"query"`
}

// handlePopupUpdate loads suggestions for the text typed after the trigger
// character and answers once they are in. A newer update supersedes it.
func (s *Server) handlePopupUpdate(w http.ResponseWriter, r *http.Request) {
	e, ok := s.popup(w, r)
	if !ok {
		return
	}
	var req popupUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	<-e.popup.Update(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, e.popup.State())
}

type popupSelectRequest struct {
	// Move is "next" or "prev". Otherwise Index is selected.
	Move  string `json:"move,omitempty"`
	Index int    `json:"index"`
}

func (s *Server) handlePopupSelect(w http.ResponseWriter, r *http.Request) {
	e, ok := s.popup(w, r)
	if !ok {
		return
	}
	var req popupSelectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Move {
	case "next":
		e.popup.Next()
	case "prev":
		e.popup.Prev()
	case "":
		if err := e.popup.Select(req.Index); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		jsonError(w, `move must be "next" or "prev"`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, e.popup.State())
}

type popupConfirmRequest struct {
	// Trigger spans the trigger character and the query typed after it.
	Trigger editor.Range `json:"trigger"`
}

func (s *Server) handlePopupConfirm(w http.ResponseWriter, r *http.Request) {
	e, ok := s.popup(w, r)
	if !ok {
		return
	}
	var req popupConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := e.popup.Confirm(e.session, req.Trigger)
	s.deps.Metrics.EditorCommand(editor.ReplaceRange{}.Op(), err)
	if errors.Is(err, suggest.ErrNothingSelected) {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		editorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(e))
}

func (s *Server) handlePopupClose(w http.ResponseWriter, r *http.Request) {
	e, ok := s.popup(w, r)
	if !ok {
		return
	}
	e.popup.Close()
	w.WriteHeader(http.StatusNoContent)
}
