package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/parser"
	"github.com/dgallion1/jobdesc/internal/render"
	"github.com/dgallion1/jobdesc/internal/sanitize"
	"github.com/dgallion1/jobdesc/internal/suggest"
)

type renderRequest struct {
	Document json.RawMessage `json:"document"`
	// Export additionally passes the output through the sanitizer.
	Export bool `json:"export"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := doctree.Unmarshal(req.Document)
	if err != nil {
		s.deps.Metrics.Render(false)
		documentError(w, err)
		return
	}
	var out string
	if req.Export {
		out, err = render.Export(doc)
	} else {
		out, err = render.HTML(doc)
	}
	if err != nil {
		s.deps.Metrics.Render(false)
		documentError(w, err)
		return
	}
	s.deps.Metrics.Render(true)
	writeJSON(w, http.StatusOK, map[string]string{"html": out})
}

type sanitizeRequest struct {
	HTML string `json:"html"`
	Rich bool   `json:"rich"`
}

func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req sanitizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out := sanitize.Sanitize(req.HTML)
	if req.Rich {
		out = sanitize.SanitizeRichText(req.HTML)
	}
	s.deps.Metrics.Sanitize(req.Rich)
	writeJSON(w, http.StatusOK, map[string]string{"html": out})
}

type importRequest struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var p parser.Parser
	var err error
	if req.Format == "" && req.Filename != "" {
		p, err = parser.ForFile(req.Filename)
	} else {
		p, err = parser.ForFormat(req.Format)
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(strings.NewReader(req.Content))
	if err != nil {
		s.log.Warn("import failed", "format", req.Format, "error", err)
		documentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc})
}

type suggestRequest struct {
	Query string `json:"query"`
}

// handleSuggest never fails on generator errors; it answers with an empty
// list instead.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items := []suggest.Item{}
	if s.deps.Suggest != nil {
		for it := range s.deps.Suggest.Suggest(r.Context(), req.Query) {
			items = append(items, it)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": items})
}

// documentError maps a document validation failure to 422 and anything else
// to 400.
func documentError(w http.ResponseWriter, err error) {
	if errors.Is(err, doctree.ErrMalformedDocument) {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}
