package api

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/editor"
	"github.com/dgallion1/jobdesc/internal/metrics"
	"github.com/dgallion1/jobdesc/internal/suggest"
)

// editSession is one editor session with its suggestion popup.
type editSession struct {
	id      string
	jobID   string
	session *editor.Session
	popup   *suggest.Popup

	mu       sync.Mutex
	lastUsed time.Time
}

func (e *editSession) touch() {
	e.mu.Lock()
	e.lastUsed = time.Now()
	e.mu.Unlock()
}

func (e *editSession) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}

// sessionRegistry holds open editor sessions and expires idle ones.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*editSession
	ttl      time.Duration
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func newSessionRegistry(ttl time.Duration, m *metrics.Metrics, log *slog.Logger) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*editSession),
		ttl:      ttl,
		metrics:  m,
		log:      log,
	}
}

func (r *sessionRegistry) create(doc doctree.Document, jobID string, provider *suggest.Provider) (*editSession, error) {
	id := uuid.Must(uuid.NewV4()).String()
	log := r.log.With("session_id", id)
	sess, err := editor.NewSession(doc, func(snapshot []byte) {
		log.Debug("document changed", "bytes", len(snapshot))
	}, log)
	if err != nil {
		return nil, err
	}
	e := &editSession{
		id:       id,
		jobID:    jobID,
		session:  sess,
		lastUsed: time.Now(),
	}
	if provider != nil {
		e.popup = suggest.NewPopup(provider, log)
	}

	r.mu.Lock()
	r.sessions[id] = e
	r.mu.Unlock()
	r.metrics.SessionOpened()
	log.Info("editor session opened", "job_id", jobID)
	return e, nil
}

func (r *sessionRegistry) get(id string) *editSession {
	r.mu.Lock()
	e := r.sessions[id]
	r.mu.Unlock()
	if e != nil {
		e.touch()
	}
	return e
}

// remove closes the session and reports whether it had unflushed changes.
func (r *sessionRegistry) remove(id string) (dirty, ok bool) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return false, false
	}
	return r.close(e), true
}

func (r *sessionRegistry) close(e *editSession) bool {
	if e.popup != nil {
		e.popup.Close()
	}
	dirty := e.session.Close()
	r.metrics.SessionClosed()
	return dirty
}

// cleanup closes sessions idle for longer than the TTL.
func (r *sessionRegistry) cleanup() {
	now := time.Now()
	var expired []*editSession
	r.mu.Lock()
	for id, e := range r.sessions {
		if now.Sub(e.idleSince()) > r.ttl {
			expired = append(expired, e)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, e := range expired {
		if r.close(e) {
			r.log.Warn("expired editor session discarded unflushed changes", "session_id", e.id, "job_id", e.jobID)
		}
	}
}

func (r *sessionRegistry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*editSession)
	r.mu.Unlock()
	for _, e := range all {
		r.close(e)
	}
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
