// Package editor implements single-user editing of a document: a pure
// command reducer (Apply) and a Session that owns the live document,
// cursor and dirty flag.
package editor

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// State is the lifecycle of a Session.
type State int

const (
	StateEmpty State = iota
	StateEditing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ChangeFunc receives the serialized document after every mutation. The
// slice is owned by the callee.
type ChangeFunc func(snapshot []byte)

// Session is one authoring surface's editing state. A session has a single
// owner; the mutex only guards against overlapping HTTP requests.
type Session struct {
	mu       sync.Mutex
	doc      doctree.Document
	cursor   Position
	state    State
	dirty    bool
	onChange ChangeFunc
	log      *slog.Logger
}

// NewSession opens a session over a copy of doc. onChange may be nil.
func NewSession(doc doctree.Document, onChange ChangeFunc, log *slog.Logger) (*Session, error) {
	if err := doctree.Validate(doc); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	state := StateEmpty
	if len(doc.Children) > 0 {
		state = StateEditing
	}
	return &Session{
		doc:      doctree.Clone(doc),
		state:    state,
		onChange: onChange,
		log:      log,
	}, nil
}

// Apply runs cmds in order as one edit. Either all apply or the document is
// left unchanged. onChange runs once, before Apply returns.
func (s *Session) Apply(cmds ...Command) error {
	if len(cmds) == 0 {
		return nil
	}
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	doc, cur := s.doc, s.cursor
	for _, cmd := range cmds {
		var err error
		doc, cur, err = Apply(doc, cmd)
		if err != nil {
			s.mu.Unlock()
			s.log.Debug("editor command rejected", "op", cmd.Op(), "error", err)
			return err
		}
	}
	snapshot, err := doctree.Marshal(doc)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.doc, s.cursor = doc, cur
	s.dirty = true
	s.state = StateEditing
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
	return nil
}

func (s *Session) InsertText(at Position, text string) error {
	return s.Apply(InsertText{At: at, Text: text})
}

func (s *Session) ToggleMark(r Range, m doctree.Mark) error {
	return s.Apply(ToggleMark{Range: r, Mark: m})
}

func (s *Session) SetBlockType(at Position, kind doctree.BlockKind, level int) error {
	return s.Apply(SetBlockType{At: at, Kind: kind, Level: level})
}

func (s *Session) InsertFragment(at Position, f doctree.Fragment) error {
	return s.Apply(InsertFragment{At: at, Fragment: f})
}

func (s *Session) DeleteRange(r Range) error {
	return s.Apply(DeleteRange{Range: r})
}

// Document returns a copy of the live document.
func (s *Session) Document() doctree.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return doctree.Clone(s.doc)
}

// Snapshot serializes the live document into a fresh slice.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return doctree.Marshal(s.doc)
}

func (s *Session) Cursor() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Position{Path: slices.Clone(s.cursor.Path), Offset: s.cursor.Offset}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkClean records that the caller persisted the latest snapshot.
func (s *Session) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Close ends the session and reports whether it held unpersisted changes.
// Persisting them is the caller's job.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return false
	}
	s.state = StateClosed
	if s.dirty {
		s.log.Warn("editor session closed with unflushed changes")
	}
	return s.dirty
}
