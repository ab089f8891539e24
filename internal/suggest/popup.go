package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgallion1/jobdesc/internal/editor"
)

// ErrNothingSelected is returned by Confirm when the popup has no item.
var ErrNothingSelected = errors.New("no suggestion selected")

// PopupState is a point-in-time view of a Popup.
type PopupState struct {
	Open     bool   `json:"open"`
	Query    string `json:"query"`
	Loading  bool   `json:"loading"`
	Items    []Item `json:"items"`
	Selected int    `json:"selected"`
}

// Popup tracks the suggestion list shown while the user types after the
// trigger character. Each Update supersedes the previous one: its load is
// cancelled and any result it still produces is discarded.
type Popup struct {
	provider *Provider
	log      *slog.Logger

	mu       sync.Mutex
	open     bool
	gen      uint64
	applied  uint64
	query    string
	items    []Item
	selected int
	cancel   context.CancelFunc
	pending  map[uint64]chan struct{}
}

func NewPopup(p *Provider, log *slog.Logger) *Popup {
	return &Popup{provider: p, log: log, pending: make(map[uint64]chan struct{})}
}

// Open shows an empty popup.
func (pp *Popup) Open() {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.open = true
	pp.items = nil
	pp.selected = 0
}

// Update starts loading suggestions for query and returns immediately.
// A closed popup is opened. The returned channel is closed once this load
// has finished, whether its result was applied or discarded.
func (pp *Popup) Update(ctx context.Context, query string) <-chan struct{} {
	pp.mu.Lock()
	pp.open = true
	pp.gen++
	gen := pp.gen
	if pp.cancel != nil {
		pp.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	pp.cancel = cancel
	pp.query = query
	done := make(chan struct{})
	pp.pending[gen] = done
	pp.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		var items []Item
		for it := range pp.provider.Suggest(ctx, query) {
			items = append(items, it)
		}

		pp.mu.Lock()
		defer pp.mu.Unlock()
		delete(pp.pending, gen)
		if gen != pp.gen || !pp.open {
			pp.log.Debug("discarding stale suggestions", "query", query, "count", len(items))
			return
		}
		pp.items = items
		pp.selected = 0
		pp.applied = gen
	}()
	return done
}

// Wait blocks until every load started before the call has finished.
func (pp *Popup) Wait() {
	pp.mu.Lock()
	loads := make([]chan struct{}, 0, len(pp.pending))
	for _, done := range pp.pending {
		loads = append(loads, done)
	}
	pp.mu.Unlock()
	for _, done := range loads {
		<-done
	}
}

func (pp *Popup) State() PopupState {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return PopupState{
		Open:     pp.open,
		Query:    pp.query,
		Loading:  pp.open && pp.applied != pp.gen,
		Items:    append([]Item(nil), pp.items...),
		Selected: pp.selected,
	}
}

func (pp *Popup) Items() []Item {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return append([]Item(nil), pp.items...)
}

// Selected returns the highlighted item.
func (pp *Popup) Selected() (Item, bool) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if !pp.open || len(pp.items) == 0 {
		return Item{}, false
	}
	return pp.items[pp.selected], true
}

// Next moves the highlight down, wrapping to the first item.
func (pp *Popup) Next() {
	pp.move(1)
}

// Prev moves the highlight up, wrapping to the last item.
func (pp *Popup) Prev() {
	pp.move(-1)
}

func (pp *Popup) move(delta int) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	n := len(pp.items)
	if n == 0 {
		return
	}
	pp.selected = ((pp.selected+delta)%n + n) % n
}

// Select highlights item i.
func (pp *Popup) Select(i int) error {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if i < 0 || i >= len(pp.items) {
		return fmt.Errorf("%w: index %d of %d", ErrNothingSelected, i, len(pp.items))
	}
	pp.selected = i
	return nil
}

// Close hides the popup and drops interest in any pending load.
func (pp *Popup) Close() {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.closeLocked()
}

func (pp *Popup) closeLocked() {
	pp.open = false
	pp.gen++
	pp.applied = pp.gen
	if pp.cancel != nil {
		pp.cancel()
		pp.cancel = nil
	}
	pp.items = nil
	pp.selected = 0
	pp.query = ""
}

// Confirm replaces trigger, the trigger character and query typed after it,
// with the highlighted suggestion in one edit, then closes the popup. On
// error the popup stays open.
func (pp *Popup) Confirm(s *editor.Session, trigger editor.Range) error {
	item, ok := pp.Selected()
	if !ok {
		return ErrNothingSelected
	}
	if err := s.Apply(editor.ReplaceRange{Range: trigger, Fragment: item.Fragment}); err != nil {
		return err
	}
	pp.Close()
	return nil
}
