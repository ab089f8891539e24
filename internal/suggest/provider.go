// Package suggest turns a short query typed after the trigger character into
// insertable writing suggestions, and tracks the popup that offers them.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/llm"
	"github.com/dgallion1/jobdesc/internal/metrics"
	"github.com/dgallion1/jobdesc/internal/parser"
)

const (
	// TriggerChar opens the suggestion popup in the editor.
	TriggerChar = '/'

	// MinQueryLen is the shortest query sent to the model, in runes.
	MinQueryLen = 2

	SystemInstruction  = "You are a helpful writing assistant. Provide brief, relevant suggestions."
	DefaultTemperature = 0.7
	DefaultMaxItems    = 8
)

// ErrSuggestionUnavailable wraps transport and parse failures.
var ErrSuggestionUnavailable = errors.New("suggestions unavailable")

// Item is one candidate insertion. It is never persisted.
type Item struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Fragment    doctree.Fragment `json:"fragment"`
}

type Options struct {
	// Structured lets content carry Markdown block structure. Otherwise it
	// is plain text split into paragraphs on blank lines.
	Structured  bool
	MaxItems    int
	Timeout     time.Duration
	Temperature float64
}

// Provider asks a text generator for suggestions.
type Provider struct {
	gen     llm.Generator
	opts    Options
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewProvider(gen llm.Generator, opts Options, m *metrics.Metrics, log *slog.Logger) *Provider {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Provider{gen: gen, opts: opts, metrics: m, log: log}
}

// Suggest returns a lazy sequence of suggestions for query. The request is
// made when iteration starts; the sequence yields nothing on a second pass.
// Failures are logged and produce an empty sequence.
func (p *Provider) Suggest(ctx context.Context, query string) iter.Seq[Item] {
	var used atomic.Bool
	return func(yield func(Item) bool) {
		if used.Swap(true) {
			return
		}
		items, err := p.Fetch(ctx, query)
		if err != nil {
			if ctx.Err() == nil {
				p.log.Warn("suggestions unavailable", "query", query, "error", err)
			}
			return
		}
		for _, it := range items {
			if !yield(it) {
				return
			}
		}
	}
}

// Fetch is Suggest with the error exposed. Short queries return no items
// and no error without calling the generator.
func (p *Provider) Fetch(ctx context.Context, query string) ([]Item, error) {
	if utf8.RuneCountInString(query) < MinQueryLen {
		p.metrics.SuggestionQuery("short")
		return nil, nil
	}
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	raw, err := p.gen.Generate(ctx, llm.Request{
		Prompt:            "Generate suggestions for: " + query,
		SystemInstruction: SystemInstruction,
		Temperature:       p.opts.Temperature,
	})
	if err != nil {
		p.metrics.SuggestionQuery("unavailable")
		return nil, fmt.Errorf("%w: %w", ErrSuggestionUnavailable, err)
	}
	items, err := p.parse(raw)
	if err != nil {
		p.metrics.SuggestionQuery("unavailable")
		return nil, fmt.Errorf("%w: %w", ErrSuggestionUnavailable, err)
	}
	p.metrics.SuggestionQuery("ok")
	return items, nil
}

func (p *Provider) parse(raw string) ([]Item, error) {
	dec := json.NewDecoder(strings.NewReader(llm.StripCodeBlock(raw)))
	dec.DisallowUnknownFields()
	var wire []wireSuggestion
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("parse suggestions json: %w (raw: %s)", err, llm.Truncate(raw, 200))
	}
	if wire == nil {
		return nil, fmt.Errorf("suggestions response is not an array (raw: %s)", llm.Truncate(raw, 200))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after suggestions array")
	}

	var items []Item
	for i := range wire {
		w := wire[i]
		if !validSuggestion(&w) {
			p.log.Debug("dropping invalid suggestion", "index", i, "title", llm.Truncate(w.Title, 60))
			continue
		}
		frag := p.fragment(w.Content)
		if frag.IsEmpty() {
			continue
		}
		items = append(items, Item{Title: w.Title, Description: w.Description, Fragment: frag})
		if len(items) == p.opts.MaxItems {
			break
		}
	}
	return items, nil
}

// fragment converts generated content. Nothing in content is interpreted as
// markup: plain mode keeps it as text, structured mode reads it as Markdown
// whose raw HTML stays literal.
func (p *Provider) fragment(content string) doctree.Fragment {
	var blocks []doctree.Block
	if p.opts.Structured {
		doc, err := (&parser.MarkdownParser{}).Parse(strings.NewReader(content))
		if err != nil {
			p.log.Debug("structured suggestion fell back to text", "error", err)
			blocks = parser.Paragraphs(content)
		} else {
			blocks = doc.Children
		}
	} else {
		blocks = parser.Paragraphs(content)
	}
	if len(blocks) == 1 {
		if para, ok := blocks[0].(*doctree.Paragraph); ok {
			return doctree.Fragment{Inlines: para.Children}
		}
	}
	return doctree.Fragment{Blocks: blocks}
}
