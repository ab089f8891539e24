package editor

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// Position addresses a point in a document. Path walks containers from the
// root: an index into the current block list, and for a list an item index
// followed by a block index inside that item. Offset counts runes inside a
// textblock; a hard break (or "\n" in a code block) counts as one.
//
// An empty Path means the first textblock in the document. On an empty
// document it creates an empty paragraph to hold the cursor.
type Position struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

// At builds a Position.
func At(offset int, path ...int) Position {
	return Position{Path: path, Offset: offset}
}

// Range is a span between two positions in the same container.
type Range struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// slot is a resolved block: the container slice holding it and its index.
type slot struct {
	parent *[]doctree.Block
	index  int
	path   []int
}

func (s slot) block() doctree.Block    { return (*s.parent)[s.index] }
func (s slot) set(b doctree.Block)     { (*s.parent)[s.index] = b }
func (s slot) base() []int             { return s.path[:len(s.path)-1] }
func (s slot) sibling(index int) []int { return append(slices.Clone(s.base()), index) }
func (s slot) sameParent(o slot) bool  { return s.parent == o.parent }

func invalidPosition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPosition, fmt.Sprintf(format, args...))
}

func resolveBlock(doc *doctree.Document, path []int) (slot, error) {
	if len(path) == 0 {
		return resolveFirst(doc)
	}
	blocks := &doc.Children
	for i := 0; i < len(path); i++ {
		idx := path[i]
		if idx < 0 || idx >= len(*blocks) {
			return slot{}, invalidPosition("index %d out of range at %v", idx, path[:i+1])
		}
		if i == len(path)-1 {
			return slot{parent: blocks, index: idx, path: slices.Clone(path)}, nil
		}
		switch b := (*blocks)[idx].(type) {
		case *doctree.Blockquote:
			blocks = &b.Children
		case *doctree.BulletList, *doctree.OrderedList:
			items := doctree.ListItems(b)
			i++
			if i == len(path)-1 {
				return slot{}, invalidPosition("path %v ends at a list item", path)
			}
			item := path[i]
			if item < 0 || item >= len(items) {
				return slot{}, invalidPosition("item %d out of range at %v", item, path[:i+1])
			}
			blocks = &items[item].Children
		default:
			return slot{}, invalidPosition("%s at %v has no child blocks", b.Kind(), path[:i+1])
		}
	}
	return slot{}, invalidPosition("empty path")
}

// resolveFirst descends first children to the first leaf block.
func resolveFirst(doc *doctree.Document) (slot, error) {
	if len(doc.Children) == 0 {
		doc.Children = []doctree.Block{&doctree.Paragraph{}}
	}
	blocks := &doc.Children
	path := []int{0}
	for {
		switch b := (*blocks)[0].(type) {
		case *doctree.Blockquote:
			if len(b.Children) == 0 {
				return slot{parent: blocks, index: 0, path: path}, nil
			}
			blocks = &b.Children
			path = append(path, 0)
		case *doctree.BulletList, *doctree.OrderedList:
			items := doctree.ListItems(b)
			if len(items) == 0 {
				return slot{parent: blocks, index: 0, path: path}, nil
			}
			blocks = &items[0].Children
			path = append(path, 0, 0)
		default:
			return slot{parent: blocks, index: 0, path: path}, nil
		}
	}
}

// resolveText resolves pos to a textblock and checks the offset.
func resolveText(doc *doctree.Document, pos Position) (slot, error) {
	s, err := resolveBlock(doc, pos.Path)
	if err != nil {
		return slot{}, err
	}
	b := s.block()
	if !doctree.IsTextblock(b) {
		return slot{}, invalidPosition("%s at %v does not hold text", b.Kind(), s.path)
	}
	if pos.Offset < 0 || pos.Offset > textLen(b) {
		return slot{}, invalidPosition("offset %d outside 0..%d at %v", pos.Offset, textLen(b), s.path)
	}
	return s, nil
}

type point struct {
	slot
	offset int
}

// resolveRange resolves both ends, requires a shared container and returns
// them in document order.
func resolveRange(doc *doctree.Document, r Range) (point, point, error) {
	from, err := resolveText(doc, r.From)
	if err != nil {
		return point{}, point{}, err
	}
	to, err := resolveText(doc, r.To)
	if err != nil {
		return point{}, point{}, err
	}
	if !from.sameParent(to) {
		return point{}, point{}, fmt.Errorf("%w: range %v..%v spans containers", ErrInvalidCommand, from.path, to.path)
	}
	a, b := point{from, r.From.Offset}, point{to, r.To.Offset}
	if a.index > b.index || (a.index == b.index && a.offset > b.offset) {
		a, b = b, a
	}
	return a, b, nil
}

func textLen(b doctree.Block) int {
	switch b := b.(type) {
	case *doctree.Heading:
		return doctree.InlineLen(b.Children)
	case *doctree.Paragraph:
		return doctree.InlineLen(b.Children)
	case *doctree.CodeBlock:
		return utf8.RuneCountInString(b.Text)
	}
	return 0
}
