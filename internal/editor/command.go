package editor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidCommand  = errors.New("invalid command")
	ErrClosed          = errors.New("session closed")
)

// Command is one discrete edit.
type Command interface {
	Op() string
	command()
}

// InsertText types Text at At. Text inherits the marks of the run before it;
// newlines become hard breaks.
type InsertText struct {
	At   Position
	Text string
}

// ToggleMark adds Mark across Range, or removes it when every character in
// the range already carries it.
type ToggleMark struct {
	Range Range
	Mark  doctree.Mark
}

// SetBlockType converts the block at At. Paragraph, Heading and CodeBlock
// convert a textblock in place; lists and Blockquote wrap the block, and a
// list switched to the other list kind is converted.
type SetBlockType struct {
	At    Position
	Kind  doctree.BlockKind
	Level int
}

// InsertFragment splices content at At. Block content splits the textblock.
type InsertFragment struct {
	At       Position
	Fragment doctree.Fragment
}

type DeleteRange struct {
	Range Range
}

// ReplaceRange deletes Range and inserts Fragment where it started.
type ReplaceRange struct {
	Range    Range
	Fragment doctree.Fragment
}

func (InsertText) Op() string     { return "insertText" }
func (ToggleMark) Op() string     { return "toggleMark" }
func (SetBlockType) Op() string   { return "setBlockType" }
func (InsertFragment) Op() string { return "insertFragment" }
func (DeleteRange) Op() string    { return "deleteRange" }
func (ReplaceRange) Op() string   { return "replaceRange" }

func (InsertText) command()     {}
func (ToggleMark) command()     {}
func (SetBlockType) command()   {}
func (InsertFragment) command() {}
func (DeleteRange) command()    {}
func (ReplaceRange) command()   {}

func invalidCommand(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, fmt.Sprintf(format, args...))
}

// Apply runs cmd against a copy of doc and returns the edited document and
// the resulting cursor. On error doc is returned unchanged.
func Apply(doc doctree.Document, cmd Command) (doctree.Document, Position, error) {
	if err := doctree.Validate(doc); err != nil {
		return doc, Position{}, err
	}
	work := doctree.Clone(doc)
	var (
		cur Position
		err error
	)
	switch c := cmd.(type) {
	case InsertText:
		cur, err = insertText(&work, c)
	case ToggleMark:
		cur, err = toggleMark(&work, c)
	case SetBlockType:
		cur, err = setBlockType(&work, c)
	case InsertFragment:
		cur, err = insertFragment(&work, c.At, c.Fragment)
	case DeleteRange:
		cur, err = deleteSelection(&work, c.Range)
	case ReplaceRange:
		cur, err = replaceRange(&work, c)
	default:
		err = invalidCommand("unsupported command %T", cmd)
	}
	if err != nil {
		return doc, Position{}, err
	}
	normalizeBlocks(work.Children)
	if err := doctree.Validate(work); err != nil {
		return doc, Position{}, fmt.Errorf("%s produced %w", cmd.Op(), err)
	}
	return work, cur, nil
}

func insertText(doc *doctree.Document, c InsertText) (Position, error) {
	if c.Text == "" {
		return Position{}, invalidCommand("empty text")
	}
	s, err := resolveText(doc, c.At)
	if err != nil {
		return Position{}, err
	}
	b := s.block()
	left, right := splitInlines(inlinesOf(b), c.At.Offset)
	marks := marksBefore(left)
	if _, ok := b.(*doctree.CodeBlock); ok {
		marks = 0
	}
	ins := doctree.TextToInlines(c.Text, marks)
	s.set(withInlines(b, slices.Concat(left, ins, right)))
	return Position{Path: s.path, Offset: c.At.Offset + doctree.InlineLen(ins)}, nil
}

func toggleMark(doc *doctree.Document, c ToggleMark) (Position, error) {
	if _, ok := doctree.ParseMark(c.Mark.String()); !ok {
		return Position{}, invalidCommand("unknown mark %d", c.Mark)
	}
	start, end, err := resolveRange(doc, c.Range)
	if err != nil {
		return Position{}, err
	}
	if start.index == end.index && start.offset == end.offset {
		return Position{}, invalidCommand("toggleMark on an empty range")
	}

	type span struct {
		index               int
		left, middle, right []doctree.Inline
	}
	var spans []span
	allMarked := true
	for i := start.index; i <= end.index; i++ {
		b := (*start.parent)[i]
		switch b.(type) {
		case *doctree.CodeBlock:
			return Position{}, invalidCommand("marks are not allowed in a code block")
		case *doctree.Heading, *doctree.Paragraph:
		default:
			continue
		}
		in := inlinesOf(b)
		from, to := 0, doctree.InlineLen(in)
		if i == start.index {
			from = start.offset
		}
		if i == end.index {
			to = end.offset
		}
		left, rest := splitInlines(in, from)
		middle, right := splitInlines(rest, to-from)
		for _, n := range middle {
			if t, ok := n.(doctree.Text); ok && !t.Marks.Has(c.Mark) {
				allMarked = false
			}
		}
		spans = append(spans, span{i, left, middle, right})
	}

	for _, sp := range spans {
		for j, n := range sp.middle {
			if t, ok := n.(doctree.Text); ok {
				if allMarked {
					t.Marks = t.Marks.Without(c.Mark)
				} else {
					t.Marks = t.Marks.With(c.Mark)
				}
				sp.middle[j] = t
			}
		}
		b := (*start.parent)[sp.index]
		(*start.parent)[sp.index] = withInlines(b, slices.Concat(sp.left, sp.middle, sp.right))
	}
	return Position{Path: end.path, Offset: end.offset}, nil
}

func setBlockType(doc *doctree.Document, c SetBlockType) (Position, error) {
	s, err := resolveBlock(doc, c.At.Path)
	if err != nil {
		return Position{}, err
	}
	b := s.block()
	if c.At.Offset < 0 || c.At.Offset > textLen(b) {
		return Position{}, invalidPosition("offset %d outside 0..%d at %v", c.At.Offset, textLen(b), s.path)
	}

	switch c.Kind {
	case doctree.KindParagraph, doctree.KindHeading, doctree.KindCodeBlock:
		if !doctree.IsTextblock(b) {
			return Position{}, invalidCommand("cannot convert %s to %s", b.Kind(), c.Kind)
		}
		in := doctree.CloneInlines(inlinesOf(b))
		var nb doctree.Block
		switch c.Kind {
		case doctree.KindParagraph:
			nb = &doctree.Paragraph{Children: in}
		case doctree.KindHeading:
			if c.Level < 1 || c.Level > 3 {
				return Position{}, invalidCommand("heading level %d out of range 1-3", c.Level)
			}
			nb = &doctree.Heading{Level: c.Level, Children: in}
		case doctree.KindCodeBlock:
			nb = &doctree.CodeBlock{Text: doctree.InlineText(in)}
		}
		s.set(nb)
		return Position{Path: s.path, Offset: c.At.Offset}, nil

	case doctree.KindBulletList, doctree.KindOrderedList:
		if isList(b) {
			s.set(newList(c.Kind, doctree.ListItems(b)))
			return Position{Path: s.path, Offset: c.At.Offset}, nil
		}
		s.set(newList(c.Kind, []*doctree.ListItem{{Children: []doctree.Block{b}}}))
		return Position{Path: slices.Concat(s.path, []int{0, 0}), Offset: c.At.Offset}, nil

	case doctree.KindBlockquote:
		s.set(&doctree.Blockquote{Children: []doctree.Block{b}})
		return Position{Path: slices.Concat(s.path, []int{0}), Offset: c.At.Offset}, nil
	}
	return Position{}, invalidCommand("cannot set block type %s", c.Kind)
}

func isList(b doctree.Block) bool {
	k := b.Kind()
	return k == doctree.KindBulletList || k == doctree.KindOrderedList
}

func newList(kind doctree.BlockKind, items []*doctree.ListItem) doctree.Block {
	if kind == doctree.KindOrderedList {
		return &doctree.OrderedList{Items: items}
	}
	return &doctree.BulletList{Items: items}
}

func insertFragment(doc *doctree.Document, at Position, f doctree.Fragment) (Position, error) {
	if f.IsEmpty() {
		return Position{}, invalidCommand("empty fragment")
	}
	if len(f.Inlines) > 0 && len(f.Blocks) > 0 {
		return Position{}, invalidCommand("fragment mixes inline and block content")
	}
	s, err := resolveText(doc, at)
	if err != nil {
		return Position{}, err
	}
	b := s.block()
	left, right := splitInlines(inlinesOf(b), at.Offset)

	if len(f.Inlines) > 0 {
		ins := doctree.CloneInlines(f.Inlines)
		s.set(withInlines(b, slices.Concat(left, ins, right)))
		return Position{Path: s.path, Offset: at.Offset + doctree.InlineLen(ins)}, nil
	}

	var repl []doctree.Block
	if len(left) > 0 {
		repl = append(repl, withInlines(b, left))
	}
	repl = append(repl, doctree.CloneBlocks(f.Blocks)...)
	if len(right) > 0 {
		repl = append(repl, withInlines(b, right))
	}
	parent := *s.parent
	*s.parent = slices.Concat(parent[:s.index], repl, parent[s.index+1:])

	last := s.index + len(repl) - 1
	if len(right) > 0 {
		return Position{Path: s.sibling(last), Offset: 0}, nil
	}
	return Position{Path: s.sibling(last), Offset: textLen(repl[len(repl)-1])}, nil
}

// deleteSelection is deleteRange for the DeleteRange command, which must
// remove at least one rune.
func deleteSelection(doc *doctree.Document, r Range) (Position, error) {
	start, end, err := resolveRange(doc, r)
	if err != nil {
		return Position{}, err
	}
	if start.index == end.index && start.offset == end.offset {
		return Position{}, invalidCommand("deleteRange on an empty range")
	}
	return deleteRange(doc, r)
}

func deleteRange(doc *doctree.Document, r Range) (Position, error) {
	start, end, err := resolveRange(doc, r)
	if err != nil {
		return Position{}, err
	}
	first, last := start.block(), end.block()
	left, _ := splitInlines(inlinesOf(first), start.offset)
	_, right := splitInlines(inlinesOf(last), end.offset)
	merged := withInlines(first, slices.Concat(left, right))

	parent := *start.parent
	*start.parent = slices.Concat(parent[:start.index], []doctree.Block{merged}, parent[end.index+1:])
	return Position{Path: start.path, Offset: start.offset}, nil
}

func replaceRange(doc *doctree.Document, c ReplaceRange) (Position, error) {
	if c.Fragment.IsEmpty() {
		return Position{}, invalidCommand("empty fragment")
	}
	at, err := deleteRange(doc, c.Range)
	if err != nil {
		return Position{}, err
	}
	return insertFragment(doc, at, c.Fragment)
}
