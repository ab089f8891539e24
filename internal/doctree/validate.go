package doctree

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMalformedDocument marks a structurally invalid document.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedError describes where a document breaks the grammar.
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed document: %s", e.Reason)
	}
	return fmt.Sprintf("malformed document at %s: %s", e.Path, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedDocument }

func malformed(path, format string, args ...any) error {
	return &MalformedError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants of doc and returns a
// *MalformedError for the first violation found.
func Validate(doc Document) error {
	return validateBlocks(doc.Children, "content")
}

// IsValid reports whether doc satisfies every structural invariant.
func IsValid(doc Document) bool {
	return Validate(doc) == nil
}

func validateBlocks(blocks []Block, path string) error {
	for i, b := range blocks {
		p := fmt.Sprintf("%s[%d]", path, i)
		if err := validateBlock(b, p); err != nil {
			return err
		}
	}
	return nil
}

func validateBlock(b Block, path string) error {
	switch b := b.(type) {
	case *Heading:
		if b == nil {
			return malformed(path, "nil heading")
		}
		if b.Level < 1 || b.Level > 3 {
			return malformed(path, "heading level %d out of range 1-3", b.Level)
		}
		return validateInlines(b.Children, path+".content")
	case *Paragraph:
		if b == nil {
			return malformed(path, "nil paragraph")
		}
		return validateInlines(b.Children, path+".content")
	case *BulletList:
		if b == nil {
			return malformed(path, "nil bullet list")
		}
		return validateItems(b.Items, path+".items")
	case *OrderedList:
		if b == nil {
			return malformed(path, "nil ordered list")
		}
		return validateItems(b.Items, path+".items")
	case *Blockquote:
		if b == nil {
			return malformed(path, "nil blockquote")
		}
		return validateBlocks(b.Children, path+".content")
	case *HorizontalRule:
		if b == nil {
			return malformed(path, "nil horizontal rule")
		}
		return nil
	case *CodeBlock:
		if b == nil {
			return malformed(path, "nil code block")
		}
		if !utf8.ValidString(b.Text) {
			return malformed(path, "code text is not valid UTF-8")
		}
		return nil
	case nil:
		return malformed(path, "missing block")
	default:
		return malformed(path, "unsupported block %T", b)
	}
}

func validateItems(items []*ListItem, path string) error {
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		if item == nil {
			return malformed(p, "missing list item")
		}
		if len(item.Children) == 0 {
			return malformed(p, "list item has no content")
		}
		if err := validateBlocks(item.Children, p+".content"); err != nil {
			return err
		}
	}
	return nil
}

func validateInlines(inlines []Inline, path string) error {
	for i, in := range inlines {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch in := in.(type) {
		case Text:
			if in.Value == "" {
				return malformed(p, "empty text node")
			}
			if !utf8.ValidString(in.Value) {
				return malformed(p, "text is not valid UTF-8")
			}
			if !in.Marks.Valid() {
				return malformed(p, "unknown mark in set %08b", uint8(in.Marks))
			}
		case HardBreak:
		case nil:
			return malformed(p, "missing inline")
		default:
			return malformed(p, "unsupported inline %T", in)
		}
	}
	return nil
}
