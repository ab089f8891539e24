package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// Parser converts imported content into a Document.
type Parser interface {
	Parse(r io.Reader) (doctree.Document, error)
}

const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatText     = "text"
)

// ForFormat returns the parser for a named import format.
func ForFormat(format string) (Parser, error) {
	switch strings.ToLower(format) {
	case FormatText, "txt", "plain":
		return &TextParser{}, nil
	case FormatMarkdown, "md":
		return &MarkdownParser{}, nil
	case FormatHTML, "htm":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported import format: %q", format)
	}
}

// ForFile picks a parser from a filename extension.
func ForFile(filename string) (Parser, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "markdown" {
		ext = "md"
	}
	if ext == "" {
		return nil, fmt.Errorf("unsupported file extension: %q", filename)
	}
	return ForFormat(ext)
}

// finish validates a parsed document.
func finish(blocks []doctree.Block) (doctree.Document, error) {
	doc := doctree.Document{Children: blocks}
	if err := doctree.Validate(doc); err != nil {
		return doctree.Document{}, fmt.Errorf("import produced %w", err)
	}
	return doc, nil
}
