package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// TextParser handles plain text: blank lines separate paragraphs and single
// newlines become hard breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader) (doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return doctree.Document{}, err
	}

	var blocks []doctree.Block
	for _, para := range paragraphs {
		blocks = append(blocks, &doctree.Paragraph{Children: doctree.TextToInlines(para, 0)})
	}
	return finish(blocks)
}

// Paragraphs splits s like TextParser and returns the blocks directly.
func Paragraphs(s string) []doctree.Block {
	doc, err := (&TextParser{}).Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}
	return doc.Children
}
