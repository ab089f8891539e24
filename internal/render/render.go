// Package render turns documents into display HTML. Output is a pure function
// of the document: equal documents render to identical bytes.
package render

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/sanitize"
)

// FallbackNotice replaces a stored description that cannot be rendered.
const FallbackNotice = `<p class="render-fallback">This description is unavailable.</p>`

var markTags = map[doctree.Mark]string{
	doctree.Bold:   "strong",
	doctree.Italic: "em",
	doctree.Strike: "strike",
	doctree.Code:   "code",
}

// HTML renders doc. A structurally invalid document returns an error matching
// doctree.ErrMalformedDocument and no output.
func HTML(doc doctree.Document) (string, error) {
	if err := doctree.Validate(doc); err != nil {
		return "", err
	}
	var b strings.Builder
	writeBlocks(&b, doc.Children)
	return b.String(), nil
}

// Blob decodes a persisted document and renders it.
func Blob(data []byte) (string, error) {
	doc, err := doctree.Unmarshal(data)
	if err != nil {
		return "", err
	}
	return HTML(doc)
}

// Safe renders doc, logging and returning FallbackNotice on failure.
func Safe(doc doctree.Document, log *slog.Logger) string {
	out, err := HTML(doc)
	if err != nil {
		log.Error("render document", "error", err)
		return FallbackNotice
	}
	return out
}

// SafeBlob is Safe for a persisted document.
func SafeBlob(data []byte, log *slog.Logger) string {
	out, err := Blob(data)
	if err != nil {
		log.Error("render stored document", "error", err, "bytes", len(data))
		return FallbackNotice
	}
	return out
}

// Export renders doc for reuse outside this package (feeds, emails, copy to
// other systems), passing the result through the sanitizer again.
func Export(doc doctree.Document) (string, error) {
	out, err := HTML(doc)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return sanitize.Sanitize(out), nil
}

func writeBlocks(b *strings.Builder, blocks []doctree.Block) {
	for _, blk := range blocks {
		writeBlock(b, blk)
	}
}

func writeBlock(b *strings.Builder, blk doctree.Block) {
	switch blk := blk.(type) {
	case *doctree.Heading:
		fmt.Fprintf(b, "<h%d>", blk.Level)
		writeInlines(b, blk.Children)
		fmt.Fprintf(b, "</h%d>", blk.Level)
	case *doctree.Paragraph:
		b.WriteString("<p>")
		writeInlines(b, blk.Children)
		b.WriteString("</p>")
	case *doctree.BulletList:
		writeList(b, "ul", blk.Items)
	case *doctree.OrderedList:
		writeList(b, "ol", blk.Items)
	case *doctree.Blockquote:
		b.WriteString("<blockquote>")
		writeBlocks(b, blk.Children)
		b.WriteString("</blockquote>")
	case *doctree.HorizontalRule:
		b.WriteString("<hr>")
	case *doctree.CodeBlock:
		b.WriteString("<pre><code>")
		b.WriteString(html.EscapeString(blk.Text))
		b.WriteString("</code></pre>")
	}
}

func writeList(b *strings.Builder, tag string, items []*doctree.ListItem) {
	if len(items) == 0 {
		return
	}
	b.WriteString("<" + tag + ">")
	for _, item := range items {
		b.WriteString("<li>")
		writeBlocks(b, item.Children)
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
}

func writeInlines(b *strings.Builder, inlines []doctree.Inline) {
	for _, in := range inlines {
		switch in := in.(type) {
		case doctree.Text:
			marks := in.Marks.List()
			for _, m := range marks {
				b.WriteString("<" + markTags[m] + ">")
			}
			b.WriteString(html.EscapeString(in.Value))
			for i := len(marks) - 1; i >= 0; i-- {
				b.WriteString("</" + markTags[marks[i]] + ">")
			}
		case doctree.HardBreak:
			b.WriteString("<br>")
		}
	}
}
