package doctree

import (
	"strings"
	"unicode/utf8"
)

// TextToInlines converts plain text into inline nodes carrying marks. Newlines
// become HardBreak nodes; nothing else in s is interpreted.
func TextToInlines(s string, marks Marks) []Inline {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []Inline
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out = append(out, HardBreak{})
		}
		if line != "" {
			out = append(out, Text{Value: line, Marks: marks})
		}
	}
	return out
}

// NormalizeInlines drops empty text runs and merges neighbours that share a
// mark set. The input slice is not modified.
func NormalizeInlines(in []Inline) []Inline {
	var out []Inline
	for _, n := range in {
		t, ok := n.(Text)
		if !ok {
			out = append(out, n)
			continue
		}
		if t.Value == "" {
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(Text); ok && prev.Marks == t.Marks {
				out[len(out)-1] = Text{Value: prev.Value + t.Value, Marks: t.Marks}
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// InlineLen is the length of inline content in editor offsets: one per rune,
// one per hard break.
func InlineLen(in []Inline) int {
	n := 0
	for _, i := range in {
		switch i := i.(type) {
		case Text:
			n += utf8.RuneCountInString(i.Value)
		case HardBreak:
			n++
		}
	}
	return n
}

// InlineText flattens inline content, hard breaks as "\n".
func InlineText(in []Inline) string {
	var b strings.Builder
	for _, i := range in {
		switch i := i.(type) {
		case Text:
			b.WriteString(i.Value)
		case HardBreak:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// PlainText returns the text of doc with one line per textblock.
func PlainText(doc Document) string {
	var lines []string
	walkText(doc.Children, &lines)
	return strings.Join(lines, "\n")
}

func walkText(blocks []Block, lines *[]string) {
	for _, b := range blocks {
		switch b := b.(type) {
		case *Heading:
			*lines = append(*lines, InlineText(b.Children))
		case *Paragraph:
			*lines = append(*lines, InlineText(b.Children))
		case *CodeBlock:
			*lines = append(*lines, b.Text)
		case *Blockquote:
			walkText(b.Children, lines)
		case *BulletList, *OrderedList:
			for _, item := range ListItems(b) {
				walkText(item.Children, lines)
			}
		}
	}
}
