package editor

import (
	"slices"
	"strings"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// inlinesOf views any textblock as inline content. Code block "\n" becomes a
// hard break and every other rune, "\r" included, stays text, so offsets line
// up with textLen.
func inlinesOf(b doctree.Block) []doctree.Inline {
	switch b := b.(type) {
	case *doctree.Heading:
		return b.Children
	case *doctree.Paragraph:
		return b.Children
	case *doctree.CodeBlock:
		return codeInlines(b.Text)
	}
	return nil
}

func codeInlines(s string) []doctree.Inline {
	var out []doctree.Inline
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out = append(out, doctree.HardBreak{})
		}
		if line != "" {
			out = append(out, doctree.Text{Value: line})
		}
	}
	return out
}

// withInlines returns a new block of b's kind holding in.
func withInlines(b doctree.Block, in []doctree.Inline) doctree.Block {
	in = doctree.NormalizeInlines(in)
	switch b := b.(type) {
	case *doctree.Heading:
		return &doctree.Heading{Level: b.Level, Children: in}
	case *doctree.Paragraph:
		return &doctree.Paragraph{Children: in}
	case *doctree.CodeBlock:
		return &doctree.CodeBlock{Text: doctree.InlineText(in)}
	}
	return b
}

// splitInlines cuts in at offset. Neither result aliases in.
func splitInlines(in []doctree.Inline, offset int) (left, right []doctree.Inline) {
	pos := 0
	for i, n := range in {
		if pos == offset {
			return slices.Clone(in[:i]), slices.Clone(in[i:])
		}
		switch n := n.(type) {
		case doctree.Text:
			runes := []rune(n.Value)
			if offset < pos+len(runes) {
				cut := offset - pos
				left = append(slices.Clone(in[:i]), doctree.Text{Value: string(runes[:cut]), Marks: n.Marks})
				right = append([]doctree.Inline{doctree.Text{Value: string(runes[cut:]), Marks: n.Marks}}, in[i+1:]...)
				return left, right
			}
			pos += len(runes)
		case doctree.HardBreak:
			pos++
		}
	}
	return slices.Clone(in), nil
}

// marksBefore is the mark set typed text inherits at the end of left.
func marksBefore(left []doctree.Inline) doctree.Marks {
	if len(left) == 0 {
		return 0
	}
	if t, ok := left[len(left)-1].(doctree.Text); ok {
		return t.Marks
	}
	return 0
}

// normalizeBlocks merges adjacent equal-mark runs in every textblock.
func normalizeBlocks(blocks []doctree.Block) {
	for _, b := range blocks {
		switch b := b.(type) {
		case *doctree.Heading:
			b.Children = doctree.NormalizeInlines(b.Children)
		case *doctree.Paragraph:
			b.Children = doctree.NormalizeInlines(b.Children)
		case *doctree.Blockquote:
			normalizeBlocks(b.Children)
		case *doctree.BulletList, *doctree.OrderedList:
			for _, item := range doctree.ListItems(b) {
				if item != nil {
					normalizeBlocks(item.Children)
				}
			}
		}
	}
}
