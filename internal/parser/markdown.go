package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// MarkdownParser handles Markdown using goldmark. Raw HTML in the source is
// kept as literal text, never interpreted.
type MarkdownParser struct{}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

func (p *MarkdownParser) Parse(r io.Reader) (doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return doctree.Document{}, err
	}
	root := markdown.Parser().Parse(text.NewReader(src))
	m := &mdMapper{src: src}
	return finish(m.blocks(root))
}

type mdMapper struct {
	src []byte
}

func (m *mdMapper) blocks(parent ast.Node) []doctree.Block {
	var out []doctree.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := m.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (m *mdMapper) block(n ast.Node) doctree.Block {
	switch node := n.(type) {
	case *ast.Heading:
		return &doctree.Heading{Level: clampLevel(node.Level), Children: m.inlineContent(node)}
	case *ast.Paragraph, *ast.TextBlock:
		return &doctree.Paragraph{Children: m.inlineContent(node)}
	case *ast.List:
		var items []*doctree.ListItem
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			children := m.blocks(c)
			if len(children) == 0 {
				children = []doctree.Block{&doctree.Paragraph{}}
			}
			items = append(items, &doctree.ListItem{Children: children})
		}
		if node.IsOrdered() {
			return &doctree.OrderedList{Items: items}
		}
		return &doctree.BulletList{Items: items}
	case *ast.Blockquote:
		return &doctree.Blockquote{Children: m.blocks(node)}
	case *ast.ThematicBreak:
		return &doctree.HorizontalRule{}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		text := strings.ReplaceAll(m.lines(n), "\r\n", "\n")
		return &doctree.CodeBlock{Text: strings.TrimRight(text, "\n")}
	case *ast.HTMLBlock:
		s := m.lines(n)
		if node.HasClosure() {
			s += string(node.ClosureLine.Value(m.src))
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		return &doctree.Paragraph{Children: doctree.TextToInlines(s, 0)}
	}
	return nil
}

func (m *mdMapper) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(m.src))
	}
	return buf.String()
}

func (m *mdMapper) inlineContent(n ast.Node) []doctree.Inline {
	return trimInlines(doctree.NormalizeInlines(m.inlines(n, 0)))
}

func (m *mdMapper) inlines(parent ast.Node, marks doctree.Marks) []doctree.Inline {
	var out []doctree.Inline
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			out = append(out, doctree.Text{Value: string(node.Segment.Value(m.src)), Marks: marks})
			if node.HardLineBreak() {
				out = append(out, doctree.HardBreak{})
			} else if node.SoftLineBreak() {
				out = append(out, doctree.Text{Value: " ", Marks: marks})
			}
		case *ast.String:
			out = append(out, doctree.Text{Value: string(node.Value), Marks: marks})
		case *ast.Emphasis:
			mark := doctree.Italic
			if node.Level >= 2 {
				mark = doctree.Bold
			}
			out = append(out, m.inlines(node, marks.With(mark))...)
		case *extast.Strikethrough:
			out = append(out, m.inlines(node, marks.With(doctree.Strike))...)
		case *ast.CodeSpan:
			out = append(out, m.inlines(node, marks.With(doctree.Code))...)
		case *ast.AutoLink:
			out = append(out, doctree.Text{Value: string(node.Label(m.src)), Marks: marks})
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				out = append(out, doctree.Text{Value: string(seg.Value(m.src)), Marks: marks})
			}
		default:
			// Links, images: keep the visible text.
			out = append(out, m.inlines(node, marks)...)
		}
	}
	return out
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 3 {
		return 3
	}
	return level
}

// trimInlines strips leading and trailing spaces from a run of inline
// content.
func trimInlines(in []doctree.Inline) []doctree.Inline {
	for len(in) > 0 {
		t, ok := in[0].(doctree.Text)
		if !ok {
			break
		}
		t.Value = strings.TrimLeft(t.Value, " \t\n")
		if t.Value != "" {
			in[0] = t
			break
		}
		in = in[1:]
	}
	for len(in) > 0 {
		t, ok := in[len(in)-1].(doctree.Text)
		if !ok {
			break
		}
		t.Value = strings.TrimRight(t.Value, " \t\n")
		if t.Value != "" {
			in[len(in)-1] = t
			break
		}
		in = in[:len(in)-1]
	}
	if len(in) == 0 {
		return nil
	}
	return in
}
