package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/sanitize"
)

// HTMLParser imports HTML. Input is sanitized first, so only allow-listed
// elements reach the tree walk.
type HTMLParser struct{}

var spaceRe = regexp.MustCompile(`\s+`)

func (p *HTMLParser) Parse(r io.Reader) (doctree.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return doctree.Document{}, err
	}
	clean := sanitize.Sanitize(string(raw))
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(clean), ctx)
	if err != nil {
		return doctree.Document{}, fmt.Errorf("parse html: %w", err)
	}
	return finish(htmlBlocks(nodes))
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.P, atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Hr, atom.Pre, atom.Div:
		return true
	}
	return n.Data == "nl"
}

// htmlBlocks maps sibling nodes to blocks. Loose inline content between
// blocks is gathered into paragraphs.
func htmlBlocks(nodes []*html.Node) []doctree.Block {
	var out []doctree.Block
	var pending []doctree.Inline
	flush := func() {
		if in := trimInlines(doctree.NormalizeInlines(pending)); len(in) > 0 {
			out = append(out, &doctree.Paragraph{Children: in})
		}
		pending = nil
	}
	for _, n := range nodes {
		if isBlockElement(n) {
			flush()
			out = append(out, htmlBlock(n)...)
			continue
		}
		pending = append(pending, htmlInlines(n, 0)...)
	}
	flush()
	return out
}

func htmlBlock(n *html.Node) []doctree.Block {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		return []doctree.Block{&doctree.Heading{Level: clampLevel(level), Children: inlineChildren(n)}}
	case atom.P:
		return []doctree.Block{&doctree.Paragraph{Children: inlineChildren(n)}}
	case atom.Ol:
		return []doctree.Block{&doctree.OrderedList{Items: htmlItems(n)}}
	case atom.Ul:
		return []doctree.Block{&doctree.BulletList{Items: htmlItems(n)}}
	case atom.Blockquote:
		return []doctree.Block{&doctree.Blockquote{Children: htmlBlocks(children(n))}}
	case atom.Hr:
		return []doctree.Block{&doctree.HorizontalRule{}}
	case atom.Pre:
		return []doctree.Block{&doctree.CodeBlock{Text: strings.TrimRight(rawText(n), "\n")}}
	}
	if n.Data == "nl" {
		return []doctree.Block{&doctree.BulletList{Items: htmlItems(n)}}
	}
	// div, stray li
	return htmlBlocks(children(n))
}

func htmlItems(list *html.Node) []*doctree.ListItem {
	var items []*doctree.ListItem
	var loose []*html.Node
	add := func(nodes []*html.Node) {
		blocks := htmlBlocks(nodes)
		if len(blocks) > 0 {
			items = append(items, &doctree.ListItem{Children: blocks})
		}
	}
	for _, c := range children(list) {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			add(loose)
			loose = nil
			blocks := htmlBlocks(children(c))
			if len(blocks) == 0 {
				blocks = []doctree.Block{&doctree.Paragraph{}}
			}
			items = append(items, &doctree.ListItem{Children: blocks})
			continue
		}
		loose = append(loose, c)
	}
	add(loose)
	return items
}

func inlineChildren(n *html.Node) []doctree.Inline {
	var in []doctree.Inline
	for _, c := range children(n) {
		in = append(in, htmlInlines(c, 0)...)
	}
	return trimInlines(doctree.NormalizeInlines(in))
}

func htmlInlines(n *html.Node, marks doctree.Marks) []doctree.Inline {
	switch n.Type {
	case html.TextNode:
		return []doctree.Inline{doctree.Text{Value: spaceRe.ReplaceAllString(n.Data, " "), Marks: marks}}
	case html.ElementNode:
	default:
		return nil
	}
	switch n.DataAtom {
	case atom.Br:
		return []doctree.Inline{doctree.HardBreak{}}
	case atom.B, atom.Strong:
		marks = marks.With(doctree.Bold)
	case atom.I, atom.Em:
		marks = marks.With(doctree.Italic)
	case atom.Strike:
		marks = marks.With(doctree.Strike)
	case atom.Code:
		marks = marks.With(doctree.Code)
	}
	var out []doctree.Inline
	for _, c := range children(n) {
		out = append(out, htmlInlines(c, marks)...)
	}
	return out
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
