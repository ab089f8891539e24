package doctree

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Wire form follows the TipTap/ProseMirror JSON layout so documents written by
// the browser editor load unchanged.

type wireNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []wireNode     `json:"content,omitempty"`
	Marks   []wireMark     `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

type wireMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

const (
	typeDoc       = "doc"
	typeListItem  = "listItem"
	typeText      = "text"
	typeHardBreak = "hardBreak"
)

// Marshal validates doc and encodes it in its persisted JSON form. Output is
// byte-identical for equal documents.
func Marshal(doc Document) ([]byte, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	root := wireNode{Type: typeDoc, Content: encodeBlocks(doc.Children)}
	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a persisted document and validates it.
func Unmarshal(data []byte) (Document, error) {
	var root wireNode
	if err := json.Unmarshal(data, &root); err != nil {
		return Document{}, &MalformedError{Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	if root.Type != typeDoc {
		return Document{}, malformed("", "root type %q, want %q", root.Type, typeDoc)
	}
	blocks, err := decodeBlocks(root.Content, "content")
	if err != nil {
		return Document{}, err
	}
	doc := Document{Children: blocks}
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	return Marshal(d)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

func encodeBlocks(blocks []Block) []wireNode {
	var out []wireNode
	for _, b := range blocks {
		out = append(out, encodeBlock(b))
	}
	return out
}

func encodeBlock(b Block) wireNode {
	switch b := b.(type) {
	case *Heading:
		return wireNode{
			Type:    KindHeading.String(),
			Attrs:   map[string]any{"level": b.Level},
			Content: encodeInlines(b.Children),
		}
	case *Paragraph:
		return wireNode{Type: KindParagraph.String(), Content: encodeInlines(b.Children)}
	case *BulletList:
		return wireNode{Type: KindBulletList.String(), Content: encodeItems(b.Items)}
	case *OrderedList:
		return wireNode{Type: KindOrderedList.String(), Content: encodeItems(b.Items)}
	case *Blockquote:
		return wireNode{Type: KindBlockquote.String(), Content: encodeBlocks(b.Children)}
	case *HorizontalRule:
		return wireNode{Type: KindHorizontalRule.String()}
	case *CodeBlock:
		n := wireNode{Type: KindCodeBlock.String()}
		if b.Text != "" {
			n.Content = []wireNode{{Type: typeText, Text: b.Text}}
		}
		return n
	}
	// Unreachable for validated documents.
	return wireNode{}
}

func encodeItems(items []*ListItem) []wireNode {
	var out []wireNode
	for _, item := range items {
		out = append(out, wireNode{Type: typeListItem, Content: encodeBlocks(item.Children)})
	}
	return out
}

func encodeInlines(inlines []Inline) []wireNode {
	var out []wireNode
	for _, in := range inlines {
		switch in := in.(type) {
		case Text:
			n := wireNode{Type: typeText, Text: in.Value}
			for _, m := range in.Marks.List() {
				n.Marks = append(n.Marks, wireMark{Type: m.String()})
			}
			out = append(out, n)
		case HardBreak:
			out = append(out, wireNode{Type: typeHardBreak})
		}
	}
	return out
}

func decodeBlocks(nodes []wireNode, path string) ([]Block, error) {
	var out []Block
	for i, n := range nodes {
		b, err := decodeBlock(n, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeBlock(n wireNode, path string) (Block, error) {
	kind, ok := ParseBlockKind(n.Type)
	if !ok {
		switch n.Type {
		case typeText, typeHardBreak:
			return nil, malformed(path, "inline %q outside a textblock", n.Type)
		}
		return nil, malformed(path, "unknown node type %q", n.Type)
	}
	switch kind {
	case KindHeading:
		level, err := headingLevel(n.Attrs, path)
		if err != nil {
			return nil, err
		}
		inlines, err := decodeInlines(n.Content, path+".content")
		if err != nil {
			return nil, err
		}
		return &Heading{Level: level, Children: inlines}, nil
	case KindParagraph:
		inlines, err := decodeInlines(n.Content, path+".content")
		if err != nil {
			return nil, err
		}
		return &Paragraph{Children: inlines}, nil
	case KindBulletList:
		items, err := decodeItems(n.Content, path+".content")
		if err != nil {
			return nil, err
		}
		return &BulletList{Items: items}, nil
	case KindOrderedList:
		items, err := decodeItems(n.Content, path+".content")
		if err != nil {
			return nil, err
		}
		return &OrderedList{Items: items}, nil
	case KindBlockquote:
		children, err := decodeBlocks(n.Content, path+".content")
		if err != nil {
			return nil, err
		}
		return &Blockquote{Children: children}, nil
	case KindHorizontalRule:
		if len(n.Content) > 0 {
			return nil, malformed(path, "horizontal rule has content")
		}
		return &HorizontalRule{}, nil
	case KindCodeBlock:
		text, err := codeText(n.Content, path+".content")
		if err != nil {
			return nil, err
		}
		return &CodeBlock{Text: text}, nil
	}
	return nil, malformed(path, "unknown node type %q", n.Type)
}

func headingLevel(attrs map[string]any, path string) (int, error) {
	raw, ok := attrs["level"]
	if !ok {
		return 0, malformed(path, "heading without level")
	}
	f, ok := raw.(float64)
	if !ok || f != float64(int(f)) {
		return 0, malformed(path, "heading level %v is not an integer", raw)
	}
	return int(f), nil
}

func decodeItems(nodes []wireNode, path string) ([]*ListItem, error) {
	var out []*ListItem
	for i, n := range nodes {
		p := fmt.Sprintf("%s[%d]", path, i)
		if n.Type != typeListItem {
			return nil, malformed(p, "list child %q, want %q", n.Type, typeListItem)
		}
		children, err := decodeBlocks(n.Content, p+".content")
		if err != nil {
			return nil, err
		}
		out = append(out, &ListItem{Children: children})
	}
	return out, nil
}

func decodeInlines(nodes []wireNode, path string) ([]Inline, error) {
	var out []Inline
	for i, n := range nodes {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch n.Type {
		case typeText:
			marks, err := decodeMarks(n.Marks, p)
			if err != nil {
				return nil, err
			}
			out = append(out, Text{Value: n.Text, Marks: marks})
		case typeHardBreak:
			out = append(out, HardBreak{})
		default:
			if _, isBlock := ParseBlockKind(n.Type); isBlock {
				return nil, malformed(p, "block %q inside a textblock", n.Type)
			}
			return nil, malformed(p, "unknown inline type %q", n.Type)
		}
	}
	return out, nil
}

func decodeMarks(marks []wireMark, path string) (Marks, error) {
	var set Marks
	for _, wm := range marks {
		m, ok := ParseMark(wm.Type)
		if !ok {
			// link, underline, textStyle... are editor-only decorations.
			slog.Debug("dropping unsupported mark", "type", wm.Type, "path", path)
			continue
		}
		if set.Has(m) {
			return 0, malformed(path, "mark %q applied twice", wm.Type)
		}
		set = set.With(m)
	}
	return set, nil
}

func codeText(nodes []wireNode, path string) (string, error) {
	var text string
	for i, n := range nodes {
		if n.Type != typeText {
			return "", malformed(fmt.Sprintf("%s[%d]", path, i), "code block child %q, want text", n.Type)
		}
		text += n.Text
	}
	return text, nil
}
