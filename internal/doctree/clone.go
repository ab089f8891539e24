package doctree

// Clone returns a deep copy of doc. Nothing in the copy aliases doc.
func Clone(doc Document) Document {
	return Document{Children: CloneBlocks(doc.Children)}
}

func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = CloneBlock(b)
	}
	return out
}

func CloneBlock(b Block) Block {
	switch b := b.(type) {
	case *Heading:
		if b == nil {
			return b
		}
		return &Heading{Level: b.Level, Children: CloneInlines(b.Children)}
	case *Paragraph:
		if b == nil {
			return b
		}
		return &Paragraph{Children: CloneInlines(b.Children)}
	case *BulletList:
		if b == nil {
			return b
		}
		return &BulletList{Items: cloneItems(b.Items)}
	case *OrderedList:
		if b == nil {
			return b
		}
		return &OrderedList{Items: cloneItems(b.Items)}
	case *Blockquote:
		if b == nil {
			return b
		}
		return &Blockquote{Children: CloneBlocks(b.Children)}
	case *HorizontalRule:
		if b == nil {
			return b
		}
		return &HorizontalRule{}
	case *CodeBlock:
		if b == nil {
			return b
		}
		return &CodeBlock{Text: b.Text}
	}
	return b
}

func cloneItems(items []*ListItem) []*ListItem {
	if items == nil {
		return nil
	}
	out := make([]*ListItem, len(items))
	for i, item := range items {
		if item != nil {
			out[i] = &ListItem{Children: CloneBlocks(item.Children)}
		}
	}
	return out
}

// CloneInlines copies an inline slice. Inline values are immutable so a
// shallow copy is enough.
func CloneInlines(in []Inline) []Inline {
	if in == nil {
		return nil
	}
	out := make([]Inline, len(in))
	copy(out, in)
	return out
}
