// Package doctree defines the rich document model used for job descriptions:
// a closed set of block and inline node types, mark sets, structural
// validation and the persisted JSON form.
package doctree

// Document is the root of a job description tree.
type Document struct {
	Children []Block
}

// BlockKind identifies a Block variant.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindBulletList
	KindOrderedList
	KindBlockquote
	KindHorizontalRule
	KindCodeBlock
)

var kindNames = map[BlockKind]string{
	KindParagraph:      "paragraph",
	KindHeading:        "heading",
	KindBulletList:     "bulletList",
	KindOrderedList:    "orderedList",
	KindBlockquote:     "blockquote",
	KindHorizontalRule: "horizontalRule",
	KindCodeBlock:      "codeBlock",
}

func (k BlockKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseBlockKind maps a wire name ("heading", "bulletList", ...) to a BlockKind.
func ParseBlockKind(s string) (BlockKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Block is a paragraph-or-larger unit of a document.
type Block interface {
	Kind() BlockKind
	block()
}

// Inline is content inside a textblock.
type Inline interface {
	inline()
}

// Heading is a section title. Level is 1, 2 or 3.
type Heading struct {
	Level    int
	Children []Inline
}

type Paragraph struct {
	Children []Inline
}

type BulletList struct {
	Items []*ListItem
}

type OrderedList struct {
	Items []*ListItem
}

// ListItem holds blocks, which may include further lists.
type ListItem struct {
	Children []Block
}

type Blockquote struct {
	Children []Block
}

type HorizontalRule struct{}

// CodeBlock holds preformatted text. Newlines are literal.
type CodeBlock struct {
	Text string
}

func (*Heading) Kind() BlockKind        { return KindHeading }
func (*Paragraph) Kind() BlockKind      { return KindParagraph }
func (*BulletList) Kind() BlockKind     { return KindBulletList }
func (*OrderedList) Kind() BlockKind    { return KindOrderedList }
func (*Blockquote) Kind() BlockKind     { return KindBlockquote }
func (*HorizontalRule) Kind() BlockKind { return KindHorizontalRule }
func (*CodeBlock) Kind() BlockKind      { return KindCodeBlock }

func (*Heading) block()        {}
func (*Paragraph) block()      {}
func (*BulletList) block()     {}
func (*OrderedList) block()    {}
func (*Blockquote) block()     {}
func (*HorizontalRule) block() {}
func (*CodeBlock) block()      {}

// Text is a run of characters sharing one mark set.
type Text struct {
	Value string
	Marks Marks
}

// HardBreak is a line break inside a textblock.
type HardBreak struct{}

func (Text) inline()      {}
func (HardBreak) inline() {}

// Fragment is content spliced into a document at a position. Exactly one of
// Inlines or Blocks is used.
type Fragment struct {
	Inlines []Inline
	Blocks  []Block
}

// IsEmpty reports whether the fragment carries no content.
func (f Fragment) IsEmpty() bool {
	return len(f.Inlines) == 0 && len(f.Blocks) == 0
}

// ListItems returns the items of a bullet or ordered list, or nil for any
// other block.
func ListItems(b Block) []*ListItem {
	switch l := b.(type) {
	case *BulletList:
		return l.Items
	case *OrderedList:
		return l.Items
	}
	return nil
}

// IsTextblock reports whether b directly holds inline content or code text.
func IsTextblock(b Block) bool {
	switch b.(type) {
	case *Heading, *Paragraph, *CodeBlock:
		return true
	}
	return false
}
