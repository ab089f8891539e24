package doctree

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		doc   Document
		valid bool
	}{
		{"empty", Document{}, true},
		{"sample", sampleDoc(), true},
		{"empty list", Document{Children: []Block{&OrderedList{}}}, true},
		{"level 0", Document{Children: []Block{&Heading{Level: 0}}}, false},
		{"level 4", Document{Children: []Block{&Heading{Level: 4}}}, false},
		{"nil block", Document{Children: []Block{nil}}, false},
		{"nil paragraph", Document{Children: []Block{(*Paragraph)(nil)}}, false},
		{"nil item", Document{Children: []Block{&BulletList{Items: []*ListItem{nil}}}}, false},
		{"empty item", Document{Children: []Block{&BulletList{Items: []*ListItem{{}}}}}, false},
		{"empty text", Document{Children: []Block{&Paragraph{Children: []Inline{Text{}}}}}, false},
		{"unknown mark", Document{Children: []Block{&Paragraph{Children: []Inline{Text{Value: "x", Marks: Marks(1 << 6)}}}}}, false},
		{"invalid utf-8 text", Document{Children: []Block{&Paragraph{Children: []Inline{Text{Value: "a\xffb"}}}}}, false},
		{"invalid utf-8 code", Document{Children: []Block{&CodeBlock{Text: "x\xc3"}}}, false},
		{"nil inline", Document{Children: []Block{&Paragraph{Children: []Inline{nil}}}}, false},
		{"nested invalid", Document{Children: []Block{&Blockquote{Children: []Block{&Heading{Level: 9}}}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			if got := err == nil; got != tt.valid {
				t.Fatalf("expected valid=%v, got err=%v", tt.valid, err)
			}
			if IsValid(tt.doc) != tt.valid {
				t.Errorf("IsValid disagrees with Validate")
			}
			if err != nil {
				var me *MalformedError
				if !errors.As(err, &me) {
					t.Errorf("expected *MalformedError, got %T", err)
				}
				if !errors.Is(err, ErrMalformedDocument) {
					t.Errorf("expected errors.Is ErrMalformedDocument")
				}
			}
		})
	}
}

func TestMalformedError_Path(t *testing.T) {
	doc := Document{Children: []Block{
		&Paragraph{},
		&BulletList{Items: []*ListItem{{Children: []Block{&Heading{Level: 7}}}}},
	}}
	err := Validate(doc)
	var me *MalformedError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MalformedError, got %v", err)
	}
	if want := "content[1].items[0].content[0]"; me.Path != want {
		t.Errorf("expected path %q, got %q", want, me.Path)
	}
}

func TestMarshal_RejectsInvalidUTF8(t *testing.T) {
	doc := Document{Children: []Block{&Paragraph{Children: []Inline{Text{Value: "a\xffb"}}}}}
	if _, err := Marshal(doc); !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
}
