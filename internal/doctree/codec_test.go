package doctree

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleDoc() Document {
	return Document{Children: []Block{
		&Heading{Level: 2, Children: []Inline{Text{Value: "Senior Engineer"}}},
		&Paragraph{Children: []Inline{
			Text{Value: "Join "},
			Text{Value: "Acme", Marks: NewMarks(Bold, Italic)},
			HardBreak{},
			Text{Value: "remote", Marks: NewMarks(Code)},
		}},
		&BulletList{Items: []*ListItem{
			{Children: []Block{&Paragraph{Children: []Inline{Text{Value: "Go"}}}}},
			{Children: []Block{
				&Paragraph{Children: []Inline{Text{Value: "Infra"}}},
				&OrderedList{Items: []*ListItem{
					{Children: []Block{&Paragraph{Children: []Inline{Text{Value: "k8s", Marks: NewMarks(Strike)}}}}},
				}},
			}},
		}},
		&Blockquote{Children: []Block{&Paragraph{Children: []Inline{Text{Value: "quote"}}}}},
		&HorizontalRule{},
		&CodeBlock{Text: "go test ./...\nok"},
		&Paragraph{},
	}}
}

func TestMarshal_RoundTrip(t *testing.T) {
	docs := map[string]Document{
		"empty":      {},
		"sample":     sampleDoc(),
		"empty list": {Children: []Block{&BulletList{}}},
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			data, err := Marshal(doc)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal(%s): %v", data, err)
			}
			if diff := cmp.Diff(doc, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	a, err := Marshal(sampleDoc())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, _ := Marshal(sampleDoc())
	if string(a) != string(b) {
		t.Errorf("expected identical output, got\n%s\n%s", a, b)
	}
}

func TestMarshal_WireShape(t *testing.T) {
	doc := Document{Children: []Block{
		&Heading{Level: 2, Children: []Inline{Text{Value: "Hi", Marks: NewMarks(Italic, Bold)}}},
	}}
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"type":"doc","content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","marks":[{"type":"bold"},{"type":"italic"}],"text":"Hi"}]}]}`
	if string(data) != want {
		t.Errorf("expected\n%s\ngot\n%s", want, data)
	}
}

func TestMarshal_RejectsInvalid(t *testing.T) {
	_, err := Marshal(Document{Children: []Block{&Heading{Level: 4}}})
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"wrong root", `{"type":"paragraph"}`},
		{"inline at root", `{"type":"doc","content":[{"type":"text","text":"x"}]}`},
		{"hard break at root", `{"type":"doc","content":[{"type":"hardBreak"}]}`},
		{"unknown node", `{"type":"doc","content":[{"type":"table"}]}`},
		{"heading level", `{"type":"doc","content":[{"type":"heading","attrs":{"level":5}}]}`},
		{"heading no level", `{"type":"doc","content":[{"type":"heading"}]}`},
		{"block in paragraph", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"paragraph"}]}]}`},
		{"duplicate mark", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"bold"},{"type":"bold"}]}]}]}`},
		{"empty item", `{"type":"doc","content":[{"type":"bulletList","content":[{"type":"listItem"}]}]}`},
		{"list child", `{"type":"doc","content":[{"type":"bulletList","content":[{"type":"paragraph"}]}]}`},
		{"empty text", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":""}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestUnmarshal_DropsUnknownMarksAndAttrs(t *testing.T) {
	input := `{"type":"doc","content":[{"type":"paragraph","attrs":{"textAlign":"left"},"content":[` +
		`{"type":"text","text":"site","marks":[{"type":"link","attrs":{"href":"https://x"}},{"type":"bold"}]}]}]}`
	doc, err := Unmarshal([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Document{Children: []Block{
		&Paragraph{Children: []Inline{Text{Value: "site", Marks: NewMarks(Bold)}}},
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_JSONInterfaces(t *testing.T) {
	var doc Document
	if err := doc.UnmarshalJSON([]byte(`{"type":"doc","content":[{"type":"horizontalRule"}]}`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if !strings.Contains(string(data), `"horizontalRule"`) {
		t.Errorf("expected horizontalRule in %s", data)
	}
}
