package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

func TestHTMLParser_Structure(t *testing.T) {
	input := `<h2>About   us</h2>
<p>We are <strong>hiring</strong>.<br>Apply <a href="https://x.example">here</a>.</p>
<ul><li>Go</li><li><em>Rust</em></li></ul>
<h5>Small</h5>
<div>loose text</div>
<pre>a &lt; b
c</pre>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := doctree.Document{Children: []doctree.Block{
		&doctree.Heading{Level: 2, Children: []doctree.Inline{txt("About us")}},
		&doctree.Paragraph{Children: []doctree.Inline{
			txt("We are "), txt("hiring", doctree.Bold), txt("."), doctree.HardBreak{}, txt("Apply here."),
		}},
		&doctree.BulletList{Items: []*doctree.ListItem{
			{Children: []doctree.Block{&doctree.Paragraph{Children: []doctree.Inline{txt("Go")}}}},
			{Children: []doctree.Block{&doctree.Paragraph{Children: []doctree.Inline{txt("Rust", doctree.Italic)}}}},
		}},
		&doctree.Heading{Level: 3, Children: []doctree.Inline{txt("Small")}},
		&doctree.Paragraph{Children: []doctree.Inline{txt("loose text")}},
		&doctree.CodeBlock{Text: "a < b\nc"},
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLParser_DropsScripts(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(`<p>safe</p><script>alert(1)</script><iframe src="x"></iframe>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doctree.PlainText(doc); got != "safe" {
		t.Errorf("expected only safe text, got %q", got)
	}
}

func TestHTMLParser_EmptyListItem(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(`<ol><li></li></ol>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doctree.IsValid(doc) {
		t.Errorf("expected a valid document, got %+v", doc)
	}
}
