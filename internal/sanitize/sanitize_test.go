package sanitize

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var hostile = []string{
	``,
	`plain text & more`,
	`<script>alert(1)</script>hello`,
	`<p onclick="x()">para</p>`,
	`<a href="javascript:alert(1)">x</a>`,
	`<a href="JaVaScRiPt:alert(1)">x</a>`,
	`<a href="//evil.example/x">proto-relative</a>`,
	`<a href="/relative">relative</a>`,
	`<a href="https://example.com" target="_self" rel="opener">ok</a>`,
	`<a href="mailto:jobs@example.com">mail</a>`,
	`<img src="x" onerror="alert(1)">`,
	`<div class="x" style="color:red"><span id="y">s</span></div>`,
	`<iframe src="https://example.com"></iframe>`,
	`<p>unclosed <b>bold <i>both`,
	`<<script>script>alert(1)<</script>/script>`,
	`<svg><g onload="alert(1)"></g></svg>`,
	`<table><tr><td>cell</td></tr></table>`,
	`<ul><li>one<li>two</ul>`,
	`<pre class="go">code &lt;here&gt;</pre>`,
	`<h7>bogus</h7><h3>ok</h3>`,
	`<a href="https://a"><a href="https://b">nested</a></a>`,
	`<style>body{}</style><nl><li>n</li></nl>`,
	"bad \xff\xfe bytes <b>\xc3</b>",
}

var (
	basicTags = []string{
		"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "p", "a", "ul", "ol", "li",
		"b", "i", "strong", "em", "strike", "code", "hr", "br", "div", "span", "pre",
		"mark", "ins", "sup", "sub",
	}
	basicAttrs = map[string][]string{
		"a":    {"href", "name", "target", "rel"},
		"span": {"class"},
		"div":  {"class"},
		"p":    {"class"},
		"pre":  {"class"},
		"code": {"class"},
		"mark": {"class"},
		"ins":  {"class"},
		"sup":  {"class"},
		"sub":  {"class"},
	}
	imgAttrs = []string{"src", "alt", "width", "height"}
)

// checkAllowList fails if out contains any element or attribute outside the
// allow-list for its mode.
func checkAllowList(t *testing.T, out string, rich bool) {
	t.Helper()
	z := html.NewTokenizer(strings.NewReader(out))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken && tt != html.EndTagToken {
			continue
		}
		tok := z.Token()
		isImg := rich && tok.Data == "img"
		if !slices.Contains(basicTags, tok.Data) && !isImg {
			t.Errorf("disallowed element <%s> in %q", tok.Data, out)
			continue
		}
		attrs := basicAttrs[tok.Data]
		if isImg {
			attrs = imgAttrs
		}
		for _, a := range tok.Attr {
			if !slices.Contains(attrs, a.Key) {
				t.Errorf("disallowed attribute %s on <%s> in %q", a.Key, tok.Data, out)
			}
		}
	}
}

func TestSanitize_AllowList(t *testing.T) {
	for _, in := range hostile {
		checkAllowList(t, Sanitize(in), false)
		checkAllowList(t, SanitizeRichText(in), true)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	for _, in := range hostile {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
		rich := SanitizeRichText(in)
		if twice := SanitizeRichText(rich); twice != rich {
			t.Errorf("SanitizeRichText not idempotent for %q:\n once: %q\ntwice: %q", in, rich, twice)
		}
	}
}

func TestSanitize_SchemeRestriction(t *testing.T) {
	tests := []string{
		`<a href="javascript:alert(1)">x</a>`,
		`<a href="//evil.example/x">x</a>`,
		`<a href="data:text/html,hi">x</a>`,
		`<a href="/jobs/1">x</a>`,
	}
	for _, in := range tests {
		out := Sanitize(in)
		if strings.Contains(out, "href") {
			t.Errorf("expected no href for %q, got %q", in, out)
		}
		if !strings.Contains(out, "x") {
			t.Errorf("expected link text kept for %q, got %q", in, out)
		}
	}
}

func TestSanitize_AnchorRewrite(t *testing.T) {
	out := Sanitize(`<a href="https://example.com" target="_self" rel="opener">ok</a>`)
	want := `<a href="https://example.com" rel="noopener" target="_blank">ok</a>`
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestSanitize_StripsScriptContent(t *testing.T) {
	out := Sanitize(`<script>alert(1)</script>hello`)
	if strings.Contains(out, "alert") || strings.Contains(out, "<script") {
		t.Errorf("expected script removed, got %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("expected text kept, got %q", out)
	}
}

func TestSanitize_WellFormed(t *testing.T) {
	out := Sanitize(`<p>unclosed <b>bold <i>both`)
	want := `<p>unclosed <b>bold <i>both</i></b></p>`
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestSanitizeRichText_Images(t *testing.T) {
	in := `<img src="https://cdn.example/logo.png" alt="logo" onerror="x()">`
	if out := Sanitize(in); strings.Contains(out, "<img") {
		t.Errorf("expected img stripped in basic mode, got %q", out)
	}
	out := SanitizeRichText(in)
	if !strings.Contains(out, `src="https://cdn.example/logo.png"`) || strings.Contains(out, "onerror") {
		t.Errorf("unexpected rich output %q", out)
	}
}

func TestSanitize_DropsUnlistedListElement(t *testing.T) {
	out := Sanitize(`<nl><li>x</li></nl>`)
	if strings.Contains(out, "nl>") {
		t.Errorf("expected <nl> stripped, got %q", out)
	}
	if !strings.Contains(out, "x") {
		t.Errorf("expected text kept, got %q", out)
	}
}

func TestSanitize_InvalidUTF8(t *testing.T) {
	for _, in := range []string{"a\xffb", "<p>\xc3</p>", "<a href=\"https://x\xfe\">y</a>"} {
		for _, out := range []string{Sanitize(in), SanitizeRichText(in)} {
			if !utf8.ValidString(out) {
				t.Errorf("expected valid UTF-8 for %q, got %q", in, out)
			}
		}
	}
	if out := Sanitize("a\xffb"); out != "a\uFFFDb" {
		t.Errorf("expected replacement character, got %q", out)
	}
}
