package sanitize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sanitize strips every element, attribute and URL scheme outside the
// allow-list and forces anchors to open in a new tab with rel="noopener".
// It never fails: malformed markup degrades to escaped text and invalid
// UTF-8 to U+FFFD.
func Sanitize(raw string) string {
	return clean(basicPolicy.Sanitize(strings.ToValidUTF8(raw, "\uFFFD")))
}

// SanitizeRichText is Sanitize with images permitted.
func SanitizeRichText(raw string) string {
	return clean(richPolicy.Sanitize(strings.ToValidUTF8(raw, "\uFFFD")))
}

// clean re-parses policy output as a body fragment so the result is
// well-formed, then rewrites anchor rel/target.
func clean(s string) string {
	if s == "" {
		return ""
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return s
	}
	var b strings.Builder
	for _, n := range nodes {
		rewriteAnchors(n)
		if err := html.Render(&b, n); err != nil {
			return s
		}
	}
	return b.String()
}

func rewriteAnchors(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			if a.Namespace == "" && (a.Key == "rel" || a.Key == "target") {
				continue
			}
			attrs = append(attrs, a)
		}
		n.Attr = append(attrs,
			html.Attribute{Key: "rel", Val: "noopener"},
			html.Attribute{Key: "target", Val: "_blank"},
		)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteAnchors(c)
	}
}
