// Package sanitize cleans untrusted HTML entered into free-text fields
// (company "about", legacy job descriptions) before it is persisted or
// re-exported.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// AllowedTags is the element allow-list shared by both policies.
var AllowedTags = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"blockquote", "p", "a", "ul", "ol", "li",
	"b", "i", "strong", "em", "strike", "code",
	"hr", "br", "div", "span", "pre",
	"mark", "ins", "sup", "sub",
}

// AllowedAttrs is the per-element attribute allow-list. Elements not listed
// carry no attributes.
var AllowedAttrs = map[string][]string{
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

// RichAttrs extends AllowedAttrs in rich-text mode.
var RichAttrs = map[string][]string{
	"img": {"src", "alt", "width", "height"},
}

var (
	basicPolicy = newPolicy(false)
	richPolicy  = newPolicy(true)
)

func newPolicy(rich bool) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	for el, attrs := range AllowedAttrs {
		p.AllowAttrs(attrs...).OnElements(el)
	}
	if rich {
		for el, attrs := range RichAttrs {
			p.AllowAttrs(attrs...).OnElements(el)
		}
	}
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(false)
	return p
}
