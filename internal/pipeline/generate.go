package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/llm"
)

const (
	SystemInstruction = "You are an expert in creating compelling job descriptions."
	Temperature       = 0.7
)

// Request describes the job post a description is generated for.
type Request struct {
	Title          string   `json:"job_title"`
	Company        string   `json:"company_name"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employment_type"`
	Skills         []string `json:"key_skills"`
	Benefits       []string `json:"benefits"`
	Experience     string   `json:"experience,omitempty"`
}

func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "job_title")
	}
	if strings.TrimSpace(r.Company) == "" {
		missing = append(missing, "company_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// BuildPrompt renders the generation prompt for r.
func BuildPrompt(r Request) string {
	var b strings.Builder
	b.WriteString("Create a professional job description with the following structure:\n\n")
	fmt.Fprintf(&b, "Position: %s\n", r.Title)
	fmt.Fprintf(&b, "Company: %s\n", r.Company)
	fmt.Fprintf(&b, "Location: %s\n", r.Location)
	fmt.Fprintf(&b, "Employment Type: %s\n\n", r.EmploymentType)
	b.WriteString("Required Skills:\n")
	for _, s := range r.Skills {
		b.WriteString(s + "\n")
	}
	b.WriteString("\nBenefits:\n")
	for _, s := range r.Benefits {
		b.WriteString(s + "\n")
	}
	if r.Experience != "" {
		fmt.Fprintf(&b, "\nRequired Experience: %s\n", r.Experience)
	}
	b.WriteString(`
Please format the response in JSON with the following structure:
{
  "title": "",
  "summary": "",
  "responsibilities": [],
  "requirements": [],
  "benefits": [],
  "culture": ""
}
`)
	return b.String()
}

// Generated is the structured description returned by the model.
type Generated struct {
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Benefits         []string `json:"benefits"`
	Culture          string   `json:"culture"`
}

// ParseGenerated decodes a model response, tolerating a code fence.
func ParseGenerated(raw string) (Generated, error) {
	var g Generated
	if err := json.Unmarshal([]byte(llm.StripCodeBlock(raw)), &g); err != nil {
		return Generated{}, fmt.Errorf("parse description json: %w (raw: %s)", err, llm.Truncate(raw, 200))
	}
	return g, nil
}

// Document lays g out as an h2 title, a summary paragraph, one h3 section
// with a bullet list per non-empty list, and a closing culture paragraph.
func (g Generated) Document() doctree.Document {
	var blocks []doctree.Block
	if t := strings.TrimSpace(g.Title); t != "" {
		blocks = append(blocks, &doctree.Heading{Level: 2, Children: doctree.TextToInlines(t, 0)})
	}
	if s := strings.TrimSpace(g.Summary); s != "" {
		blocks = append(blocks, &doctree.Paragraph{Children: doctree.TextToInlines(s, 0)})
	}
	sections := []struct {
		heading string
		items   []string
	}{
		{"Responsibilities", g.Responsibilities},
		{"Requirements", g.Requirements},
		{"Benefits", g.Benefits},
	}
	for _, sec := range sections {
		list := bulletList(sec.items)
		if list == nil {
			continue
		}
		blocks = append(blocks,
			&doctree.Heading{Level: 3, Children: []doctree.Inline{doctree.Text{Value: sec.heading}}},
			list,
		)
	}
	if c := strings.TrimSpace(g.Culture); c != "" {
		blocks = append(blocks, &doctree.Paragraph{Children: doctree.TextToInlines(c, 0)})
	}
	return doctree.Document{Children: blocks}
}

func bulletList(items []string) *doctree.BulletList {
	var out []*doctree.ListItem
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, &doctree.ListItem{Children: []doctree.Block{
			&doctree.Paragraph{Children: doctree.TextToInlines(it, 0)},
		}})
	}
	if len(out) == 0 {
		return nil
	}
	return &doctree.BulletList{Items: out}
}
