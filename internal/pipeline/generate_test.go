package pipeline

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/jobdesc/internal/doctree"
	"github.com/dgallion1/jobdesc/internal/render"
)

func sampleRequest() Request {
	return Request{
		Title:          "Senior Engineer",
		Company:        "Acme",
		Location:       "Remote",
		EmploymentType: "Full-time",
		Skills:         []string{"Go", "Postgres"},
		Benefits:       []string{"Health"},
	}
}

func TestRequest_Validate(t *testing.T) {
	if err := sampleRequest().Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	err := Request{Title: " "}.Validate()
	if err == nil || !strings.Contains(err.Error(), "job_title, company_name") {
		t.Errorf("expected both fields reported, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleRequest())
	for _, want := range []string{
		"Position: Senior Engineer\n",
		"Company: Acme\n",
		"Employment Type: Full-time\n",
		"Required Skills:\nGo\nPostgres\n",
		"Benefits:\nHealth\n",
		`"responsibilities": []`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
	if strings.Contains(p, "Required Experience") {
		t.Error("expected no experience line when experience is empty")
	}

	r := sampleRequest()
	r.Experience = "5+ years"
	if !strings.Contains(BuildPrompt(r), "Required Experience: 5+ years") {
		t.Error("expected experience line")
	}
}

func TestGenerated_Document(t *testing.T) {
	raw := "```json\n" + `{
		"title": "Senior Engineer",
		"summary": "Join us.",
		"responsibilities": ["Build", " "],
		"requirements": [],
		"benefits": ["Health"],
		"culture": "Kind people."
	}` + "\n```"
	g, err := ParseGenerated(raw)
	if err != nil {
		t.Fatalf("ParseGenerated: %v", err)
	}
	doc := g.Document()
	if err := doctree.Validate(doc); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
	got, err := render.HTML(doc)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	want := "<h2>Senior Engineer</h2><p>Join us.</p>" +
		"<h3>Responsibilities</h3><ul><li><p>Build</p></li></ul>" +
		"<h3>Benefits</h3><ul><li><p>Health</p></li></ul>" +
		"<p>Kind people.</p>"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("html mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGenerated_Invalid(t *testing.T) {
	if _, err := ParseGenerated("here you go"); err == nil {
		t.Error("expected error for non-json response")
	}
}
