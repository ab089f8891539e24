package suggest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wireSuggestion is the only response shape accepted from the model.
type wireSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// injectionPattern omits "act as" and "override", which are ordinary in job
// descriptions ("act as a mentor").
var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`pretend\s+|forget\s+(everything|all)|new\s+instructions)`,
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 300
	maxContentLen     = 4000
)

// validSuggestion trims s in place and reports whether it is usable.
func validSuggestion(s *wireSuggestion) bool {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.Content = strings.TrimSpace(s.Content)
	if s.Title == "" || utf8.RuneCountInString(s.Title) > maxTitleLen {
		return false
	}
	if utf8.RuneCountInString(s.Description) > maxDescriptionLen {
		return false
	}
	if s.Content == "" || utf8.RuneCountInString(s.Content) > maxContentLen {
		return false
	}
	for _, f := range []string{s.Title, s.Description, s.Content} {
		if injectionPattern.MatchString(f) {
			return false
		}
	}
	return true
}
