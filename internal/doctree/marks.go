package doctree

import "strings"

// Mark is a non-exclusive text style.
type Mark uint8

const (
	Bold Mark = 1 << iota
	Italic
	Strike
	Code
)

// markOrder is the canonical outer-to-inner order. Serialization and
// rendering both follow it.
var markOrder = []Mark{Bold, Italic, Strike, Code}

const allMarks = Bold | Italic | Strike | Code

func (m Mark) String() string {
	switch m {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Strike:
		return "strike"
	case Code:
		return "code"
	}
	return "unknown"
}

// ParseMark maps a wire name to a Mark.
func ParseMark(s string) (Mark, bool) {
	for _, m := range markOrder {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Marks is a set of Mark values.
type Marks uint8

// NewMarks builds a set; repeated marks collapse.
func NewMarks(ms ...Mark) Marks {
	var s Marks
	for _, m := range ms {
		s = s.With(m)
	}
	return s
}

func (s Marks) Has(m Mark) bool      { return s&Marks(m) != 0 }
func (s Marks) With(m Mark) Marks    { return s | Marks(m) }
func (s Marks) Without(m Mark) Marks { return s &^ Marks(m) }
func (s Marks) Empty() bool          { return s == 0 }

// Valid reports whether the set only contains known marks.
func (s Marks) Valid() bool { return s&^Marks(allMarks) == 0 }

// List returns the marks in canonical order, outermost first.
func (s Marks) List() []Mark {
	var out []Mark
	for _, m := range markOrder {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s Marks) String() string {
	names := make([]string, 0, 4)
	for _, m := range s.List() {
		names = append(names, m.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
