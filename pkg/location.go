package arx

import "fmt"

// Location is a position in a source file. Line and Column are 1-based; the zero
// value means the position is unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) IsValid() bool {
	return l.Line > 0
}

func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}

	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}

	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
