package arx

import (
	"fmt"
	"strings"
)

type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrIncomplete
	ErrNumber
	ErrDepth
	ErrLexer
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax"
	case ErrIncomplete:
		return "incomplete"
	case ErrNumber:
		return "number"
	case ErrDepth:
		return "depth"
	case ErrLexer:
		return "lexer"
	default:
		return "unknown"
	}
}

// ParseError is a diagnostic produced while parsing. It carries the location
// of the token that could not be parsed.
type ParseError struct {
	Kind ErrorKind
	Loc  Location
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

func (e *ParseError) String() string {
	return e.Error()
}

// ErrorList collects every diagnostic of a parse run.
type ErrorList []*ParseError

func (el *ErrorList) Add(err *ParseError) {
	*el = append(*el, err)
}

func (el ErrorList) Len() int {
	return len(el)
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(el))
	for _, err := range el {
		sb.WriteString("\n\t")
		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Err returns nil if the list is empty, otherwise the list itself.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}

	return el
}

// ByKind returns the diagnostics of the given kind.
func (el ErrorList) ByKind(kind ErrorKind) []*ParseError {
	var result []*ParseError
	for _, err := range el {
		if err.Kind == kind {
			result = append(result, err)
		}
	}

	return result
}

// CodegenError is returned when a well-formed AST cannot be lowered to IR.
type CodegenError struct {
	Loc Location
	Msg string
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

func (e *CodegenError) Location() Location {
	return e.Loc
}
