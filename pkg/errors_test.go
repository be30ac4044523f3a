package arx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationString(t *testing.T) {
	assert.Equal(t, "<unknown>", Location{}.String())
	assert.Equal(t, "3:7", Location{Line: 3, Column: 7}.String())
	assert.Equal(t, "a.arx:3:7", Location{File: "a.arx", Line: 3, Column: 7}.String())
}

func TestErrorList(t *testing.T) {
	var el ErrorList
	assert.NoError(t, el.Err())
	assert.Equal(t, "no errors", el.Error())

	el.Add(&ParseError{Kind: ErrSyntax, Loc: Location{Line: 1, Column: 2}, Msg: "expected expression"})
	assert.Equal(t, "1:2: expected expression", el.Error())

	el.Add(&ParseError{Kind: ErrDepth, Loc: Location{Line: 4, Column: 1}, Msg: "too deep"})
	assert.Error(t, el.Err())
	assert.Equal(t, 2, el.Len())
	assert.Equal(t, "2 errors:\n\t1:2: expected expression\n\t4:1: too deep", el.Error())

	assert.Len(t, el.ByKind(ErrDepth), 1)
	assert.Empty(t, el.ByKind(ErrNumber))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "syntax", ErrSyntax.String())
	assert.Equal(t, "incomplete", ErrIncomplete.String())
	assert.Equal(t, "number", ErrNumber.String())
	assert.Equal(t, "depth", ErrDepth.String())
	assert.Equal(t, "lexer", ErrLexer.String())
	assert.Equal(t, "unknown", ErrorKind(42).String())
}
