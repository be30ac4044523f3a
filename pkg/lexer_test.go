package arx

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.arxlang.dev/internal/test"
)

func TestLexer(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		expect []TokenType
		values []string
	}{
		{
			"def foo(a b) a + b",
			false,
			[]TokenType{TokenDef, TokenIdentifier, TokenOpenParentheses, TokenIdentifier, TokenIdentifier,
				TokenCloseParentheses, TokenIdentifier, TokenOperator, TokenIdentifier},
			[]string{"def", "foo", "(", "a", "b", ")", "a", "+", "b"},
		},
		{
			"# this is a comment\n",
			false,
			[]TokenType{TokenLineComment},
			[]string{" this is a comment"},
		},
		{
			"extern sin(x);",
			false,
			[]TokenType{TokenExtern, TokenIdentifier, TokenOpenParentheses, TokenIdentifier, TokenCloseParentheses,
				TokenSemicolon},
			[]string{"extern", "sin", "(", "x", ")", ";"},
		},
		{
			"if x < 3.5 then 1 else .5",
			false,
			[]TokenType{TokenIf, TokenIdentifier, TokenOperator, TokenNumber, TokenThen, TokenNumber, TokenElse,
				TokenNumber},
			[]string{"if", "x", "<", "3.5", "then", "1", "else", ".5"},
		},
		{
			"for i = 1, i < n, 2 in var a in binary unary",
			false,
			[]TokenType{TokenFor, TokenIdentifier, TokenOperator, TokenNumber, TokenComma, TokenIdentifier,
				TokenOperator, TokenIdentifier, TokenComma, TokenNumber, TokenIn, TokenVar, TokenIdentifier, TokenIn,
				TokenBinary, TokenUnary},
			[]string{"for", "i", "=", "1", ",", "i", "<", "n", ",", "2", "in", "var", "a", "in", "binary", "unary"},
		},
		{
			"_under_score9 x1",
			false,
			[]TokenType{TokenIdentifier, TokenIdentifier},
			[]string{"_under_score9", "x1"},
		},
		{
			"1.2.3",
			false,
			[]TokenType{TokenNumber},
			[]string{"1.2.3"},
		},
		{
			"a €",
			true,
			nil,
			nil,
		},
	}

	for _, c := range cases {
		l := NewLexerFromReader("testing", strings.NewReader(c.data))

		toks, err := l.Tokens()
		if c.fail {
			assert.Error(t, err)
			assert.Nil(t, toks)
			continue
		}

		require.NoError(t, err, c.data)

		var types []TokenType
		var values []string
		for _, tok := range toks {
			types = append(types, tok.Typ)
			values = append(values, tok.Value)
		}

		assert.Equal(t, c.expect, types, c.data)
		assert.Equal(t, c.values, values, c.data)
	}
}

func TestLexerLocations(t *testing.T) {
	l := NewLexerFromReader("loc.arx", strings.NewReader("def f(x)\n  x * 2"))

	toks, err := l.Tokens()
	require.NoError(t, err)
	require.Len(t, toks, 8)

	assert.Equal(t, Location{File: "loc.arx", Line: 1, Column: 1}, toks[0].Loc)
	assert.Equal(t, Location{File: "loc.arx", Line: 1, Column: 5}, toks[1].Loc)
	assert.Equal(t, Location{File: "loc.arx", Line: 2, Column: 3}, toks[5].Loc)
	assert.Equal(t, Location{File: "loc.arx", Line: 2, Column: 5}, toks[6].Loc)
	assert.Equal(t, Location{File: "loc.arx", Line: 2, Column: 7}, toks[7].Loc)
}

func TestLexerRepeatsTerminalToken(t *testing.T) {
	l := NewLexerFromReader("testing", strings.NewReader("x"))

	assert.Equal(t, TokenIdentifier, l.Get().Typ)
	for i := 0; i < 3; i++ {
		assert.Equal(t, TokenEOF, l.Get().Typ)
	}

	l = NewLexerFromReader("testing", strings.NewReader("x €"))
	l.Get()

	first := l.Get()
	assert.Equal(t, TokenError, first.Typ)
	assert.Equal(t, first, l.Get())
}

func TestLexerNULCharacter(t *testing.T) {
	l := NewLexerFromReader("testing", strings.NewReader("1 +\x00 def g() 3"))

	assert.Equal(t, TokenNumber, l.Get().Typ)
	assert.Equal(t, TokenOperator, l.Get().Typ)

	tok := l.Get()
	assert.Equal(t, TokenError, tok.Typ)
	assert.Equal(t, "invalid NUL character", tok.Value)
	assert.Equal(t, Location{File: "testing", Line: 1, Column: 4}, tok.Loc)
}

func TestLexerReadError(t *testing.T) {
	reader := io.MultiReader(strings.NewReader("def f"), iotest.ErrReader(errors.New("disk gone")))
	l := NewLexerFromReader("broken.arx", reader)

	assert.Equal(t, TokenDef, l.Get().Typ)
	assert.Equal(t, TokenIdentifier, l.Get().Typ)

	tok := l.Get()
	assert.Equal(t, TokenError, tok.Typ)
	assert.Equal(t, "reading broken.arx: disk gone", tok.Value)
	assert.Equal(t, tok, l.Get())
}

func TestIsOperatorRune(t *testing.T) {
	for _, r := range "+-*/<>=|&!^:%~@$?" {
		assert.True(t, IsOperatorRune(r), string(r))
	}

	for _, r := range "(),;.#_a9 \x00€" {
		assert.False(t, IsOperatorRune(r), string(r))
	}
}

func TestNewLexer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.arx")
	require.NoError(t, os.WriteFile(path, []byte("extern cos(x)"), 0o644))

	l, err := NewLexer(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.Filename())

	toks, err := l.Tokens()
	require.NoError(t, err)
	assert.Len(t, toks, 5)

	_, err = NewLexer(filepath.Join(t.TempDir(), "missing.arx"))
	assert.Error(t, err)
}

// Use a package-level variable to avoid compiler optimisation
var benchResult []Token

func benchmarkLexer(size int, b *testing.B) {
	for n := 0; n < b.N; n++ {
		// Setup
		b.StopTimer()
		data := test.GetRandomTokens(size)
		l := NewLexerFromReader("bench", strings.NewReader(data))

		var err error
		b.StartTimer()

		benchResult, err = l.Tokens()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLexer100(b *testing.B) {
	benchmarkLexer(100, b)
}

func BenchmarkLexer1000(b *testing.B) {
	benchmarkLexer(1000, b)
}

func BenchmarkLexer10000(b *testing.B) {
	benchmarkLexer(10000, b)
}

func BenchmarkLexer100000(b *testing.B) {
	benchmarkLexer(100000, b)
}
