package arx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.arxlang.dev/internal/test"
)

func unitNames(ast *AST) []string {
	var names []string
	for _, unit := range ast.Units {
		switch u := unit.(type) {
		case *Function:
			names = append(names, u.Proto.Name)
		case *Prototype:
			names = append(names, "extern "+u.Name)
		}
	}

	return names
}

func TestRun(t *testing.T) {
	cases := []struct {
		data   string
		units  []string
		errors int
	}{
		{"", nil, 0},
		{";;;", nil, 0},
		{"# only a comment", nil, 0},
		{"def foo(a b) a + b", []string{"foo"}, 0},
		{"extern sin(x); sin(1)", []string{"extern sin", "__anon_expr.0"}, 0},
		{"def ( def foo(a) a", []string{"foo"}, 1},
		{"def ( extern bar()", []string{"extern bar"}, 1},
		{"1 +; 2", []string{"__anon_expr.0"}, 1},
		{"foo(1 2); def ok() 1; if x then 1; 3", []string{"ok", "__anon_expr.0"}, 2},
		{"def f(x) )", []string{}, 1},
		{") 1; 2", []string{"__anon_expr.0"}, 1},
		{"def a() 1\ndef b() 2\nextern c()", []string{"a", "b", "extern c"}, 0},
		{"1 2", []string{"__anon_expr.0", "__anon_expr.1"}, 0},
	}

	for _, c := range cases {
		ast := parseString(c.data)

		units := unitNames(ast)
		if len(c.units) == 0 {
			assert.Empty(t, units, c.data)
		} else {
			assert.Equal(t, c.units, units, c.data)
		}

		assert.Len(t, ast.Errors, c.errors, c.data)
	}
}

func TestRunRecoveryKeepsFollowingDefinitions(t *testing.T) {
	ast := parseString("def (\ndef foo(a) a")

	require.Len(t, ast.Errors, 1)
	assert.Equal(t, ErrSyntax, ast.Errors[0].Kind)
	assert.Equal(t, Location{File: "testing", Line: 1, Column: 5}, ast.Errors[0].Loc)

	require.Len(t, ast.Units, 1)
	assert.Equal(t, "(def foo (a) a)", Sprint(ast.Units[0]))
}

func TestRunStopsOnLexerError(t *testing.T) {
	ast := parseString("def f() 1; 2 € 3; def g() 4")

	assert.Equal(t, []string{"f", "__anon_expr.0"}, unitNames(ast))
	require.Len(t, ast.Errors, 1)
	assert.Equal(t, ErrLexer, ast.Errors[0].Kind)
}

func TestRunReportsNULCharacter(t *testing.T) {
	ast := parseString("1 + 2\x00 def g() 3")

	assert.Equal(t, []string{"__anon_expr.0"}, unitNames(ast))
	require.Len(t, ast.Errors, 1)
	assert.Equal(t, ErrLexer, ast.Errors[0].Kind)
	assert.Contains(t, ast.Errors[0].Msg, "NUL")
}

func TestRunIncompleteInput(t *testing.T) {
	ast := parseString("def foo(a b)")

	require.Len(t, ast.Errors, 1)
	assert.Equal(t, ErrIncomplete, ast.Errors[0].Kind)
	assert.Empty(t, ast.Units)
}

func TestRunIsIdempotent(t *testing.T) {
	src := "def binary| 5 (a b) a + b;\nextern sin(x)\n1 | 2 * 3;\ndef ( ;\nvar a = 1 in a"

	first := parseString(src)
	second := parseString(src)

	assert.Equal(t, first, second)
	assert.Len(t, first.Errors, 1)
}

func TestRunOperatorsDoNotLeakBetweenParsers(t *testing.T) {
	first := parseString("def binary| 5 (a b) a; 1 | 2")
	require.NoError(t, first.Err())
	assert.Equal(t, "(def __anon_expr.0 () (| 1 2))", Sprint(first.Units[1]))

	// Without the definition '|' is a unary operator on the next expression
	second := parseString("1 | 2")
	require.NoError(t, second.Err())
	assert.Equal(t, []string{"__anon_expr.0", "__anon_expr.1"}, unitNames(second))
	assert.Equal(t, "(def __anon_expr.1 () (| 2))", Sprint(second.Units[1]))
}

func TestRunSharedPrecedenceTable(t *testing.T) {
	table := NewPrecedenceTable()

	p := NewParser(NewLexerFromReader("line1", strings.NewReader("def binary~ 15 (a b) a")), WithPrecedence(table))
	require.NoError(t, p.Run().Err())

	p.Reset(NewLexerFromReader("line2", strings.NewReader("1 ~ 2")))
	ast := p.Run()
	require.NoError(t, ast.Err())
	assert.Equal(t, "line2", ast.Filename)
	assert.Equal(t, "(def __anon_expr.0 () (~ 1 2))", Sprint(ast.Units[0]))

	prec, ok := table.Of("~")
	assert.True(t, ok)
	assert.Equal(t, 15, prec)
}

func TestRunLogsUnits(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	parseString("def f() 1; def (", WithLogger(logger))

	out := buf.String()
	assert.Contains(t, out, "parsed unit")
	assert.Contains(t, out, "kind=Function")
	assert.Contains(t, out, "parse error")
}

func TestRunRandomTokensTerminates(t *testing.T) {
	for i := 0; i < 20; i++ {
		src := test.GetRandomTokens(500)
		ast := parseString(src)

		for _, err := range ast.Errors {
			assert.True(t, err.Loc.IsValid(), err.Error())
		}
	}
}

func TestRunRandomProgram(t *testing.T) {
	ast := parseString(test.GetRandomProgram(50))
	require.NoError(t, ast.Err())
	assert.Len(t, ast.Units, 51)
}

var benchAST *AST

func benchmarkRun(size int, b *testing.B) {
	for n := 0; n < b.N; n++ {
		b.StopTimer()
		src := test.GetRandomProgram(size)
		b.StartTimer()

		benchAST = parseString(src)
	}
}

func BenchmarkRun10(b *testing.B) {
	benchmarkRun(10, b)
}

func BenchmarkRun100(b *testing.B) {
	benchmarkRun(100, b)
}

func BenchmarkRun1000(b *testing.B) {
	benchmarkRun(1000, b)
}
