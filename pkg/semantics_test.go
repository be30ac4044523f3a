package arx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextAnalyzer(t *testing.T) {
	cases := []struct {
		data   string
		expect []string
	}{
		{"def foo(a b) a + b; foo(1, 2)", nil},
		{"extern sin(x); def f(x) sin(x) * 2", nil},
		{"def fib(n) if n < 2 then n else fib(n - 1) + fib(n - 2)", nil},
		{"printd(1); putchard(65)", nil},
		{"def f(x) var a = x, b = a in a + b", nil},
		{"def f(n) for i = 0, i < n in printd(i)", nil},
		{"def unary!(v) if v then 0 else 1; def f(x) !x", nil},
		{"def binary| 5 (a b) a; def f(x) x | 1", nil},
		{"extern f(x); def f(x) x", nil},
		{"def f(x) x = 2", nil},

		{"def f(x) y", []string{"testing:1:10: undefined variable: y"}},
		{"g(1)", []string{"testing:1:1: undefined function: g"}},
		{"def f(a b) a; f(1)", []string{"testing:1:15: 'f' expects 2 arguments, got 1"}},
		{"def f(a a) a", []string{"testing:1:5: duplicate parameter 'a' in 'f'"}},
		{"def f() 1; def f() 2", []string{"testing:1:16: 'f' redefined, previous definition at testing:1:5"}},
		{"extern f(a); def f(a b) a", []string{"testing:1:18: 'f' expects 1 arguments, got 2"}},
		{"def f(x) !x", []string{"testing:1:10: undefined unary operator: !"}},
		{"def f(x) x | 1", []string{"testing:1:12: undefined unary operator: |"}},
		{"def f(x) 1 = x", []string{"testing:1:12: left side of '=' must be a variable"}},
		{"def f(n) (for i = 0, i < n in 1) + i", []string{"testing:1:36: undefined variable: i"}},
		{"def f(x) var a = a in a", []string{"testing:1:18: undefined variable: a"}},
	}

	for _, c := range cases {
		ast := parseString(c.data)
		require.NoError(t, ast.Err(), c.data)

		errs := NewContextAnalyzer(NewGlobalSymbolTable()).Do(ast)

		var got []string
		for _, err := range errs {
			got = append(got, err.Error())
		}

		assert.Equal(t, c.expect, got, c.data)
	}
}

func TestContextAnalyzerKeepsSymbols(t *testing.T) {
	analyzer := NewContextAnalyzer(NewGlobalSymbolTable())

	assert.Empty(t, analyzer.Do(parseString("def f(x) x")))
	assert.Empty(t, analyzer.Do(parseString("f(1)")))

	errs := analyzer.Do(parseString("def f(x) 2"))
	require.Len(t, errs, 1)
	assert.IsType(t, &RedefinitionError{}, errs[0])
}

func TestSymbolTableCopy(t *testing.T) {
	stab := NewGlobalSymbolTable()
	require.NotNil(t, stab.Get("printd"))
	require.NotNil(t, stab.Get("putchard"))

	cp := stab.Copy()
	cp.Add(&Symbol{Name: "f", Arity: 2})
	cp.Get("printd").Arity = 3

	assert.Nil(t, stab.Get("f"))
	assert.Equal(t, 1, stab.Get("printd").Arity)
}

func TestCompileErrors(t *testing.T) {
	var errs CompileErrors
	assert.NoError(t, errs.Err())

	errs = append(errs, &UndefinedError{Loc: Location{Line: 1, Column: 1}, What: "function", Name: "g"})
	assert.Equal(t, "1:1: undefined function: g", errs.Error())

	errs = append(errs, &AssignmentError{Loc: Location{Line: 2, Column: 3}})
	assert.Equal(t, "2 errors:\n\t1:1: undefined function: g\n\t2:3: left side of '=' must be a variable", errs.Error())
}
