package arx

import (
	"testing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueLookup(t *testing.T) {
	vals := NewValueLookup()

	val1 := constant.NewFloat(types.Double, 1)
	val2 := constant.NewFloat(types.Double, 2)

	vals.Set("id1", val1)
	vals.Set("id2", val2)

	got, ok := vals.Get("id1")
	assert.True(t, ok)
	assert.Equal(t, val1, got)

	got, ok = vals.Get("id2")
	assert.True(t, ok)
	assert.Equal(t, val2, got)

	_, ok = vals.Get("id3")
	assert.False(t, ok)
}

func TestValueLookupInherit(t *testing.T) {
	vals1 := NewValueLookup()

	val1 := constant.NewFloat(types.Double, 1)
	val2 := constant.NewFloat(types.Double, 2)

	vals1.Set("id1", val1)
	vals1.Set("id2", val2)

	vals2 := NewValueLookup()

	val3 := constant.NewFloat(types.Double, 3)
	val4 := constant.NewFloat(types.Double, 4)

	vals2.Set("id1", val3)
	vals2.Set("id4", val4)

	vals1.Inherit(vals2)

	for id, expect := range map[string]*constant.Float{"id1": val3, "id2": val2, "id4": val4} {
		got, ok := vals1.Get(id)
		assert.True(t, ok, id)
		assert.Equal(t, expect, got, id)
	}
}

func TestValueLookupShadow(t *testing.T) {
	vals := NewValueLookup()

	outer := constant.NewFloat(types.Double, 1)
	inner := constant.NewFloat(types.Double, 2)

	vals.Set("x", outer)

	restore := vals.Shadow("x", inner)
	got, _ := vals.Get("x")
	assert.Equal(t, inner, got)

	restoreY := vals.Shadow("y", inner)

	restore()
	got, _ = vals.Get("x")
	assert.Equal(t, outer, got)

	restoreY()
	_, ok := vals.Get("y")
	assert.False(t, ok)
}

func generate(t *testing.T, src string) string {
	t.Helper()

	ast := parseString(src)
	require.NoError(t, ast.Err(), src)

	mod, err := GenerateIR(ast)
	require.NoError(t, err, src)

	return mod.String()
}

func TestGenerateIR(t *testing.T) {
	cases := []struct {
		data   string
		expect []string
	}{
		{
			"def add(a b) a + b",
			[]string{"define double @add(double %a, double %b)", "alloca double", "fadd double", "ret double"},
		},
		{
			"def f(a b) a - b * 2 / a",
			[]string{"fsub double", "fmul double", "fdiv double"},
		},
		{
			"def lt(a b) a < b",
			[]string{"fcmp ult double", "uitofp i1"},
		},
		{
			"def gt(a b) a > b",
			[]string{"fcmp ugt double"},
		},
		{
			"extern sin(x); def f(x) sin(x)",
			[]string{"declare double @sin(", "call double @sin("},
		},
		{
			"def f(x) if x then 1 else 2",
			[]string{"fcmp one double", "br i1", "phi double"},
		},
		{
			"def f(n) for i = 0, i < n in printd(i)",
			[]string{"call double @printd(", "br label"},
		},
		{
			"def f(x) var a = 1, b in a + b + x",
			[]string{"store double", "fadd double"},
		},
		{
			"def f(x) x = 3",
			[]string{"store double", "ret double"},
		},
		{
			"def binary| 5 (a b) a; def f(x) x | 1",
			[]string{"define double @\"binary|\"(double %a, double %b)", "call double @\"binary|\"("},
		},
		{
			"def unary-(v) 0 - v; def f(x) -x",
			[]string{"define double @unary-(double %v)", "call double @unary-("},
		},
		{
			"1 + 2",
			[]string{"define double @__anon_expr.0()"},
		},
		{
			"putchard(65)",
			[]string{"declare i32 @putchar(", "fptosi double"},
		},
	}

	for _, c := range cases {
		out := generate(t, c.data)
		for _, expect := range c.expect {
			assert.Contains(t, out, expect, c.data)
		}
	}
}

func TestGenerateIRBuiltins(t *testing.T) {
	out := generate(t, "")

	assert.Contains(t, out, "define double @printd(double %x)")
	assert.Contains(t, out, "define double @putchard(double %x)")
	assert.Contains(t, out, "declare i32 @printf(i8*")
}

func TestGenerateIRErrors(t *testing.T) {
	cases := []struct {
		data   string
		expect string
	}{
		{"def f(x) y", "testing:1:10: unknown variable 'y'"},
		{"g(1)", "testing:1:1: unknown function 'g'"},
		{"def f(a b) a; f(1)", "'f' expects 2 arguments, got 1"},
		{"def f() 1; def f() 2", "function 'f' cannot be redefined"},
		{"def printd(x) x", "function 'printd' cannot be redefined"},
		{"def f(a a) a", "duplicate parameter 'a' in 'f'"},
		{"extern f(a); def f(a b) a", "'f' redeclared with 2 parameters, previously 1"},
		{"def f(x) 1 = x", "left side of '=' must be a variable"},
		{"def f(x) !x", "unknown unary operator '!'"},
	}

	for _, c := range cases {
		ast := parseString(c.data)
		require.NoError(t, ast.Err(), c.data)

		mod, err := GenerateIR(ast)
		require.Error(t, err, c.data)
		assert.Contains(t, err.Error(), c.expect, c.data)
		assert.NotNil(t, mod, c.data)

		var cerrs CompileErrors
		require.ErrorAs(t, err, &cerrs, c.data)
	}
}

func TestGenerateIRSkipsFailedUnits(t *testing.T) {
	ast := parseString("def bad(x) y; def good(x) x; bad(1)")
	require.NoError(t, ast.Err())

	mod, err := GenerateIR(ast)
	require.Error(t, err)

	out := mod.String()
	assert.Contains(t, out, "define double @good(double %x)")
	assert.Contains(t, out, "declare double @bad(")
	assert.Contains(t, out, "call double @bad(")
}
