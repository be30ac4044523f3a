package arx

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

type funcDefinition = func(mod *ir.Module) *ir.Func

// builtins are defined in every generated module. Each takes one double and
// returns 0.0.
var builtins = []struct {
	name       string
	definition funcDefinition
}{
	{"printd", builtinPrintd},
	{"putchard", builtinPutchard},
}

func defineBuiltins(b *LLVMIRBuilder) {
	for _, builtin := range builtins {
		defineBuiltinFunc(b, builtin.name, builtin.definition)
	}
}

func defineBuiltinFunc(b *LLVMIRBuilder, name string, definition funcDefinition) {
	f := definition(b.mod)
	f.SetName(name)
	b.funcs[name] = f
}

// builtinPrintd prints its argument followed by a newline.
func builtinPrintd(mod *ir.Module) *ir.Func {
	f := mod.NewFunc("", types.Double, ir.NewParam("x", types.Double))
	b := f.NewBlock("")

	printf := mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	printf.Sig.Variadic = true

	zero := constant.NewInt(types.I32, 0)

	format := constant.NewCharArrayFromString("%f\n\x00")
	formatGlob := mod.NewGlobalDef("._printd_fmt", format)
	formatGlob.Immutable = true

	fmtAddr := constant.NewGetElementPtr(format.Typ, formatGlob, zero, zero)

	b.NewCall(printf, fmtAddr, f.Params[0])
	b.NewRet(constant.NewFloat(types.Double, 0))

	return f
}

// builtinPutchard writes its argument, truncated to an integer, as a single
// character.
func builtinPutchard(mod *ir.Module) *ir.Func {
	f := mod.NewFunc("", types.Double, ir.NewParam("x", types.Double))
	b := f.NewBlock("")

	putchar := mod.NewFunc("putchar", types.I32, ir.NewParam("c", types.I32))

	c := b.NewFPToSI(f.Params[0], types.I32)
	b.NewCall(putchar, c)
	b.NewRet(constant.NewFloat(types.Double, 0))

	return f
}
