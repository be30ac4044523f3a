package arx

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// ValueLookup maps variable names to the stack slot holding their value.
type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]value.Value),
	}
}

func (l *ValueLookup) Inherit(t2 *ValueLookup) {
	for k, v := range t2.vals {
		l.Set(k, v)
	}
}

func (l *ValueLookup) Get(id string) (value.Value, bool) {
	val, ok := l.vals[id]
	return val, ok
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}

// Shadow binds id to val and returns a function restoring the previous
// binding, if any.
func (l *ValueLookup) Shadow(id string, val value.Value) func() {
	prev, had := l.vals[id]
	l.vals[id] = val

	return func() {
		if had {
			l.vals[id] = prev
		} else {
			delete(l.vals, id)
		}
	}
}

type IRGenerator interface {
	Do() (*ir.Module, error)
}

var zero = constant.NewFloat(types.Double, 0)

type LLVMIRBuilder struct {
	mod    *ir.Module
	funcs  map[string]*ir.Func
	fn     *ir.Func
	entry  *ir.Block
	block  *ir.Block
	values *ValueLookup
}

func NewLLVMIRBuilder() *LLVMIRBuilder {
	builder := &LLVMIRBuilder{
		mod:    ir.NewModule(),
		funcs:  make(map[string]*ir.Func),
		values: NewValueLookup(),
	}

	defineBuiltins(builder)
	return builder
}

func (b *LLVMIRBuilder) errorf(l Location, format string, args ...interface{}) error {
	return &CodegenError{
		Loc: l,
		Msg: fmt.Sprintf(format, args...),
	}
}

// prototype returns the function declared by proto, declaring it first if
// this is the first time it is seen.
func (b *LLVMIRBuilder) prototype(proto *Prototype) (*ir.Func, error) {
	if f, ok := b.funcs[proto.Name]; ok {
		if len(f.Params) != len(proto.Params) {
			return nil, b.errorf(proto.Loc, "'%s' redeclared with %d parameters, previously %d",
				proto.Name, len(proto.Params), len(f.Params))
		}

		return f, nil
	}

	seen := make(map[string]bool, len(proto.Params))
	params := make([]*ir.Param, len(proto.Params))
	for i, name := range proto.Params {
		if seen[name] {
			return nil, b.errorf(proto.Loc, "duplicate parameter '%s' in '%s'", name, proto.Name)
		}

		seen[name] = true
		params[i] = ir.NewParam(name, types.Double)
	}

	f := b.mod.NewFunc(proto.Name, types.Double, params...)
	b.funcs[proto.Name] = f

	return f, nil
}

func (b *LLVMIRBuilder) function(fn *Function) (err error) {
	f, err := b.prototype(fn.Proto)
	if err != nil {
		return err
	}

	if len(f.Blocks) > 0 {
		return b.errorf(fn.Proto.Loc, "function '%s' cannot be redefined", fn.Proto.Name)
	}

	b.fn = f
	b.entry = f.NewBlock("")
	b.block = b.entry
	b.values = NewValueLookup()

	defer func() {
		if err != nil {
			// Leave a declaration behind so later units can still refer to it
			f.Blocks = nil
		}

		b.fn, b.entry, b.block = nil, nil, nil
	}()

	for i, param := range f.Params {
		slot := b.alloca()
		b.block.NewStore(param, slot)
		b.values.Set(fn.Proto.Params[i], slot)
	}

	v, err := b.expr(fn.Body)
	if err != nil {
		return err
	}

	b.block.NewRet(v)
	return nil
}

// alloca reserves a stack slot in the entry block, ahead of every other
// instruction so mem2reg can promote it.
func (b *LLVMIRBuilder) alloca() *ir.InstAlloca {
	slot := ir.NewAlloca(types.Double)
	b.entry.Insts = append([]ir.Instruction{slot}, b.entry.Insts...)

	return slot
}

func (b *LLVMIRBuilder) expr(expr Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *NumberExpr:
		return constant.NewFloat(types.Double, e.Value), nil
	case *VariableExpr:
		slot, ok := b.values.Get(e.Name)
		if !ok {
			return nil, b.errorf(e.Loc, "unknown variable '%s'", e.Name)
		}

		return b.block.NewLoad(types.Double, slot), nil
	case *UnaryExpr:
		return b.unaryExpression(e)
	case *BinaryExpr:
		return b.binaryExpression(e)
	case *CallExpr:
		return b.functionCall(e)
	case *IfExpr:
		return b.ifExpression(e)
	case *ForExpr:
		return b.forExpression(e)
	case *VarExpr:
		return b.varExpression(e)
	default:
		return nil, b.errorf(expr.Location(), "unsupported expression %s", expr.Kind())
	}
}

func (b *LLVMIRBuilder) unaryExpression(expr *UnaryExpr) (value.Value, error) {
	v, err := b.expr(expr.Operand)
	if err != nil {
		return nil, err
	}

	f, ok := b.funcs[unaryPrefix+expr.Op]
	if !ok {
		return nil, b.errorf(expr.Loc, "unknown unary operator '%s'", expr.Op)
	}

	return b.block.NewCall(f, v), nil
}

func (b *LLVMIRBuilder) binaryExpression(expr *BinaryExpr) (value.Value, error) {
	if expr.Op == "=" {
		return b.assignment(expr)
	}

	v1, err := b.expr(expr.LHS)
	if err != nil {
		return nil, err
	}

	v2, err := b.expr(expr.RHS)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case "+":
		return b.block.NewFAdd(v1, v2), nil
	case "-":
		return b.block.NewFSub(v1, v2), nil
	case "*":
		return b.block.NewFMul(v1, v2), nil
	case "/":
		return b.block.NewFDiv(v1, v2), nil
	case "<":
		cmp := b.block.NewFCmp(enum.FPredULT, v1, v2)
		return b.block.NewUIToFP(cmp, types.Double), nil
	case ">":
		cmp := b.block.NewFCmp(enum.FPredUGT, v1, v2)
		return b.block.NewUIToFP(cmp, types.Double), nil
	}

	f, ok := b.funcs[binaryPrefix+expr.Op]
	if !ok {
		return nil, b.errorf(expr.Loc, "unknown binary operator '%s'", expr.Op)
	}

	return b.block.NewCall(f, v1, v2), nil
}

func (b *LLVMIRBuilder) assignment(expr *BinaryExpr) (value.Value, error) {
	dst, ok := expr.LHS.(*VariableExpr)
	if !ok {
		return nil, b.errorf(expr.Loc, "left side of '=' must be a variable")
	}

	v, err := b.expr(expr.RHS)
	if err != nil {
		return nil, err
	}

	slot, ok := b.values.Get(dst.Name)
	if !ok {
		return nil, b.errorf(dst.Loc, "unknown variable '%s'", dst.Name)
	}

	b.block.NewStore(v, slot)
	return v, nil
}

func (b *LLVMIRBuilder) functionCall(expr *CallExpr) (value.Value, error) {
	f, ok := b.funcs[expr.Callee]
	if !ok {
		return nil, b.errorf(expr.Loc, "unknown function '%s'", expr.Callee)
	}

	if len(f.Params) != len(expr.Args) {
		return nil, b.errorf(expr.Loc, "'%s' expects %d arguments, got %d", expr.Callee, len(f.Params), len(expr.Args))
	}

	args := make([]value.Value, 0, len(expr.Args))
	for _, arg := range expr.Args {
		v, err := b.expr(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	return b.block.NewCall(f, args...), nil
}

func (b *LLVMIRBuilder) ifExpression(expr *IfExpr) (value.Value, error) {
	cond, err := b.expr(expr.Cond)
	if err != nil {
		return nil, err
	}

	isTrue := b.block.NewFCmp(enum.FPredONE, cond, zero)

	thenBlock := b.fn.NewBlock("")
	elseBlock := b.fn.NewBlock("")
	mergeBlock := b.fn.NewBlock("")
	b.block.NewCondBr(isTrue, thenBlock, elseBlock)

	b.block = thenBlock
	thenVal, err := b.expr(expr.Then)
	if err != nil {
		return nil, err
	}

	// Nested control flow may have moved the insertion point
	thenEnd := b.block
	thenEnd.NewBr(mergeBlock)

	b.block = elseBlock
	elseVal, err := b.expr(expr.Else)
	if err != nil {
		return nil, err
	}

	elseEnd := b.block
	elseEnd.NewBr(mergeBlock)

	b.block = mergeBlock
	return mergeBlock.NewPhi(ir.NewIncoming(thenVal, thenEnd), ir.NewIncoming(elseVal, elseEnd)), nil
}

func (b *LLVMIRBuilder) forExpression(expr *ForExpr) (value.Value, error) {
	start, err := b.expr(expr.Start)
	if err != nil {
		return nil, err
	}

	slot := b.alloca()
	b.block.NewStore(start, slot)

	loop := b.fn.NewBlock("")
	b.block.NewBr(loop)
	b.block = loop

	restore := b.values.Shadow(expr.Var, slot)
	defer restore()

	if _, err := b.expr(expr.Body); err != nil {
		return nil, err
	}

	var step value.Value = constant.NewFloat(types.Double, 1)
	if expr.Step != nil {
		if step, err = b.expr(expr.Step); err != nil {
			return nil, err
		}
	}

	end, err := b.expr(expr.End)
	if err != nil {
		return nil, err
	}

	cur := b.block.NewLoad(types.Double, slot)
	b.block.NewStore(b.block.NewFAdd(cur, step), slot)

	cond := b.block.NewFCmp(enum.FPredONE, end, zero)

	after := b.fn.NewBlock("")
	b.block.NewCondBr(cond, loop, after)
	b.block = after

	return zero, nil
}

func (b *LLVMIRBuilder) varExpression(expr *VarExpr) (value.Value, error) {
	var restores []func()
	defer func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}()

	for _, binding := range expr.Bindings {
		var init value.Value = zero
		if binding.Init != nil {
			v, err := b.expr(binding.Init)
			if err != nil {
				return nil, err
			}

			init = v
		}

		slot := b.alloca()
		b.block.NewStore(init, slot)
		restores = append(restores, b.values.Shadow(binding.Name, slot))
	}

	return b.expr(expr.Body)
}

type LLVMGenerator struct {
	ast *AST
}

func NewLLVMGenerator(ast *AST) *LLVMGenerator {
	return &LLVMGenerator{
		ast: ast,
	}
}

// Do lowers every unit of the AST. Units that fail are reported and skipped,
// the returned module holds everything else.
func (g LLVMGenerator) Do() (*ir.Module, error) {
	builder := NewLLVMIRBuilder()
	builder.mod.SourceFilename = g.ast.Filename

	var errs CompileErrors
	for _, unit := range g.ast.Units {
		if err := g.visit(builder, unit); err != nil {
			if cerr, ok := err.(CompileError); ok {
				errs = append(errs, cerr)
			} else {
				errs = append(errs, &CodegenError{Loc: unit.Location(), Msg: err.Error()})
			}
		}
	}

	return builder.mod, errs.Err()
}

func (g LLVMGenerator) visit(b *LLVMIRBuilder, unit Unit) error {
	switch u := unit.(type) {
	case *Prototype:
		_, err := b.prototype(u)
		return err
	case *Function:
		return b.function(u)
	default:
		return fmt.Errorf("unsupported unit %s", unit.Kind())
	}
}

// GenerateIR lowers ast to an LLVM module.
func GenerateIR(ast *AST) (*ir.Module, error) {
	return NewLLVMGenerator(ast).Do()
}
