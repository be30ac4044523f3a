package arx

import (
	"fmt"
	"strings"
)

// CompileError is a diagnostic found after parsing, while resolving names or
// generating code.
type CompileError interface {
	error
	Location() Location
}

type CompileErrors []CompileError

func (el CompileErrors) Error() string {
	if len(el) == 1 {
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

func (el CompileErrors) Err() error {
	if len(el) == 0 {
		return nil
	}

	return el
}

type UndefinedError struct {
	Loc  Location
	What string
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%s: undefined %s: %s", e.Loc, e.What, e.Name)
}

func (e *UndefinedError) Location() Location { return e.Loc }

type ArityError struct {
	Loc  Location
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: '%s' expects %d arguments, got %d", e.Loc, e.Name, e.Want, e.Got)
}

func (e *ArityError) Location() Location { return e.Loc }

type RedefinitionError struct {
	Loc  Location
	Name string
	Prev Location
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("%s: '%s' redefined, previous definition at %s", e.Loc, e.Name, e.Prev)
}

func (e *RedefinitionError) Location() Location { return e.Loc }

type DuplicateParamError struct {
	Loc   Location
	Func  string
	Param string
}

func (e *DuplicateParamError) Error() string {
	return fmt.Sprintf("%s: duplicate parameter '%s' in '%s'", e.Loc, e.Param, e.Func)
}

func (e *DuplicateParamError) Location() Location { return e.Loc }

type AssignmentError struct {
	Loc Location
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("%s: left side of '=' must be a variable", e.Loc)
}

func (e *AssignmentError) Location() Location { return e.Loc }

// Symbol is a function known to the analyzer, declared by an extern or a
// definition.
type Symbol struct {
	Name    string
	Arity   int
	Defined bool
	Loc     Location
}

type SymbolTable struct {
	Entries map[string]*Symbol
}

// NewGlobalSymbolTable returns a table holding the builtin functions.
func NewGlobalSymbolTable() *SymbolTable {
	t := NewSymbolTable()
	for _, b := range builtins {
		t.Add(&Symbol{Name: b.name, Arity: 1, Defined: true})
	}

	return t
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Entries: make(map[string]*Symbol),
	}
}

func (t *SymbolTable) Add(sym *Symbol) {
	t.Entries[sym.Name] = sym
}

func (t *SymbolTable) Get(name string) *Symbol {
	return t.Entries[name]
}

func (t *SymbolTable) Copy() *SymbolTable {
	t2 := NewSymbolTable()
	for k, v := range t.Entries {
		sym := *v
		t2.Entries[k] = &sym
	}

	return t2
}

// builtinOperators are lowered directly and need no operator function.
var builtinOperators = map[string]bool{
	"=": true,
	"<": true,
	">": true,
	"+": true,
	"-": true,
	"*": true,
	"/": true,
}

// ContextAnalyzer resolves every name of an AST: calls, variables and user
// defined operators must refer to something declared before their use.
type ContextAnalyzer struct {
	stab   *SymbolTable
	scope  map[string]int
	errors CompileErrors
}

func NewContextAnalyzer(global *SymbolTable) *ContextAnalyzer {
	return &ContextAnalyzer{
		stab: global,
	}
}

// Do checks the units of ast in order and returns the diagnostics found.
// Symbols declared by ast are added to the analyzer's table, so calling Do
// again with a later AST sees them.
func (c *ContextAnalyzer) Do(ast *AST) CompileErrors {
	c.errors = nil

	for _, unit := range ast.Units {
		switch u := unit.(type) {
		case *Prototype:
			c.declare(u, false)
		case *Function:
			c.function(u)
		}
	}

	return c.errors
}

func (c *ContextAnalyzer) declare(proto *Prototype, define bool) {
	seen := make(map[string]bool, len(proto.Params))
	for _, param := range proto.Params {
		if seen[param] {
			c.errors = append(c.errors, &DuplicateParamError{
				Loc:   proto.Loc,
				Func:  proto.Name,
				Param: param,
			})
		}

		seen[param] = true
	}

	prev := c.stab.Get(proto.Name)
	if prev == nil {
		c.stab.Add(&Symbol{
			Name:    proto.Name,
			Arity:   len(proto.Params),
			Defined: define,
			Loc:     proto.Loc,
		})

		return
	}

	if prev.Arity != len(proto.Params) {
		c.errors = append(c.errors, &ArityError{
			Loc:  proto.Loc,
			Name: proto.Name,
			Want: prev.Arity,
			Got:  len(proto.Params),
		})

		return
	}

	if define && prev.Defined {
		c.errors = append(c.errors, &RedefinitionError{
			Loc:  proto.Loc,
			Name: proto.Name,
			Prev: prev.Loc,
		})

		return
	}

	if define {
		prev.Defined = true
		prev.Loc = proto.Loc
	}
}

func (c *ContextAnalyzer) function(f *Function) {
	c.declare(f.Proto, true)

	c.scope = make(map[string]int)
	for _, param := range f.Proto.Params {
		c.scope[param]++
	}

	c.expr(f.Body)
	c.scope = nil
}

func (c *ContextAnalyzer) bind(name string) {
	c.scope[name]++
}

func (c *ContextAnalyzer) unbind(name string) {
	c.scope[name]--
}

func (c *ContextAnalyzer) expr(expr Expr) {
	switch e := expr.(type) {
	case *NumberExpr:
	case *VariableExpr:
		if c.scope[e.Name] <= 0 {
			c.errors = append(c.errors, &UndefinedError{
				Loc:  e.Loc,
				What: "variable",
				Name: e.Name,
			})
		}
	case *UnaryExpr:
		c.operator(e.Loc, unaryPrefix, e.Op, 1)
		c.expr(e.Operand)
	case *BinaryExpr:
		if e.Op == "=" {
			if _, ok := e.LHS.(*VariableExpr); !ok {
				c.errors = append(c.errors, &AssignmentError{Loc: e.Loc})
			}
		} else if !builtinOperators[e.Op] {
			c.operator(e.Loc, binaryPrefix, e.Op, 2)
		}

		c.expr(e.LHS)
		c.expr(e.RHS)
	case *CallExpr:
		sym := c.stab.Get(e.Callee)
		switch {
		case sym == nil:
			c.errors = append(c.errors, &UndefinedError{
				Loc:  e.Loc,
				What: "function",
				Name: e.Callee,
			})
		case sym.Arity != len(e.Args):
			c.errors = append(c.errors, &ArityError{
				Loc:  e.Loc,
				Name: e.Callee,
				Want: sym.Arity,
				Got:  len(e.Args),
			})
		}

		for _, arg := range e.Args {
			c.expr(arg)
		}
	case *IfExpr:
		c.expr(e.Cond)
		c.expr(e.Then)
		c.expr(e.Else)
	case *ForExpr:
		c.expr(e.Start)

		c.bind(e.Var)
		c.expr(e.End)
		if e.Step != nil {
			c.expr(e.Step)
		}
		c.expr(e.Body)
		c.unbind(e.Var)
	case *VarExpr:
		// Initializers only see the bindings before them
		for _, b := range e.Bindings {
			if b.Init != nil {
				c.expr(b.Init)
			}

			c.bind(b.Name)
		}

		c.expr(e.Body)

		for _, b := range e.Bindings {
			c.unbind(b.Name)
		}
	}
}

func (c *ContextAnalyzer) operator(loc Location, prefix string, op string, arity int) {
	if sym := c.stab.Get(prefix + op); sym == nil || sym.Arity != arity {
		c.errors = append(c.errors, &UndefinedError{
			Loc:  loc,
			What: prefix + " operator",
			Name: op,
		})
	}
}
