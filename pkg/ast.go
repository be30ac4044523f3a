package arx

// Kind tags every AST node with its concrete variant.
type Kind int

const (
	KindNumber Kind = iota + 1
	KindVariable
	KindUnary
	KindBinary
	KindCall
	KindIf
	KindFor
	KindVar
	KindPrototype
	KindFunction
)

var kindNames = [...]string{
	KindNumber:    "Number",
	KindVariable:  "Variable",
	KindUnary:     "Unary",
	KindBinary:    "Binary",
	KindCall:      "Call",
	KindIf:        "If",
	KindFor:       "For",
	KindVar:       "Var",
	KindPrototype: "Prototype",
	KindFunction:  "Function",
}

func (k Kind) String() string {
	if k <= 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}

	return kindNames[k]
}

// Node is implemented by every AST node.
type Node interface {
	Kind() Kind
	Location() Location
}

// Expr is the closed set of expression nodes. Only types in this package can
// implement it.
type Expr interface {
	Node
	exprNode()
}

// Unit is a top-level construct: a *Function or an extern *Prototype.
type Unit interface {
	Node
	unitNode()
}

type AST struct {
	Filename string
	Units    []Unit
	Errors   ErrorList
}

// Err returns the collected diagnostics as an error, or nil when there are none.
func (a *AST) Err() error {
	return a.Errors.Err()
}

type NumberExpr struct {
	Loc   Location
	Value float64
}

type VariableExpr struct {
	Loc  Location
	Name string
}

type UnaryExpr struct {
	Loc     Location
	Op      string
	Operand Expr
}

type BinaryExpr struct {
	Loc Location
	Op  string
	LHS Expr
	RHS Expr
}

type CallExpr struct {
	Loc    Location
	Callee string
	Args   []Expr
}

type IfExpr struct {
	Loc  Location
	Cond Expr
	Then Expr
	Else Expr
}

// ForExpr is `for Var = Start, End[, Step] in Body`. Step is nil when omitted.
type ForExpr struct {
	Loc   Location
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  Expr
}

// VarBinding is one `name [= init]` entry of a VarExpr. Init is nil when the
// initializer was omitted.
type VarBinding struct {
	Name string
	Init Expr
}

type VarExpr struct {
	Loc      Location
	Bindings []VarBinding
	Body     Expr
}

type PrototypeKind int

const (
	PrototypeFunction PrototypeKind = iota
	PrototypeUnary
	PrototypeBinary
)

// Prototype is a function signature. Operator prototypes are named after the
// operator they define, e.g. "binary|" or "unary!".
type Prototype struct {
	Loc        Location
	Name       string
	Params     []string
	Op         PrototypeKind
	Precedence int
}

func (p *Prototype) IsOperator() bool {
	return p.Op != PrototypeFunction
}

// OperatorName returns the symbol defined by an operator prototype.
func (p *Prototype) OperatorName() string {
	switch p.Op {
	case PrototypeUnary:
		return p.Name[len(unaryPrefix):]
	case PrototypeBinary:
		return p.Name[len(binaryPrefix):]
	default:
		return ""
	}
}

type Function struct {
	Proto *Prototype
	Body  Expr
}

const (
	unaryPrefix  = "unary"
	binaryPrefix = "binary"
)

func (e *NumberExpr) Kind() Kind   { return KindNumber }
func (e *VariableExpr) Kind() Kind { return KindVariable }
func (e *UnaryExpr) Kind() Kind    { return KindUnary }
func (e *BinaryExpr) Kind() Kind   { return KindBinary }
func (e *CallExpr) Kind() Kind     { return KindCall }
func (e *IfExpr) Kind() Kind       { return KindIf }
func (e *ForExpr) Kind() Kind      { return KindFor }
func (e *VarExpr) Kind() Kind      { return KindVar }
func (p *Prototype) Kind() Kind    { return KindPrototype }
func (f *Function) Kind() Kind     { return KindFunction }

func (e *NumberExpr) Location() Location   { return e.Loc }
func (e *VariableExpr) Location() Location { return e.Loc }
func (e *UnaryExpr) Location() Location    { return e.Loc }
func (e *BinaryExpr) Location() Location   { return e.Loc }
func (e *CallExpr) Location() Location     { return e.Loc }
func (e *IfExpr) Location() Location       { return e.Loc }
func (e *ForExpr) Location() Location      { return e.Loc }
func (e *VarExpr) Location() Location      { return e.Loc }
func (p *Prototype) Location() Location    { return p.Loc }
func (f *Function) Location() Location     { return f.Proto.Loc }

func (*NumberExpr) exprNode()   {}
func (*VariableExpr) exprNode() {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}
func (*IfExpr) exprNode()       {}
func (*ForExpr) exprNode()      {}
func (*VarExpr) exprNode()      {}

func (*Prototype) unitNode() {}
func (*Function) unitNode()  {}
