package arx

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fprint writes node to w as an S-expression, e.g. `(+ 1 (* 2 3))` or
// `(def foo (a b) (+ a b))`.
func Fprint(w io.Writer, node Node) error {
	var sb strings.Builder
	writeNode(&sb, node)

	_, err := io.WriteString(w, sb.String())
	return err
}

func Sprint(node Node) string {
	var sb strings.Builder
	writeNode(&sb, node)

	return sb.String()
}

// FprintAST writes one S-expression per unit followed by the diagnostics.
func FprintAST(w io.Writer, ast *AST) error {
	var sb strings.Builder
	for _, unit := range ast.Units {
		writeNode(&sb, unit)
		sb.WriteByte('\n')
	}

	for _, err := range ast.Errors {
		fmt.Fprintf(&sb, "error: %s\n", err)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeList(sb *strings.Builder, items []string) {
	sb.WriteByte('(')
	sb.WriteString(strings.Join(items, " "))
	sb.WriteByte(')')
}

func writeNode(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *NumberExpr:
		sb.WriteString(formatNumber(n.Value))
	case *VariableExpr:
		sb.WriteString(n.Name)
	case *UnaryExpr:
		sb.WriteString("(" + n.Op + " ")
		writeNode(sb, n.Operand)
		sb.WriteByte(')')
	case *BinaryExpr:
		sb.WriteString("(" + n.Op + " ")
		writeNode(sb, n.LHS)
		sb.WriteByte(' ')
		writeNode(sb, n.RHS)
		sb.WriteByte(')')
	case *CallExpr:
		sb.WriteString("(call " + n.Callee)
		for _, arg := range n.Args {
			sb.WriteByte(' ')
			writeNode(sb, arg)
		}
		sb.WriteByte(')')
	case *IfExpr:
		sb.WriteString("(if ")
		writeNode(sb, n.Cond)
		sb.WriteByte(' ')
		writeNode(sb, n.Then)
		sb.WriteByte(' ')
		writeNode(sb, n.Else)
		sb.WriteByte(')')
	case *ForExpr:
		sb.WriteString("(for (" + n.Var + " ")
		writeNode(sb, n.Start)
		sb.WriteByte(' ')
		writeNode(sb, n.End)
		if n.Step != nil {
			sb.WriteByte(' ')
			writeNode(sb, n.Step)
		}
		sb.WriteString(") ")
		writeNode(sb, n.Body)
		sb.WriteByte(')')
	case *VarExpr:
		sb.WriteString("(var (")
		for i, b := range n.Bindings {
			if i > 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString("(" + b.Name)
			if b.Init != nil {
				sb.WriteByte(' ')
				writeNode(sb, b.Init)
			}
			sb.WriteByte(')')
		}
		sb.WriteString(") ")
		writeNode(sb, n.Body)
		sb.WriteByte(')')
	case *Prototype:
		sb.WriteString("(extern " + n.Name + " ")
		writeList(sb, n.Params)
		sb.WriteByte(')')
	case *Function:
		sb.WriteString("(def " + n.Proto.Name + " ")
		writeList(sb, n.Proto.Params)
		sb.WriteByte(' ')
		writeNode(sb, n.Body)
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<unknown %T>", node)
	}
}

// ToTree converts node into nested maps and slices that encode naturally as
// JSON or YAML.
func ToTree(node Node) map[string]any {
	if node == nil {
		return nil
	}

	tree := map[string]any{
		"kind": node.Kind().String(),
	}

	if loc := node.Location(); loc.IsValid() {
		tree["loc"] = loc.String()
	}

	switch n := node.(type) {
	case *NumberExpr:
		tree["value"] = n.Value
	case *VariableExpr:
		tree["name"] = n.Name
	case *UnaryExpr:
		tree["op"] = n.Op
		tree["operand"] = ToTree(n.Operand)
	case *BinaryExpr:
		tree["op"] = n.Op
		tree["lhs"] = ToTree(n.LHS)
		tree["rhs"] = ToTree(n.RHS)
	case *CallExpr:
		args := make([]any, 0, len(n.Args))
		for _, arg := range n.Args {
			args = append(args, ToTree(arg))
		}

		tree["callee"] = n.Callee
		tree["args"] = args
	case *IfExpr:
		tree["cond"] = ToTree(n.Cond)
		tree["then"] = ToTree(n.Then)
		tree["else"] = ToTree(n.Else)
	case *ForExpr:
		tree["var"] = n.Var
		tree["start"] = ToTree(n.Start)
		tree["end"] = ToTree(n.End)
		if n.Step != nil {
			tree["step"] = ToTree(n.Step)
		}
		tree["body"] = ToTree(n.Body)
	case *VarExpr:
		bindings := make([]any, 0, len(n.Bindings))
		for _, b := range n.Bindings {
			binding := map[string]any{"name": b.Name}
			if b.Init != nil {
				binding["init"] = ToTree(b.Init)
			}

			bindings = append(bindings, binding)
		}

		tree["bindings"] = bindings
		tree["body"] = ToTree(n.Body)
	case *Prototype:
		prototypeTree(tree, n)
	case *Function:
		prototypeTree(tree, n.Proto)
		tree["body"] = ToTree(n.Body)
	}

	return tree
}

func prototypeTree(tree map[string]any, proto *Prototype) {
	params := make([]any, 0, len(proto.Params))
	for _, p := range proto.Params {
		params = append(params, p)
	}

	tree["name"] = proto.Name
	tree["params"] = params

	switch proto.Op {
	case PrototypeUnary:
		tree["operator"] = "unary"
	case PrototypeBinary:
		tree["operator"] = "binary"
		tree["precedence"] = proto.Precedence
	}
}

// ASTTree converts a whole parse result, diagnostics included.
func ASTTree(ast *AST) map[string]any {
	units := make([]any, 0, len(ast.Units))
	for _, unit := range ast.Units {
		units = append(units, ToTree(unit))
	}

	errs := make([]any, 0, len(ast.Errors))
	for _, err := range ast.Errors {
		errs = append(errs, map[string]any{
			"kind": err.Kind.String(),
			"loc":  err.Loc.String(),
			"msg":  err.Msg,
		})
	}

	return map[string]any{
		"file":   ast.Filename,
		"units":  units,
		"errors": errs,
	}
}

func WriteJSON(w io.Writer, ast *AST) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(ASTTree(ast))
}

func WriteYAML(w io.Writer, ast *AST) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(ASTTree(ast)); err != nil {
		return err
	}

	return enc.Close()
}
