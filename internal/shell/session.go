// Package shell implements the interactive Arx shell.
package shell

import (
	"fmt"
	"strings"

	arx "go.arxlang.dev/pkg"
)

type LineKind int

const (
	LineInput LineKind = iota
	LineOutput
	LineIR
	LineError
	LineInfo
)

type Line struct {
	Kind LineKind
	Text string
}

// Result is what evaluating one input line produced.
type Result struct {
	Lines []Line
	Quit  bool
}

func (r *Result) add(kind LineKind, format string, args ...interface{}) {
	r.Lines = append(r.Lines, Line{Kind: kind, Text: fmt.Sprintf(format, args...)})
}

// Session keeps the state shared by the lines typed in one shell: the parser
// with its precedence table, the symbols defined so far and the accepted
// units.
type Session struct {
	parser  *arx.Parser
	symbols *arx.SymbolTable
	units   []arx.Unit
	showIR  bool
}

func NewSession(config arx.CompilerConfig) *Session {
	c := arx.NewCompiler(config)

	return &Session{
		parser:  c.NewParser(arx.NewLexerFromReader("<shell>", strings.NewReader(""))),
		symbols: arx.NewGlobalSymbolTable(),
	}
}

const help = `:ir    toggle LLVM IR output
:ops   list binary operators
:quit  leave the shell`

func (s *Session) Eval(input string) Result {
	var res Result

	line := strings.TrimSpace(input)
	if line == "" {
		return res
	}

	res.add(LineInput, "%s", line)

	if strings.HasPrefix(line, ":") {
		s.command(line, &res)
		return res
	}

	s.parser.Reset(arx.NewLexerFromReader("<shell>", strings.NewReader(line)))
	ast := s.parser.Run()

	for _, err := range ast.Errors {
		res.add(LineError, "%s", err)
	}

	// A rejected line must not leave its symbols behind
	symbols := s.symbols.Copy()
	if errs := arx.NewContextAnalyzer(symbols).Do(ast); len(errs) > 0 {
		for _, err := range errs {
			res.add(LineError, "%s", err)
		}

		return res
	}

	s.symbols = symbols

	for _, unit := range ast.Units {
		res.add(LineOutput, "%s", arx.Sprint(unit))
	}

	s.units = append(s.units, ast.Units...)

	if s.showIR && len(ast.Units) > 0 {
		s.emitIR(ast.Units, &res)
	}

	return res
}

func (s *Session) command(line string, res *Result) {
	switch line {
	case ":quit", ":q":
		res.Quit = true
	case ":ir":
		s.showIR = !s.showIR
		if s.showIR {
			res.add(LineInfo, "IR output on")
		} else {
			res.add(LineInfo, "IR output off")
		}
	case ":ops":
		for _, op := range s.parser.Precedence().Operators() {
			res.add(LineInfo, "%s %d", op.Op, op.Precedence)
		}
	case ":help":
		for _, l := range strings.Split(help, "\n") {
			res.add(LineInfo, "%s", l)
		}
	default:
		res.add(LineError, "unknown command %s, try :help", line)
	}
}

// emitIR lowers every accepted unit and prints the functions defined by the
// newest ones.
func (s *Session) emitIR(units []arx.Unit, res *Result) {
	mod, err := arx.GenerateIR(&arx.AST{Filename: "<shell>", Units: s.units})
	if err != nil {
		res.add(LineError, "%s", err)
		return
	}

	wanted := make(map[string]bool, len(units))
	for _, unit := range units {
		switch u := unit.(type) {
		case *arx.Function:
			wanted[u.Proto.Name] = true
		case *arx.Prototype:
			wanted[u.Name] = true
		}
	}

	for _, f := range mod.Funcs {
		if !wanted[f.Name()] {
			continue
		}

		for _, l := range strings.Split(strings.TrimRight(f.LLString(), "\n"), "\n") {
			res.add(LineIR, "%s", l)
		}
	}
}
