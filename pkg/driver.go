package arx

import (
	"errors"
)

// Run parses top-level units until the end of input. A unit that fails to
// parse is recorded in the AST's error list and the parser resynchronizes on
// the next ';', 'def' or 'extern', so one run reports every independent error.
//
//	top ::= definition | external | expression | ';'
func (p *Parser) Run() *AST {
	ast := &AST{Filename: p.filename}

	for {
		tok := p.peek()
		start := p.consumed

		var (
			unit Unit
			err  error
		)

		switch tok.Typ {
		case TokenEOF:
			return ast
		case TokenSemicolon:
			p.next()
			continue
		case TokenDef:
			unit, err = p.ParseDefinition()
		case TokenExtern:
			unit, err = p.ParseExtern()
		default:
			unit, err = p.ParseTopLevelExpr()
		}

		if err != nil {
			perr := asParseError(err, tok.Loc)
			ast.Errors.Add(perr)

			p.logger.Debug("parse error",
				"kind", perr.Kind.String(),
				"loc", perr.Loc.String(),
				"msg", perr.Msg,
			)

			if !p.synchronize(start) {
				p.logger.Debug("stopping, no recovery point left", "file", p.filename)
				return ast
			}

			continue
		}

		p.logger.Debug("parsed unit",
			"kind", unit.Kind().String(),
			"loc", unit.Location().String(),
		)

		ast.Units = append(ast.Units, unit)
	}
}

// synchronize skips tokens up to and including the next ';', or up to the
// next 'def' or 'extern'. At least one token is consumed since start so the
// driver always makes progress. It returns false when the input is exhausted.
func (p *Parser) synchronize(start int) bool {
	if p.consumed == start {
		p.next()
	}

	for {
		switch p.peek().Typ {
		case TokenEOF, TokenError:
			return false
		case TokenSemicolon:
			p.next()
			return true
		case TokenDef, TokenExtern:
			return true
		}

		p.next()
	}
}

func asParseError(err error, loc Location) *ParseError {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr
	}

	return &ParseError{
		Kind: ErrSyntax,
		Loc:  loc,
		Msg:  err.Error(),
	}
}
