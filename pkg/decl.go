package arx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AnonymousPrefix names the functions wrapping top-level expressions. The
// n-th top-level expression of a parser is called AnonymousPrefix + ".n".
const AnonymousPrefix = "__anon_expr"

// ParsePrototype parses a function or operator signature. Binary operators are
// added to the precedence table as soon as their signature is complete, so the
// body being defined can already use them.
//
//	prototype ::= identifier '(' identifier* ')'
//	          ::= 'unary' op '(' identifier ')'
//	          ::= 'binary' op number? '(' identifier identifier ')'
func (p *Parser) ParsePrototype() (*Prototype, error) {
	tok := p.peek()
	proto := &Prototype{Loc: tok.Loc}

	switch tok.Typ {
	case TokenIdentifier:
		p.next()
		proto.Name = tok.Value

	case TokenUnary, TokenBinary:
		p.next()

		op, err := p.expect(TokenOperator, fmt.Sprintf("operator symbol after %s", tok.Typ))
		if err != nil {
			return nil, err
		}

		if tok.Typ == TokenUnary {
			proto.Op = PrototypeUnary
			proto.Name = unaryPrefix + op.Value
			break
		}

		proto.Op = PrototypeBinary
		proto.Name = binaryPrefix + op.Value
		proto.Precedence = DefaultBinaryPrecedence

		if p.check(TokenNumber) {
			num := p.next()

			// Literals are floats, "5.0" is as good as "5"
			prec, err := strconv.ParseFloat(num.Value, 64)
			if err != nil || prec != math.Trunc(prec) || prec < MinPrecedence || prec > MaxPrecedence {
				return nil, p.errorf(ErrSyntax, num.Loc, "invalid precedence '%s': must be an integer in %d..%d",
					num.Value, MinPrecedence, MaxPrecedence)
			}

			proto.Precedence = int(prec)
		}

	default:
		return nil, p.unexpected(tok, "function name in prototype")
	}

	if _, err := p.expect(TokenOpenParentheses, "'(' in prototype"); err != nil {
		return nil, err
	}

	// Parameters may optionally be separated by commas
	for {
		if p.check(TokenIdentifier) {
			proto.Params = append(proto.Params, p.next().Value)
			continue
		}

		if p.check(TokenComma) {
			p.next()
			continue
		}

		break
	}

	if _, err := p.expect(TokenCloseParentheses, "')' in prototype"); err != nil {
		return nil, err
	}

	if proto.IsOperator() {
		want := 1
		if proto.Op == PrototypeBinary {
			want = 2
		}

		if len(proto.Params) != want {
			return nil, p.errorf(ErrSyntax, proto.Loc, "invalid number of operands for operator '%s': expected %d, got %d",
				proto.OperatorName(), want, len(proto.Params))
		}
	}

	if proto.Op == PrototypeBinary {
		if err := p.prec.Define(proto.OperatorName(), proto.Precedence); err != nil {
			return nil, p.errorf(ErrSyntax, proto.Loc, "%s", err)
		}

		p.logger.Debug("registered binary operator",
			"op", proto.OperatorName(),
			"precedence", proto.Precedence,
			"loc", proto.Loc.String(),
		)
	}

	return proto, nil
}

//	definition ::= 'def' prototype expression
func (p *Parser) ParseDefinition() (*Function, error) {
	if _, err := p.expect(TokenDef, "'def'"); err != nil {
		return nil, err
	}

	proto, err := p.ParsePrototype()
	if err != nil {
		return nil, err
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &Function{
		Proto: proto,
		Body:  body,
	}, nil
}

//	external ::= 'extern' prototype
func (p *Parser) ParseExtern() (*Prototype, error) {
	if _, err := p.expect(TokenExtern, "'extern'"); err != nil {
		return nil, err
	}

	return p.ParsePrototype()
}

// ParseTopLevelExpr wraps a bare expression in a nullary anonymous function.
//
//	toplevelexpr ::= expression
func (p *Parser) ParseTopLevelExpr() (*Function, error) {
	loc := p.peek().Loc

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	proto := &Prototype{
		Loc:  loc,
		Name: fmt.Sprintf("%s.%d", AnonymousPrefix, p.anonCount),
	}
	p.anonCount++

	return &Function{
		Proto: proto,
		Body:  body,
	}, nil
}

// IsAnonymous reports whether f wraps a top-level expression.
func IsAnonymous(f *Function) bool {
	return strings.HasPrefix(f.Proto.Name, AnonymousPrefix+".")
}
