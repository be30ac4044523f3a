package arx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
)

// DefaultMaxDepth bounds how deeply expressions may nest before the parser
// gives up with an ErrDepth diagnostic.
const DefaultMaxDepth = 256

type Option func(*Parser)

// WithPrecedence makes the parser use (and extend) table instead of a fresh
// table seeded with the built-in operators.
func WithPrecedence(table *PrecedenceTable) Option {
	return func(p *Parser) {
		p.prec = table
	}
}

func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

type Parser struct {
	filename  string
	tokenizer Tokenizer
	buf       *Token
	consumed  int

	prec      *PrecedenceTable
	logger    *slog.Logger
	maxDepth  int
	depth     int
	anonCount int
}

func NewParser(tokenizer Tokenizer, options ...Option) *Parser {
	p := &Parser{
		tokenizer: tokenizer,
		filename:  tokenizer.Filename(),
		maxDepth:  DefaultMaxDepth,
	}

	for _, opt := range options {
		opt(p)
	}

	if p.prec == nil {
		p.prec = NewPrecedenceTable()
	}

	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}

	return p
}

// Reset points the parser at a new token source. The precedence table and the
// anonymous function counter carry over, so operators defined earlier stay
// usable.
func (p *Parser) Reset(tokenizer Tokenizer) {
	p.tokenizer = tokenizer
	p.filename = tokenizer.Filename()
	p.buf = nil
	p.consumed = 0
	p.depth = 0
}

func (p *Parser) Precedence() *PrecedenceTable {
	return p.prec
}

func (p *Parser) peek() Token {
	if p.buf == nil {
		tok := p.read()
		p.buf = &tok
	}

	return *p.buf
}

func (p *Parser) next() Token {
	tok := p.peek()
	if !tok.isValid() {
		// EOF and lexer errors stay buffered, no more tokens are expected
		return tok
	}

	p.buf = nil
	p.consumed++

	return tok
}

func (p *Parser) read() Token {
	for {
		if tok := p.tokenizer.Get(); !tok.isComment() {
			return tok
		}
	}
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Typ == typ
}

// expect consumes the current token if it has type typ. Otherwise the token
// is left in place and a diagnostic naming what was expected is returned.
func (p *Parser) expect(typ TokenType, what string) (Token, error) {
	tok := p.peek()
	if tok.Typ != typ {
		return tok, p.unexpected(tok, what)
	}

	return p.next(), nil
}

func (p *Parser) expectOperator(op string, what string) (Token, error) {
	tok := p.peek()
	if !tok.isOperator(op) {
		return tok, p.unexpected(tok, what)
	}

	return p.next(), nil
}

func (p *Parser) errorf(kind ErrorKind, l Location, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind: kind,
		Loc:  l,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (p *Parser) unexpected(tok Token, what string) *ParseError {
	switch tok.Typ {
	case TokenEOF:
		return p.errorf(ErrIncomplete, tok.Loc, "expected %s, found end of input", what)
	case TokenError:
		return p.errorf(ErrLexer, tok.Loc, "%s", tok.Value)
	default:
		return p.errorf(ErrSyntax, tok.Loc, "expected %s, found %s", what, tok)
	}
}

// ParseExpression parses a full expression, binary operators included.
//
//	expression ::= unary (binop unary)*
func (p *Parser) ParseExpression() (Expr, error) {
	return p.binaryExpr(MinPrecedence)
}

// binaryExpr climbs precedences: operators binding at least as tightly as
// minPrec are folded into the left-hand side. Equal precedences associate to
// the left because the right-hand side is parsed with minPrec = prec + 1.
func (p *Parser) binaryExpr(minPrec int) (Expr, error) {
	lhs, err := p.unaryExpr()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Typ != TokenOperator {
			return lhs, nil
		}

		// Unknown operators end the expression, the caller decides what they mean
		prec, ok := p.prec.Of(tok.Value)
		if !ok || prec < minPrec {
			return lhs, nil
		}

		p.next()

		rhs, err := p.binaryExpr(prec + 1)
		if err != nil {
			return nil, err
		}

		lhs = &BinaryExpr{
			Loc: tok.Loc,
			Op:  tok.Value,
			LHS: lhs,
			RHS: rhs,
		}
	}
}

// unaryExpr parses any operator in prefix position as a unary operator.
//
//	unary ::= primary | op unary
func (p *Parser) unaryExpr() (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > p.maxDepth {
		return nil, p.errorf(ErrDepth, p.peek().Loc, "maximum nesting depth exceeded (%d)", p.maxDepth)
	}

	tok := p.peek()
	if tok.Typ != TokenOperator {
		return p.primary()
	}

	p.next()

	operand, err := p.unaryExpr()
	if err != nil {
		return nil, err
	}

	return &UnaryExpr{
		Loc:     tok.Loc,
		Op:      tok.Value,
		Operand: operand,
	}, nil
}

func (p *Parser) primary() (Expr, error) {
	switch tok := p.peek(); tok.Typ {
	case TokenNumber:
		return p.number()
	case TokenIdentifier:
		return p.identifier()
	case TokenOpenParentheses:
		return p.parenthesisedExpression()
	case TokenIf:
		return p.ifExpr()
	case TokenFor:
		return p.forExpr()
	case TokenVar:
		return p.varExpr()
	default:
		return nil, p.unexpected(tok, "expression")
	}
}

func (p *Parser) number() (Expr, error) {
	tok := p.next()

	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, p.errorf(ErrNumber, tok.Loc, "number literal '%s' out of range", tok.Value)
		}

		return nil, p.errorf(ErrNumber, tok.Loc, "invalid number literal '%s'", tok.Value)
	}

	return &NumberExpr{
		Loc:   tok.Loc,
		Value: v,
	}, nil
}

// identifier parses a variable reference or a call.
//
//	identifierexpr ::= identifier | identifier '(' (expression (',' expression)*)? ')'
func (p *Parser) identifier() (Expr, error) {
	tok := p.next()

	if !p.check(TokenOpenParentheses) {
		return &VariableExpr{
			Loc:  tok.Loc,
			Name: tok.Value,
		}, nil
	}

	p.next() // Skip the '('

	var args []Expr
	if !p.check(TokenCloseParentheses) {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if p.check(TokenCloseParentheses) {
				break
			}

			if _, err := p.expect(TokenComma, "',' or ')' in argument list"); err != nil {
				return nil, err
			}
		}
	}

	p.next() // Skip the ')'

	return &CallExpr{
		Loc:    tok.Loc,
		Callee: tok.Value,
		Args:   args,
	}, nil
}

func (p *Parser) parenthesisedExpression() (Expr, error) {
	p.next() // Skip the '('

	exp, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenCloseParentheses, "')'"); err != nil {
		return nil, err
	}

	return exp, nil
}

//	ifexpr ::= 'if' expression 'then' expression 'else' expression
func (p *Parser) ifExpr() (Expr, error) {
	start := p.next()

	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenThen, "'then'"); err != nil {
		return nil, err
	}

	then, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenElse, "'else'"); err != nil {
		return nil, err
	}

	els, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &IfExpr{
		Loc:  start.Loc,
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

//	forexpr ::= 'for' identifier '=' expression ',' expression (',' expression)? 'in' expression
func (p *Parser) forExpr() (Expr, error) {
	start := p.next()

	id, err := p.expect(TokenIdentifier, "identifier after 'for'")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectOperator("=", "'=' after for variable"); err != nil {
		return nil, err
	}

	from, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenComma, "',' after for start value"); err != nil {
		return nil, err
	}

	to, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	var step Expr
	if p.check(TokenComma) {
		p.next()

		step, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenIn, "'in' after for header"); err != nil {
		return nil, err
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &ForExpr{
		Loc:   start.Loc,
		Var:   id.Value,
		Start: from,
		End:   to,
		Step:  step,
		Body:  body,
	}, nil
}

//	varexpr ::= 'var' identifier ('=' expression)? (',' identifier ('=' expression)?)* 'in' expression
func (p *Parser) varExpr() (Expr, error) {
	start := p.next()

	var bindings []VarBinding
	for {
		id, err := p.expect(TokenIdentifier, "identifier after 'var'")
		if err != nil {
			return nil, err
		}

		binding := VarBinding{Name: id.Value}
		if p.peek().isOperator("=") {
			p.next()

			binding.Init, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
		}

		bindings = append(bindings, binding)

		if !p.check(TokenComma) {
			break
		}

		p.next() // Skip the ','
	}

	if _, err := p.expect(TokenIn, "'in' after var bindings"); err != nil {
		return nil, err
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &VarExpr{
		Loc:      start.Loc,
		Bindings: bindings,
		Body:     body,
	}, nil
}
