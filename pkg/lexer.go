package arx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType uint64
type stateFunc func(l *Lexer) stateFunc

const (
	// EOF is returned by peek and next once the input is exhausted. It is not
	// a valid rune, so a NUL byte in the source cannot end the input.
	EOF rune = -1

	TokenError TokenType = iota
	TokenEOF
	TokenNumber
	TokenIdentifier

	TokenDef
	TokenExtern
	TokenIf
	TokenThen
	TokenElse
	TokenFor
	TokenIn
	TokenBinary
	TokenUnary
	TokenVar

	TokenOperator
	TokenLineComment
	TokenOpenParentheses
	TokenCloseParentheses
	TokenComma
	TokenSemicolon
)

var tokenNames = map[TokenType]string{
	TokenError:            "error",
	TokenEOF:              "end of input",
	TokenNumber:           "number",
	TokenIdentifier:       "identifier",
	TokenDef:              "'def'",
	TokenExtern:           "'extern'",
	TokenIf:               "'if'",
	TokenThen:             "'then'",
	TokenElse:             "'else'",
	TokenFor:              "'for'",
	TokenIn:               "'in'",
	TokenBinary:           "'binary'",
	TokenUnary:            "'unary'",
	TokenVar:              "'var'",
	TokenOperator:         "operator",
	TokenLineComment:      "comment",
	TokenOpenParentheses:  "'('",
	TokenCloseParentheses: "')'",
	TokenComma:            "','",
	TokenSemicolon:        "';'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", uint64(t))
}

var keywordTable = map[string]TokenType{
	"def":    TokenDef,
	"extern": TokenExtern,
	"if":     TokenIf,
	"then":   TokenThen,
	"else":   TokenElse,
	"for":    TokenFor,
	"in":     TokenIn,
	"binary": TokenBinary,
	"unary":  TokenUnary,
	"var":    TokenVar,
}

var punctuationTable = map[rune]TokenType{
	'(': TokenOpenParentheses,
	')': TokenCloseParentheses,
	',': TokenComma,
	';': TokenSemicolon,
}

type Token struct {
	Typ   TokenType
	Value string
	Loc   Location
}

func (t Token) isValid() bool {
	return t.Typ != TokenEOF && t.Typ != TokenError
}

func (t Token) isComment() bool {
	return t.Typ == TokenLineComment
}

// isOperator reports whether the token is the operator symbol op.
func (t Token) isOperator(op string) bool {
	return t.Typ == TokenOperator && t.Value == op
}

func (t Token) String() string {
	switch t.Typ {
	case TokenNumber, TokenIdentifier, TokenOperator:
		return fmt.Sprintf("%s '%s'", t.Typ, t.Value)
	case TokenError:
		return "error: " + t.Value
	default:
		return t.Typ.String()
	}
}

// Tokenizer is the token source consumed by the parser. Once it has returned a
// TokenEOF or TokenError token it must keep returning that same token.
type Tokenizer interface {
	Get() Token
	Filename() string
}

// Lexer turns Arx source text into tokens. Tokens are produced on demand by
// running the state machine until at least one token is pending.
type Lexer struct {
	reader   *bufio.Reader
	filename string

	state   stateFunc
	pending []Token
	last    *Token

	line  int
	col   int
	start Location

	// err is the first read failure other than io.EOF
	err error
}

func NewLexer(filename string) (*Lexer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return NewLexerFromReader(filename, bytes.NewReader(data)), nil
}

func NewLexerFromReader(filename string, reader io.Reader) *Lexer {
	return &Lexer{
		reader:   bufio.NewReader(reader),
		filename: filename,
		state:    defaultState,
		line:     1,
		col:      1,
	}
}

func (l *Lexer) Filename() string {
	return l.filename
}

func (l *Lexer) Get() Token {
	for len(l.pending) == 0 {
		if l.state == nil {
			return *l.last
		}

		l.state = l.state(l)
	}

	tok := l.pending[0]
	l.pending = l.pending[1:]

	return tok
}

// Tokens lexes the remaining input. The terminating EOF token is not included.
func (l *Lexer) Tokens() ([]Token, error) {
	var tokens []Token
	for {
		t := l.Get()
		if t.Typ == TokenEOF {
			return tokens, nil
		}

		if t.Typ == TokenError {
			return nil, errors.New(t.Value)
		}

		tokens = append(tokens, t)
	}
}

func defaultState(l *Lexer) stateFunc {
	for {
		switch r := l.peek(); {
		case r == EOF:
			l.mark()
			if l.err != nil {
				return l.errorf("reading %s: %v", l.filename, l.err)
			}

			l.emitValue(TokenEOF, "")
			return nil
		case r == 0:
			l.mark()
			return l.errorf("invalid NUL character")
		case unicode.IsSpace(r):
			l.next()
			continue
		case isDigit(r) || r == '.':
			return numberState
		case r == '_' || unicode.IsLetter(r):
			return identifierState
		case r == '#':
			return lineCommentState
		default:
			return operatorState
		}
	}
}

func numberState(l *Lexer) stateFunc {
	l.mark()

	var num strings.Builder
	for r := l.peek(); isDigit(r) || r == '.'; r = l.peek() {
		num.WriteRune(l.next())
	}

	return l.emitValue(TokenNumber, num.String())
}

func identifierState(l *Lexer) stateFunc {
	l.mark()

	var id strings.Builder
	for r := l.peek(); r == '_' || unicode.IsLetter(r) || isDigit(r); r = l.peek() {
		id.WriteRune(l.next())
	}

	if t, ok := keywordTable[id.String()]; ok {
		return l.emitValue(t, id.String())
	}

	return l.emitValue(TokenIdentifier, id.String())
}

func lineCommentState(l *Lexer) stateFunc {
	l.mark()
	l.next() // Skip the '#'

	var text strings.Builder
	for r := l.peek(); r != '\n' && r != EOF; r = l.peek() {
		text.WriteRune(l.next())
	}

	return l.emitValue(TokenLineComment, text.String())
}

func operatorState(l *Lexer) stateFunc {
	l.mark()

	r := l.next()
	if tok, ok := punctuationTable[r]; ok {
		return l.emitValue(tok, string(r))
	}

	if IsOperatorRune(r) {
		return l.emitValue(TokenOperator, string(r))
	}

	return l.errorf("invalid symbol '%c'", r)
}

// IsOperatorRune reports whether r is lexed as an operator token.
func IsOperatorRune(r rune) bool {
	if _, ok := punctuationTable[r]; ok {
		return false
	}

	switch r {
	case '.', '#', '_':
		return false
	}

	return r < utf8.RuneSelf && (unicode.IsPunct(r) || unicode.IsSymbol(r))
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func (l *Lexer) mark() {
	l.start = Location{File: l.filename, Line: l.line, Column: l.col}
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFunc {
	l.emitValue(TokenError, fmt.Sprintf(format, args...))
	return nil
}

func (l *Lexer) emitValue(t TokenType, val string) stateFunc {
	tok := Token{
		Typ:   t,
		Value: val,
		Loc:   l.start,
	}

	l.pending = append(l.pending, tok)
	if !tok.isValid() {
		l.last = &tok
	}

	return defaultState
}

func (l *Lexer) peek() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		l.fail(err)
		return EOF
	}

	_ = l.reader.UnreadRune()
	return r
}

func (l *Lexer) next() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		l.fail(err)
		return EOF
	}

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *Lexer) fail(err error) {
	if err != io.EOF && l.err == nil {
		l.err = err
	}
}
