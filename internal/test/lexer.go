package test

import (
	"fmt"
	"math/rand"
	"strings"
)

var validTokens = []string{
	"def", "extern", "if", "then", "else", "for", "in", "var", "binary", "unary",
	"x", "foo", "bar_2", "(", ")", ",", ";",
	"+", "-", "*", "/", "<", ">", "=", "|", "!",
	"1", "42", "3.14", ".5",
	"# comment\n", "\n",
}

// GetRandomTokens returns size random Arx tokens separated by spaces. The
// result lexes cleanly but is rarely a valid program.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	toks := make([]string, 0, size)
	for len(toks) < size {
		toks = append(toks, validTokens[rand.Intn(len(validTokens))])
	}

	return strings.Join(toks, sep)
}

// GetRandomProgram returns size function definitions that each parse without
// errors, followed by a top-level call of the last one.
func GetRandomProgram(size int) string {
	var sb strings.Builder
	for i := 0; i < size; i++ {
		fmt.Fprintf(&sb, "def f%d(a b)\n  %s\n", i, randomExpr(3))
	}

	if size > 0 {
		fmt.Fprintf(&sb, "f%d(1, 2);\n", size-1)
	}

	return sb.String()
}

func randomExpr(depth int) string {
	if depth == 0 {
		switch rand.Intn(3) {
		case 0:
			return "a"
		case 1:
			return "b"
		default:
			return fmt.Sprintf("%d", rand.Intn(100))
		}
	}

	ops := []string{"+", "-", "*", "/", "<"}
	switch rand.Intn(4) {
	case 0:
		return fmt.Sprintf("if %s then %s else %s", randomExpr(depth-1), randomExpr(depth-1), randomExpr(depth-1))
	case 1:
		return fmt.Sprintf("(%s)", randomExpr(depth-1))
	case 2:
		return fmt.Sprintf("var t = %s in t %s %s", randomExpr(depth-1), ops[rand.Intn(len(ops))], randomExpr(depth-1))
	default:
		return fmt.Sprintf("%s %s %s", randomExpr(depth-1), ops[rand.Intn(len(ops))], randomExpr(depth-1))
	}
}
