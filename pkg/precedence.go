package arx

import (
	"fmt"
	"sort"
)

const (
	MinPrecedence = 1
	MaxPrecedence = 100

	// DefaultBinaryPrecedence is used by `def binary<op>` prototypes that
	// omit an explicit precedence.
	DefaultBinaryPrecedence = 30
)

// PrecedenceTable maps binary operator symbols to their precedence. Higher
// values bind tighter. A table belongs to one parser and is not safe for
// concurrent use; Clone it to parse several units in parallel.
type PrecedenceTable struct {
	ops map[string]int
}

// NewPrecedenceTable returns a table seeded with the built-in operators.
func NewPrecedenceTable() *PrecedenceTable {
	return &PrecedenceTable{
		ops: map[string]int{
			"=": 2,
			"<": 10,
			">": 10,
			"+": 20,
			"-": 20,
			"*": 40,
			"/": 40,
		},
	}
}

// Of returns the precedence of op. ok is false if op is not a binary operator.
func (t *PrecedenceTable) Of(op string) (prec int, ok bool) {
	prec, ok = t.ops[op]
	return prec, ok
}

// Define inserts or overwrites the precedence of op.
func (t *PrecedenceTable) Define(op string, prec int) error {
	if op == "" {
		return fmt.Errorf("empty operator")
	}

	if prec < MinPrecedence || prec > MaxPrecedence {
		return fmt.Errorf("invalid precedence %d for '%s': must be %d..%d", prec, op, MinPrecedence, MaxPrecedence)
	}

	t.ops[op] = prec
	return nil
}

func (t *PrecedenceTable) Clone() *PrecedenceTable {
	ops := make(map[string]int, len(t.ops))
	for k, v := range t.ops {
		ops[k] = v
	}

	return &PrecedenceTable{ops: ops}
}

type OperatorPrecedence struct {
	Op         string
	Precedence int
}

// Operators lists the table ordered by precedence, then symbol.
func (t *PrecedenceTable) Operators() []OperatorPrecedence {
	list := make([]OperatorPrecedence, 0, len(t.ops))
	for op, prec := range t.ops {
		list = append(list, OperatorPrecedence{op, prec})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Precedence != list[j].Precedence {
			return list[i].Precedence < list[j].Precedence
		}

		return list[i].Op < list[j].Op
	})

	return list
}
