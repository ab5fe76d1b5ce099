package predicate

import (
	"fmt"
	"testing"
)

// row is the record type used throughout the package tests.
type row struct {
	A, B, C, D int
	Name       string
	Flags      int
}

var (
	colA    = NewColumn("a", func(r row) int { return r.A })
	colB    = NewColumn("b", func(r row) int { return r.B })
	colC    = NewColumn("c", func(r row) int { return r.C })
	colD    = NewColumn("d", func(r row) int { return r.D })
	colName = NewColumn("name", func(r row) string { return r.Name })

	intColumns = []*TypedColumn[row, int]{colA, colB, colC, colD}
)

// p builds a parameter or panics; test inputs are always valid.
func p(col Column, op Operator, v any) Parameter {
	param, err := NewParameter(col, op, v)
	if err != nil {
		panic(err)
	}
	return param
}

func eq(col Column, v any) Parameter { return p(col, Eq, v) }

// mk builds a node directly, without the builder's simplifications, so tests
// can feed arbitrary shapes to the normalizer. Items are Parameter,
// CustomParameter or Node.
func mk(op Op, items ...any) Node {
	n := newNode(op)
	g := n.base()
	for _, it := range items {
		switch it := it.(type) {
		case Parameter:
			g.params = append(g.params, it)
		case Node:
			g.children = append(g.children, it)
		case CustomParameter:
			g.custom = append(g.custom, it)
		default:
			panic(fmt.Sprintf("mk: unexpected item %T", it))
		}
	}
	return n
}

func and(items ...any) Node { return mk(OpAnd, items...) }
func or(items ...any) Node  { return mk(OpOr, items...) }

// flag is a custom condition "bit i of Flags is set".
func flag(i int) CustomParameter { return Custom("flag", i) }

// eval evaluates n against r. Custom parameters must be flag conditions.
func eval(t testing.TB, n Node, r row) bool {
	t.Helper()
	g := n.base()
	var results []bool
	for _, param := range g.params {
		ok, err := param.Matches(r, nil)
		if err != nil {
			t.Fatalf("Matches(%s): %v", param, err)
		}
		results = append(results, ok)
	}
	for _, c := range g.custom {
		bit := c.(customParameter).args[0].(int)
		results = append(results, r.Flags&(1<<bit) != 0)
	}
	for _, c := range g.children {
		results = append(results, eval(t, c, r))
	}

	switch n.Op() {
	case OpAnd:
		for _, ok := range results {
			if !ok {
				return false
			}
		}
		return true
	default:
		for _, ok := range results {
			if ok {
				return true
			}
		}
		return false
	}
}

// allRows enumerates every row with A..D in [0, 3) and two flag bits.
func allRows() []row {
	var rows []row
	for a := range 3 {
		for b := range 3 {
			for c := range 3 {
				for d := range 3 {
					for f := range 4 {
						rows = append(rows, row{A: a, B: b, C: c, D: d, Flags: f})
					}
				}
			}
		}
	}
	return rows
}
