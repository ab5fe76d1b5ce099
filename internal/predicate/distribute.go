package predicate

import "fmt"

// conjunctive returns an expression equivalent to (a AND b) in which no
// conjunction sits above a disjunction, applying
//
//	X AND (Y1 OR Y2 OR ...) = (X AND Y1) OR (X AND Y2) OR ...
//
// Two conjunctions are concatenated. A conjunction and a disjunction
// distribute the conjunction over each disjunct. Two disjunctions multiply
// out pairwise: (a OR b) AND (c OR d) = ac OR ad OR bc OR bd.
func conjunctive(a, b Node) Node {
	switch a := a.(type) {
	case *And:
		switch b := b.(type) {
		case *And:
			out := &And{group: a.clone()}
			out.concat(&b.group)
			return out
		case *Or:
			return multiply(b, []term{{node: a}}, false)
		}
	case *Or:
		switch b := b.(type) {
		case *And:
			return multiply(a, []term{{node: b}}, true)
		case *Or:
			return multiply(a, b.terms(), true)
		}
	}
	panic(fmt.Sprintf("predicate: cannot distribute %T over %T", a, b))
}
