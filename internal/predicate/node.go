// Package predicate implements the predicate algebra: filter conditions over
// typed record columns held as a tree of conjunctions and disjunctions, and
// the rewrite of any such tree into disjunctive normal form (an OR of pure
// AND clauses).
//
// A storage backend that can only execute conjunctive queries answers an
// arbitrary filter by running one sub-query per AND clause of the normalized
// tree and unioning the results.
//
// Trees are immutable once built. Builders are plain mutable accumulators and
// are not safe for concurrent use; built nodes may be shared freely.
package predicate

import (
	"slices"
	"strings"
)

// Op is the boolean operator of a predicate node.
type Op int

const (
	OpAnd Op = iota
	OpOr
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "UNKNOWN"
	}
}

// Node is a predicate tree node. The only implementations are *And and *Or,
// so a type switch over those two cases is exhaustive.
type Node interface {
	// Op returns the node's boolean operator.
	Op() Op
	// Parameters returns the node's leaf parameters.
	Parameters() []Parameter
	// CustomParameters returns the node's custom leaf parameters.
	CustomParameters() []CustomParameter
	// Children returns the node's child nodes.
	Children() []Node
	// Len returns the total number of parameters, custom parameters and children.
	Len() int
	String() string

	base() *group
}

// group holds the contents shared by both node variants. Its mutating helpers
// are only applied to nodes that have not escaped the package yet.
type group struct {
	params   []Parameter
	custom   []CustomParameter
	children []Node
}

// And is a conjunction: it holds when every parameter and child holds.
type And struct{ group }

// Or is a disjunction: it holds when any parameter or child holds.
type Or struct{ group }

func (*And) Op() Op { return OpAnd }
func (*Or) Op() Op  { return OpOr }

func (a *And) String() string { return a.format(" AND ") }
func (o *Or) String() string  { return o.format(" OR ") }

func (g *group) base() *group { return g }

func (g *group) Parameters() []Parameter             { return slices.Clone(g.params) }
func (g *group) CustomParameters() []CustomParameter { return slices.Clone(g.custom) }
func (g *group) Children() []Node                    { return slices.Clone(g.children) }

func (g *group) Len() int {
	return len(g.params) + len(g.custom) + len(g.children)
}

func (g *group) empty() bool { return g.Len() == 0 }

func (g *group) format(sep string) string {
	parts := make([]string, 0, g.Len())
	for _, p := range g.params {
		parts = append(parts, p.String())
	}
	for _, c := range g.custom {
		parts = append(parts, c.String())
	}
	for _, c := range g.children {
		parts = append(parts, c.String())
	}
	switch len(parts) {
	case 0:
		return "()"
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, sep) + ")"
	}
}

// newNode returns an empty node of the given operator.
func newNode(op Op) Node {
	if op == OpOr {
		return &Or{}
	}
	return &And{}
}

// clone copies the node's lists so the copy can be mutated independently.
// Children are shared; they are immutable.
func (g *group) clone() group {
	return group{
		params:   slices.Clone(g.params),
		custom:   slices.Clone(g.custom),
		children: slices.Clone(g.children),
	}
}

// concat appends o's contents to g.
func (g *group) concat(o *group) {
	g.params = append(g.params, o.params...)
	g.custom = append(g.custom, o.custom...)
	g.children = append(g.children, o.children...)
}

// clearChildren drops g's children, keeping its leaves.
func (g *group) clearChildren() {
	g.children = nil
}

// Equal reports whether a and b are structurally identical: same operator,
// and pairwise equal parameters, custom parameters and children in order.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Op() != b.Op() {
		return false
	}
	ga, gb := a.base(), b.base()
	if !slices.EqualFunc(ga.params, gb.params, Parameter.Equal) {
		return false
	}
	if !slices.EqualFunc(ga.custom, gb.custom, func(x, y CustomParameter) bool {
		return x.String() == y.String()
	}) {
		return false
	}
	return slices.EqualFunc(ga.children, gb.children, Equal)
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.base().children {
		Walk(c, fn)
	}
}

// Depth returns the number of node levels in n: 1 for a node with no children.
func Depth(n Node) int {
	if n == nil {
		return 0
	}
	d := 0
	for _, c := range n.base().children {
		d = max(d, Depth(c))
	}
	return d + 1
}

// Leaves returns every parameter in n, depth first.
func Leaves(n Node) []Parameter {
	var out []Parameter
	Walk(n, func(x Node) bool {
		out = append(out, x.base().params...)
		return true
	})
	return out
}
