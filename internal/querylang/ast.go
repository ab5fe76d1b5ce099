// Package querylang parses the text filter syntax into predicate trees.
//
//	age >= 18 AND (city = Oslo OR NOT name = "bob")
//
// Parse produces a syntax tree; a Compiler resolves its column names through
// a Catalog, coerces literals to the column types, pushes NOT down to the
// comparisons and builds the predicate tree.
//
// This package is a parsing layer only. It does not normalize or evaluate.
package querylang

import (
	"strings"

	"querykit/internal/predicate"
)

// Expr is the interface for all AST nodes.
// The marker method prevents external types from implementing Expr.
type Expr interface {
	expr()
	// String returns a human-readable representation of the expression.
	String() string
}

// AndExpr represents logical AND of multiple expressions.
// Invariant: len(Terms) >= 2
type AndExpr struct {
	Terms []Expr
}

func (AndExpr) expr() {}

func (a *AndExpr) String() string {
	return joinTerms(a.Terms, " AND ")
}

// OrExpr represents logical OR of multiple expressions.
// Invariant: len(Terms) >= 2
type OrExpr struct {
	Terms []Expr
}

func (OrExpr) expr() {}

func (o *OrExpr) String() string {
	return joinTerms(o.Terms, " OR ")
}

func joinTerms(terms []Expr, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// NotExpr represents logical negation.
type NotExpr struct {
	Term Expr
}

func (NotExpr) expr() {}

func (n *NotExpr) String() string {
	return "NOT " + n.Term.String()
}

// CompareExpr is a leaf comparison: column op literal. The literal is kept
// as text until the column's type is known.
type CompareExpr struct {
	Column string
	Op     predicate.Operator
	Value  string
	Quoted bool // the literal was a quoted string

	ColumnPos int
	ValuePos  int
}

func (CompareExpr) expr() {}

func (c *CompareExpr) String() string {
	v := c.Value
	if c.Quoted {
		v = predicate.FormatValue(v)
	}
	return c.Column + " " + c.Op.String() + " " + v
}

// flattenAnd combines two expressions into an AndExpr, flattening nested AndExprs.
func flattenAnd(left, right Expr) Expr {
	var terms []Expr

	if a, ok := left.(*AndExpr); ok {
		terms = append(terms, a.Terms...)
	} else {
		terms = append(terms, left)
	}

	if a, ok := right.(*AndExpr); ok {
		terms = append(terms, a.Terms...)
	} else {
		terms = append(terms, right)
	}

	return &AndExpr{Terms: terms}
}

// flattenOr combines two expressions into an OrExpr, flattening nested OrExprs.
func flattenOr(left, right Expr) Expr {
	var terms []Expr

	if o, ok := left.(*OrExpr); ok {
		terms = append(terms, o.Terms...)
	} else {
		terms = append(terms, left)
	}

	if o, ok := right.(*OrExpr); ok {
		terms = append(terms, o.Terms...)
	} else {
		terms = append(terms, right)
	}

	return &OrExpr{Terms: terms}
}
