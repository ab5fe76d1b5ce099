package querylang

import (
	"errors"
	"log/slog"
	"reflect"

	"querykit/internal/logging"
	"querykit/internal/predicate"
)

// Catalog resolves column names used in filters.
type Catalog interface {
	Column(name string) (predicate.Column, bool)
}

// Columns returns a Catalog of the given columns, keyed by name.
func Columns(cols ...predicate.Column) Catalog {
	m := make(columnMap, len(cols))
	for _, c := range cols {
		m[c.Name()] = c
	}
	return m
}

type columnMap map[string]predicate.Column

func (m columnMap) Column(name string) (predicate.Column, bool) {
	c, ok := m[name]
	return c, ok
}

// Compiler turns filter text into predicate trees.
type Compiler struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewCompiler returns a compiler resolving columns through catalog.
// A nil logger discards output.
func NewCompiler(catalog Catalog, logger *slog.Logger) *Compiler {
	return &Compiler{
		catalog: catalog,
		logger:  logging.Default(logger).With("component", "querylang"),
	}
}

// Compile parses input and builds its predicate tree. Negations are pushed
// down to the comparisons, so the tree holds no NOT:
//
//	NOT (a = 1 OR b < 2)  =>  (a != 1 AND b >= 2)
func (c *Compiler) Compile(input string) (predicate.Node, error) {
	expr, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return c.CompileExpr(expr)
}

// CompileExpr builds the predicate tree of a parsed expression.
func (c *Compiler) CompileExpr(expr Expr) (predicate.Node, error) {
	top := predicate.NewBuilder(predicate.OpAnd)
	if err := c.build(top, expr, false); err != nil {
		return nil, err
	}
	n, err := top.Build()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("compiled filter",
		"expr", expr.String(),
		"parameters", len(predicate.Leaves(n)),
		"depth", predicate.Depth(n),
	)
	return n, nil
}

// build adds expr to b. When negate is set the negation of expr is added
// instead, by De Morgan: NOT (x AND y) = NOT x OR NOT y, and the reverse.
func (c *Compiler) build(b *predicate.Builder, expr Expr, negate bool) error {
	switch e := expr.(type) {
	case *CompareExpr:
		p, err := c.parameter(e, negate)
		if err != nil {
			return err
		}
		return b.Add(p)

	case *NotExpr:
		return c.build(b, e.Term, !negate)

	case *AndExpr:
		return c.buildGroup(b, e.Terms, predicate.OpAnd, negate)

	case *OrExpr:
		return c.buildGroup(b, e.Terms, predicate.OpOr, negate)

	default:
		return newParseError(0, ErrUnexpectedToken, "unsupported expression %T", expr)
	}
}

func (c *Compiler) buildGroup(b *predicate.Builder, terms []Expr, op predicate.Op, negate bool) error {
	if negate {
		op = flip(op)
	}
	sub := b.Sub(op)
	for _, t := range terms {
		if err := c.build(sub, t, negate); err != nil {
			return err
		}
	}
	_, err := sub.Build()
	return err
}

func flip(op predicate.Op) predicate.Op {
	if op == predicate.OpAnd {
		return predicate.OpOr
	}
	return predicate.OpAnd
}

func (c *Compiler) parameter(e *CompareExpr, negate bool) (predicate.Parameter, error) {
	col, ok := c.catalog.Column(e.Column)
	if !ok {
		return predicate.Parameter{}, newParseError(e.ColumnPos, ErrUnknownColumn, "unknown column %q", e.Column)
	}

	value, err := literal(col.Type(), e)
	if err != nil {
		return predicate.Parameter{}, &ParseError{Pos: e.ValuePos, Message: err.Error(), Err: ErrInvalidLiteral}
	}

	op := e.Op
	if negate {
		op = op.Complement()
	}
	p, err := predicate.NewParameter(col, op, value)
	if err != nil {
		return predicate.Parameter{}, &ParseError{Pos: e.ValuePos, Message: err.Error(), Err: errors.Join(ErrInvalidLiteral, err)}
	}
	return p, nil
}

// literal converts the comparison's value to the column type. A quoted
// literal for an untyped column stays a string.
func literal(t reflect.Type, e *CompareExpr) (any, error) {
	if t == nil || (t.Kind() == reflect.Interface && t.NumMethod() == 0 && e.Quoted) {
		return e.Value, nil
	}
	return ParseLiteral(t, e.Value)
}
