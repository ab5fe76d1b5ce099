package query

import (
	"fmt"
	"reflect"
	"slices"

	"querykit/internal/predicate"
)

// Scoper is anything conditions can be added to: a Builder at the top level
// or a Scope inside an Either branch.
type Scoper[R any] interface {
	scope() *Scope[R]
}

// Scope is a conjunctive region of a query: every condition added to it must
// hold. Scopes passed to Either branches only allow adding conditions;
// identifier filters, sorting, limits and masks belong to the Builder.
type Scope[R any] struct {
	b      *predicate.Builder
	either *int // Either branches running on the owning Builder
}

func (s *Scope[R]) scope() *Scope[R] { return s }

// Match adds the condition col op value. It is the untyped form of Where.
func (s *Scope[R]) Match(col predicate.Column, op predicate.Operator, value any) error {
	p, err := predicate.NewParameter(col, op, value)
	if err != nil {
		return err
	}
	return s.b.Add(p)
}

// Custom adds a backend-specific condition.
func (s *Scope[R]) Custom(p predicate.CustomParameter) error {
	return s.b.AddCustom(p)
}

// Filter adds an already built predicate tree, such as one produced by the
// querylang parser.
func (s *Scope[R]) Filter(n predicate.Node) error {
	return s.b.AddChild(n)
}

// Either adds a disjunction: at least one branch must hold. Each branch
// fills its own conjunctive scope. If a branch fails, or adds nothing,
// nothing is added to s.
func (s *Scope[R]) Either(branches ...func(*Scope[R]) error) error {
	if len(branches) == 0 {
		return fmt.Errorf("either: %w", predicate.ErrEmptyPredicate)
	}
	*s.either++
	defer func() { *s.either-- }()

	or := s.b.Sub(predicate.OpOr)
	for i, fn := range branches {
		if fn == nil {
			return fmt.Errorf("either branch %d: %w", i, ErrNilBranch)
		}
		branch := &Scope[R]{b: or.Sub(predicate.OpAnd), either: s.either}
		if err := fn(branch); err != nil {
			return err
		}
		if _, err := branch.b.Build(); err != nil {
			return fmt.Errorf("either branch %d: %w", i, err)
		}
	}
	_, err := or.Build()
	return err
}

// Criterion adds conditions on one column to a scope.
type Criterion[R, V any] struct {
	s   *Scope[R]
	col *predicate.TypedColumn[R, V]
}

// Where starts a condition on col in s.
//
//	err := query.Where(b, age).IsGreaterThan(18)
func Where[R, V any](s Scoper[R], col *predicate.TypedColumn[R, V]) Criterion[R, V] {
	return Criterion[R, V]{s: s.scope(), col: col}
}

func (c Criterion[R, V]) add(op predicate.Operator, v V) error {
	if c.col == nil {
		return predicate.ErrNilColumn
	}
	return c.s.Match(c.col, op, v)
}

func (c Criterion[R, V]) Is(v V) error                     { return c.add(predicate.Eq, v) }
func (c Criterion[R, V]) IsNot(v V) error                  { return c.add(predicate.Ne, v) }
func (c Criterion[R, V]) IsLessThan(v V) error             { return c.add(predicate.Lt, v) }
func (c Criterion[R, V]) IsLessThanOrEqualTo(v V) error    { return c.add(predicate.Le, v) }
func (c Criterion[R, V]) IsGreaterThan(v V) error          { return c.add(predicate.Gt, v) }
func (c Criterion[R, V]) IsGreaterThanOrEqualTo(v V) error { return c.add(predicate.Ge, v) }

// Builder accumulates a query over records of type R identified by ID.
// A Builder is not safe for concurrent use.
type Builder[R any, ID comparable] struct {
	Scope[R]
	top    *predicate.Builder
	either int
	ids    []ID
	sort   []SortDirective
	limit  int
	mask   Mask
}

// NewBuilder returns an empty builder. A query built without conditions
// matches every record.
func NewBuilder[R any, ID comparable]() *Builder[R, ID] {
	top := predicate.NewBuilder(predicate.OpAnd)
	b := &Builder[R, ID]{top: top}
	b.Scope = Scope[R]{b: top, either: &b.either}
	return b
}

// topLevel fails while an Either branch is running. Identifier filters,
// sorting, limits and masks apply to the whole query, never to a branch.
func (b *Builder[R, ID]) topLevel(what string) error {
	if b.either > 0 {
		return fmt.Errorf("%s: %w", what, ErrNotTopLevel)
	}
	return nil
}

// IDCriterion sets the identifier filter of a Builder.
type IDCriterion[R any, ID comparable] struct {
	b *Builder[R, ID]
}

// ID starts an identifier filter. The filter replaces any previous one.
func (b *Builder[R, ID]) ID() IDCriterion[R, ID] {
	return IDCriterion[R, ID]{b: b}
}

// Is restricts the query to the record with identifier id.
func (c IDCriterion[R, ID]) Is(id ID) error {
	return c.In(id)
}

// In restricts the query to records whose identifier is one of ids.
func (c IDCriterion[R, ID]) In(ids ...ID) error {
	if err := c.b.topLevel("id filter"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNoIDs
	}
	for _, id := range ids {
		if nilID(id) {
			return ErrNilID
		}
	}
	c.b.ids = slices.Clone(ids)
	return nil
}

func nilID(id any) bool {
	if id == nil {
		return true
	}
	switch v := reflect.ValueOf(id); v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// OrderBy appends a sort directive.
func (b *Builder[R, ID]) OrderBy(col predicate.Column, dir Direction) error {
	if err := b.topLevel("order by"); err != nil {
		return err
	}
	if col == nil || nilID(col) {
		return predicate.ErrNilColumn
	}
	if dir != Asc && dir != Desc {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}
	b.sort = append(b.sort, SortDirective{Column: col, Direction: dir})
	return nil
}

// Limit caps the number of results. The first n results are only defined
// under an order, so at least one sort directive must precede Limit.
func (b *Builder[R, ID]) Limit(n int) error {
	if err := b.topLevel("limit"); err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	if len(b.sort) == 0 {
		return ErrLimitWithoutOrder
	}
	b.limit = n
	return nil
}

// WithMask sets the field mask, replacing any previous one.
func (b *Builder[R, ID]) WithMask(m Mask) error {
	if err := b.topLevel("mask"); err != nil {
		return err
	}
	if m == nil {
		return ErrNilMask
	}
	b.mask = slices.Clone(m)
	return nil
}

// Build returns the query. The builder stays usable; later changes do not
// affect the returned query.
func (b *Builder[R, ID]) Build() (*Query[R, ID], error) {
	if b.limit > 0 && len(b.sort) == 0 {
		return nil, ErrLimitWithoutOrder
	}
	q := &Query[R, ID]{
		subject: Subject[R, ID]{ids: slices.Clone(b.ids)},
		sort:    slices.Clone(b.sort),
		limit:   b.limit,
		mask:    slices.Clone(b.mask),
	}
	if !b.top.Empty() {
		n, err := b.top.Build()
		if err != nil {
			return nil, err
		}
		q.subject.filter = n
	}
	return q, nil
}
