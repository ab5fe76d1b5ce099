// Package query provides the fluent layer over the predicate algebra: a
// Builder collects filter conditions, an identifier filter, sort directives,
// a result limit and a field mask, and produces an immutable Query for a
// storage backend to execute.
//
// A backend that only supports conjunctive filters runs Query.Explain (or
// Query.Normalized) and issues one sub-query per branch, unioning the results.
package query

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"querykit/internal/predicate"
)

// Direction is a sort order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses "asc" or "desc", case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// SortDirective orders results by one column.
type SortDirective struct {
	Column    predicate.Column
	Direction Direction
}

func (s SortDirective) String() string {
	return s.Column.Name() + " " + s.Direction.String()
}

// Mask names the fields a backend should return. It is passed through
// unmodified.
type Mask []string

// Subject is what a query selects: records of type R, optionally restricted
// to a set of identifiers, that satisfy the filter.
type Subject[R any, ID comparable] struct {
	ids    []ID
	filter predicate.Node // nil = every record
}

// RecordType returns the type of the records the query selects.
func (s Subject[R, ID]) RecordType() reflect.Type { return reflect.TypeFor[R]() }

// IDType returns the type of record identifiers.
func (s Subject[R, ID]) IDType() reflect.Type { return reflect.TypeFor[ID]() }

// IDs returns the identifier filter. Empty means no identifier filter.
func (s Subject[R, ID]) IDs() []ID { return slices.Clone(s.ids) }

// Predicates returns the filter trees. A built query holds at most one;
// none means every record matches.
func (s Subject[R, ID]) Predicates() []predicate.Node {
	if s.filter == nil {
		return nil
	}
	return []predicate.Node{s.filter}
}

// Predicate returns the filter tree, or nil if there is none.
func (s Subject[R, ID]) Predicate() predicate.Node { return s.filter }

// Query is an immutable, validated query.
type Query[R any, ID comparable] struct {
	subject Subject[R, ID]
	sort    []SortDirective
	limit   int // 0 = unlimited
	mask    Mask
}

func (q *Query[R, ID]) Subject() Subject[R, ID] { return q.subject }

// Sort returns the sort directives in priority order.
func (q *Query[R, ID]) Sort() []SortDirective { return slices.Clone(q.sort) }

// Limit returns the result limit and whether one is set.
func (q *Query[R, ID]) Limit() (int, bool) { return q.limit, q.limit > 0 }

// Mask returns the field mask, or nil if none was set.
func (q *Query[R, ID]) Mask() Mask { return slices.Clone(q.mask) }

// Builder reopens the query into a new builder holding the same state, so a
// variant can be built without touching q.
func (q *Query[R, ID]) Builder() *Builder[R, ID] {
	b := NewBuilder[R, ID]()
	if f := q.subject.filter; f != nil {
		// AddChild only rejects nil nodes.
		_ = b.top.AddChild(f)
	}
	b.ids = slices.Clone(q.subject.ids)
	b.sort = slices.Clone(q.sort)
	b.limit = q.limit
	b.mask = slices.Clone(q.mask)
	return b
}

// Normalized returns a copy of q whose predicates are a single tree in
// disjunctive normal form. A nil normalizer applies no clause limit.
func (q *Query[R, ID]) Normalized(z *predicate.Normalizer) (*Query[R, ID], error) {
	out := *q
	n := q.subject.Predicate()
	if n == nil {
		return &out, nil
	}
	if z == nil {
		z = predicate.NewNormalizer()
	}
	dnf, err := z.Normalize(n)
	if err != nil {
		return nil, err
	}
	out.subject.filter = dnf
	return &out, nil
}

func (q *Query[R, ID]) String() string {
	var parts []string
	if n := q.subject.Predicate(); n != nil {
		parts = append(parts, n.String())
	}
	if len(q.subject.ids) > 0 {
		ids := make([]string, len(q.subject.ids))
		for i, id := range q.subject.ids {
			ids[i] = fmt.Sprint(id)
		}
		parts = append(parts, "id in ["+strings.Join(ids, ", ")+"]")
	}
	if len(q.sort) > 0 {
		order := make([]string, len(q.sort))
		for i, s := range q.sort {
			order[i] = s.String()
		}
		parts = append(parts, "order by "+strings.Join(order, ", "))
	}
	if q.limit > 0 {
		parts = append(parts, fmt.Sprintf("limit %d", q.limit))
	}
	if q.mask != nil {
		parts = append(parts, "mask ["+strings.Join(q.mask, ", ")+"]")
	}
	return strings.Join(parts, " ")
}
