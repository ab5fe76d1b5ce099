package predicate

import (
	"fmt"
	"reflect"
)

// Column is a named, typed accessor into a record. Columns are identified by
// name: two columns with the same name are the same column for query purposes.
type Column interface {
	// Name returns the column name.
	Name() string
	// Type returns the declared type of the column's values.
	Type() reflect.Type
	// Value extracts the column value from record.
	Value(record any) (any, error)
}

// TypedColumn is a Column over records of type R holding values of type V.
type TypedColumn[R, V any] struct {
	name string
	get  func(R) V
}

// NewColumn declares a column. get is only called when a record is evaluated,
// never during normalization.
func NewColumn[R, V any](name string, get func(R) V) *TypedColumn[R, V] {
	return &TypedColumn[R, V]{name: name, get: get}
}

func (c *TypedColumn[R, V]) Name() string { return c.name }

func (c *TypedColumn[R, V]) Type() reflect.Type { return reflect.TypeFor[V]() }

// Get returns the column value of r.
func (c *TypedColumn[R, V]) Get(r R) V { return c.get(r) }

func (c *TypedColumn[R, V]) Value(record any) (any, error) {
	r, ok := record.(R)
	if !ok {
		return nil, fmt.Errorf("%w: column %s wants %s, got %T", ErrRecordType, c.name, reflect.TypeFor[R](), record)
	}
	return c.get(r), nil
}

func (c *TypedColumn[R, V]) String() string { return c.name }

// SameColumn reports whether a and b name the same column.
func SameColumn(a, b Column) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// compatible reports whether value may be compared against col.
func compatible(col Column, value any) error {
	want := col.Type()
	if want == nil {
		return nil
	}
	got := reflect.TypeOf(value)
	if got.AssignableTo(want) {
		return nil
	}
	return fmt.Errorf("%w: column %s is %s, value is %s", ErrTypeMismatch, col.Name(), want, got)
}
