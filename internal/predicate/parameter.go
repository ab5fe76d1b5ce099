package predicate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Parameter is a leaf condition: column, operator and target value.
// A Parameter is immutable once created.
type Parameter struct {
	column Column
	op     Operator
	value  any
}

// NewParameter creates a leaf condition. The value must be non-nil and
// assignable to the column's declared type.
func NewParameter(col Column, op Operator, value any) (Parameter, error) {
	if isNil(col) {
		return Parameter{}, ErrNilColumn
	}
	if !op.Valid() {
		return Parameter{}, fmt.Errorf("%w: %d", ErrUnknownOperator, int(op))
	}
	if isNil(value) {
		return Parameter{}, fmt.Errorf("%w: column %s", ErrNilValue, col.Name())
	}
	if err := compatible(col, value); err != nil {
		return Parameter{}, err
	}
	return Parameter{column: col, op: op, value: value}, nil
}

func (p Parameter) Column() Column     { return p.column }
func (p Parameter) Operator() Operator { return p.op }
func (p Parameter) Value() any         { return p.value }

// Matches evaluates the parameter against record. It exists for tests and
// documentation; normalization never evaluates parameters.
func (p Parameter) Matches(record any, c Comparator) (bool, error) {
	v, err := p.column.Value(record)
	if err != nil {
		return false, err
	}
	return p.op.Apply(c, v, p.value)
}

// Equal reports whether p and o compare the same column the same way against
// deeply equal values.
func (p Parameter) Equal(o Parameter) bool {
	return SameColumn(p.column, o.column) && p.op == o.op && reflect.DeepEqual(p.value, o.value)
}

func (p Parameter) String() string {
	if p.column == nil {
		return "<invalid>"
	}
	return p.column.Name() + " " + p.op.String() + " " + FormatValue(p.value)
}

// FormatValue renders a parameter value: strings quoted, times in RFC 3339.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// CustomParameter is a leaf condition that the storage backend understands
// natively (full-text match, geo radius, ...). The algebra treats it as an
// opaque leaf and compares custom parameters by their String form.
type CustomParameter interface {
	// Name identifies the kind of condition.
	Name() string
	String() string
}

// Custom returns a CustomParameter with the given name and arguments.
func Custom(name string, args ...any) CustomParameter {
	return customParameter{name: name, args: args}
}

type customParameter struct {
	name string
	args []any
}

func (c customParameter) Name() string { return c.name }

// Args returns the arguments the condition was created with.
func (c customParameter) Args() []any { return c.args }

func (c customParameter) String() string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = FormatValue(a)
	}
	return c.name + "(" + strings.Join(parts, ", ") + ")"
}
