package predicate

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Operator is the comparison a leaf parameter applies between a column value
// and its target value.
type Operator int

const (
	Eq Operator = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (o Operator) String() string {
	switch o {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Valid reports whether o is one of the defined operators.
func (o Operator) Valid() bool {
	return o >= Eq && o <= Ge
}

// Ordered reports whether o needs an ordering rather than just equality.
func (o Operator) Ordered() bool {
	return o >= Lt && o <= Ge
}

// Complement returns the operator that holds exactly when o does not.
// Over totally ordered values NOT (a < b) is (a >= b), and so on.
func (o Operator) Complement() Operator {
	switch o {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Le:
		return Gt
	case Gt:
		return Le
	case Ge:
		return Lt
	default:
		return o
	}
}

// ParseOperator parses the textual form of an operator.
// Both "=" and "==" mean Eq; both "!=" and "<>" mean Ne.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "=", "==":
		return Eq, nil
	case "!=", "<>":
		return Ne, nil
	case "<":
		return Lt, nil
	case "<=":
		return Le, nil
	case ">":
		return Gt, nil
	case ">=":
		return Ge, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}
}

// Apply evaluates "a o b" using c for equality and ordering.
// Ne is the negation of Eq, so it fails wherever Eq fails.
func (o Operator) Apply(c Comparator, a, b any) (bool, error) {
	if c == nil {
		c = DefaultComparator
	}
	switch o {
	case Eq, Ne:
		eq, err := c.Equal(a, b)
		if err != nil {
			return false, err
		}
		return eq == (o == Eq), nil
	case Lt, Le, Gt, Ge:
		n, err := c.Compare(a, b)
		if err != nil {
			return false, err
		}
		switch o {
		case Lt:
			return n < 0, nil
		case Le:
			return n <= 0, nil
		case Gt:
			return n > 0, nil
		default:
			return n >= 0, nil
		}
	default:
		return false, fmt.Errorf("%w: %d", ErrUnknownOperator, int(o))
	}
}

// Comparator supplies the equality and ordering semantics operators use.
type Comparator interface {
	// Equal reports whether a and b are equal.
	Equal(a, b any) (bool, error)
	// Compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
	Compare(a, b any) (int, error)
}

// DefaultComparator compares values of identical dynamic type. Numbers and
// strings order naturally, uuid.UUID orders byte-wise, and any type with a
// method Compare(T) int (time.Time, for one) uses that method. Values of
// differing types are never coerced.
var DefaultComparator Comparator = defaultComparator{}

type defaultComparator struct{}

func (defaultComparator) Equal(a, b any) (bool, error) {
	if err := sameType(a, b); err != nil {
		return false, err
	}
	if n, ok := compareMethod(a, b); ok {
		return n == 0, nil
	}
	if !reflect.TypeOf(a).Comparable() {
		return reflect.DeepEqual(a, b), nil
	}
	return a == b, nil
}

func (defaultComparator) Compare(a, b any) (int, error) {
	if err := sameType(a, b); err != nil {
		return 0, err
	}
	if au, ok := a.(uuid.UUID); ok {
		bu := b.(uuid.UUID)
		return bytes.Compare(au[:], bu[:]), nil
	}
	if n, ok := compareMethod(a, b); ok {
		return n, nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(va.Int(), vb.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(va.Uint(), vb.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(va.Float(), vb.Float()), nil
	case reflect.String:
		return cmp.Compare(va.String(), vb.String()), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotOrdered, a)
	}
}

func sameType(a, b any) error {
	if isNil(a) || isNil(b) {
		return ErrNilValue
	}
	if ta, tb := reflect.TypeOf(a), reflect.TypeOf(b); ta != tb {
		return fmt.Errorf("%w: %s and %s", ErrTypeMismatch, ta, tb)
	}
	return nil
}

// compareMethod calls a.Compare(b) when a's type has such a method returning int.
func compareMethod(a, b any) (int, bool) {
	va := reflect.ValueOf(a)
	m := va.MethodByName("Compare")
	if !m.IsValid() {
		return 0, false
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.In(0) != va.Type() || mt.Out(0).Kind() != reflect.Int {
		return 0, false
	}
	out := m.Call([]reflect.Value{reflect.ValueOf(b)})
	return int(out[0].Int()), true
}

// isNil reports whether v is nil or a nil pointer, map, slice, func, chan or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
