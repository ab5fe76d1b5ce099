package querylang

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()
)

// ParseLiteral converts the text of a literal to a value of type t.
// Supported are strings, booleans, integers, floats, time.Time (RFC 3339),
// uuid.UUID and named types over those kinds. For an interface type the
// value is inferred: an integer, then a float, then true or false, else the
// text itself.
func ParseLiteral(t reflect.Type, text string) (any, error) {
	switch t {
	case timeType:
		v, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, invalidLiteral(t, text)
		}
		return v, nil
	case uuidType:
		v, err := uuid.Parse(text)
		if err != nil {
			return nil, invalidLiteral(t, text)
		}
		return v, nil
	}

	var v any
	var err error
	switch t.Kind() {
	case reflect.String:
		v = text
	case reflect.Bool:
		v, err = strconv.ParseBool(text)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err = strconv.ParseInt(text, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err = strconv.ParseUint(text, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		v, err = strconv.ParseFloat(text, t.Bits())
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return inferLiteral(text), nil
		}
		return nil, fmt.Errorf("%w: cannot parse literals for %s", ErrInvalidLiteral, t)
	default:
		return nil, fmt.Errorf("%w: cannot parse literals for %s", ErrInvalidLiteral, t)
	}
	if err != nil {
		return nil, invalidLiteral(t, text)
	}
	return reflect.ValueOf(v).Convert(t).Interface(), nil
}

func invalidLiteral(t reflect.Type, text string) error {
	return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidLiteral, text, t)
}

func inferLiteral(text string) any {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	switch text {
	case "true":
		return true
	case "false":
		return false
	}
	return text
}
