// Package schema declares columns over schemaless JSON records. Each column
// selects its value with a JSONPath query and converts it to a declared
// type, so filters over decoded JSON can use the predicate algebra.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"

	"querykit/internal/predicate"

	"github.com/theory/jsonpath"
)

var (
	ErrUnknownType     = errors.New("unknown column type")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrInvalidColumn   = errors.New("invalid column")
)

// Type is the declared value type of a column.
type Type string

const (
	Int    Type = "int"
	Float  Type = "float"
	String Type = "string"
	Bool   Type = "bool"
	Time   Type = "time"
)

// ParseType validates a type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Int, Float, String, Bool, Time:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// GoType returns the Go type column values are converted to.
func (t Type) GoType() reflect.Type {
	switch t {
	case Int:
		return reflect.TypeFor[int64]()
	case Float:
		return reflect.TypeFor[float64]()
	case String:
		return reflect.TypeFor[string]()
	case Bool:
		return reflect.TypeFor[bool]()
	case Time:
		return reflect.TypeFor[time.Time]()
	default:
		return nil
	}
}

// Spec declares a column.
type Spec struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
	Type Type   `yaml:"type" json:"type"`
}

// Column is a predicate column over decoded JSON values (the result of
// json.Unmarshal into an any).
type Column struct {
	spec Spec
	path *jsonpath.Path
}

// NewColumn compiles a column declaration.
func NewColumn(spec Spec) (*Column, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidColumn)
	}
	if _, err := ParseType(string(spec.Type)); err != nil {
		return nil, fmt.Errorf("column %s: %w", spec.Name, err)
	}
	path, err := jsonpath.Parse(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: column %s: path %q: %w", ErrInvalidColumn, spec.Name, spec.Path, err)
	}
	return &Column{spec: spec, path: path}, nil
}

func (c *Column) Name() string       { return c.spec.Name }
func (c *Column) Type() reflect.Type { return c.spec.Type.GoType() }
func (c *Column) Spec() Spec         { return c.spec }
func (c *Column) String() string     { return c.spec.Name }

// Value selects the column value from a decoded JSON record. If the path
// selects several nodes the first is used. A missing or null value is
// predicate.ErrNoValue.
func (c *Column) Value(record any) (any, error) {
	nodes := c.path.Select(record)
	if len(nodes) == 0 || nodes[0] == nil {
		return nil, fmt.Errorf("%w: %s", predicate.ErrNoValue, c.spec.Name)
	}
	v, err := convert(nodes[0], c.spec.Type)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", c.spec.Name, err)
	}
	return v, nil
}

// convert turns a decoded JSON value into the Go value for t.
func convert(v any, t Type) (any, error) {
	switch t {
	case Int:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
				return nil, fmt.Errorf("%w: %v is not an integer", predicate.ErrTypeMismatch, n)
			}
			return int64(n), nil
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case Float:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Time:
		if s, ok := v.(string); ok {
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an RFC 3339 time", predicate.ErrTypeMismatch, s)
			}
			return ts, nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not %s", predicate.ErrTypeMismatch, v, t)
}

// Schema is an ordered set of columns. It resolves column names for the
// filter parser.
type Schema struct {
	columns []*Column
	byName  map[string]*Column
}

// New compiles the column declarations. Column names must be unique.
func New(specs ...Spec) (*Schema, error) {
	s := &Schema{byName: make(map[string]*Column, len(specs))}
	for _, spec := range specs {
		if _, dup := s.byName[spec.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, spec.Name)
		}
		c, err := NewColumn(spec)
		if err != nil {
			return nil, err
		}
		s.columns = append(s.columns, c)
		s.byName[spec.Name] = c
	}
	return s, nil
}

// Column returns the named column.
func (s *Schema) Column(name string) (predicate.Column, bool) {
	c, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// Columns returns the columns in declaration order.
func (s *Schema) Columns() []*Column { return slices.Clone(s.columns) }
