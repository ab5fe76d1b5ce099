package predicate

import "errors"

// Construction errors.
var (
	ErrEmptyPredicate = errors.New("predicate has no parameters or children")
	ErrNilColumn      = errors.New("column is nil")
	ErrNilValue       = errors.New("value is nil")
	ErrNilParameter   = errors.New("custom parameter is nil")
	ErrNilChild       = errors.New("child predicate is nil")
)

// Evaluation errors.
var (
	ErrTypeMismatch    = errors.New("values have different types")
	ErrNotOrdered      = errors.New("type has no ordering")
	ErrUnknownOperator = errors.New("unknown comparison operator")
	ErrRecordType      = errors.New("record has wrong type for column")

	ErrUnsupportedCustom = errors.New("no evaluator for custom parameter")
	ErrNoValue           = errors.New("record has no value for column")
)

// Normalization errors.
var ErrTooManyClauses = errors.New("disjunctive normal form exceeds clause limit")
