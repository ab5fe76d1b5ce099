package query

import "errors"

var (
	ErrLimitWithoutOrder = errors.New("limit requires at least one sort directive")
	ErrInvalidLimit      = errors.New("limit must be positive")
	ErrInvalidDirection  = errors.New("invalid sort direction")
	ErrNilMask           = errors.New("mask is nil")
	ErrNilID             = errors.New("id is nil")
	ErrNoIDs             = errors.New("id filter needs at least one id")
	ErrNilBranch         = errors.New("either branch is nil")
	ErrNotTopLevel       = errors.New("only allowed outside either branches")
)
