package predicate

import (
	"errors"
	"fmt"
)

// Matcher evaluates predicate trees against records. The zero value uses
// DefaultComparator and fails on custom parameters.
//
// A comparison against a column the record has no value for (the column
// returns ErrNoValue) is false whatever its operator, so both a == 1 and
// a != 1 are false for a record without a.
type Matcher struct {
	// Comparator applies leaf operators. Nil means DefaultComparator.
	Comparator Comparator
	// Custom evaluates custom parameters. Nil makes any custom parameter
	// an ErrUnsupportedCustom error.
	Custom func(p CustomParameter, record any) (bool, error)
}

// Match reports whether record satisfies n. Evaluation short-circuits: an
// AND stops at the first false element, an OR at the first true one.
func (m Matcher) Match(n Node, record any) (bool, error) {
	if isNil(n) {
		return false, ErrEmptyPredicate
	}
	want := n.Op() == OpOr // the value that decides the node
	g := n.base()

	for _, p := range g.params {
		ok, err := p.Matches(record, m.Comparator)
		if errors.Is(err, ErrNoValue) {
			ok, err = false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%s: %w", p, err)
		}
		if ok == want {
			return want, nil
		}
	}
	for _, c := range g.custom {
		if m.Custom == nil {
			return false, fmt.Errorf("%w: %s", ErrUnsupportedCustom, c)
		}
		ok, err := m.Custom(c, record)
		if err != nil {
			return false, fmt.Errorf("%s: %w", c, err)
		}
		if ok == want {
			return want, nil
		}
	}
	for _, c := range g.children {
		ok, err := m.Match(c, record)
		if err != nil {
			return false, err
		}
		if ok == want {
			return want, nil
		}
	}
	return !want, nil
}
