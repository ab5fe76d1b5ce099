package predicate

import (
	"fmt"
	"log/slog"

	"querykit/internal/logging"
)

// Normalizer rewrites predicate trees into disjunctive normal form.
// A Normalizer holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	maxClauses int
	logger     *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMaxClauses makes normalization fail with ErrTooManyClauses as soon as
// a disjunction grows beyond n clauses. Zero means no limit.
func WithMaxClauses(n int) Option {
	return func(z *Normalizer) { z.maxClauses = max(n, 0) }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(z *Normalizer) { z.logger = logger }
}

// NewNormalizer returns a Normalizer configured by opts.
func NewNormalizer(opts ...Option) *Normalizer {
	z := &Normalizer{}
	for _, opt := range opts {
		opt(z)
	}
	z.logger = logging.Default(z.logger).With("component", "normalizer")
	return z
}

var unlimited = NewNormalizer()

// ToDNF rewrites n into disjunctive normal form: either a single conjunction
// of leaves, or a disjunction whose elements are leaves and conjunctions of
// leaves. A tree with no conjunction above a disjunction comes back with the
// same leaves and no extra structure. ToDNF(nil) is nil.
func ToDNF(n Node) Node {
	if n == nil {
		return nil
	}
	out, err := unlimited.Normalize(n)
	if err != nil {
		// Without a clause limit only an empty input can fail, and Build
		// never produces one.
		panic(fmt.Sprintf("predicate: normalize: %v", err))
	}
	return out
}

// Normalize rewrites n into disjunctive normal form. See ToDNF.
//
// The tree is copied, then flattened bottom-up: a disjunction merges its
// flattened children, and a conjunction folds its flattened children into
// its own leaves from left to right by distribution, flattening again after
// every step. The result is rebuilt with the builder's simplification rules.
func (z *Normalizer) Normalize(n Node) (Node, error) {
	if isNil(n) {
		return nil, ErrEmptyPredicate
	}
	flat, err := z.flatten(stage(n))
	if err != nil {
		return nil, err
	}
	out, err := unstage(flat)
	if err != nil {
		return nil, err
	}
	z.logger.Debug("normalized predicate",
		"depth_in", Depth(n),
		"clauses", ClauseCount(out),
	)
	return out, nil
}

func (z *Normalizer) flatten(n Node) (Node, error) {
	switch n := n.(type) {
	case *And:
		return z.flattenAnd(n)
	case *Or:
		return z.flattenOr(n)
	default:
		return nil, fmt.Errorf("predicate: unknown node type %T", n)
	}
}

// flattenOr merges the flattened children of n into n: a disjunction of
// disjunctions is one disjunction.
func (z *Normalizer) flattenOr(n *Or) (Node, error) {
	children := n.children
	n.clearChildren()
	for _, c := range children {
		f, err := z.flatten(c)
		if err != nil {
			return nil, err
		}
		n.add(term{node: f})
	}
	if err := z.check(n); err != nil {
		return nil, err
	}
	return n, nil
}

// flattenAnd treats n's own leaves as the first operand and folds each
// flattened child into it with conjunctive.
func (z *Normalizer) flattenAnd(n *And) (Node, error) {
	children := n.children
	n.clearChildren()
	var acc Node = n
	for _, c := range children {
		f, err := z.flatten(c)
		if err != nil {
			return nil, err
		}
		step := conjunctive(acc, f)
		if err := z.check(step); err != nil {
			return nil, err
		}
		if acc, err = z.flatten(step); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (z *Normalizer) check(n Node) error {
	if z.maxClauses > 0 && n.Op() == OpOr && n.Len() > z.maxClauses {
		return fmt.Errorf("%w: %d > %d", ErrTooManyClauses, n.Len(), z.maxClauses)
	}
	return nil
}

// IsDNF reports whether n is already in disjunctive normal form.
func IsDNF(n Node) bool {
	switch n := n.(type) {
	case *And:
		return len(n.children) == 0
	case *Or:
		for _, c := range n.children {
			if c.Op() != OpAnd || len(c.base().children) != 0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ClauseCount returns the number of AND clauses in a normalized node: one for
// a conjunction, one per element for a disjunction.
func ClauseCount(n Node) int {
	switch {
	case n == nil:
		return 0
	case n.Op() == OpOr:
		return n.Len()
	default:
		return 1
	}
}

// Clauses returns the disjuncts of n as conjunctions, normalizing n first if
// needed. A leaf disjunct becomes a one-element conjunction. Each clause is
// what a conjunctive-only backend runs as one sub-query.
func Clauses(n Node) []*And {
	if n == nil {
		return nil
	}
	if !IsDNF(n) {
		n = ToDNF(n)
	}
	switch n := n.(type) {
	case *And:
		return []*And{n}
	case *Or:
		out := make([]*And, 0, n.Len())
		for _, p := range n.params {
			out = append(out, &And{group{params: []Parameter{p}}})
		}
		for _, c := range n.custom {
			out = append(out, &And{group{custom: []CustomParameter{c}}})
		}
		for _, c := range n.children {
			out = append(out, c.(*And))
		}
		return out
	}
	return nil
}
