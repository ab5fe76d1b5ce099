package query

import (
	"fmt"
	"slices"

	"querykit/internal/predicate"
)

// Plan describes how a conjunctive-only backend executes a query: one
// sub-query per branch of the normalized predicate, results unioned, then
// sorted, limited and projected.
type Plan struct {
	Query      string       `json:"query"`
	Normalized string       `json:"normalized,omitempty"`
	IDs        []string     `json:"ids,omitempty"`
	Sort       []string     `json:"sort,omitempty"`
	Limit      int          `json:"limit,omitempty"`
	Mask       []string     `json:"mask,omitempty"`
	Branches   []BranchPlan `json:"branches"`
}

// BranchPlan describes the sub-query for a single DNF branch.
type BranchPlan struct {
	BranchExpr string   `json:"expr"`       // string representation of the branch
	Parameters int      `json:"parameters"` // column conditions in the branch
	Custom     int      `json:"custom,omitempty"`
	Columns    []string `json:"columns"` // distinct columns, in first-use order
}

// Explain normalizes q and returns its execution plan. A query without
// predicates has a single unfiltered branch. A nil normalizer applies no
// clause limit.
func (q *Query[R, ID]) Explain(z *predicate.Normalizer) (*Plan, error) {
	nq, err := q.Normalized(z)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}

	plan := &Plan{
		Query: q.String(),
		Limit: q.limit,
		Mask:  slices.Clone(q.mask),
	}
	for _, id := range q.subject.ids {
		plan.IDs = append(plan.IDs, fmt.Sprint(id))
	}
	for _, s := range q.sort {
		plan.Sort = append(plan.Sort, s.String())
	}

	n := nq.subject.Predicate()
	if n == nil {
		plan.Branches = []BranchPlan{{BranchExpr: "*", Columns: []string{}}}
		return plan, nil
	}
	plan.Normalized = n.String()
	for _, clause := range predicate.Clauses(n) {
		plan.Branches = append(plan.Branches, branchPlan(clause))
	}
	return plan, nil
}

func branchPlan(clause *predicate.And) BranchPlan {
	params := clause.Parameters()
	bp := BranchPlan{
		BranchExpr: clause.String(),
		Parameters: len(params),
		Custom:     len(clause.CustomParameters()),
		Columns:    []string{},
	}
	for _, p := range params {
		if name := p.Column().Name(); !slices.Contains(bp.Columns, name) {
			bp.Columns = append(bp.Columns, name)
		}
	}
	return bp
}
