package cli

import (
	"fmt"
	"strconv"
	"strings"

	"querykit/internal/query"
	"querykit/internal/querylang"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newExplainCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <expr>",
		Short: "Show the sub-queries a conjunctive-only backend runs for a query",
		Example: `  querykit explain 'age > 18 AND (city = Oslo OR city = Bergen)' --order age:desc --limit 10
  querykit explain 'name = ann' --id 0190f7a2-6c4e-7000-8000-000000000001 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			q, err := e.buildQuery(cmd, args[0])
			if err != nil {
				return err
			}
			plan, err := q.Explain(e.normalizer())
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(plan)
			}

			limit := "-"
			if plan.Limit > 0 {
				limit = strconv.Itoa(plan.Limit)
			}
			p.kv([][2]string{
				{"Query", plan.Query},
				{"Normalized", orDash(plan.Normalized)},
				{"IDs", orDash(strings.Join(plan.IDs, ", "))},
				{"Sort", orDash(strings.Join(plan.Sort, ", "))},
				{"Limit", limit},
				{"Mask", orDash(strings.Join(plan.Mask, ", "))},
			})
			p.line()

			rows := make([][]string, len(plan.Branches))
			for i, b := range plan.Branches {
				rows[i] = []string{
					strconv.Itoa(i + 1),
					b.BranchExpr,
					strconv.Itoa(b.Parameters + b.Custom),
					orDash(strings.Join(b.Columns, ", ")),
				}
			}
			p.table([]string{"BRANCH", "EXPR", "PARAMETERS", "COLUMNS"}, rows)
			return nil
		},
	}
	cmd.Flags().StringSlice("id", nil, "restrict to record IDs (UUIDs, repeatable)")
	cmd.Flags().StringArray("order", nil, "sort directive column[:asc|desc] (repeatable)")
	cmd.Flags().Int("limit", 0, "result limit (requires --order)")
	cmd.Flags().StringSlice("mask", nil, "fields to return")
	return cmd
}

// buildQuery assembles a query from the filter and the explain flags.
func (e *env) buildQuery(cmd *cobra.Command, expr string) (*query.Query[any, uuid.UUID], error) {
	n, err := e.compiler().Compile(expr)
	if err != nil {
		return nil, err
	}
	b := query.NewBuilder[any, uuid.UUID]()
	if err := b.Filter(n); err != nil {
		return nil, err
	}

	if raw, _ := cmd.Flags().GetStringSlice("id"); len(raw) > 0 {
		ids := make([]uuid.UUID, len(raw))
		for i, s := range raw {
			if ids[i], err = uuid.Parse(s); err != nil {
				return nil, fmt.Errorf("--id %q: %w", s, err)
			}
		}
		if err := b.ID().In(ids...); err != nil {
			return nil, err
		}
	}

	orders, _ := cmd.Flags().GetStringArray("order")
	for _, o := range orders {
		name, dirText, found := strings.Cut(o, ":")
		dir := query.Asc
		if found {
			if dir, err = query.ParseDirection(dirText); err != nil {
				return nil, fmt.Errorf("--order %q: %w", o, err)
			}
		}
		col, ok := e.schema.Column(name)
		if !ok {
			return nil, fmt.Errorf("--order %q: %w: %s", o, querylang.ErrUnknownColumn, name)
		}
		if err := b.OrderBy(col, dir); err != nil {
			return nil, err
		}
	}

	if limit, _ := cmd.Flags().GetInt("limit"); cmd.Flags().Changed("limit") {
		if err := b.Limit(limit); err != nil {
			return nil, err
		}
	}
	if mask, _ := cmd.Flags().GetStringSlice("mask"); cmd.Flags().Changed("mask") {
		if err := b.WithMask(query.Mask(mask)); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
