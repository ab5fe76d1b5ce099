package cli

import (
	"github.com/spf13/cobra"
)

func newColumnsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the configured columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(e.cfg.Columns)
			}
			var rows [][]string
			for _, c := range e.schema.Columns() {
				s := c.Spec()
				rows = append(rows, []string{s.Name, s.Path, string(s.Type)})
			}
			p.table([]string{"NAME", "PATH", "TYPE"}, rows)
			return nil
		},
	}
}
