package cli

import (
	"github.com/spf13/cobra"
)

// sampleConfig is written by "querykit init".
const sampleConfig = `# Columns filters may reference. path is a JSONPath query into each record;
# type is one of int, float, string, bool or time (RFC 3339 strings).
columns:
  - name: name
    path: $.name
    type: string
  - name: age
    path: $.age
    type: int
  - name: city
    path: $.address.city
    type: string
  - name: seen
    path: $.last_seen
    type: time

normalize:
  # Fail instead of producing more clauses than this. 0 means unlimited.
  max_clauses: 256

log_level: info
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a sample config file to the home directory",
		Args:  cobra.NoArgs,
		// The config may not exist yet.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			hd, err := resolveHome(cmd)
			if err != nil {
				return err
			}
			wrote, err := hd.WriteConfig([]byte(sampleConfig))
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			if wrote {
				p.line("wrote", hd.ConfigPath())
			} else {
				p.line(hd.ConfigPath(), "exists, left unchanged")
			}
			return nil
		},
	}
}
