package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"querykit/internal/predicate"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// dnfResult is one normalized filter.
type dnfResult struct {
	File    string `json:"file,omitempty"`
	Input   string `json:"input"`
	DNF     string `json:"dnf"`
	Clauses int    `json:"clauses"`
}

func newDNFCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dnf [expr]",
		Short: "Rewrite a filter into disjunctive normal form",
		Long: `Compile a filter and print it in disjunctive normal form.

With --files, every file matching the glob holds one filter (# starts a
comment). The files are normalized concurrently and printed in path order.`,
		Example: `  querykit dnf 'age >= 18 AND (city = Oslo OR city = Bergen)'
  querykit dnf --files 'queries/**/*.q'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, _ := cmd.Flags().GetString("files")
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			switch {
			case pattern != "" && len(args) > 0:
				return errors.New("give either an expression or --files, not both")
			case pattern != "":
				jobs, _ := cmd.Flags().GetInt("jobs")
				return e.dnfFiles(cmd, p, pattern, jobs)
			case len(args) == 0:
				return errors.New("missing expression (or --files)")
			}

			r, err := e.normalize(args[0])
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(r)
			}
			p.line(r.DNF)
			return nil
		},
	}
	cmd.Flags().String("files", "", "normalize the filter in each file matching a glob (supports **)")
	cmd.Flags().Int("jobs", runtime.GOMAXPROCS(0), "files normalized concurrently")
	return cmd
}

// normalize compiles input and rewrites it into DNF.
func (e *env) normalize(input string) (dnfResult, error) {
	n, err := e.compiler().Compile(input)
	if err != nil {
		return dnfResult{}, err
	}
	dnf, err := e.normalizer().Normalize(n)
	if err != nil {
		return dnfResult{}, err
	}
	return dnfResult{
		Input:   n.String(),
		DNF:     dnf.String(),
		Clauses: predicate.ClauseCount(dnf),
	}, nil
}

func (e *env) dnfFiles(cmd *cobra.Command, p *printer, pattern string, jobs int) error {
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %q", pattern)
	}
	slices.Sort(files)
	e.logger.Debug("normalizing files", "pattern", pattern, "files", len(files), "jobs", jobs)

	results := make([]dnfResult, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(jobs, 1))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file) //nolint:gosec // G304: paths come from the user's glob
			if err != nil {
				return err
			}
			r, err := e.normalize(strings.TrimSpace(string(data)))
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			r.File = file
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if p.isJSON() {
		return p.json(results)
	}
	for _, r := range results {
		p.line(r.File + ": " + r.DNF)
	}
	return nil
}
