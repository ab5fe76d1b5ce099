// Package cli implements the querykit command tree.
package cli

import (
	"fmt"
	"log/slog"

	"querykit/internal/config"
	"querykit/internal/home"
	"querykit/internal/logging"
	"querykit/internal/predicate"
	"querykit/internal/querylang"
	"querykit/internal/schema"

	"github.com/spf13/cobra"
)

// Options wires the command tree to the process.
type Options struct {
	// Logger is the base logger. Nil discards output.
	Logger *slog.Logger
	// Levels receives the configured log level. Nil leaves levels alone.
	Levels *logging.ComponentFilterHandler
	// Version is printed by the version command.
	Version string
}

// env is the state shared by the commands once the configuration is loaded.
type env struct {
	logger *slog.Logger
	cfg    *config.Config
	schema *schema.Schema
}

// NewRootCommand returns the "querykit" command with all subcommands wired in.
func NewRootCommand(opts Options) *cobra.Command {
	e := &env{logger: logging.Default(opts.Logger)}

	cmd := &cobra.Command{
		Use:           "querykit",
		Short:         "Normalize and explain record filters",
		Long:          "Compile record filters against the configured columns, rewrite them into disjunctive normal form, and show the sub-queries a conjunctive-only backend would run.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd, opts.Levels)
		},
	}

	cmd.PersistentFlags().String("home", "", "home directory (default: platform config dir)")
	cmd.PersistentFlags().String("config", "", "config file (default: <home>/config.yaml)")
	cmd.PersistentFlags().StringSlice("log-level", nil, "log level debug, info, warn or error, or component=level for one component (default: from config)")
	cmd.PersistentFlags().StringP("output", "o", "text", "output format: text or json")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), opts.Version)
		},
	}

	cmd.AddCommand(
		newDNFCmd(e),
		newExplainCmd(e),
		newColumnsCmd(e),
		newInitCmd(),
		versionCmd,
	)
	return cmd
}

// load reads the configuration and applies the log level.
func (e *env) load(cmd *cobra.Command, levels *logging.ComponentFilterHandler) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	settings, _ := cmd.Flags().GetStringSlice("log-level")
	if levels == nil {
		levels = logging.NewComponentFilterHandler(nil, level)
	}
	levels.SetDefaultLevel(level)
	if err := levels.Apply(settings...); err != nil {
		return err
	}

	s, err := cfg.Schema()
	if err != nil {
		return err
	}
	e.cfg, e.schema = cfg, s
	e.logger.Debug("config loaded", "path", path, "columns", len(cfg.Columns))
	return nil
}

// configPath returns the --config flag, or the config file in the home
// directory.
func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	hd, err := resolveHome(cmd)
	if err != nil {
		return "", err
	}
	return hd.ConfigPath(), nil
}

func resolveHome(cmd *cobra.Command) (home.Dir, error) {
	if h, _ := cmd.Flags().GetString("home"); h != "" {
		return home.New(h), nil
	}
	hd, err := home.Default()
	if err != nil {
		return home.Dir{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return hd, nil
}

func (e *env) compiler() *querylang.Compiler {
	return querylang.NewCompiler(e.schema, e.logger)
}

func (e *env) normalizer() *predicate.Normalizer {
	return e.cfg.Normalizer(e.logger)
}

// outputFormat returns "json" or "text" from the --output flag.
func outputFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("output")
	return f
}
