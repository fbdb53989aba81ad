package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/folio/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	DBPath     string // overrides database.path
	ConfigPath string // explicit config file, skips the user and project layers

	// Config and Logger are set by the root command before any subcommand
	// runs. Commands built on their own fall back to defaults.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the folio CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "folio",
		Short: "folio - outline to bibliographic graph compiler",
		Long: `Compile book outlines into a graph of Works, Expressions and Embodiments.

Headings become Works nested by depth and ordered by sequence; contributor
credits after " || " become creators and [realizers].`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (default from config, folio.db)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: ~/.config/folio/config.yaml and folio.yaml)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTOCCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads configuration and builds the stderr logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	bootstrap := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: o.level(slog.LevelWarn)}))

	cfg, err := config.NewLoader(bootstrap).Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig+": load config", err)
	}
	if o.DBPath != "" {
		cfg.Database.Path = o.DBPath
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig+": log level", err)
	}

	o.Config = cfg
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: o.level(level)}))
	return nil
}

// level lowers base to DEBUG when --verbose is set.
func (o *RootOptions) level(base slog.Level) slog.Level {
	if o.Verbose {
		return slog.LevelDebug
	}
	return base
}

// config returns the loaded configuration, or defaults with the --db
// override when the root command did not run.
func (o *RootOptions) config() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	cfg := config.DefaultConfig()
	if o.DBPath != "" {
		cfg.Database.Path = o.DBPath
	}
	return cfg
}

// logger returns the configured logger, or a discard logger.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
