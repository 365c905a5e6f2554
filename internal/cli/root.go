package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/procount/internal/config"
	"github.com/roach88/procount/internal/store"
)

// RootOptions holds global flags for all commands, and the configuration and
// logger they resolve to once the command line has been parsed.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string // overrides PROCOUNT_DB_PATH
	EnvFile string // explicit .env file

	Config *config.Config
	Logger *logrus.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the procount CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "procount",
		Short: "procount - offline-first retail back office",
		Long: `procount keeps a retail tenant's books, stock and staff records in a
local store, and replicates every change to a remote authority through a
durable outbox whenever a connection is available.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the local SQLite store (default $PROCOUNT_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env", "", "load configuration from this .env file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewOutboxCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// Execute runs cmd and returns the process exit code. A failure is written
// to stdout as an error response with --format json, and to stderr
// otherwise.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	format, _ := cmd.PersistentFlags().GetString("format")
	f := &OutputFormatter{Format: format, Writer: cmd.ErrOrStderr()}
	if format == "json" {
		f.Writer = cmd.OutOrStdout()
	}
	_ = f.Error(err)
	return GetExitCode(err)
}

// resolve loads configuration and builds the logger. Logs go to the
// command's error stream so JSON output on stdout stays parseable.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	var cfg *config.Config
	if o.EnvFile != "" {
		var err error
		if cfg, err = config.LoadFile(o.EnvFile); err != nil {
			return WrapExitError(ExitCommandError, "failed to load env file", err)
		}
	} else {
		cfg = config.Load()
	}
	if o.DBPath != "" {
		cfg.Store.Path = o.DBPath
	}

	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	logger, err := config.NewLogger(level, cfg.Log.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log configuration", err)
	}
	logger.SetOutput(cmd.ErrOrStderr())

	o.Config = cfg
	o.Logger = logger
	return nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// openStore opens the configured local store.
func (o *RootOptions) openStore() (*store.Store, error) {
	st, err := store.Open(o.Config.Store.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	o.Logger.WithField("path", o.Config.Store.Path).Debug("store opened")
	return st, nil
}

// closeStore closes st, logging rather than returning a failure.
func (o *RootOptions) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		config.LogError(o.Logger, "cli", "close store", o.Config.Store.Path, err)
	}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
