package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/procount/internal/remote"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
	DSN  string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference remote authority",
		Long: `Run the HTTP authority that accepts outbox batches from clients.

Batches are applied to a SQLite file or, for a postgres:// DSN, to Postgres.
With PROCOUNT_JWT_SECRET set, every route but /health requires a bearer token
(see "procount token").

Example:
  procount serve --addr :8080 --dsn ./authority.db
  procount serve --dsn postgres://procount@localhost/procount?sslmode=disable`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $PROCOUNT_REMOTE_ADDR)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "authority database (default $PROCOUNT_REMOTE_DSN)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.Config.Remote
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.DSN != "" {
		cfg.DSN = opts.DSN
	}
	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := remote.OpenDB(cfg.DSN)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open authority database", err)
	}
	defer db.Close()

	srv := remote.NewServer(remote.NewRepository(db), []byte(cfg.JWTSecret), remote.WithLogger(opts.Logger))

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil && err != context.Canceled {
		return WrapExitError(ExitFailure, "authority stopped", err)
	}
	opts.Logger.WithField("module", "cli").Info("authority stopped")
	return nil
}
