package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/procount/internal/syncer"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Tenant string
}

// SyncReport is the outcome of a one-shot sync.
type SyncReport struct {
	Outcome string        `json:"outcome"`
	Sent    int           `json:"sent"`
	Status  syncer.Status `json:"status"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push the outbox once",
		Long: `Send every pending outbox operation to the remote authority as one batch
for the given tenant, and remove them from the outbox once accepted.

A skipped attempt (local-only, empty queue, no tenant) is not an error.

Example:
  procount sync --tenant c1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant (company id) to sync as")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	ctx := commandContext(cmd)
	eng := newEngine(opts.RootOptions, st, nil, opts.Tenant)
	res, syncErr := eng.SyncNow(ctx)

	report := SyncReport{
		Outcome: res.Outcome.String(),
		Sent:    res.Sent,
		Status:  eng.Status(ctx),
	}
	text := fmt.Sprintf("Sync %s: %d sent, %d pending.\n", report.Outcome, report.Sent, report.Status.QueueSize)
	if err := opts.formatter(cmd).Text(report, text); err != nil {
		return err
	}
	if syncErr != nil {
		return WrapExitError(ExitFailure, "sync failed", syncErr)
	}
	return nil
}
