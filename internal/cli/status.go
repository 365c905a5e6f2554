package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/store"
)

// StoreStatus summarizes the local store.
type StoreStatus struct {
	Path      string         `json:"path"`
	LocalOnly bool           `json:"localOnly"`
	Pending   int            `json:"pending"`
	Tables    map[string]int `json:"tables"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show record counts and outbox size",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	status := StoreStatus{
		Path:      opts.Config.Store.Path,
		LocalOnly: opts.Config.Sync.LocalOnly(),
		Tables:    make(map[string]int),
	}
	if status.Pending, err = st.PendingCount(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to count outbox", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Store: %s\n", status.Path)
	if status.LocalOnly {
		b.WriteString("Mode: local-only\n")
	} else {
		fmt.Fprintf(&b, "Mode: syncing to %s\n", opts.Config.Sync.APIURL)
	}
	fmt.Fprintf(&b, "Outbox: %d pending\n", status.Pending)
	for _, t := range store.Tables() {
		n, err := st.Count(ctx, t)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to count %s", t), err)
		}
		status.Tables[string(t)] = n
		fmt.Fprintf(&b, "  %-16s %d\n", t, n)
	}
	return opts.formatter(cmd).Text(status, b.String())
}

// NewOutboxCommand creates the outbox command.
func NewOutboxCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outbox",
		Short: "List pending outbox operations",
		Long: `List the operations waiting to be sent to the remote authority, oldest
first, in the order they will be sent.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutbox(rootOpts, cmd)
		},
	}
}

func runOutbox(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	ops, err := st.PendingOperations(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read outbox", err)
	}
	if ops == nil {
		ops = []domain.PendingOperation{}
	}

	var b strings.Builder
	if len(ops) == 0 {
		b.WriteString("Outbox is empty.\n")
	}
	for _, op := range ops {
		fmt.Fprintf(&b, "%6d  %-6s %-14s %s\n", op.ID, op.ActionType, op.DataType, op.EntityID)
	}
	return opts.formatter(cmd).Text(ops, b.String())
}
