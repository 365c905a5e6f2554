package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/procount/internal/app"
	"github.com/roach88/procount/internal/store"
	"github.com/roach88/procount/internal/syncer"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Actions string
	Tenant  string
	NoSeed  bool
	Once    bool
}

// RunSummary is printed when the client stops.
type RunSummary struct {
	Dispatched int           `json:"dispatched"`
	Mirrored   int64         `json:"mirrored"`
	Failed     int64         `json:"failed"`
	Sync       syncer.Status `json:"sync"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the offline-first client",
		Long: `Start the client: open the local store, seed the demo catalog on first
use, and keep the outbox flowing to the remote authority.

Actions can be fed from a file of JSON lines, one {"type", "payload"}
document per line. Without PROCOUNT_API_URL the client runs local-only and
the outbox only grows.

Example:
  procount run --db ./shop.db
  procount run --actions ./day.jsonl --tenant c1 --once`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Actions, "actions", "", "dispatch actions from a JSON-lines file")
	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "sync as this tenant instead of the signed-in user's company")
	cmd.Flags().BoolVar(&opts.NoSeed, "no-seed", false, "skip seeding the demo catalog")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "dispatch, flush, attempt one sync and exit")

	return cmd
}

func runClient(opts *RunOptions, cmd *cobra.Command) error {
	log := opts.Logger.WithField("module", "cli")

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	if !opts.NoSeed {
		n, err := st.SeedDefault(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to seed store", err)
		}
		if n > 0 {
			log.WithField("products", n).Info("seeded demo catalog")
		}
	}

	a := app.New(st, app.WithLogger(opts.Logger))
	eng := newEngine(opts.RootOptions, st, a, opts.Tenant)

	dispatched := 0
	if opts.Actions != "" {
		if dispatched, err = dispatchFile(a, opts.Actions, log); err != nil {
			_ = a.Close()
			return err
		}
	}

	if opts.Once {
		// Close only after the sync so the failure hook dispatches into an
		// open app.
		if err := a.Flush(ctx); err != nil {
			_ = a.Close()
			return WrapExitError(ExitFailure, "failed to persist changes", err)
		}
		res, syncErr := eng.SyncNow(ctx)
		log.WithField("outcome", res.Outcome.String()).Info("sync attempted")
		if err := a.Close(); err != nil {
			return WrapExitError(ExitFailure, "failed to persist changes", err)
		}
		if err := printSummary(opts.RootOptions, cmd, a, eng, dispatched); err != nil {
			return err
		}
		if syncErr != nil {
			return WrapExitError(ExitFailure, "sync failed", syncErr)
		}
		return nil
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.WithField("signal", sig.String()).Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	if opts.Format != "json" {
		mode := "syncing to " + opts.Config.Sync.APIURL
		if eng.LocalOnly() {
			mode = "local-only"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Client started (%s).\n", mode)
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("mirror stopped")
		}
	}()
	go func() {
		defer wg.Done()
		if err := eng.Run(ctx); err != nil {
			log.WithError(err).Error("sync engine stopped")
		}
	}()
	wg.Wait()

	closeErr := a.Close()
	log.Info("client stopped")
	if err := printSummary(opts.RootOptions, cmd, a, eng, dispatched); err != nil {
		return err
	}
	if closeErr != nil {
		return WrapExitError(ExitFailure, "failed to persist changes", closeErr)
	}
	return nil
}

// newEngine wires the sync engine for the configured authority. A blank API
// URL leaves the transport nil, which the engine treats as local-only.
func newEngine(opts *RootOptions, st *store.Store, a *app.App, tenant string) *syncer.Engine {
	var transport syncer.Transport
	if !opts.Config.Sync.LocalOnly() {
		transport = syncer.NewHTTPTransport(opts.Config.Sync.APIURL, opts.Config.Sync.APIToken, opts.Config.Sync.HTTPTimeout)
	}

	var session syncer.SessionProvider = syncer.StaticSession(tenant)
	syncOpts := []syncer.Option{
		syncer.WithInterval(opts.Config.Sync.Interval),
		syncer.WithProbeInterval(opts.Config.Sync.ProbeInterval),
		syncer.WithLogger(opts.Logger),
	}
	if a != nil {
		if tenant == "" {
			session = a
		}
		syncOpts = append(syncOpts, syncer.WithFailureHook(a.NotifySyncFailure))
	}
	return syncer.New(st, transport, session, syncOpts...)
}

// dispatchFile dispatches every non-blank line of path as a JSON action.
func dispatchFile(a *app.App, path string, log *logrus.Entry) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "failed to open actions file", err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		if _, err := a.DispatchJSON(b); err != nil {
			return n, WrapExitError(ExitCommandError, fmt.Sprintf("%s:%d", path, line), err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, WrapExitError(ExitCommandError, "failed to read actions file", err)
	}
	log.WithField("actions", n).Debug("actions dispatched")
	return n, nil
}

func printSummary(opts *RootOptions, cmd *cobra.Command, a *app.App, eng *syncer.Engine, dispatched int) error {
	mirrored, failed := a.Stats()
	summary := RunSummary{
		Dispatched: dispatched,
		Mirrored:   mirrored,
		Failed:     failed,
		Sync:       eng.Status(context.Background()),
	}

	text := fmt.Sprintf("Dispatched %d actions, mirrored %d jobs (%d failed).\nOutbox: %d pending\n",
		dispatched, mirrored, failed, summary.Sync.QueueSize)
	if summary.Sync.LastError != "" {
		text += fmt.Sprintf("Last sync error: %s\n", summary.Sync.LastError)
	}
	return opts.formatter(cmd).Text(summary, text)
}
