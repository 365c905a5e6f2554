package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/reducer"
	"github.com/roach88/procount/internal/store"
)

// SyncFailedMessage is the notification key shown when a sync attempt fails.
const SyncFailedMessage = "sync.failed"

// App owns the current State and keeps the store in step with it.
//
// Dispatch is serialized: each action is reduced against the state left by
// the previous one. The store writes a dispatch implies are queued and applied
// in order by Run on a single goroutine, so the caller never waits on disk.
//
// Thread-safety: Dispatch, State and TenantID may be called from any goroutine.
type App struct {
	mu      sync.Mutex
	state   *reducer.State
	reducer *reducer.Reducer

	store *store.Store
	queue *jobQueue
	runMu sync.Mutex // held while the mirror loop owns the queue
	log   *logrus.Entry

	mirrored atomic.Int64
	failed   atomic.Int64
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(a *App) { a.log = l.WithField("module", "app") }
}

// WithReducer overrides the reducer, typically to inject ids and a clock.
func WithReducer(r *reducer.Reducer) Option {
	return func(a *App) { a.reducer = r }
}

// WithState sets the initial state. Nothing is written for it.
func WithState(s *reducer.State) Option {
	return func(a *App) { a.state = s }
}

// New creates an App mirroring into s. The store stays owned by the caller.
func New(s *store.Store, opts ...Option) *App {
	a := &App{
		state: reducer.NewState(),
		store: s,
		queue: newJobQueue(),
		log:   logrus.StandardLogger().WithField("module", "app"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.reducer == nil {
		a.reducer = reducer.New(nil, nil)
	}
	return a
}

// State returns the current state. Callers must treat it as read-only.
func (a *App) State() *reducer.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Dispatch reduces act against the current state and queues its store writes.
// It returns the new state, which is the old one when act changed nothing.
func (a *App) Dispatch(act reducer.Action) *reducer.State {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.state
	next := a.reducer.Reduce(prev, act)
	if next == prev {
		return next
	}
	a.state = next

	changes := diff(prev, next)
	if len(changes) == 0 {
		return next
	}
	if !a.queue.Enqueue(mirrorJob{action: string(act.Kind()), changes: changes}) {
		a.log.WithField("action", act.Kind()).Warn("mirror closed, changes not persisted")
	}
	return next
}

// DispatchEnvelope decodes a wire action and dispatches it. Unknown kinds are
// dispatched as Unrecognized and change nothing.
func (a *App) DispatchEnvelope(env reducer.Envelope) (*reducer.State, error) {
	act, err := reducer.Decode(env.Type, env.Payload)
	if err != nil {
		return a.State(), err
	}
	return a.Dispatch(act), nil
}

// DispatchJSON is DispatchEnvelope for a raw {type, payload} document.
func (a *App) DispatchJSON(b []byte) (*reducer.State, error) {
	var env reducer.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return a.State(), fmt.Errorf("dispatch: %w", err)
	}
	return a.DispatchEnvelope(env)
}

// TenantID implements syncer.SessionProvider with the signed-in user's company.
func (a *App) TenantID() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := a.state.CurrentUser
	if u == nil || u.CompanyID == "" {
		return "", false
	}
	return u.CompanyID, true
}

// NotifySyncFailure surfaces a failed sync attempt as an error notification.
// It is meant to be passed to syncer.WithFailureHook.
func (a *App) NotifySyncFailure(err error) {
	if err == nil {
		return
	}
	a.Dispatch(reducer.AddNotification{Notification: domain.Notification{
		Type:    domain.NotifyError,
		Message: SyncFailedMessage,
		Params:  map[string]string{"error": err.Error()},
	}})
}

// Run applies queued store writes until ctx is cancelled or Close is called.
// Jobs still queued when ctx is cancelled are written by Close.
func (a *App) Run(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	a.log.Debug("mirror started")
	for {
		a.drain(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-a.queue.Wait():
			if !ok {
				a.drain(ctx)
				return nil
			}
		}
	}
}

// Flush applies every job queued so far and keeps the App open. It waits
// for a running Run loop to return, so it is meant for callers that mirror
// without one.
func (a *App) Flush(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	a.drain(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := a.failed.Load(); n > 0 {
		return fmt.Errorf("flush: %d mirror jobs failed", n)
	}
	return nil
}

// Close stops accepting store writes and returns once every queued job has
// been applied.
func (a *App) Close() error {
	a.queue.Close()

	// Wait for Run to finish its own drain, then write whatever is left.
	a.runMu.Lock()
	defer a.runMu.Unlock()
	a.drain(context.Background())

	if n := a.failed.Load(); n > 0 {
		return fmt.Errorf("close: %d mirror jobs failed", n)
	}
	return nil
}

// Pending returns the number of jobs waiting to be written.
func (a *App) Pending() int {
	return a.queue.Len()
}

// Stats reports how many jobs were written and how many failed.
func (a *App) Stats() (mirrored, failed int64) {
	return a.mirrored.Load(), a.failed.Load()
}

func (a *App) drain(ctx context.Context) {
	for ctx.Err() == nil {
		j, ok := a.queue.TryDequeue()
		if !ok {
			return
		}
		log := a.log.WithFields(logrus.Fields{"action": j.action, "changes": len(j.changes)})
		if err := apply(ctx, a.store, log, j); err != nil {
			a.failed.Add(1)
			log.WithError(err).Error("mirror write failed")
			continue
		}
		a.mirrored.Add(1)
		log.Debug("mirrored")
	}
}
