package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/procount/internal/domain"
)

// Default timings.
const (
	DefaultInterval      = 60 * time.Second
	DefaultProbeInterval = 10 * time.Second
)

// Outbox is the slice of the local store the engine drains.
type Outbox interface {
	PendingOperations(ctx context.Context) ([]domain.PendingOperation, error)
	PendingCount(ctx context.Context) (int, error)
	Acknowledge(ctx context.Context, ops []domain.PendingOperation) error
}

// SessionProvider supplies the tenant a batch is sent for.
type SessionProvider interface {
	TenantID() (string, bool)
}

// StaticSession is a SessionProvider with a fixed tenant.
type StaticSession string

func (s StaticSession) TenantID() (string, bool) { return string(s), s != "" }

// Outcome is what a sync attempt did.
type Outcome int

const (
	OutcomeSynced Outcome = iota + 1
	OutcomeFailed
	OutcomeSkippedLocalOnly
	OutcomeSkippedOffline
	OutcomeSkippedInProgress
	OutcomeSkippedEmpty
	OutcomeSkippedNoTenant
)

var outcomeNames = map[Outcome]string{
	OutcomeSynced:            "synced",
	OutcomeFailed:            "failed",
	OutcomeSkippedLocalOnly:  "skipped: local-only",
	OutcomeSkippedOffline:    "skipped: offline",
	OutcomeSkippedInProgress: "skipped: sync in progress",
	OutcomeSkippedEmpty:      "skipped: queue empty",
	OutcomeSkippedNoTenant:   "skipped: no tenant",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Result reports one sync attempt.
type Result struct {
	Outcome Outcome
	Sent    int
}

// Status is the engine state exposed to other layers.
type Status struct {
	Online      bool       `json:"online"`
	Syncing     bool       `json:"syncing"`
	LocalOnly   bool       `json:"localOnly"`
	QueueSize   int        `json:"queueSize"`
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

// Engine drains the outbox to the remote authority.
//
// At most one attempt is in flight at a time. A trigger that arrives while an
// attempt is running returns OutcomeSkippedInProgress; it is not queued. A
// failed attempt leaves the outbox exactly as it was, so the next trigger
// resends the same operations in the same order.
//
// Thread-safety: SyncNow, SetOnline and Status may be called from any goroutine.
type Engine struct {
	outbox    Outbox
	transport Transport
	probe     ConnectivityProbe
	session   SessionProvider
	log       *logrus.Entry
	clock     domain.Clock
	onFailure func(error)

	interval      time.Duration
	probeInterval time.Duration

	online  atomic.Bool
	syncing atomic.Bool

	mu          sync.Mutex
	lastSuccess *time.Time
	lastError   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the periodic retry interval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithProbeInterval sets how often connectivity is probed.
func WithProbeInterval(d time.Duration) Option {
	return func(e *Engine) { e.probeInterval = d }
}

// WithProbe overrides the connectivity probe. By default the transport is
// used when it implements ConnectivityProbe.
func WithProbe(p ConnectivityProbe) Option {
	return func(e *Engine) { e.probe = p }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.log = l.WithField("module", "syncer") }
}

// WithClock sets the clock used for completion times.
func WithClock(c domain.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithFailureHook registers fn to be called after every failed attempt.
func WithFailureHook(fn func(error)) Option {
	return func(e *Engine) { e.onFailure = fn }
}

// New creates an engine. A nil transport puts the engine in local-only
// mode: every attempt is skipped and the outbox is left to grow.
func New(outbox Outbox, transport Transport, session SessionProvider, opts ...Option) *Engine {
	e := &Engine{
		outbox:        outbox,
		transport:     transport,
		session:       session,
		log:           logrus.StandardLogger().WithField("module", "syncer"),
		clock:         domain.SystemClock{},
		interval:      DefaultInterval,
		probeInterval: DefaultProbeInterval,
	}
	if p, ok := transport.(ConnectivityProbe); ok {
		e.probe = p
	}
	for _, opt := range opts {
		opt(e)
	}
	e.online.Store(true)
	return e
}

// LocalOnly reports whether no remote authority is configured.
func (e *Engine) LocalOnly() bool {
	return e.transport == nil
}

// SyncNow runs one attempt.
//
// Skips return a nil error. A failed push or acknowledgement returns the
// error and OutcomeFailed; the outbox is unchanged.
func (e *Engine) SyncNow(ctx context.Context) (Result, error) {
	if e.transport == nil {
		return Result{Outcome: OutcomeSkippedLocalOnly}, nil
	}
	if !e.online.Load() {
		return Result{Outcome: OutcomeSkippedOffline}, nil
	}
	if !e.syncing.CompareAndSwap(false, true) {
		return Result{Outcome: OutcomeSkippedInProgress}, nil
	}
	defer e.syncing.Store(false)

	ops, err := e.outbox.PendingOperations(ctx)
	if err != nil {
		return e.failed(newStorageError("read outbox", err), 0)
	}
	if len(ops) == 0 {
		return Result{Outcome: OutcomeSkippedEmpty}, nil
	}

	var tenant string
	if e.session != nil {
		tenant, _ = e.session.TenantID()
	}
	if tenant == "" {
		e.log.WithField("queue_size", len(ops)).Debug("no tenant in session, sync deferred")
		return Result{Outcome: OutcomeSkippedNoTenant}, nil
	}

	log := e.log.WithFields(logrus.Fields{"tenant_id": tenant, "queue_size": len(ops)})
	log.Debug("pushing outbox")

	if err := e.transport.Push(ctx, Batch{TenantID: tenant, Changes: ops}); err != nil {
		return e.failed(err, len(ops))
	}
	if err := e.outbox.Acknowledge(ctx, ops); err != nil {
		// The authority has the batch; it will be resent and must be applied idempotently.
		return e.failed(newStorageError("acknowledge outbox", err), len(ops))
	}

	now := e.clock.Now()
	e.mu.Lock()
	e.lastSuccess = &now
	e.lastError = ""
	e.mu.Unlock()

	log.Info("sync complete")
	return Result{Outcome: OutcomeSynced, Sent: len(ops)}, nil
}

func (e *Engine) failed(err error, batch int) (Result, error) {
	e.mu.Lock()
	e.lastError = err.Error()
	e.mu.Unlock()

	e.log.WithError(err).WithField("queue_size", batch).Warn("sync failed")
	if e.onFailure != nil {
		e.onFailure(err)
	}
	return Result{Outcome: OutcomeFailed}, err
}

// SetOnline records a connectivity observation. An offline to online
// transition triggers an attempt.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	was := e.online.Swap(online)
	if was == online {
		return
	}
	e.log.WithField("online", online).Info("connectivity changed")
	if online {
		_, _ = e.SyncNow(ctx)
	}
}

// Status returns a snapshot of the engine state. QueueSize is read from the
// outbox; a read failure leaves it at zero and is logged.
func (e *Engine) Status(ctx context.Context) Status {
	n, err := e.outbox.PendingCount(ctx)
	if err != nil {
		e.log.WithError(err).Warn("failed to count outbox")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Online:      e.online.Load(),
		Syncing:     e.syncing.Load(),
		LocalOnly:   e.transport == nil,
		QueueSize:   n,
		LastSuccess: e.lastSuccess,
		LastError:   e.lastError,
	}
}

// Run probes connectivity and retries on a timer until ctx is cancelled.
//
// In local-only mode Run only waits for cancellation.
func (e *Engine) Run(ctx context.Context) error {
	if e.transport == nil {
		e.log.Info("no remote authority configured, running local-only")
		<-ctx.Done()
		return nil
	}

	e.checkConnectivity(ctx)
	if _, err := e.SyncNow(ctx); err != nil {
		e.log.WithError(err).Debug("initial sync failed")
	}

	retry := time.NewTicker(e.interval)
	defer retry.Stop()

	var probeC <-chan time.Time
	if e.probe != nil {
		probe := time.NewTicker(e.probeInterval)
		defer probe.Stop()
		probeC = probe.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-probeC:
			e.checkConnectivity(ctx)
		case <-retry.C:
			_, _ = e.SyncNow(ctx)
		}
	}
}

func (e *Engine) checkConnectivity(ctx context.Context) {
	if e.probe == nil {
		return
	}
	e.SetOnline(ctx, e.probe.Online(ctx))
}
