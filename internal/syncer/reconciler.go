package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Outcome describes what a reconciliation attempt did.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomePulled  Outcome = "pulled"
	OutcomePushed  Outcome = "pushed"
	OutcomeNoop    Outcome = "noop"
	OutcomeFailed  Outcome = "failed"
)

// Remote is the backend side of a reconciliation.
type Remote interface {
	Enabled() bool
	FetchFull(ctx context.Context) (checklist.Snapshot, error)
	PushFull(ctx context.Context, snap checklist.Snapshot) error
}

// LocalLists reads and wholesale-replaces the local lists and entries.
type LocalLists interface {
	GetAll(ctx context.Context) ([]checklist.List, error)
	ReplaceAllListsAndEntries(ctx context.Context, snap checklist.Snapshot) error
}

// LocalEntries reads the local entries.
type LocalEntries interface {
	GetAll(ctx context.Context) ([]checklist.Entry, error)
}

// OnlineChecker reports whether the network is believed to be reachable.
type OnlineChecker interface {
	Online(ctx context.Context) bool
}

// AlwaysOnline never reports the client as offline.
type AlwaysOnline struct{}

// Online implements OnlineChecker.
func (AlwaysOnline) Online(context.Context) bool { return true }

// Policy decides what happens to a failed reconciliation at a call site.
type Policy int

const (
	// PolicyIgnore drops the error silently.
	PolicyIgnore Policy = iota
	// PolicyLog logs the error and drops it.
	PolicyLog
	// PolicySurface returns the error to the caller.
	PolicySurface
)

// Reconciler runs whole-dataset syncs between the local store and Remote.
type Reconciler struct {
	remote  Remote
	lists   LocalLists
	entries LocalEntries
	online  OnlineChecker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithOnlineChecker sets the connectivity check. Defaults to AlwaysOnline.
func WithOnlineChecker(c OnlineChecker) Option {
	return func(r *Reconciler) { r.online = c }
}

// WithMetrics records sync attempts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(remote Remote, lists LocalLists, entries LocalEntries, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:  remote,
		lists:   lists,
		entries: entries,
		online:  AlwaysOnline{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TrySyncOnce performs one reconciliation. When the local store has no lists
// and the remote has some, local data is replaced by the remote copy. When the
// local store has lists, they replace whatever the remote holds.
func (r *Reconciler) TrySyncOnce(ctx context.Context) (Outcome, error) {
	if r.remote == nil || !r.remote.Enabled() {
		return OutcomeSkipped, nil
	}
	if r.online != nil && !r.online.Online(ctx) {
		return OutcomeSkipped, nil
	}

	var (
		remote       checklist.Snapshot
		localLists   []checklist.List
		localEntries []checklist.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		remote, err = r.remote.FetchFull(gctx)
		if err != nil {
			return fmt.Errorf("fetching remote snapshot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		localLists, err = r.lists.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("loading local lists: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		localEntries, err = r.entries.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("loading local entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return OutcomeFailed, err
	}

	hasLocal := len(localLists) > 0
	hasRemote := !remote.Empty()

	if !hasLocal && hasRemote {
		if err := r.lists.ReplaceAllListsAndEntries(ctx, remote); err != nil {
			return OutcomeFailed, fmt.Errorf("storing remote snapshot: %w", err)
		}
		r.logger.Info("pulled remote data", "lists", len(remote.Lists), "entries", len(remote.Entries))
		return OutcomePulled, nil
	}

	if hasLocal {
		snap := checklist.Snapshot{Lists: localLists, Entries: localEntries}
		if err := r.remote.PushFull(ctx, snap); err != nil {
			return OutcomeFailed, fmt.Errorf("pushing local snapshot: %w", err)
		}
		r.logger.Debug("pushed local data", "lists", len(localLists), "entries", len(localEntries))
		return OutcomePushed, nil
	}

	return OutcomeNoop, nil
}

// Run performs TrySyncOnce and applies policy to a failure. Only
// PolicySurface returns an error.
func (r *Reconciler) Run(ctx context.Context, policy Policy) (Outcome, error) {
	outcome, err := r.TrySyncOnce(ctx)
	r.metrics.SyncAttempt(string(outcome))
	if err == nil {
		return outcome, nil
	}

	switch policy {
	case PolicySurface:
		return outcome, err
	case PolicyLog:
		if errors.Is(err, context.Canceled) {
			r.logger.Debug("sync cancelled")
		} else {
			r.logger.Warn("sync failed", "error", err)
		}
	}
	return outcome, nil
}
