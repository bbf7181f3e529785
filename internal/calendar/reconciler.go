package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
)

// EventStore is the local side of reconciliation.
type EventStore interface {
	Events() []model.CalendarEvent
	UpdateEvents(fn func([]model.CalendarEvent) []model.CalendarEvent) int
	ReplaceEventID(oldID, newID string) bool
	AutoSync() bool
}

// SyncResult summarizes one pull.
type SyncResult struct {
	Fetched  int
	Added    int
	Rejected int
}

// Status describes the reconciler for display.
type Status struct {
	Provider  string
	Connected bool
	Running   bool
	LastSync  time.Time
	LastError string
}

// Reconciler pulls provider events into the store and pushes local events
// out. At most one sync or push runs at a time.
type Reconciler struct {
	store EventStore
	loc   *time.Location

	mu       sync.Mutex
	provider Provider
	running  bool
	lastSync time.Time
	lastErr  error
}

// NewReconciler creates a reconciler. provider may be nil until connected.
func NewReconciler(store EventStore, provider Provider, loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.Local
	}
	return &Reconciler{store: store, provider: provider, loc: loc}
}

// SetProvider swaps the provider, e.g. after connect or disconnect.
func (r *Reconciler) SetProvider(p Provider) {
	r.mu.Lock()
	r.provider = p
	r.mu.Unlock()
}

// Provider returns the current provider, or nil.
func (r *Reconciler) Provider() Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.provider
}

func (r *Reconciler) acquire() (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, ErrSyncInProgress
	}
	if r.provider == nil || !r.provider.IsConnected() {
		return nil, ErrNotConnected
	}
	r.running = true
	return r.provider, nil
}

func (r *Reconciler) release(err error, synced bool) {
	r.mu.Lock()
	r.running = false
	r.lastErr = err
	if synced && err == nil {
		r.lastSync = time.Now()
	}
	r.mu.Unlock()
}

// Sync fetches provider events between now and one month ahead and merges
// them into the store.
func (r *Reconciler) Sync(ctx context.Context, now time.Time) (SyncResult, error) {
	p, err := r.acquire()
	if err != nil {
		return SyncResult{}, err
	}

	res, err := r.pull(ctx, p, now)
	r.release(err, true)
	if err != nil {
		logger.Warn("Calendar sync failed", logger.F("provider", p.Name()), logger.Err(err))
		return res, err
	}
	logger.Info("Calendar synced",
		logger.F("provider", p.Name()),
		logger.F("fetched", res.Fetched),
		logger.F("added", res.Added),
		logger.F("rejected", res.Rejected),
	)
	return res, nil
}

func (r *Reconciler) pull(ctx context.Context, p Provider, now time.Time) (SyncResult, error) {
	remote, err := p.ListEvents(ctx, now, now.AddDate(0, 1, 0))
	if err != nil {
		return SyncResult{}, fmt.Errorf("list events: %w", err)
	}

	res := SyncResult{Fetched: len(remote)}
	converted := make([]model.CalendarEvent, 0, len(remote))
	for _, pe := range remote {
		e, err := FromProviderEvent(pe, r.loc)
		if err != nil {
			res.Rejected++
			logger.Debug("Skipping provider event", logger.Err(err))
			continue
		}
		converted = append(converted, e)
	}

	res.Added = r.store.UpdateEvents(func(local []model.CalendarEvent) []model.CalendarEvent {
		return MergeRemote(local, converted)
	})
	return res, nil
}

// PushLocalEvent sends a newly created local event to the provider when one
// is connected and auto-sync is on. It returns the provider id, or "" when
// the push was skipped. A failed push leaves the local event untouched.
func (r *Reconciler) PushLocalEvent(ctx context.Context, e model.CalendarEvent) (string, error) {
	if !r.store.AutoSync() {
		return "", nil
	}
	if p := r.Provider(); p == nil || !p.IsConnected() {
		return "", nil
	}
	return r.Push(ctx, e)
}

// Push creates e at the provider and rewrites the local id to the one the
// provider assigned. It returns the provider id.
func (r *Reconciler) Push(ctx context.Context, e model.CalendarEvent) (string, error) {
	p, err := r.acquire()
	if err != nil {
		return "", err
	}

	id, err := r.push(ctx, p, e)
	r.release(err, false)
	if err != nil {
		logger.Warn("Calendar push failed", logger.F("event", e.ID), logger.Err(err))
		return "", err
	}
	return id, nil
}

func (r *Reconciler) push(ctx context.Context, p Provider, e model.CalendarEvent) (string, error) {
	pe, err := ToProviderEvent(e, r.loc)
	if err != nil {
		return "", err
	}
	created, err := p.CreateEvent(ctx, pe)
	if err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("provider returned an event without id")
	}
	if !r.store.ReplaceEventID(e.ID, created.ID) {
		logger.Warn("Could not adopt provider event id",
			logger.F("local", e.ID),
			logger.F("remote", created.ID),
		)
	}
	logger.Info("Event pushed", logger.F("provider", p.Name()), logger.F("id", created.ID))
	return created.ID, nil
}

// Status returns the current provider and sync state.
func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Status{Running: r.running, LastSync: r.lastSync}
	if r.provider != nil {
		st.Provider = r.provider.Name()
		st.Connected = r.provider.IsConnected()
	}
	if r.lastErr != nil {
		st.LastError = r.lastErr.Error()
	}
	return st
}
