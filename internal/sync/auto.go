package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/robfig/cron/v3"
)

// Syncer is the part of the reconciler AutoSync drives.
type Syncer interface {
	Sync(ctx context.Context, now time.Time) (calendar.SyncResult, error)
}

// AutoSync runs calendar pulls on a cron schedule and shortly after local
// changes.
type AutoSync struct {
	syncer       Syncer
	schedule     string
	debounceTime time.Duration
	enabled      func() bool

	cron    *cron.Cron
	pending bool
	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
	onPull  func(calendar.SyncResult) // called when a pull added events
	onSync  func(time.Time)           // called after every successful pull
}

// NewAutoSync creates an auto-sync manager. enabled gates every run; nil
// means always on.
func NewAutoSync(syncer Syncer, schedule string, enabled func() bool) *AutoSync {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &AutoSync{
		syncer:       syncer,
		schedule:     schedule,
		debounceTime: 5 * time.Second, // Wait 5s after last change before syncing
		enabled:      enabled,
		stopCh:       make(chan struct{}),
	}
}

// SetDebounce overrides the delay used by TriggerSync.
func (a *AutoSync) SetDebounce(d time.Duration) {
	a.mu.Lock()
	a.debounceTime = d
	a.mu.Unlock()
}

// SetOnPull sets a callback invoked when a pull added events
func (a *AutoSync) SetOnPull(callback func(calendar.SyncResult)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onPull = callback
}

// SetOnSync sets a callback invoked after every successful pull
func (a *AutoSync) SetOnSync(callback func(time.Time)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSync = callback
}

// Start validates the schedule and starts the cron runner.
func (a *AutoSync) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(a.schedule, a.run); err != nil {
		return err
	}
	a.mu.Lock()
	a.cron = c
	a.mu.Unlock()
	c.Start()
	logger.Info("Calendar auto-sync started", logger.F("schedule", a.schedule))
	return nil
}

func (a *AutoSync) run() {
	if !a.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	a.SyncNow(ctx)
}

// SyncNow pulls immediately. Skipped runs (already in progress, no
// provider) are not errors.
func (a *AutoSync) SyncNow(ctx context.Context) (calendar.SyncResult, error) {
	now := time.Now()
	result, err := a.syncer.Sync(ctx, now)
	switch {
	case errors.Is(err, calendar.ErrSyncInProgress), errors.Is(err, calendar.ErrNotConnected):
		logger.Debug("Auto-sync skipped", logger.Err(err))
		return result, nil
	case err != nil:
		return result, err
	}

	a.mu.Lock()
	onPull, onSync := a.onPull, a.onSync
	a.mu.Unlock()

	if onSync != nil {
		onSync(now)
	}
	if result.Added > 0 && onPull != nil {
		onPull(result)
	}
	return result, nil
}

// TriggerSync marks that a sync is needed (debounced)
func (a *AutoSync) TriggerSync() {
	if !a.enabled() {
		return
	}

	a.mu.Lock()
	if !a.pending && !a.stopped {
		a.pending = true
		go a.debouncedSync(a.debounceTime)
	}
	a.mu.Unlock()
}

func (a *AutoSync) debouncedSync(wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		a.mu.Lock()
		a.pending = false
		a.mu.Unlock()
		a.run()
	case <-a.stopCh:
		return
	}
}

// IsPending returns true if a debounced sync is scheduled
func (a *AutoSync) IsPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Stop stops the cron runner and any pending debounced sync.
func (a *AutoSync) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	c := a.cron
	a.mu.Unlock()

	close(a.stopCh)
	if c != nil {
		<-c.Stop().Done()
	}
}
