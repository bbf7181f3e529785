// Package app wires storage, the state store, reminders and calendar sync
// into one running instance shared by the CLI, the TUI and the server.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/config"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/reminder"
	"github.com/existflow/focusboard/internal/storage"
	"github.com/existflow/focusboard/internal/store"
	"github.com/existflow/focusboard/internal/sync"
)

// Options tune Open.
type Options struct {
	// Passphrase unlocks a stored Google token.
	Passphrase string
	// CalendarPath overrides ~/.focusboard/calendar.json.
	CalendarPath string
	// Adapter bypasses the configured storage backend (tests, demo server).
	Adapter storage.Adapter
	// Provider bypasses the stored calendar connection.
	Provider calendar.Provider
	// SaveDelay overrides the debounced save delay.
	SaveDelay time.Duration
}

// App is one running instance.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Saver      *storage.Saver
	Calendar   *sync.Client
	Reconciler *calendar.Reconciler
	AutoSync   *sync.AutoSync

	adapter     storage.Adapter
	backend     *storage.Backend
	unsubscribe func()
	cancel      context.CancelFunc
	eventIDs    atomic.Value // string key of the last seen event ids
}

// Open loads persisted data and builds the components. Storage and
// calendar failures degrade to defaults with a logged error.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	a.adapter = opts.Adapter
	if a.adapter == nil {
		backend, err := storage.Open(ctx, cfg)
		if err != nil {
			logger.Error("No storage backend available, changes will not persist", logger.Err(err))
			a.adapter = storage.NewMemory()
		} else {
			a.backend = backend
			a.adapter = backend
		}
	}

	data, err := storage.LoadOrDefault(ctx, a.adapter)
	if err != nil {
		logger.Error("Failed to load data, starting with defaults", logger.Err(err))
	}
	loc := cfg.Location()
	a.Store = store.New(data, store.WithClock(func() time.Time { return time.Now().In(loc) }))
	a.Saver = storage.NewSaver(a.adapter, a.Store.Snapshot, opts.SaveDelay)

	calPath := opts.CalendarPath
	if calPath == "" {
		calPath = sync.DefaultPath()
	}
	client, err := sync.NewClient(calPath)
	if err != nil {
		logger.Error("Failed to load calendar connection, continuing without a calendar",
			logger.F("path", calPath), logger.Err(err))
		client = sync.NewDisconnectedClient(calPath)
	}
	a.Calendar = client

	provider := opts.Provider
	if provider == nil {
		provider = a.buildProvider(opts.Passphrase)
	}
	a.Reconciler = calendar.NewReconciler(a.Store, provider, loc)
	a.AutoSync = sync.NewAutoSync(a.Reconciler, cfg.SyncCron, a.Store.AutoSync)
	if cfg.SyncDebounce > 0 {
		a.AutoSync.SetDebounce(cfg.SyncDebounce)
	}
	a.AutoSync.SetOnSync(func(t time.Time) {
		if err := a.Calendar.MarkSynced(t); err != nil {
			logger.Warn("Failed to record sync time", logger.Err(err))
		}
	})

	a.eventIDs.Store(eventKey(data.Events))
	a.unsubscribe = a.Store.Subscribe(func(d model.AppData) {
		a.Saver.Trigger()
		a.watchEvents(d.Events)
	})

	logger.Info("App opened",
		logger.F("storage", cfg.Storage),
		logger.F("tasks", len(data.Tasks)),
		logger.F("provider", a.Calendar.Kind()),
	)
	return a, nil
}

func (a *App) buildProvider(passphrase string) calendar.Provider {
	if a.Calendar.Kind() == sync.ProviderNone && a.Config.ICSURL != "" {
		return calendar.NewICSProvider(a.Config.ICSURL)
	}
	if a.Calendar.NeedsPassphrase() && passphrase == "" {
		logger.Warn("Google Calendar connected but no passphrase given, sync disabled")
		return nil
	}
	p, err := a.Calendar.Provider(passphrase)
	if err != nil {
		logger.Warn("Calendar provider unavailable", logger.Err(err))
		return nil
	}
	return p
}

// watchEvents queues a debounced pull when the set of events changed
// locally. Changes written by a running pull or push are ignored.
func (a *App) watchEvents(events []model.CalendarEvent) {
	key := eventKey(events)
	if prev, _ := a.eventIDs.Swap(key).(string); prev == key {
		return
	}
	if a.Reconciler.Status().Running {
		return
	}
	a.AutoSync.TriggerSync()
}

func eventKey(events []model.CalendarEvent) string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return strings.Join(ids, "\x00")
}

// Connect swaps in a provider after the connection changed.
func (a *App) Connect(p calendar.Provider) {
	a.Reconciler.SetProvider(p)
}

// AddEvent stores a local event and pushes it when auto-sync is on.
func (a *App) AddEvent(ctx context.Context, e model.CalendarEvent) (model.CalendarEvent, error) {
	created, ok := a.Store.AddEvent(e)
	if !ok {
		return model.CalendarEvent{}, fmt.Errorf("%w: title, date, start and end (HH:MM) are required", calendar.ErrInvalidEvent)
	}
	id, err := a.Reconciler.PushLocalEvent(ctx, created)
	if err != nil {
		return created, err
	}
	if id != "" {
		created.ID = id
	}
	return created, nil
}

// Sync pulls provider events now.
func (a *App) Sync(ctx context.Context) (calendar.SyncResult, error) {
	res, err := a.Reconciler.Sync(ctx, a.Store.Now())
	if err == nil {
		if mErr := a.Calendar.MarkSynced(time.Now()); mErr != nil {
			logger.Warn("Failed to record sync time", logger.Err(mErr))
		}
	}
	return res, err
}

// Reminders builds a reminder runner over the store's clock.
func (a *App) Reminders(n reminder.Notifier, interval time.Duration) *reminder.Runner {
	runner := reminder.NewRunner(a.Store, n, interval)
	runner.SetClock(a.Store.Now)
	return runner
}

// StartBackground runs the reminder loop and scheduled calendar sync until
// Close.
func (a *App) StartBackground(n reminder.Notifier) error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.Reminders(n, a.Config.ReminderInterval).Run(ctx)

	if err := a.AutoSync.Start(); err != nil {
		cancel()
		return fmt.Errorf("invalid sync schedule %q: %w", a.Config.SyncCron, err)
	}
	return nil
}

// Close stops background work and flushes pending writes.
func (a *App) Close(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.AutoSync != nil {
		a.AutoSync.Stop()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	var err error
	if a.Saver != nil {
		err = a.Saver.Close(ctx)
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.backend != nil {
		if cErr := a.backend.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	return err
}
