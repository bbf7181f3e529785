package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
)

// DefaultInterval is how often the runner scans.
const DefaultInterval = time.Minute

// Source provides the tasks and settings to scan.
type Source interface {
	Tasks() []model.Task
	ReminderSettings() model.ReminderSettings
}

// Runner scans a Source on a fixed interval and dispatches reminders.
type Runner struct {
	source     Source
	dispatcher *Dispatcher
	interval   time.Duration
	now        func() time.Time

	mu       sync.Mutex
	settings *model.ReminderSettings // settings seen by the last scan
}

// NewRunner creates a runner. A non-positive interval uses DefaultInterval.
func NewRunner(source Source, n Notifier, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		source:     source,
		dispatcher: NewDispatcher(n),
		interval:   interval,
		now:        time.Now,
	}
}

// SetClock overrides time.Now.
func (r *Runner) SetClock(now func() time.Time) { r.now = now }

// Check runs one scan and returns the number of notifications sent. When
// the reminder settings changed since the last scan, earlier deliveries are
// forgotten so tasks inside the new window notify again.
func (r *Runner) Check() int {
	settings := r.source.ReminderSettings()

	r.mu.Lock()
	if r.settings != nil && *r.settings != settings {
		r.dispatcher.Reset()
		logger.Debug("Reminder settings changed",
			logger.F("enabled", settings.Enabled),
			logger.F("minutes", settings.ReminderTime))
	}
	r.settings = &settings
	r.mu.Unlock()

	results := Scan(r.source.Tasks(), settings, r.now())
	sent := r.dispatcher.Dispatch(results)
	if sent > 0 {
		logger.Debug("Reminders sent", logger.F("count", sent), logger.F("due", len(results)))
	}
	return sent
}

// Run scans immediately and then on every tick until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	logger.Info("Reminder runner started", logger.F("interval", r.interval.String()))
	r.Check()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Check()
		case <-ctx.Done():
			logger.Info("Reminder runner stopped")
			return
		}
	}
}
