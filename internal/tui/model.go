package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/focusboard/internal/app"
	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/reminder"
	"github.com/existflow/focusboard/internal/store"
	"github.com/existflow/focusboard/internal/timer"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneTaskList
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeAddCategory
	ModeEditTask
	ModeSetDue
	ModeAddEvent
	ModeFilter
	ModeHelp
)

// noticeTTL is how long a reminder stays in the status bar.
const noticeTTL = 30 * time.Second

// Model is the main TUI model
type Model struct {
	app        *app.App
	categories []model.Category
	tasks      []model.Task // visible tasks for the active filter

	stopwatch *timer.Stopwatch
	now       time.Time

	// refreshChan is signalled by store subscriptions (sync pulls, grace
	// removals) so the view reloads.
	refreshChan chan struct{}

	// UI state
	width      int
	height     int
	pane       Pane
	mode       Mode
	catCursor  int // 0 is "All tasks", i+1 is categories[i]
	taskCursor int

	// Input
	input textinput.Model

	// Search (vim-style)
	filterText   string
	matchIndices []int
	matchCursor  int

	message  string
	notice   string
	noticeAt time.Time
	syncing  bool
}

// NewModel creates a new TUI model
func NewModel(a *app.App) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter task..."
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		app:         a,
		stopwatch:   timer.NewStopwatch(),
		now:         a.Store.Now(),
		pane:        PaneTaskList,
		mode:        ModeNormal,
		input:       ti,
		refreshChan: make(chan struct{}, 1), // Buffered to avoid blocking
	}

	// Signal the UI on every store change, non-blocking
	a.Store.Subscribe(func(model.AppData) {
		select {
		case m.refreshChan <- struct{}{}:
		default:
		}
	})

	m.loadData()
	logger.Debug("TUI model initialized",
		logger.F("categories", len(m.categories)),
		logger.F("tasks", len(m.tasks)))
	return m
}

// Notifier delivers reminders into the running program's status bar.
func Notifier(p *tea.Program) reminder.Notifier {
	return reminder.FuncNotifier(func(title, body string) {
		p.Send(reminderMsg{title: title, body: body})
	})
}

// WatchSync reports background pulls that brought in new events.
func WatchSync(p *tea.Program, a *app.App) {
	a.AutoSync.SetOnPull(func(res calendar.SyncResult) {
		p.Send(syncDoneMsg{result: res, background: true})
	})
}

func (m *Model) loadData() {
	m.categories = m.app.Store.Categories()
	if m.catCursor > len(m.categories) {
		m.catCursor = 0
	}
	m.app.Store.SetCategoryFilter(m.selectedCategoryID())
	m.tasks = m.app.Store.VisibleTasks()
	if m.taskCursor >= len(m.tasks) {
		m.taskCursor = len(m.tasks) - 1
	}
	if m.taskCursor < 0 {
		m.taskCursor = 0
	}
	if m.filterText != "" {
		m.applyFilter()
	}
}

func (m *Model) selectedCategoryID() *string {
	if m.catCursor == 0 || m.catCursor > len(m.categories) {
		return nil
	}
	id := m.categories[m.catCursor-1].ID
	return &id
}

func (m *Model) currentCategory() *model.Category {
	if m.catCursor > 0 && m.catCursor <= len(m.categories) {
		return &m.categories[m.catCursor-1]
	}
	return nil
}

func (m *Model) currentTask() *model.Task {
	if m.taskCursor < len(m.tasks) {
		return &m.tasks[m.taskCursor]
	}
	return nil
}

func (m *Model) dueFilter() store.DueFilter {
	return m.app.Store.ActiveFilter().Due
}

// cycleDueFilter advances to the next due filter.
func (m *Model) cycleDueFilter() {
	current := m.dueFilter()
	next := store.DueFilters[0]
	for i, f := range store.DueFilters {
		if f == current {
			next = store.DueFilters[(i+1)%len(store.DueFilters)]
			break
		}
	}
	m.app.Store.SetDueFilter(next)
	m.taskCursor = 0
	m.loadData()
	m.message = "Showing: " + dueFilterLabel(next)
}

func dueFilterLabel(f store.DueFilter) string {
	switch f {
	case store.DueToday:
		return "Due today"
	case store.DueTomorrow:
		return "Due tomorrow"
	case store.DueUpcoming:
		return "Next 7 days"
	case store.DueOverdue:
		return "Overdue"
	case store.DueNoDate:
		return "No due date"
	}
	return "All tasks"
}
