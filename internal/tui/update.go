package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/focusboard/internal/calendar"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/store"
)

// tickMsg is sent every second for the clock
type tickMsg time.Time

// stopwatchTickMsg is sent every 100ms while the stopwatch runs
type stopwatchTickMsg time.Time

// refreshMsg is sent when the store changed outside the UI
type refreshMsg struct{}

// reminderMsg carries a reminder notification
type reminderMsg struct {
	title string
	body  string
}

// syncDoneMsg reports a finished calendar pull
type syncDoneMsg struct {
	result     calendar.SyncResult
	err        error
	background bool
}

// eventAddedMsg reports a created (and possibly pushed) event
type eventAddedMsg struct {
	event model.CalendarEvent
	err   error
}

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForRefresh())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func stopwatchTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return stopwatchTickMsg(t)
	})
}

// waitForRefresh listens for store change signals
func (m Model) waitForRefresh() tea.Cmd {
	if m.refreshChan == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.refreshChan
		return refreshMsg{}
	}
}

func (m Model) syncCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		res, err := a.Sync(ctx)
		return syncDoneMsg{result: res, err: err}
	}
}

func (m Model) addEventCmd(e model.CalendarEvent) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		created, err := a.AddEvent(ctx, e)
		return eventAddedMsg{event: created, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = m.app.Store.Now()
		if m.notice != "" && m.now.Sub(m.noticeAt) > noticeTTL {
			m.notice = ""
		}
		// Continue ticking for time updates
		return m, tickCmd()

	case stopwatchTickMsg:
		if m.stopwatch.Running() {
			return m, stopwatchTickCmd()
		}
		return m, nil

	case refreshMsg:
		m.loadData()
		return m, m.waitForRefresh()

	case reminderMsg:
		m.notice = fmt.Sprintf("🔔 %s: %s", msg.title, msg.body)
		m.noticeAt = m.app.Store.Now()
		return m, nil

	case syncDoneMsg:
		if msg.background {
			m.message = fmt.Sprintf("Calendar updated: %d new events", msg.result.Added)
			m.loadData()
			return m, nil
		}
		m.syncing = false
		switch {
		case errors.Is(msg.err, calendar.ErrNotConnected):
			m.message = "No calendar connected - use 'focusboard calendar connect' first"
		case errors.Is(msg.err, calendar.ErrSyncInProgress):
			m.message = "Sync already running"
		case msg.err != nil:
			m.message = fmt.Sprintf("Sync failed: %v", msg.err)
		default:
			m.message = fmt.Sprintf("Synced: %d fetched, %d new", msg.result.Fetched, msg.result.Added)
		}
		m.loadData()
		return m, nil

	case eventAddedMsg:
		switch {
		case msg.event.ID == "":
			m.message = fmt.Sprintf("Error adding event: %v", msg.err)
		case msg.err != nil:
			m.message = fmt.Sprintf("Added %s locally, push failed: %v", msg.event.Title, msg.err)
		default:
			m.message = fmt.Sprintf("Added event: %s", msg.event.Title)
		}
		m.loadData()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeAddTask, ModeAddCategory, ModeEditTask, ModeSetDue, ModeAddEvent:
			return m.updateInput(msg)
		case ModeFilter:
			return m.updateFilter(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneTaskList
		} else {
			m.pane = PaneSidebar
		}

	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar

	case key.Matches(msg, keys.Right):
		m.pane = PaneTaskList

	case key.Matches(msg, keys.Up):
		m.handleUp()

	case key.Matches(msg, keys.Down):
		m.handleDown()

	case msg.String() == "G":
		m.handleGoBottom()

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddTask, "", "Enter task...")

	case key.Matches(msg, keys.Category):
		return m.startInput(ModeAddCategory, "", "Enter category name...")

	case key.Matches(msg, keys.Event):
		return m.startInput(ModeAddEvent, "", "09:00-09:30 Standup @video")

	case key.Matches(msg, keys.Edit):
		if task := m.currentTask(); task != nil && m.pane == PaneTaskList {
			return m.startInput(ModeEditTask, task.Text, "Edit task...")
		}

	case key.Matches(msg, keys.Due):
		if task := m.currentTask(); task != nil && m.pane == PaneTaskList {
			current := ""
			if task.DueDate != nil {
				current = *task.DueDate
			}
			return m.startInput(ModeSetDue, current, "YYYY-MM-DD[THH:MM], today, +3 (empty clears)")
		}

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		if m.pane == PaneSidebar {
			m.pane = PaneTaskList
		} else {
			m.handleToggleDone()
		}

	case key.Matches(msg, keys.Remind):
		m.handleToggleReminder()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.DueFilter):
		m.cycleDueFilter()

	case key.Matches(msg, keys.Search):
		return m.startFilter()

	case msg.String() == "n":
		m.handleNextMatch()

	case msg.String() == "N":
		m.handlePrevMatch()

	case key.Matches(msg, keys.Stopwatch):
		m.stopwatch.Toggle()
		if m.stopwatch.Running() {
			m.message = "Stopwatch started"
			return m, stopwatchTickCmd()
		}
		m.message = "Stopwatch paused"

	case key.Matches(msg, keys.Reset):
		m.stopwatch.Reset()
		m.message = "Stopwatch reset"

	case key.Matches(msg, keys.Escape):
		if m.filterText != "" {
			m.filterText = ""
			m.matchIndices = nil
			m.message = "Search cleared"
		}
		m.notice = ""

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Refresh):
		if m.syncing {
			m.message = "Sync already running"
			return m, nil
		}
		m.syncing = true
		m.message = "Syncing calendar..."
		return m, m.syncCmd()
	}

	return m, nil
}

func (m *Model) handleUp() {
	if m.pane == PaneSidebar {
		if m.catCursor > 0 {
			m.catCursor--
			m.taskCursor = 0
			m.loadData()
		}
	} else if m.taskCursor > 0 {
		m.taskCursor--
	}
}

func (m *Model) handleDown() {
	if m.pane == PaneSidebar {
		if m.catCursor < len(m.categories) {
			m.catCursor++
			m.taskCursor = 0
			m.loadData()
		}
	} else if m.taskCursor < len(m.tasks)-1 {
		m.taskCursor++
	}
}

func (m *Model) handleGoBottom() {
	if m.pane == PaneSidebar {
		m.catCursor = len(m.categories)
		m.taskCursor = 0
		m.loadData()
	} else if len(m.tasks) > 0 {
		m.taskCursor = len(m.tasks) - 1
	}
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m *Model) handleToggleDone() {
	task := m.currentTask()
	if task == nil {
		return
	}
	m.app.Store.ToggleTask(task.ID)
	if !task.Completed && m.app.Store.AutoDeleteCompleted() {
		m.message = fmt.Sprintf("Completed: %s (removing shortly)", task.Text)
	}
	m.loadData()
}

func (m *Model) handleToggleReminder() {
	task := m.currentTask()
	if task == nil || m.pane != PaneTaskList {
		return
	}
	if task.DueDate == nil {
		m.message = "Set a due date first (D)"
		return
	}
	on := !task.HasReminder
	m.app.Store.UpdateTask(task.ID, store.TaskPatch{HasReminder: &on})
	if on {
		m.message = "Reminder on"
	} else {
		m.message = "Reminder off"
	}
	m.loadData()
}

func (m *Model) handleDelete() {
	if m.pane == PaneSidebar {
		cat := m.currentCategory()
		if cat == nil {
			return
		}
		m.app.Store.DeleteCategory(cat.ID)
		m.message = fmt.Sprintf("Deleted category: %s", cat.Name)
		m.catCursor = 0
		m.loadData()
		return
	}

	task := m.currentTask()
	if task == nil {
		return
	}
	m.app.Store.DeleteTask(task.ID)
	m.loadData()
}

func (m Model) startFilter() (tea.Model, tea.Cmd) {
	m.mode = ModeFilter
	m.input.SetValue(m.filterText)
	m.input.Placeholder = "/"
	m.input.Focus()
	return m, textinput.Blink
}

func (m *Model) handleNextMatch() {
	if len(m.matchIndices) > 0 {
		m.matchCursor = (m.matchCursor + 1) % len(m.matchIndices)
		m.taskCursor = m.matchIndices[m.matchCursor]
		m.message = fmt.Sprintf("[%d/%d] matches", m.matchCursor+1, len(m.matchIndices))
	}
}

func (m *Model) handlePrevMatch() {
	if len(m.matchIndices) > 0 {
		m.matchCursor--
		if m.matchCursor < 0 {
			m.matchCursor = len(m.matchIndices) - 1
		}
		m.taskCursor = m.matchIndices[m.matchCursor]
		m.message = fmt.Sprintf("[%d/%d] matches", m.matchCursor+1, len(m.matchIndices))
	}
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		return m, nil

	case msg.Type == tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal

		if value == "" && mode != ModeSetDue {
			return m, nil
		}

		var cmd tea.Cmd
		switch mode {
		case ModeAddTask:
			task, ok := m.app.Store.AddTask(value, m.selectedCategoryID(), nil, false)
			if ok {
				m.message = fmt.Sprintf("Added: %s", task.Text)
				logger.Debug("Task added from TUI", logger.F("id", task.ID))
			}
		case ModeAddCategory:
			if c, ok := m.app.Store.AddCategory(value, ""); ok {
				m.message = fmt.Sprintf("Created category: %s", c.Name)
			}
		case ModeEditTask:
			if task := m.currentTask(); task != nil {
				m.app.Store.UpdateTask(task.ID, store.TaskPatch{Text: &value})
				m.message = fmt.Sprintf("Updated: %s", value)
			}
		case ModeSetDue:
			if task := m.currentTask(); task != nil {
				due, err := parseDueInput(value, m.app.Store.Now())
				if err != nil {
					m.message = err.Error()
					break
				}
				m.app.Store.UpdateTask(task.ID, store.TaskPatch{DueDate: &due})
				if due == "" {
					m.message = "Due date cleared"
				} else {
					m.message = fmt.Sprintf("Due: %s", due)
				}
			}
		case ModeAddEvent:
			e, err := parseEventInput(value, m.app.Store.Now())
			if err != nil {
				m.message = err.Error()
				break
			}
			m.message = "Adding event..."
			cmd = m.addEventCmd(e)
		}

		m.loadData()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.filterText = ""
		m.matchIndices = nil
		return m, nil

	case msg.Type == tea.KeyUp:
		if len(m.matchIndices) > 0 && m.matchCursor > 0 {
			m.matchCursor--
		}
		return m, nil

	case msg.Type == tea.KeyDown:
		if len(m.matchIndices) > 0 && m.matchCursor < len(m.matchIndices)-1 {
			m.matchCursor++
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		// Jump to selected match
		if len(m.matchIndices) > 0 && m.matchCursor < len(m.matchIndices) {
			m.taskCursor = m.matchIndices[m.matchCursor]
			m.pane = PaneTaskList
		}
		m.mode = ModeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Live filter as user types
	m.filterText = m.input.Value()
	m.applyFilter()
	return m, cmd
}

// applyFilter searches the visible tasks by text.
func (m *Model) applyFilter() {
	m.matchIndices = nil
	m.matchCursor = 0

	if m.filterText == "" {
		return
	}

	filter := strings.ToLower(m.filterText)
	for i, t := range m.tasks {
		if strings.Contains(strings.ToLower(t.Text), filter) {
			m.matchIndices = append(m.matchIndices, i)
		}
	}
}
