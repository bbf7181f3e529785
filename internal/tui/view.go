package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/focusboard/internal/model"
	"github.com/existflow/focusboard/internal/timer"
)

const (
	sidebarWidth = 24
	agendaWidth  = 30
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	// Build the layout
	sidebar := m.renderSidebar()
	taskList := m.renderTaskList()
	agenda := m.renderAgenda()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, taskList, agenda)

	switch m.mode {
	case ModeAddTask, ModeAddCategory, ModeEditTask, ModeSetDue, ModeAddEvent:
		mainContent = m.overlay(m.renderModal())
	case ModeFilter:
		mainContent = m.overlay(m.renderFilterModal())
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	// Combine with status bar
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) overlay(modal string) string {
	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func divider(width int) string {
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width))
}

func (m Model) renderSidebar() string {
	var s string

	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("FocusBoard") + "\n"
	s += HelpStyle.Render(dueFilterLabel(m.dueFilter())) + "\n"
	s += divider(sidebarWidth-4) + "\n\n"

	all := m.app.Store.Tasks()
	pendingAll := 0
	for _, t := range all {
		if !t.Completed {
			pendingAll++
		}
	}
	s += m.sidebarLine(0, "  ", "All tasks", pendingAll, len(all)) + "\n"

	for i, c := range m.categories {
		pending, total := 0, 0
		for _, t := range all {
			if t.HasCategory(c.ID) {
				total++
				if !t.Completed {
					pending++
				}
			}
		}
		s += m.sidebarLine(i+1, CategoryDot(c.Color)+" ", c.Name, pending, total) + "\n"
	}

	s += "\n" + divider(sidebarWidth-4) + "\n"
	s += HelpStyle.Render("c new  f filter  d del")

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s)
}

func (m Model) sidebarLine(index int, prefix, name string, pending, total int) string {
	cursor := "  "
	style := CategoryItemStyle
	if index == m.catCursor {
		cursor = "❯ "
		if m.pane == PaneSidebar {
			style = CategoryItemSelectedStyle
		}
	}
	return style.Render(fmt.Sprintf("%s%s%-10s %d/%d", cursor, prefix, truncate(name, 10), pending, total))
}

func (m Model) renderTaskList() string {
	width := m.width - sidebarWidth - agendaWidth - 4
	if width < 20 {
		width = 20
	}
	var s string

	title := "All tasks"
	if cat := m.currentCategory(); cat != nil {
		title = cat.Name
	}
	pending := 0
	for _, t := range m.tasks {
		if !t.Completed {
			pending++
		}
	}
	header := fmt.Sprintf("%s (%d pending)", title, pending)
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(header) + "\n"
	s += divider(width-4) + "\n\n"

	if len(m.tasks) == 0 {
		s += HelpStyle.Render("  No tasks. Press 'a' to add one.")
	}

	matched := make(map[int]bool, len(m.matchIndices))
	for _, idx := range m.matchIndices {
		matched[idx] = true
	}

	textWidth := width - 24
	for i, t := range m.tasks {
		cursor := "  "
		style := TaskItemStyle
		if i == m.taskCursor && m.pane == PaneTaskList {
			cursor = "❯ "
			style = TaskItemSelectedStyle
		}
		if matched[i] && i != m.taskCursor {
			style = lipgloss.NewStyle().Foreground(Highlight)
		}

		icon := "[ ]"
		if t.Completed {
			icon = "[x]"
			style = TaskDoneStyle
		}

		line := style.Render(fmt.Sprintf("%s%s %-*s", cursor, icon, textWidth, truncate(t.Text, textWidth)))
		s += line + " " + m.renderDue(t) + "\n"
	}

	return TaskListStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderDue(t model.Task) string {
	label := formatDue(t, m.now)
	if label == "" {
		return ""
	}
	style := DueStyle
	if !t.Completed && t.IsOverdue(m.now) {
		style = OverdueStyle
	} else if t.Completed {
		style = HelpStyle
	}
	out := style.Render(label)
	if t.HasReminder && !t.Completed {
		out += " " + ReminderStyle.Render("🔔")
	}
	return out
}

func (m Model) renderAgenda() string {
	var s string

	s += ClockStyle.Render(timer.ClockFace(m.now)) + "\n"
	s += HelpStyle.Render(timer.DateLine(m.now)) + "\n"
	s += timer.Greeting(m.now) + "\n\n"

	watch := timer.FormatHMS(m.stopwatch.Seconds())
	if m.stopwatch.Running() {
		s += lipgloss.NewStyle().Foreground(Completed).Render("⏱ "+watch) + "\n"
	} else {
		s += HelpStyle.Render("⏱ "+watch+" (space)") + "\n"
	}
	s += "\n" + divider(agendaWidth-4) + "\n"

	if next, ok := m.app.Store.NextEvent(m.now); ok {
		s += lipgloss.NewStyle().Bold(true).Render("Next") + "\n"
		s += fmt.Sprintf("%s %s %s\n\n", FormatStatus(next.Status), next.StartTime, truncate(next.Title, agendaWidth-14))
	}

	s += lipgloss.NewStyle().Bold(true).Render("Today") + "\n"
	events := m.app.Store.EventsOn(m.now)
	if len(events) == 0 {
		s += HelpStyle.Render("No events. E to add.") + "\n"
	}
	for _, e := range events {
		s += fmt.Sprintf("%s %s-%s %s\n", FormatStatus(e.Status), e.StartTime, e.EndTime, truncate(e.Title, agendaWidth-18))
	}

	return AgendaStyle.Width(agendaWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderStatusBar() string {
	// When in filter mode, show inline search input (like vim)
	if m.mode == ModeFilter {
		matches := ""
		if len(m.matchIndices) > 0 {
			matches = fmt.Sprintf(" [%d/%d]", m.matchCursor+1, len(m.matchIndices))
		} else if m.filterText != "" {
			matches = " [no match]"
		}
		return StatusBarStyle.Width(m.width).Render("/" + m.input.View() + matches)
	}

	help := "a:add  x:done  D:due  r:remind  E:event  /:search  R:sync  ?:help  q:quit"
	switch {
	case m.notice != "":
		help = ReminderStyle.Render(m.notice)
	case m.filterText != "":
		if len(m.matchIndices) > 0 {
			help = fmt.Sprintf("/%s  [%d/%d matches]  n:next  N:prev  Esc:clear",
				m.filterText, m.matchCursor+1, len(m.matchIndices))
		} else {
			help = fmt.Sprintf("/%s  [no matches]  Esc:clear", m.filterText)
		}
	case m.message != "":
		help = m.message
	}

	// Append sync status (right aligned)
	syncMsg := ""
	status := m.app.Reconciler.Status()
	switch {
	case m.syncing || status.Running:
		syncMsg = "Syncing..."
	case m.app.AutoSync.IsPending():
		syncMsg = "Sync queued"
	case status.LastError != "":
		syncMsg = "Sync Error!"
	case status.Connected && !status.LastSync.IsZero():
		syncMsg = "Synced " + status.LastSync.In(m.now.Location()).Format("15:04")
	}

	if syncMsg != "" {
		avail := m.width - lipgloss.Width(help) - len(syncMsg) - 2
		if avail > 0 {
			help += strings.Repeat(" ", avail) + syncMsg
		} else {
			help += " " + syncMsg
		}
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	title := "Add Task"
	switch m.mode {
	case ModeAddCategory:
		title = "New Category"
	case ModeEditTask:
		title = "Edit Task"
	case ModeSetDue:
		title = "Due Date"
	case ModeAddEvent:
		title = "New Event  [YYYY-MM-DD] HH:MM-HH:MM title [@video|@offline]"
	}

	if cat := m.currentCategory(); cat != nil && m.mode == ModeAddTask {
		title = fmt.Sprintf("Add Task to: %s", cat.Name)
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderFilterModal() string {
	modalWidth := 55
	maxResults := 8

	var content string
	content += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("Search") + "  "
	content += HelpStyle.Render(dueFilterLabel(m.dueFilter())) + "\n\n"
	content += "/" + m.input.View() + "\n\n"
	content += divider(modalWidth-6) + "\n\n"

	switch {
	case m.filterText == "":
		content += HelpStyle.Render("Type to search...") + "\n"
	case len(m.matchIndices) == 0:
		content += HelpStyle.Render("No matches found") + "\n"
	default:
		content += fmt.Sprintf("%d matches\n\n", len(m.matchIndices))
		for i, idx := range m.matchIndices {
			if i >= maxResults {
				content += HelpStyle.Render(fmt.Sprintf("... +%d more", len(m.matchIndices)-maxResults)) + "\n"
				break
			}
			if idx >= len(m.tasks) {
				continue
			}

			t := m.tasks[idx]
			icon := "[ ]"
			if t.Completed {
				icon = "[x]"
			}

			// Highlight current selection
			marker := "  "
			style := lipgloss.NewStyle()
			if i == m.matchCursor {
				marker = "❯ "
				style = lipgloss.NewStyle().Bold(true).Foreground(Primary)
			}
			content += style.Render(fmt.Sprintf("%s%s %s", marker, icon, truncate(t.Text, modalWidth-12))) + "\n"
		}
	}

	content += "\n" + HelpStyle.Render("↑↓:nav  Enter:select  Esc:close")

	return ModalStyle.Width(modalWidth).Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ────╮
│                           │
│  Navigation               │
│  ──────────               │
│  j/↓    Move down         │
│  k/↑    Move up           │
│  h/l    Switch pane       │
│  Tab    Switch pane       │
│  G      Go to bottom      │
│                           │
│  Tasks                    │
│  ─────                    │
│  a       Add task         │
│  e       Edit task        │
│  x/Enter Toggle done      │
│  D       Set due date     │
│  r       Toggle reminder  │
│  d       Delete           │
│  c       New category     │
│  f       Cycle due filter │
│  /       Search (n/N)     │
│                           │
│  Calendar & timer         │
│  ────────────────         │
│  E       Add event        │
│  R       Sync calendar    │
│  space   Stopwatch        │
│  0       Reset stopwatch  │
│                           │
│  ?       Toggle help      │
│  q       Quit             │
│                           │
╰───────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
