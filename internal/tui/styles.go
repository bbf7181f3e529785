package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/focusboard/internal/model"
)

// Color palette based on TUI design
var (
	// Event status colors
	StatusOnline  = lipgloss.Color("#95E1A3") // Green
	StatusVideo   = lipgloss.Color("#FF6B6B") // Red
	StatusOffline = lipgloss.Color("#6C757D") // Gray

	// Task colors
	Completed = lipgloss.Color("#95E1A3") // Green
	Overdue   = lipgloss.Color("#FF6B6B") // Red
	DueSoon   = lipgloss.Color("#FFE66D") // Yellow
	Reminder  = lipgloss.Color("#FFB347") // Orange

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Highlight = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			Width(20).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Task list
	TaskListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Clock and agenda
	AgendaStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(Border).
			Padding(1, 1)

	ClockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	// Category item
	CategoryItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	CategoryItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Task item
	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	OverdueStyle  = lipgloss.NewStyle().Foreground(Overdue).Bold(true)
	DueStyle      = lipgloss.NewStyle().Foreground(DueSoon)
	ReminderStyle = lipgloss.NewStyle().Foreground(Reminder).Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// GetStatusStyle returns the style for an event status
func GetStatusStyle(status model.EventStatus) lipgloss.Style {
	switch status {
	case model.StatusVideo:
		return lipgloss.NewStyle().Foreground(StatusVideo)
	case model.StatusOffline:
		return lipgloss.NewStyle().Foreground(StatusOffline)
	default:
		return lipgloss.NewStyle().Foreground(StatusOnline)
	}
}

// FormatStatus returns a colored status dot
func FormatStatus(status model.EventStatus) string {
	return GetStatusStyle(status).Render("●")
}

// CategoryDot renders a category's color swatch; unknown colors fall back
// to the primary color.
func CategoryDot(color string) string {
	if color == "" {
		color = string(Primary)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}
