package reminder

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/focusboard/internal/logger"
)

// Notifier delivers a reminder. Delivery is fire-and-forget.
type Notifier interface {
	Notify(title, body string)
}

// FuncNotifier adapts a function to Notifier.
type FuncNotifier func(title, body string)

func (f FuncNotifier) Notify(title, body string) { f(title, body) }

// LogNotifier writes reminders to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(title, body string) {
	logger.Info("Reminder", logger.F("title", title), logger.F("body", body))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// WriterNotifier prints reminders to a terminal, ringing the bell first.
type WriterNotifier struct {
	mu   sync.Mutex
	w    io.Writer
	Bell bool
}

// NewWriterNotifier returns a notifier writing to w.
func NewWriterNotifier(w io.Writer, bell bool) *WriterNotifier {
	return &WriterNotifier{w: w, Bell: bell}
}

func (n *WriterNotifier) Notify(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Bell {
		fmt.Fprint(n.w, "\a")
	}
	fmt.Fprintf(n.w, "%s %s\n", titleStyle.Render("⏰ "+title), bodyStyle.Render(body))
}

// Multi fans a reminder out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(title, body string) {
	for _, n := range m {
		n.Notify(title, body)
	}
}
