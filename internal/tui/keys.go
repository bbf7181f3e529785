package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Tab       key.Binding
	Enter     key.Binding
	Add       key.Binding
	Done      key.Binding
	Delete    key.Binding
	Edit      key.Binding
	Due       key.Binding
	Remind    key.Binding
	Category  key.Binding
	Event     key.Binding
	DueFilter key.Binding
	Search    key.Binding
	Stopwatch key.Binding
	Reset     key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
	Refresh   key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left pane")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right pane")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select/toggle")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Done:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Due:       key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "set due date")),
	Remind:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "toggle reminder")),
	Category:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new category")),
	Event:     key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "add event")),
	DueFilter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "due filter")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Stopwatch: key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space", "stopwatch")),
	Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset stopwatch")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "sync calendar")),
}
