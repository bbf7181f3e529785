package model

import (
	"fmt"
	"strings"
	"time"
)

// Task represents a single todo item
type Task struct {
	ID          int64   `json:"id"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	CategoryID  *string `json:"categoryId"`
	DueDate     *string `json:"dueDate"`
	HasReminder bool    `json:"hasReminder"`
}

// Layouts accepted for Task.DueDate, tried in order.
const (
	DateLayout      = "2006-01-02"
	DateTimeLayout  = "2006-01-02T15:04"
	dateTimeSeconds = "2006-01-02T15:04:05"
)

// NewTask creates a new task. A reminder is only kept when a due date is set.
func NewTask(id int64, text string, categoryID, dueDate *string, wantsReminder bool) Task {
	return Task{
		ID:          id,
		Text:        text,
		Completed:   false,
		CategoryID:  cloneString(categoryID),
		DueDate:     cloneString(dueDate),
		HasReminder: wantsReminder && dueDate != nil,
	}
}

// ParseDue parses a due date string in loc.
// Date-only values resolve to local midnight.
func ParseDue(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty due date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{dateTimeSeconds, DateTimeLayout, DateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due date %q", s)
}

// Due returns the parsed due instant; ok is false when the task has no
// due date or it cannot be parsed.
func (t *Task) Due(loc *time.Location) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	due, err := ParseDue(*t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// IsOverdue returns true if the task's due day is before today
func (t *Task) IsOverdue(now time.Time) bool {
	due, ok := t.Due(now.Location())
	if !ok {
		return false
	}
	return StartOfDay(due).Before(StartOfDay(now))
}

// HasCategory reports whether the task references the given category.
func (t *Task) HasCategory(id string) bool {
	return t.CategoryID != nil && *t.CategoryID == id
}

// Clone returns a deep copy.
func (t Task) Clone() Task {
	t.CategoryID = cloneString(t.CategoryID)
	t.DueDate = cloneString(t.DueDate)
	return t
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
