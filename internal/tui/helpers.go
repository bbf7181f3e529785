package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/model"
)

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// parseDueInput accepts today, tomorrow, +N (days), YYYY-MM-DD or
// YYYY-MM-DDTHH:MM. Empty input clears the due date.
func parseDueInput(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "today":
		return now.Format(model.DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(model.DateLayout), nil
	}
	if strings.HasPrefix(s, "+") {
		var days int
		if _, err := fmt.Sscanf(s, "+%d", &days); err == nil && days >= 0 {
			return now.AddDate(0, 0, days).Format(model.DateLayout), nil
		}
	}
	if _, err := model.ParseDue(s, now.Location()); err != nil {
		return "", fmt.Errorf("use YYYY-MM-DD, YYYY-MM-DDTHH:MM, today, tomorrow or +N")
	}
	return s, nil
}

// parseEventInput reads "[YYYY-MM-DD] HH:MM-HH:MM title [@video|@offline]".
// The date defaults to today's.
func parseEventInput(s string, now time.Time) (model.CalendarEvent, error) {
	fields := strings.Fields(s)
	e := model.CalendarEvent{Date: now.Format(model.DateLayout), Status: model.StatusOnline}

	if len(fields) > 0 {
		if _, err := time.Parse(model.DateLayout, fields[0]); err == nil {
			e.Date = fields[0]
			fields = fields[1:]
		}
	}
	if len(fields) < 2 {
		return e, fmt.Errorf("format: [YYYY-MM-DD] HH:MM-HH:MM title")
	}

	span := strings.SplitN(fields[0], "-", 2)
	if len(span) != 2 {
		return e, fmt.Errorf("time range must look like 09:00-09:30")
	}
	for _, clock := range span {
		if _, err := time.Parse(model.ClockLayout, clock); err != nil {
			return e, fmt.Errorf("invalid time %q", clock)
		}
	}
	e.StartTime, e.EndTime = span[0], span[1]
	fields = fields[1:]

	if last := fields[len(fields)-1]; strings.HasPrefix(last, "@") {
		status := model.EventStatus(strings.TrimPrefix(last, "@"))
		if status.Valid() {
			e.Status = status
			fields = fields[:len(fields)-1]
		}
	}
	e.Title = strings.Join(fields, " ")
	if e.Title == "" {
		return e, fmt.Errorf("event title is required")
	}
	return e, nil
}

// formatDue renders a due date relative to now.
func formatDue(t model.Task, now time.Time) string {
	due, ok := t.Due(now.Location())
	if !ok {
		return ""
	}
	day := model.StartOfDay(due)
	today := model.StartOfDay(now)

	var label string
	switch {
	case day.Equal(today):
		label = "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		label = "Tomorrow"
	case day.Before(today.AddDate(0, 0, 7)) && !day.Before(today):
		label = due.Format("Mon")
	default:
		label = due.Format("Jan 2")
	}
	if due.Hour() != 0 || due.Minute() != 0 {
		label += due.Format(" 15:04")
	}
	return label
}
