// Package reminder finds tasks whose due date falls inside the reminder
// window and delivers notifications for them.
package reminder

import (
	"fmt"
	"math"
	"time"

	"github.com/existflow/focusboard/internal/model"
)

// Due is a task that should be reminded about now.
type Due struct {
	Task            model.Task
	MinutesUntilDue int
}

// Scan returns the tasks due within settings.ReminderTime minutes of now.
// A task qualifies when reminders are enabled, it is not completed, has a
// due date and opted in, and 0 < minutesUntilDue <= ReminderTime where
// minutesUntilDue is the floored minute difference. Scan is stateless and
// reports the same task on every call while it stays in the window.
func Scan(tasks []model.Task, settings model.ReminderSettings, now time.Time) []Due {
	if !settings.Enabled {
		return nil
	}

	var out []Due
	for _, t := range tasks {
		if t.Completed || !t.HasReminder {
			continue
		}
		due, ok := t.Due(now.Location())
		if !ok {
			continue
		}
		diff := MinutesUntil(due, now)
		if diff > 0 && diff <= settings.ReminderTime {
			out = append(out, Due{Task: t.Clone(), MinutesUntilDue: diff})
		}
	}
	return out
}

// MinutesUntil returns floor((due - now) / 1 minute).
func MinutesUntil(due, now time.Time) int {
	return int(math.Floor(due.Sub(now).Minutes()))
}

// FormatDuration renders a minute count for humans: "45 minutes",
// "1 hour", "2 hours and 5 minutes".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return plural(h, "hour")
	}
	return plural(h, "hour") + " and " + plural(m, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Message returns the notification title and body for d.
func Message(d Due) (title, body string) {
	return "Task Due Soon", fmt.Sprintf("\"%s\" is due in %s", d.Task.Text, FormatDuration(d.MinutesUntilDue))
}
