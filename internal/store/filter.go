package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/model"
)

// DueFilter selects tasks by due date relative to today
type DueFilter string

const (
	DueAll      DueFilter = "all"
	DueToday    DueFilter = "today"
	DueTomorrow DueFilter = "tomorrow"
	DueUpcoming DueFilter = "upcoming"
	DueOverdue  DueFilter = "overdue"
	DueNoDate   DueFilter = "no-date"
)

// DueFilters lists every filter in display order.
var DueFilters = []DueFilter{DueAll, DueToday, DueTomorrow, DueUpcoming, DueOverdue, DueNoDate}

// ParseDueFilter accepts the filter names above; empty means all.
func ParseDueFilter(s string) (DueFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DueAll, nil
	}
	for _, f := range DueFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return DueAll, fmt.Errorf("unknown due filter %q", s)
}

// Filter is a derived view over the task collection
type Filter struct {
	CategoryID *string
	Due        DueFilter
}

// FilterTasks returns the tasks matching f, evaluated against now's
// local day. The input slice is not modified.
func FilterTasks(tasks []model.Task, f Filter, now time.Time) []model.Task {
	today := model.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	nextWeek := today.AddDate(0, 0, 7)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.CategoryID != nil && !t.HasCategory(*f.CategoryID) {
			continue
		}
		if !matchDue(t, f.Due, now.Location(), today, tomorrow, nextWeek) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

func matchDue(t model.Task, f DueFilter, loc *time.Location, today, tomorrow, nextWeek time.Time) bool {
	switch f {
	case DueAll, "":
		return true
	case DueNoDate:
		return t.DueDate == nil
	}

	due, ok := t.Due(loc)
	if !ok {
		return false
	}
	day := model.StartOfDay(due)

	switch f {
	case DueToday:
		return day.Equal(today)
	case DueTomorrow:
		return day.Equal(tomorrow)
	case DueUpcoming:
		return !day.Before(today) && !day.After(nextWeek)
	case DueOverdue:
		return day.Before(today)
	}
	return true
}
