package store

import (
	"sort"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/model"
)

// Events returns a copy of all events in stored order.
func (s *Store) Events() []model.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CalendarEvent{}, s.data.Events...)
}

// AddEvent stores a locally created event. Title, date and both times are
// required; a missing id gets a fresh one and a missing status defaults to
// online.
func (s *Store) AddEvent(e model.CalendarEvent) (model.CalendarEvent, bool) {
	if strings.TrimSpace(e.Title) == "" || e.Date == "" || e.StartTime == "" || e.EndTime == "" {
		return model.CalendarEvent{}, false
	}
	if _, err := e.Start(time.UTC); err != nil {
		return model.CalendarEvent{}, false
	}
	if _, err := e.End(time.UTC); err != nil {
		return model.CalendarEvent{}, false
	}
	if !e.Status.Valid() {
		e.Status = model.StatusOnline
	}

	s.mu.Lock()
	if e.ID == "" || s.eventIndex(e.ID) >= 0 {
		e.ID = s.newID()
	}
	s.data.Events = append(s.data.Events, e)
	s.mu.Unlock()

	s.notify()
	return e, true
}

func (s *Store) eventIndex(id string) int {
	for i := range s.data.Events {
		if s.data.Events[i].ID == id {
			return i
		}
	}
	return -1
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(id string) bool {
	s.mu.Lock()
	i := s.eventIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.data.Events = append(s.data.Events[:i], s.data.Events[i+1:]...)
	s.mu.Unlock()

	s.notify()
	return true
}

// ReplaceEventID rewrites an event's id, e.g. to the id a remote provider
// assigned. It refuses to create a collision.
func (s *Store) ReplaceEventID(oldID, newID string) bool {
	if newID == "" || oldID == newID {
		return false
	}

	s.mu.Lock()
	i := s.eventIndex(oldID)
	if i < 0 || s.eventIndex(newID) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.data.Events[i].ID = newID
	s.mu.Unlock()

	s.notify()
	return true
}

// UpdateEvents atomically replaces the event list with fn(current) and
// returns how many events were added.
func (s *Store) UpdateEvents(fn func([]model.CalendarEvent) []model.CalendarEvent) int {
	s.mu.Lock()
	before := len(s.data.Events)
	next := fn(append([]model.CalendarEvent{}, s.data.Events...))
	if next == nil {
		next = []model.CalendarEvent{}
	}
	s.data.Events = next
	added := len(next) - before
	s.mu.Unlock()

	if added != 0 {
		s.notify()
	}
	return added
}

// EventsOn returns events on day's date, sorted by start time.
func (s *Store) EventsOn(day time.Time) []model.CalendarEvent {
	var out []model.CalendarEvent
	for _, e := range s.Events() {
		if e.OnDay(day) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// NextEvent returns today's first event starting after now.
func (s *Store) NextEvent(now time.Time) (model.CalendarEvent, bool) {
	current := now.Format(model.ClockLayout)
	for _, e := range s.EventsOn(now) {
		if e.StartTime > current {
			return e, true
		}
	}
	return model.CalendarEvent{}, false
}
