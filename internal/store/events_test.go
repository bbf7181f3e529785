package store

import (
	"testing"
	"time"

	"github.com/existflow/focusboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standup() model.CalendarEvent {
	return model.CalendarEvent{Title: "Standup", Date: "2025-01-01", StartTime: "09:00", EndTime: "09:15"}
}

func TestAddEvent(t *testing.T) {
	s := newTestStore()

	e, ok := s.AddEvent(standup())
	require.True(t, ok)
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, model.StatusOnline, e.Status)

	bad := standup()
	bad.StartTime = "9am"
	_, ok = s.AddEvent(bad)
	assert.False(t, ok)

	noTitle := standup()
	noTitle.Title = " "
	_, ok = s.AddEvent(noTitle)
	assert.False(t, ok)

	assert.Len(t, s.Events(), 1)
}

func TestAddEvent_CollidingIDReplaced(t *testing.T) {
	s := newTestStore()
	first := standup()
	first.ID = "fixed"
	s.AddEvent(first)

	second, ok := s.AddEvent(first)
	require.True(t, ok)
	assert.NotEqual(t, "fixed", second.ID)
}

func TestReplaceEventID(t *testing.T) {
	s := newTestStore()
	a, _ := s.AddEvent(standup())
	b, _ := s.AddEvent(standup())

	assert.False(t, s.ReplaceEventID(a.ID, b.ID))
	assert.False(t, s.ReplaceEventID("missing", "x"))
	require.True(t, s.ReplaceEventID(a.ID, "google-123"))

	assert.Equal(t, "google-123", s.Events()[0].ID)
}

func TestUpdateEvents(t *testing.T) {
	s := newTestStore()
	s.AddEvent(standup())

	notified := 0
	s.Subscribe(func(model.AppData) { notified++ })

	added := s.UpdateEvents(func(cur []model.CalendarEvent) []model.CalendarEvent {
		return append(cur, model.CalendarEvent{ID: "r1", Title: "Remote", Date: "2025-01-02", StartTime: "10:00", EndTime: "11:00"})
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, notified)

	added = s.UpdateEvents(func(cur []model.CalendarEvent) []model.CalendarEvent { return cur })
	assert.Zero(t, added)
	assert.Equal(t, 1, notified)
	assert.Len(t, s.Events(), 2)
}

func TestEventsOnAndNextEvent(t *testing.T) {
	s := newTestStore()
	late := standup()
	late.Title, late.StartTime, late.EndTime = "Review", "15:00", "16:00"
	s.AddEvent(late)
	s.AddEvent(standup())
	other := standup()
	other.Date = "2025-01-02"
	s.AddEvent(other)

	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	events := s.EventsOn(day)
	require.Len(t, events, 2)
	assert.Equal(t, "Standup", events[0].Title)

	next, ok := s.NextEvent(time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, "Review", next.Title)

	_, ok = s.NextEvent(time.Date(2025, 1, 1, 17, 0, 0, 0, time.Local))
	assert.False(t, ok)
}
