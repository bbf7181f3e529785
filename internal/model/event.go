package model

import (
	"fmt"
	"time"
)

// EventStatus describes how an event is attended.
type EventStatus string

const (
	StatusOnline  EventStatus = "online"
	StatusVideo   EventStatus = "video"
	StatusOffline EventStatus = "offline"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusOnline, StatusVideo, StatusOffline:
		return true
	}
	return false
}

// ClockLayout is the HH:MM format used for event start and end times.
const ClockLayout = "15:04"

// CalendarEvent is a locally stored calendar entry. Two events are the
// same event iff their IDs match.
type CalendarEvent struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Date      string      `json:"date"`
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	Status    EventStatus `json:"status"`
}

// Start returns the event's start instant, interpreting date and
// start time as wall-clock time in loc.
func (e CalendarEvent) Start(loc *time.Location) (time.Time, error) {
	return wallClock(e.Date, e.StartTime, loc)
}

// End returns the event's end instant in loc.
func (e CalendarEvent) End(loc *time.Location) (time.Time, error) {
	return wallClock(e.Date, e.EndTime, loc)
}

// OnDay reports whether the event falls on day's calendar date.
func (e CalendarEvent) OnDay(day time.Time) bool {
	return e.Date == day.Format(DateLayout)
}

func wallClock(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event time %q %q: %w", date, clock, err)
	}
	return t, nil
}
