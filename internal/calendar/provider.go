// Package calendar reconciles local events with a remote calendar
// provider.
package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned when the provider has no usable session.
	ErrNotConnected = errors.New("calendar provider not connected")
	// ErrReadOnly is returned by providers that cannot create events.
	ErrReadOnly = errors.New("calendar provider is read-only")
	// ErrSyncInProgress is returned when a sync or push is already running.
	ErrSyncInProgress = errors.New("calendar sync already in progress")
	// ErrInvalidEvent is returned for provider events that fail validation.
	ErrInvalidEvent = errors.New("invalid provider event")
)

// EventTime is a provider timestamp. Timed events carry DateTime (RFC 3339),
// all-day events carry Date only.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// ProviderEvent is the provider's wire representation of an event.
type ProviderEvent struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	Location    string    `json:"location,omitempty"`
	ColorID     string    `json:"colorId,omitempty"`
}

// Provider is a remote calendar.
type Provider interface {
	Name() string
	IsConnected() bool
	ListEvents(ctx context.Context, start, end time.Time) ([]ProviderEvent, error)
	CreateEvent(ctx context.Context, e ProviderEvent) (ProviderEvent, error)
}
