package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryProvider is an in-process provider for tests and the demo server.
type MemoryProvider struct {
	mu        sync.Mutex
	events    []ProviderEvent
	connected bool
	seq       int

	// Err, when set, is returned by every call.
	Err error
	// Block, when set, is waited on by ListEvents and CreateEvent.
	Block chan struct{}
}

// NewMemoryProvider returns a connected provider seeded with events.
func NewMemoryProvider(events ...ProviderEvent) *MemoryProvider {
	return &MemoryProvider{events: append([]ProviderEvent{}, events...), connected: true}
}

func (m *MemoryProvider) Name() string { return "memory" }

func (m *MemoryProvider) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SetConnected toggles the connection state.
func (m *MemoryProvider) SetConnected(v bool) {
	m.mu.Lock()
	m.connected = v
	m.mu.Unlock()
}

func (m *MemoryProvider) wait(ctx context.Context) error {
	if m.Block == nil {
		return nil
	}
	select {
	case <-m.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListEvents returns stored events whose start lies in [start, end].
func (m *MemoryProvider) ListEvents(ctx context.Context, start, end time.Time) ([]ProviderEvent, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var out []ProviderEvent
	for _, e := range m.events {
		t, err := e.Start.instant(time.UTC)
		if err != nil || t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateEvent stores e under a generated id.
func (m *MemoryProvider) CreateEvent(ctx context.Context, e ProviderEvent) (ProviderEvent, error) {
	if err := m.wait(ctx); err != nil {
		return ProviderEvent{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return ProviderEvent{}, m.Err
	}
	m.seq++
	e.ID = fmt.Sprintf("mem-%d", m.seq)
	m.events = append(m.events, e)
	return e, nil
}

// Events returns everything stored.
func (m *MemoryProvider) Events() []ProviderEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ProviderEvent{}, m.events...)
}
