// Package storage persists the application aggregate.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/existflow/focusboard/internal/model"
)

// ErrNoBackend is returned when no storage backend is usable.
var ErrNoBackend = errors.New("no storage backend available")

// Adapter saves and loads the whole aggregate. Load reports found=false
// when nothing was persisted yet; callers then use model.DefaultAppData.
type Adapter interface {
	Save(ctx context.Context, data model.AppData) error
	Load(ctx context.Context) (data model.AppData, found bool, err error)
}

// Memory keeps the aggregate in process.
type Memory struct {
	mu    sync.Mutex
	data  *model.AppData
	saves int
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Save(_ context.Context, data model.AppData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := data.Clone()
	m.data = &d
	m.saves++
	return nil
}

func (m *Memory) Load(context.Context) (model.AppData, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return model.AppData{}, false, nil
	}
	d := m.data.Clone()
	d.Normalize()
	return d, true, nil
}

// Saves returns how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// LoadOrDefault loads through a, falling back to defaults when nothing
// was persisted or the load failed. The error is still returned so the
// caller can log it.
func LoadOrDefault(ctx context.Context, a Adapter) (model.AppData, error) {
	data, found, err := a.Load(ctx)
	if err != nil || !found {
		return model.DefaultAppData(), err
	}
	data.Normalize()
	return data, nil
}
