package storage

import (
	"context"
	"sync"
	"time"

	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/model"
)

// DefaultSaveDelay is the quiet period before a debounced save.
const DefaultSaveDelay = time.Second

// Saver debounces writes: every Trigger restarts the timer, and when it
// fires the latest snapshot is saved once.
type Saver struct {
	adapter  Adapter
	snapshot func() model.AppData
	delay    time.Duration

	// saveMu is held across snapshot and write so an older snapshot can
	// never land after a newer one.
	saveMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	saves   int
	lastErr error
	closed  bool
}

// NewSaver creates a saver that reads the state to persist from snapshot.
func NewSaver(a Adapter, snapshot func() model.AppData, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Saver{adapter: a, snapshot: snapshot, delay: delay}
}

// Trigger schedules a save after the quiet period.
func (s *Saver) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Flush(ctx)
	})
}

// Flush saves now if a save is pending.
func (s *Saver) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return nil
	}
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	err := s.adapter.Save(ctx, s.snapshot())

	s.mu.Lock()
	s.saves++
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		logger.Error("Failed to save data", logger.Err(err))
		return err
	}
	logger.Debug("Data saved")
	return nil
}

// Close flushes pending work and ignores later triggers.
func (s *Saver) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}

// Saves returns how many writes were attempted.
func (s *Saver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// LastError returns the result of the most recent write.
func (s *Saver) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
