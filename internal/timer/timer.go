// Package timer implements the clock face and the stopwatch.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// Stopwatch measures elapsed time across pauses.
type Stopwatch struct {
	mu        sync.Mutex
	running   bool
	startedAt time.Time
	paused    time.Duration // elapsed before the current run
	now       func() time.Time
}

// NewStopwatch returns a stopped stopwatch at zero.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

// SetClock overrides time.Now.
func (s *Stopwatch) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Start resumes counting. Starting a running stopwatch does nothing.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.startedAt = s.now()
}

// Pause stops counting and keeps the elapsed time.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.paused += s.now().Sub(s.startedAt)
	s.running = false
}

// Toggle starts a stopped stopwatch or pauses a running one.
func (s *Stopwatch) Toggle() {
	if s.Running() {
		s.Pause()
		return
	}
	s.Start()
}

// Reset stops and zeroes the stopwatch.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.paused = 0
	s.startedAt = time.Time{}
}

func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Elapsed returns the total counted time.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return s.paused
	}
	return s.paused + s.now().Sub(s.startedAt)
}

// Seconds returns whole elapsed seconds.
func (s *Stopwatch) Seconds() int {
	return int(s.Elapsed() / time.Second)
}

// FormatHMS renders whole seconds as HH:MM:SS. Hours are not wrapped.
func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// ClockFace returns the HH:MM:SS wall-clock reading of t.
func ClockFace(t time.Time) string {
	return t.Format("15:04:05")
}

// DateLine returns e.g. "Wed, Jan 01, 2025".
func DateLine(t time.Time) string {
	return t.Format("Mon, Jan 02, 2006")
}

// Greeting picks a salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 5:
		return "Working late"
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
