// Package debounce coalesces bursts of notifications into one flush after a
// quiet period. The TUI uses it to persist UI state and append audit rows
// without writing on every keystroke/navigation.
package debounce

import (
	"sync"
	"time"
)

type Saver struct {
	debounce time.Duration
	flush    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
	stopped bool
}

// NewSaver returns a Saver calling flush once per quiet period. A
// non-positive debounce falls back to 2s.
func NewSaver(debounce time.Duration, flush func()) *Saver {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Saver{debounce: debounce, flush: flush}
}

// Notify records that state changed and (re)schedules the flush. Classic
// debounce: every call pushes the deadline out; only the quiet period ends
// it.
func (s *Saver) Notify() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		s.mu.Unlock()
		return
	}
	s.timer.Reset(s.debounce)
	s.mu.Unlock()
}

// Flush runs a pending flush immediately (teardown path: callers must not
// lose the last burst on exit).
func (s *Saver) Flush() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.pending || s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.mu.Unlock()
	s.flush()
}

// Stop cancels any scheduled flush; pending changes are dropped unless
// Flush was called first. Safe to call more than once.
func (s *Saver) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}

func (s *Saver) onTimer() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.running {
		// A flush is in flight; try again after another period.
		if s.timer != nil {
			s.timer.Reset(s.debounce)
		}
		s.mu.Unlock()
		return
	}
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.running = true
	s.mu.Unlock()

	s.flush()

	s.mu.Lock()
	s.running = false
	// Another Notify arrived while flushing; schedule a follow-up run.
	if s.pending && !s.stopped && s.timer != nil {
		s.timer.Reset(s.debounce)
	}
	s.mu.Unlock()
}
