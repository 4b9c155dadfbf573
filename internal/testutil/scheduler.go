package testutil

import (
	"sync"
	"time"

	"github.com/joeycumines/walkthrough/internal/playback"
)

// ManualScheduler is a playback.Scheduler driven by a virtual clock. Timers
// only fire from Advance or RunUntilIdle, on the calling goroutine, in
// deadline order (ties in scheduling order).
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler returns a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements playback.Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) playback.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + max(d, 0), seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Stop implements playback.Timer.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	t.s.remove(t)
	return true
}

// Now returns the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers scheduled by the callbacks themselves.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		t := s.next(target)
		if t == nil {
			break
		}
		t.f()
	}
	s.mu.Lock()
	s.now = max(s.now, target)
	s.mu.Unlock()
}

// RunUntilIdle fires timers in order until none remain, or limit callbacks
// have run. It returns the number of callbacks run.
func (s *ManualScheduler) RunUntilIdle(limit int) int {
	n := 0
	for n < limit {
		t := s.next(-1)
		if t == nil {
			break
		}
		t.f()
		n++
	}
	return n
}

// next pops the earliest timer due at or before target (any timer when
// target is negative), advancing the clock to its deadline.
func (s *ManualScheduler) next(target time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *manualTimer
	for _, t := range s.timers {
		if target >= 0 && t.at > target {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	s.remove(best)
	best.fired = true
	s.now = max(s.now, best.at)
	return best
}

// remove must be called with s.mu held.
func (s *ManualScheduler) remove(t *manualTimer) {
	for i, other := range s.timers {
		if other == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}
