package battle

import (
	"sync"
	"time"
)

// Scheduler runs named deferred jobs. Scheduling a key again replaces the
// pending job; jobs themselves must re-check state under the battle lock,
// since a replaced timer can already be mid-fire.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

// Schedule runs fn after d, replacing any pending job under the same key.
func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

// Cancel stops a pending job. A job already firing is not interrupted; it
// must no-op on its own staleness check.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// CancelPrefix stops every pending job whose key starts with prefix.
func (s *Scheduler) CancelPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

// Stop cancels everything.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
