package job

import (
	"github.com/osmike/jobrun/internal/domain"
	"sync"
	"time"
)

// state holds the current lifecycle state and its timestamps.
//
// Writers hold Job.mu; the inner mutex only protects readers that run
// without it (listeners, monitoring, other goroutines).
type state struct {
	mu      sync.RWMutex
	current domain.State
	startAt time.Time
	endAt   time.Time
}

func newState() *state {
	return &state{current: domain.Preparing}
}

func (s *state) get() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *state) startedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startAt
}

func (s *state) endedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endAt
}

// set stores the new state and records the first start and the first final state.
func (s *state) set(from, to domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if from == domain.Preparing && s.startAt.IsZero() {
		s.startAt = now
	}
	if to.Final() && s.endAt.IsZero() {
		s.endAt = now
	}
	s.current = to
}
