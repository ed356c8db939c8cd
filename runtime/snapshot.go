// Package runtime holds the in-memory state shared between workers and services.
package runtime

import (
	"event-lab/domain"
	"slices"
	"sync"
	"time"
)

// Snapshot is the latest published candidate set.
// Readers always get their own copy, so a publish never changes a list already handed out.
type Snapshot struct {
	mu          sync.RWMutex
	events      []domain.Event
	refreshedAt time.Time
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

func (s *Snapshot) Publish(events []domain.Event, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = slices.Clone(events)
	s.refreshedAt = at
}

func (s *Snapshot) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// RefreshedAt is zero until the first publish.
func (s *Snapshot) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
