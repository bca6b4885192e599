package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/pkg/metrics"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	profiles map[string]model.Profile
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]model.Profile)}
}

// Put inserts or replaces p.
func (s *MemoryStore) Put(_ context.Context, p model.Profile) (bool, error) {
	start := time.Now()
	defer observeSince(metrics.RecordRepositoryUpdateLatency, start)

	if err := p.Validate(); err != nil {
		return false, fmt.Errorf("put: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.profiles[p.ID]
	s.profiles[p.ID] = p.Clone()
	if !exists {
		s.order = append(s.order, p.ID)
	}
	return !exists, nil
}

// Get returns a copy of the profile with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Profile, error) {
	start := time.Now()
	defer observeSince(metrics.RecordRepositoryQueryLatency, start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// List returns copies of every profile in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]model.Profile, error) {
	start := time.Now()
	defer observeSince(metrics.RecordRepositoryQueryLatency, start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id].Clone())
	}
	return out, nil
}

// Count returns the number of stored profiles.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

func observeSince(record func(float64), start time.Time) {
	record(float64(time.Since(start).Microseconds()) / 1000)
}
