package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memEntry struct {
	snap     Snapshot
	expireAt time.Time
}

type memoryStore struct {
	mu  sync.Mutex
	lru *lru.Cache[string, memEntry]
	ttl time.Duration
	now func() time.Time
}

// NewMemoryStore keeps up to size sessions in process, evicting the least
// recently used. A non-positive ttl disables expiry.
func NewMemoryStore(size int, ttl time.Duration) Store {
	return newMemoryStore(size, ttl, time.Now)
}

func newMemoryStore(size int, ttl time.Duration, now func() time.Time) *memoryStore {
	if size <= 0 {
		size = 256
	}
	c, _ := lru.New[string, memEntry](size)
	return &memoryStore{lru: c, ttl: ttl, now: now}
}

func (s *memoryStore) Put(_ context.Context, id string, snap Snapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = s.now().UTC()
	}
	e := memEntry{snap: snap}
	if s.ttl > 0 {
		e.expireAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.lru.Add(id, e)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lru.Get(id)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if !e.expireAt.IsZero() && !s.now().Before(e.expireAt) {
		s.lru.Remove(id)
		return Snapshot{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return e.snap, nil
}

func (s *memoryStore) GetMeta(ctx context.Context, id string) ([]byte, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Meta, nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }
