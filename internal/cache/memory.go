package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryCounterStore is an in-process CounterStore for single-instance
// deployments without Redis.
type MemoryCounterStore struct {
	mu     sync.Mutex
	counts map[uint]int64
	scores map[uint]float64
}

// NewMemoryCounterStore creates an empty store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counts: make(map[uint]int64),
		scores: make(map[uint]float64),
	}
}

func (s *MemoryCounterStore) GetFollowersCount(_ context.Context, userID uint) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.counts[userID]
	return v, ok, nil
}

func (s *MemoryCounterStore) SetFollowersCount(_ context.Context, userID uint, count int64) error {
	s.mu.Lock()
	s.counts[userID] = count
	s.mu.Unlock()
	return nil
}

func (s *MemoryCounterStore) CondIncrFollowersCount(_ context.Context, userID uint) error {
	s.mu.Lock()
	if v, ok := s.counts[userID]; ok {
		s.counts[userID] = v + 1
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryCounterStore) CondDecrFollowersCount(_ context.Context, userID uint) error {
	s.mu.Lock()
	if v, ok := s.counts[userID]; ok && v > 0 {
		s.counts[userID] = v - 1
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryCounterStore) RecordAccess(_ context.Context, userID uint) error {
	s.mu.Lock()
	s.scores[userID]++
	s.mu.Unlock()
	return nil
}

func (s *MemoryCounterStore) GetTopHotKeys(_ context.Context, n int64) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint, 0, len(s.scores))
	for id := range s.scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.scores[ids[i]] != s.scores[ids[j]] {
			return s.scores[ids[i]] > s.scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n >= 0 && int64(len(ids)) > n {
		ids = ids[:n]
	}
	return ids, nil
}

func (s *MemoryCounterStore) ResetHotKeyScores(context.Context) error {
	s.mu.Lock()
	s.scores = make(map[uint]float64)
	s.mu.Unlock()
	return nil
}

type feedEntry struct {
	page    FeedPage
	expires time.Time
}

// MemoryFeedCache is an in-process FeedCache.
type MemoryFeedCache struct {
	mu      sync.Mutex
	entries map[[2]int]feedEntry
	now     func() time.Time
}

// NewMemoryFeedCache creates an empty cache.
func NewMemoryFeedCache() *MemoryFeedCache {
	return &MemoryFeedCache{
		entries: make(map[[2]int]feedEntry),
		now:     time.Now,
	}
}

func (c *MemoryFeedCache) GetHomePage(_ context.Context, page, size int) (*FeedPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[[2]int{page, size}]
	if !ok || c.now().After(e.expires) {
		return nil, ErrCacheMiss
	}
	p := e.page
	return &p, nil
}

func (c *MemoryFeedCache) SetHomePage(_ context.Context, page, size int, p *FeedPage, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[[2]int{page, size}] = feedEntry{page: *p, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryFeedCache) InvalidateHome(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[[2]int]feedEntry)
	c.mu.Unlock()
	return nil
}

var (
	_ CounterStore = (*MemoryCounterStore)(nil)
	_ FeedCache    = (*MemoryFeedCache)(nil)
)
