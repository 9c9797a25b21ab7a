package coach

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/p-n-ai/pai-practice/internal/platform/cache"
	"github.com/p-n-ai/pai-practice/internal/practice"
)

// Issued is an exercise handed to a learner and not yet answered.
type Issued struct {
	Exercise practice.Exercise `json:"exercise"`
	IssuedAt time.Time         `json:"issued_at"`
}

// IssuedStore is the ledger of outstanding exercises. Take removes the entry
// so each exercise is scored at most once.
type IssuedStore interface {
	Put(ctx context.Context, learnerID string, item Issued) error
	Take(ctx context.Context, learnerID, exerciseID string) (Issued, bool, error)
}

// MemoryIssued is an in-memory IssuedStore. Entries older than ttl are
// treated as absent.
type MemoryIssued struct {
	ttl   time.Duration
	now   func() time.Time
	items map[string]Issued
	mu    sync.Mutex
}

// NewMemoryIssued creates an in-memory ledger. A zero ttl never expires.
func NewMemoryIssued(ttl time.Duration) *MemoryIssued {
	return &MemoryIssued{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]Issued),
	}
}

func issuedKey(learnerID, exerciseID string) string {
	return cache.Key("issued", learnerID, exerciseID)
}

func (m *MemoryIssued) Put(_ context.Context, learnerID string, item Issued) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evict()
	m.items[issuedKey(learnerID, item.Exercise.ID)] = item
	return nil
}

func (m *MemoryIssued) Take(_ context.Context, learnerID, exerciseID string) (Issued, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evict()
	key := issuedKey(learnerID, exerciseID)
	item, ok := m.items[key]
	delete(m.items, key)
	return item, ok, nil
}

func (m *MemoryIssued) evict() {
	if m.ttl <= 0 {
		return
	}
	cutoff := m.now().Add(-m.ttl)
	for k, it := range m.items {
		if it.IssuedAt.Before(cutoff) {
			delete(m.items, k)
		}
	}
}

// RedisIssued stores outstanding exercises as JSON with a TTL.
type RedisIssued struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRedisIssued(c *cache.Cache, ttl time.Duration) *RedisIssued {
	return &RedisIssued{cache: c, ttl: ttl}
}

func (r *RedisIssued) Put(ctx context.Context, learnerID string, item Issued) error {
	if err := r.cache.SetJSON(ctx, issuedKey(learnerID, item.Exercise.ID), item, r.ttl); err != nil {
		return fmt.Errorf("store issued exercise: %w", err)
	}
	return nil
}

func (r *RedisIssued) Take(ctx context.Context, learnerID, exerciseID string) (Issued, bool, error) {
	var item Issued
	ok, err := r.cache.TakeJSON(ctx, issuedKey(learnerID, exerciseID), &item)
	if err != nil {
		return Issued{}, false, fmt.Errorf("take issued exercise: %w", err)
	}
	return item, ok, nil
}
