package coach

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-practice/internal/platform/cache"
	"github.com/p-n-ai/pai-practice/internal/practice"
)

// LevelStore remembers the current difficulty per learner and skill.
type LevelStore interface {
	Level(ctx context.Context, learnerID string, skill practice.Skill) (practice.Difficulty, bool, error)
	SetLevel(ctx context.Context, learnerID string, skill practice.Skill, d practice.Difficulty) error
	Reset(ctx context.Context, learnerID string) error
}

// MemoryLevels is an in-memory LevelStore.
type MemoryLevels struct {
	levels map[string]map[practice.Skill]practice.Difficulty
	mu     sync.RWMutex
}

func NewMemoryLevels() *MemoryLevels {
	return &MemoryLevels{levels: make(map[string]map[practice.Skill]practice.Difficulty)}
}

func (m *MemoryLevels) Level(_ context.Context, learnerID string, skill practice.Skill) (practice.Difficulty, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.levels[learnerID][skill]
	return d, ok, nil
}

func (m *MemoryLevels) SetLevel(_ context.Context, learnerID string, skill practice.Skill, d practice.Difficulty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.levels[learnerID] == nil {
		m.levels[learnerID] = make(map[practice.Skill]practice.Difficulty)
	}
	m.levels[learnerID][skill] = d
	return nil
}

func (m *MemoryLevels) Reset(_ context.Context, learnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.levels, learnerID)
	return nil
}

// RedisLevels keeps levels in one hash per learner, field = skill.
type RedisLevels struct {
	client *redis.Client
}

func NewRedisLevels(c *cache.Cache) *RedisLevels {
	return &RedisLevels{client: c.Client}
}

func levelsKey(learnerID string) string {
	return cache.Key("levels", learnerID)
}

func (r *RedisLevels) Level(ctx context.Context, learnerID string, skill practice.Skill) (practice.Difficulty, bool, error) {
	v, err := r.client.HGet(ctx, levelsKey(learnerID), string(skill)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get level: %w", err)
	}
	d, err := practice.ParseDifficulty(v)
	if err != nil {
		return 0, false, nil
	}
	return d, true, nil
}

func (r *RedisLevels) SetLevel(ctx context.Context, learnerID string, skill practice.Skill, d practice.Difficulty) error {
	if err := r.client.HSet(ctx, levelsKey(learnerID), string(skill), d.String()).Err(); err != nil {
		return fmt.Errorf("set level: %w", err)
	}
	return nil
}

func (r *RedisLevels) Reset(ctx context.Context, learnerID string) error {
	if err := r.client.Del(ctx, levelsKey(learnerID)).Err(); err != nil {
		return fmt.Errorf("reset levels: %w", err)
	}
	return nil
}
