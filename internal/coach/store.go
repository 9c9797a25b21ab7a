// Package coach runs practice sessions for learners: it issues exercises,
// scores answers, keeps the append-only attempt log, tracks the current
// difficulty per skill and surfaces missed exercises for review.
package coach

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

const dbTimeout = 5 * time.Second

// ErrInvalidAttempt is returned by stores for attempts missing an
// exercise, skill or difficulty.
var ErrInvalidAttempt = errors.New("coach: invalid attempt")

// AttemptStore persists each learner's attempt history. History is
// append-only; Clear is the only way to remove attempts. AppendAll stores
// every attempt or none of them.
type AttemptStore interface {
	Append(ctx context.Context, learnerID string, a practice.Attempt) error
	AppendAll(ctx context.Context, learnerID string, attempts []practice.Attempt) error
	History(ctx context.Context, learnerID string) ([]practice.Attempt, error)
	Learners(ctx context.Context) ([]string, error)
	Clear(ctx context.Context, learnerID string) (int, error)
}

// MemoryStore is an in-memory implementation of AttemptStore.
type MemoryStore struct {
	attempts map[string][]practice.Attempt
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory attempt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string][]practice.Attempt),
	}
}

func checkAttempt(learnerID string, a practice.Attempt) error {
	switch {
	case learnerID == "":
		return fmt.Errorf("learner_id is required")
	case a.ExerciseID == "":
		return fmt.Errorf("%w: exercise_id is required", ErrInvalidAttempt)
	case !a.Skill.Valid():
		return fmt.Errorf("%w: skill %q", ErrInvalidAttempt, a.Skill)
	case !a.Difficulty.Valid():
		return fmt.Errorf("%w: difficulty %d", ErrInvalidAttempt, int(a.Difficulty))
	}
	return nil
}

func (s *MemoryStore) Append(ctx context.Context, learnerID string, a practice.Attempt) error {
	return s.AppendAll(ctx, learnerID, []practice.Attempt{a})
}

func (s *MemoryStore) AppendAll(_ context.Context, learnerID string, attempts []practice.Attempt) error {
	for i, a := range attempts {
		if err := checkAttempt(learnerID, a); err != nil {
			return fmt.Errorf("attempt %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[learnerID] = append(s.attempts[learnerID], attempts...)
	return nil
}

func (s *MemoryStore) History(_ context.Context, learnerID string) ([]practice.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]practice.Attempt{}, s.attempts[learnerID]...), nil
}

func (s *MemoryStore) Learners(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.attempts))
	for id, attempts := range s.attempts {
		if len(attempts) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Clear(_ context.Context, learnerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.attempts[learnerID])
	delete(s.attempts, learnerID)
	return n, nil
}
