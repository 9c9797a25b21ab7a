package practice

import (
	"fmt"
	"sort"
	"time"
)

const day = 24 * time.Hour

// DefaultReviewIntervals returns the fixed spaced-repetition thresholds:
// 1, 3 and 7 days.
func DefaultReviewIntervals() []time.Duration {
	return []time.Duration{1 * day, 3 * day, 7 * day}
}

// Scheduler selects missed exercises that are due for review.
type Scheduler struct {
	intervals []time.Duration
}

var defaultScheduler = &Scheduler{intervals: DefaultReviewIntervals()}

// NewScheduler creates a scheduler with the given ascending intervals.
// An empty list uses DefaultReviewIntervals.
func NewScheduler(intervals []time.Duration) (*Scheduler, error) {
	if len(intervals) == 0 {
		return &Scheduler{intervals: DefaultReviewIntervals()}, nil
	}
	for i, iv := range intervals {
		if iv <= 0 {
			return nil, fmt.Errorf("%w: interval %s", ErrInvalidIntervals, iv)
		}
		if i > 0 && iv <= intervals[i-1] {
			return nil, fmt.Errorf("%w: %s follows %s", ErrInvalidIntervals, iv, intervals[i-1])
		}
	}
	return &Scheduler{intervals: append([]time.Duration(nil), intervals...)}, nil
}

// Intervals returns a copy of the configured thresholds.
func (s *Scheduler) Intervals() []time.Duration {
	return append([]time.Duration(nil), s.intervals...)
}

// DueItems returns the latest incorrect attempt of every exercise identity
// that is due at now, under the default intervals. A zero now means the
// current time.
func DueItems(attempts []Attempt, now time.Time) []Attempt {
	return defaultScheduler.DueItems(attempts, now)
}

// DueItems returns the latest attempt of each exercise identity that was
// answered incorrectly and has been waiting at least the smallest interval.
// Each identity appears at most once, oldest first. Identities whose latest
// attempt was correct are excluded.
func (s *Scheduler) DueItems(attempts []Attempt, now time.Time) []Attempt {
	latest := s.missed(attempts)
	if now.IsZero() {
		now = time.Now()
	}

	due := make([]Attempt, 0, len(latest))
	for _, a := range latest {
		if s.stage(now.Sub(a.Timestamp)) > 0 {
			due = append(due, a)
		}
	}
	return due
}

// Items returns a review item for every identity whose latest attempt was
// incorrect, due or not, oldest first.
func (s *Scheduler) Items(attempts []Attempt, now time.Time) []ReviewItem {
	latest := s.missed(attempts)
	if now.IsZero() {
		now = time.Now()
	}

	items := make([]ReviewItem, 0, len(latest))
	for _, a := range latest {
		stage := s.stage(now.Sub(a.Timestamp))
		items = append(items, ReviewItem{
			ExerciseID:    a.ExerciseID,
			Skill:         a.Skill,
			Difficulty:    a.Difficulty,
			LastAttemptAt: a.Timestamp,
			DueAt:         a.Timestamp.Add(s.thresholds()[0]),
			Due:           stage > 0,
			Stage:         stage,
		})
	}
	return items
}

// thresholds guards the zero Scheduler.
func (s *Scheduler) thresholds() []time.Duration {
	if len(s.intervals) == 0 {
		return defaultScheduler.intervals
	}
	return s.intervals
}

// stage counts the intervals that have fully elapsed.
func (s *Scheduler) stage(elapsed time.Duration) int {
	n := 0
	for _, iv := range s.thresholds() {
		if elapsed < iv {
			break
		}
		n++
	}
	return n
}

// missed reduces history to the latest attempt per identity in one pass and
// keeps the incorrect ones. Equal timestamps resolve to the later record.
func (s *Scheduler) missed(attempts []Attempt) []Attempt {
	index := make(map[string]int)
	latest := make([]Attempt, 0)
	for _, a := range attempts {
		if !a.matchable() {
			continue
		}
		i, ok := index[a.ExerciseID]
		if !ok {
			index[a.ExerciseID] = len(latest)
			latest = append(latest, a)
			continue
		}
		if !a.Timestamp.Before(latest[i].Timestamp) {
			latest[i] = a
		}
	}

	missed := latest[:0]
	for _, a := range latest {
		if !a.Correct {
			missed = append(missed, a)
		}
	}
	sort.SliceStable(missed, func(i, j int) bool {
		return missed[i].Timestamp.Before(missed[j].Timestamp)
	})
	return missed
}
