package practice

import (
	"fmt"
	"time"
)

// Confidence bounds for the learner's self-report.
const (
	MinConfidence = 1
	MaxConfidence = 3
)

// Attempt is the recorded outcome of a learner answering or abandoning an
// exercise. Attempt history is append-only.
type Attempt struct {
	ExerciseID string        `json:"exercise_id"`
	Skill      Skill         `json:"skill"`
	Difficulty Difficulty    `json:"difficulty"`
	Correct    bool          `json:"is_correct"`
	Confidence int           `json:"confidence"`
	Timestamp  time.Time     `json:"timestamp"`
	TimeTaken  time.Duration `json:"time_taken"`
}

// NewAttempt records an outcome for ex. Skill and difficulty always come
// from the exercise. A zero confidence defaults to MinConfidence.
func NewAttempt(ex Exercise, correct bool, confidence int, at time.Time, taken time.Duration) (Attempt, error) {
	if confidence == 0 {
		confidence = MinConfidence
	}
	if confidence < MinConfidence || confidence > MaxConfidence {
		return Attempt{}, fmt.Errorf("%w: got %d", ErrInvalidConfidence, confidence)
	}
	if taken < 0 {
		taken = 0
	}
	return Attempt{
		ExerciseID: ex.IdentityKey(),
		Skill:      ex.Skill,
		Difficulty: ex.Difficulty,
		Correct:    correct,
		Confidence: confidence,
		Timestamp:  at,
		TimeTaken:  taken,
	}, nil
}

// matchable reports whether the attempt can be grouped by identity and
// placed in time. Records missing either are ignored by the scheduler.
func (a Attempt) matchable() bool {
	return a.ExerciseID != "" && !a.Timestamp.IsZero()
}

// ReviewItem is a derived view of an exercise identity whose latest attempt
// was incorrect.
type ReviewItem struct {
	ExerciseID    string     `json:"exercise_id"`
	Skill         Skill      `json:"skill"`
	Difficulty    Difficulty `json:"difficulty"`
	LastAttemptAt time.Time  `json:"last_attempt_at"`
	DueAt         time.Time  `json:"due_at"`
	Due           bool       `json:"due"`
	Stage         int        `json:"stage"` // review intervals already elapsed
}
