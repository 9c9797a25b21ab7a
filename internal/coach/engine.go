package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-practice/internal/catalog"
	"github.com/p-n-ai/pai-practice/internal/practice"
	"github.com/p-n-ai/pai-practice/internal/report"
)

const defaultIssuedTTL = 24 * time.Hour

var (
	// ErrUnknownExercise is returned when an answer refers to an exercise
	// that was never issued, already answered, or expired.
	ErrUnknownExercise = errors.New("coach: unknown or expired exercise")
	// ErrSkillDisabled is returned for skills switched off in the catalog.
	ErrSkillDisabled = errors.New("coach: skill disabled")
	// ErrLearnerRequired is returned when no learner id is given.
	ErrLearnerRequired = errors.New("coach: learner id is required")
)

// EngineConfig holds dependencies for the practice engine.
type EngineConfig struct {
	Attempts    AttemptStore
	Levels      LevelStore
	Issued      IssuedStore
	EventLogger EventLogger
	Catalog     *catalog.Loader
	Generator   *practice.Generator
	Scheduler   *practice.Scheduler
	Policy      practice.AdaptPolicy // zero value uses practice.DefaultAdaptPolicy
	Now         func() time.Time
}

// Engine is the practice session service.
type Engine struct {
	attempts    AttemptStore
	levels      LevelStore
	issued      IssuedStore
	eventLogger EventLogger
	catalog     *catalog.Loader
	generator   *practice.Generator
	scheduler   *practice.Scheduler
	policy      practice.AdaptPolicy
	now         func() time.Time
}

// NewEngine creates a new practice engine. Missing dependencies fall back
// to in-memory implementations.
func NewEngine(cfg EngineConfig) *Engine {
	attempts := cfg.Attempts
	if attempts == nil {
		attempts = NewMemoryStore()
	}
	levels := cfg.Levels
	if levels == nil {
		levels = NewMemoryLevels()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	issued := cfg.Issued
	if issued == nil {
		mem := NewMemoryIssued(defaultIssuedTTL)
		mem.now = now
		issued = mem
	}
	eventLogger := cfg.EventLogger
	if eventLogger == nil {
		eventLogger = NopEventLogger{}
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	gen := cfg.Generator
	if gen == nil {
		gen = practice.NewGenerator(nil)
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched, _ = practice.NewScheduler(nil)
	}
	policy := cfg.Policy
	if policy == (practice.AdaptPolicy{}) {
		policy = practice.DefaultAdaptPolicy
	}
	return &Engine{
		attempts:    attempts,
		levels:      levels,
		issued:      issued,
		eventLogger: eventLogger,
		catalog:     cat,
		generator:   gen,
		scheduler:   sched,
		policy:      policy,
		now:         now,
	}
}

// Answer is a learner's response to an issued exercise.
type Answer struct {
	ExerciseID string        `json:"exercise_id"`
	Response   string        `json:"response"`
	Confidence int           `json:"confidence,omitempty"`
	TimeTaken  time.Duration `json:"-"` // zero means time since issue
}

// Result is the outcome of a submitted or skipped exercise.
type Result struct {
	Attempt      practice.Attempt    `json:"attempt"`
	Correct      bool                `json:"correct"`
	Answer       string              `json:"answer"`
	Level        practice.Difficulty `json:"level"`
	LevelChanged bool                `json:"level_changed"`
}

// Catalog returns the skill catalog the engine serves.
func (e *Engine) Catalog() *catalog.Loader {
	return e.catalog
}

// NextExercise issues a new exercise for skill at the learner's current level.
func (e *Engine) NextExercise(ctx context.Context, learnerID string, skill practice.Skill) (practice.Exercise, error) {
	if learnerID == "" {
		return practice.Exercise{}, ErrLearnerRequired
	}
	if !skill.Valid() {
		return practice.Exercise{}, fmt.Errorf("%w: %q", practice.ErrUnsupportedSkill, skill)
	}
	if entry, _ := e.catalog.Get(skill); !entry.IsEnabled() {
		return practice.Exercise{}, fmt.Errorf("%w: %s", ErrSkillDisabled, skill)
	}

	level, err := e.Level(ctx, learnerID, skill)
	if err != nil {
		return practice.Exercise{}, err
	}

	ex, err := e.generator.Generate(skill, level)
	if err != nil {
		return practice.Exercise{}, err
	}
	if err := e.issue(ctx, learnerID, &ex); err != nil {
		return practice.Exercise{}, err
	}
	return ex, nil
}

// Level returns the learner's current difficulty for skill. Learners start
// on Easy.
func (e *Engine) Level(ctx context.Context, learnerID string, skill practice.Skill) (practice.Difficulty, error) {
	if !skill.Valid() {
		return 0, fmt.Errorf("%w: %q", practice.ErrUnsupportedSkill, skill)
	}
	d, ok, err := e.levels.Level(ctx, learnerID, skill)
	if err != nil {
		return 0, fmt.Errorf("load level: %w", err)
	}
	if !ok || !d.Valid() {
		return practice.Easy, nil
	}
	return d, nil
}

// Submit scores an answer to an issued exercise and records the attempt.
func (e *Engine) Submit(ctx context.Context, learnerID string, ans Answer) (Result, error) {
	if err := checkConfidence(ans.Confidence); err != nil {
		return Result{}, err
	}
	item, err := e.take(ctx, learnerID, ans.ExerciseID)
	if err != nil {
		return Result{}, err
	}
	correct := practice.CheckAnswer(item.Exercise, ans.Response)
	return e.finish(ctx, learnerID, item, correct, ans.Confidence, ans.TimeTaken)
}

// Skip abandons an issued exercise. An abandoned exercise counts as an
// incorrect attempt.
func (e *Engine) Skip(ctx context.Context, learnerID, exerciseID string, confidence int) (Result, error) {
	if err := checkConfidence(confidence); err != nil {
		return Result{}, err
	}
	item, err := e.take(ctx, learnerID, exerciseID)
	if err != nil {
		return Result{}, err
	}
	return e.finish(ctx, learnerID, item, false, confidence, 0)
}

// History returns the learner's attempts in append order.
func (e *Engine) History(ctx context.Context, learnerID string) ([]practice.Attempt, error) {
	history, err := e.attempts.History(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return history, nil
}

// DueItems returns the learner's missed exercises that are due for review.
func (e *Engine) DueItems(ctx context.Context, learnerID string) ([]practice.Attempt, error) {
	history, err := e.History(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return e.scheduler.DueItems(history, e.now()), nil
}

// ReviewQueue returns every missed exercise with its review status, due or not.
func (e *Engine) ReviewQueue(ctx context.Context, learnerID string) ([]practice.ReviewItem, error) {
	history, err := e.History(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return e.scheduler.Items(history, e.now()), nil
}

// ReviewExercises issues a fresh exercise for each due item, at the skill
// and difficulty of the missed attempt. Attempts on them are recorded under
// the missed exercise's identity.
func (e *Engine) ReviewExercises(ctx context.Context, learnerID string) ([]practice.Exercise, error) {
	if learnerID == "" {
		return nil, ErrLearnerRequired
	}
	due, err := e.DueItems(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	exercises := make([]practice.Exercise, 0, len(due))
	for _, item := range due {
		ex, err := e.generator.Review(item)
		if err != nil {
			slog.Warn("skipping review item", "learner_id", learnerID, "exercise_id", item.ExerciseID, "error", err)
			continue
		}
		if err := e.issue(ctx, learnerID, &ex); err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

// Report summarizes the learner's progress.
func (e *Engine) Report(ctx context.Context, learnerID string) (report.Report, error) {
	history, err := e.History(ctx, learnerID)
	if err != nil {
		return report.Report{}, err
	}
	return report.SummarizeWith(history, e.now(), e.scheduler), nil
}

// Import appends previously exported attempts and restores each imported
// skill's level from the last imported attempt, then adapts it once.
func (e *Engine) Import(ctx context.Context, learnerID string, attempts []practice.Attempt) (int, error) {
	if learnerID == "" {
		return 0, ErrLearnerRequired
	}
	if err := e.attempts.AppendAll(ctx, learnerID, attempts); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	skills := make(map[practice.Skill]bool)
	for _, a := range attempts {
		skills[a.Skill] = true
	}
	if err := e.restoreLevels(ctx, learnerID, skills); err != nil {
		return len(attempts), err
	}

	e.logEvent(learnerID, EventHistoryImported, map[string]any{"count": len(attempts)})
	slog.Info("history imported", "learner_id", learnerID, "count", len(attempts))
	return len(attempts), nil
}

// RestoreLevels recomputes every practised skill's level from history, for
// level stores that do not outlive the process.
func (e *Engine) RestoreLevels(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return ErrLearnerRequired
	}
	return e.restoreLevels(ctx, learnerID, nil)
}

// restoreLevels sets each skill to the difficulty of its last attempt moved
// once by the policy. A nil filter restores every skill.
func (e *Engine) restoreLevels(ctx context.Context, learnerID string, only map[practice.Skill]bool) error {
	history, err := e.History(ctx, learnerID)
	if err != nil {
		return err
	}
	last := make(map[practice.Skill]practice.Difficulty)
	for _, a := range history {
		last[a.Skill] = a.Difficulty
	}
	for _, skill := range practice.AllSkills() {
		d, ok := last[skill]
		if !ok || !d.Valid() || (only != nil && !only[skill]) {
			continue
		}
		next := e.policy.Next(history, skill, d)
		if err := e.levels.SetLevel(ctx, learnerID, skill, next); err != nil {
			return fmt.Errorf("restore level: %w", err)
		}
	}
	return nil
}

// Clear deletes the learner's attempt history and levels.
func (e *Engine) Clear(ctx context.Context, learnerID string) (int, error) {
	if learnerID == "" {
		return 0, ErrLearnerRequired
	}
	n, err := e.attempts.Clear(ctx, learnerID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	if err := e.levels.Reset(ctx, learnerID); err != nil {
		return n, fmt.Errorf("reset levels: %w", err)
	}

	e.logEvent(learnerID, EventHistoryCleared, map[string]any{"count": n})
	slog.Info("history cleared", "learner_id", learnerID, "count", n)
	return n, nil
}

// Learners lists learners with recorded attempts.
func (e *Engine) Learners(ctx context.Context) ([]string, error) {
	return e.attempts.Learners(ctx)
}

func (e *Engine) issue(ctx context.Context, learnerID string, ex *practice.Exercise) error {
	if ex.Hint == "" {
		ex.Hint = e.catalog.Hint(ex.Skill, ex.Difficulty)
	}
	if err := e.issued.Put(ctx, learnerID, Issued{Exercise: *ex, IssuedAt: e.now()}); err != nil {
		return fmt.Errorf("issue exercise: %w", err)
	}

	data := map[string]any{
		"exercise_id": ex.ID,
		"skill":       string(ex.Skill),
		"difficulty":  ex.Difficulty.String(),
	}
	if ex.ReviewOf != "" {
		data["review_of"] = ex.ReviewOf
	}
	e.logEvent(learnerID, EventExerciseIssued, data)
	return nil
}

func (e *Engine) take(ctx context.Context, learnerID, exerciseID string) (Issued, error) {
	if learnerID == "" {
		return Issued{}, ErrLearnerRequired
	}
	item, ok, err := e.issued.Take(ctx, learnerID, exerciseID)
	if err != nil {
		return Issued{}, fmt.Errorf("load issued exercise: %w", err)
	}
	if !ok {
		return Issued{}, fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseID)
	}
	return item, nil
}

// finish records the attempt and moves the skill's level.
func (e *Engine) finish(ctx context.Context, learnerID string, item Issued, correct bool, confidence int, taken time.Duration) (Result, error) {
	now := e.now()
	if taken <= 0 {
		taken = now.Sub(item.IssuedAt)
	}

	ex := item.Exercise
	attempt, err := practice.NewAttempt(ex, correct, confidence, now, taken)
	if err != nil {
		return Result{}, err
	}
	if err := e.attempts.Append(ctx, learnerID, attempt); err != nil {
		return Result{}, fmt.Errorf("record attempt: %w", err)
	}
	e.logEvent(learnerID, EventAttemptRecorded, map[string]any{
		"exercise_id": attempt.ExerciseID,
		"skill":       string(attempt.Skill),
		"difficulty":  attempt.Difficulty.String(),
		"correct":     correct,
		"time_ms":     attempt.TimeTaken.Milliseconds(),
	})

	current, err := e.Level(ctx, learnerID, ex.Skill)
	if err != nil {
		return Result{}, err
	}
	history, err := e.History(ctx, learnerID)
	if err != nil {
		return Result{}, err
	}
	next := e.policy.Next(history, ex.Skill, current)
	if next != current {
		if err := e.levels.SetLevel(ctx, learnerID, ex.Skill, next); err != nil {
			return Result{}, fmt.Errorf("save level: %w", err)
		}
		e.logEvent(learnerID, EventDifficultyChanged, map[string]any{
			"skill": string(ex.Skill),
			"from":  current.String(),
			"to":    next.String(),
		})
		slog.Info("difficulty changed",
			"learner_id", learnerID,
			"skill", ex.Skill,
			"from", current,
			"to", next,
		)
	}

	return Result{
		Attempt:      attempt,
		Correct:      correct,
		Answer:       ex.Answer,
		Level:        next,
		LevelChanged: next != current,
	}, nil
}

func (e *Engine) logEvent(learnerID string, eventType EventType, data map[string]any) {
	if err := e.eventLogger.LogEvent(Event{
		LearnerID: learnerID,
		Type:      eventType,
		Data:      data,
		CreatedAt: e.now(),
	}); err != nil {
		slog.Warn("failed to log event", "type", eventType, "learner_id", learnerID, "error", err)
	}
}

func checkConfidence(c int) error {
	if c != 0 && (c < practice.MinConfidence || c > practice.MaxConfidence) {
		return fmt.Errorf("%w: got %d", practice.ErrInvalidConfidence, c)
	}
	return nil
}
