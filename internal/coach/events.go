package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventType names a practice analytics event.
type EventType string

const (
	EventExerciseIssued    EventType = "exercise_issued"
	EventAttemptRecorded   EventType = "attempt_recorded"
	EventDifficultyChanged EventType = "difficulty_changed"
	EventHistoryCleared    EventType = "history_cleared"
	EventHistoryImported   EventType = "history_imported"
)

// ErrInvalidEvent is returned for events without a type or learner.
var ErrInvalidEvent = errors.New("coach: invalid event")

// Event is one row of the learner's activity trail. Data is free-form and
// stored as JSONB.
type Event struct {
	LearnerID string
	Type      EventType
	Data      map[string]any
	CreatedAt time.Time
}

func (e Event) validate() error {
	switch {
	case e.Type == "":
		return fmt.Errorf("%w: type is required", ErrInvalidEvent)
	case e.LearnerID == "":
		return fmt.Errorf("%w: learner_id is required", ErrInvalidEvent)
	}
	return nil
}

// EventLogger records engine activity. Failures are logged by the engine
// and never fail the practice call.
type EventLogger interface {
	LogEvent(event Event) error
}

type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error { return nil }

// MemoryEventLogger keeps events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if err := event.validate(); err != nil {
		return err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of everything logged so far.
func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func (l *MemoryEventLogger) OfType(t EventType) []Event {
	var out []Event
	for _, e := range l.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (l *MemoryEventLogger) ForLearner(learnerID string) []Event {
	var out []Event
	for _, e := range l.Events() {
		if e.LearnerID == learnerID {
			out = append(out, e)
		}
	}
	return out
}

// PostgresEventLogger appends to the events table created by
// database.Migrate.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return errors.New("coach: event logger has no pool")
	}
	if err := event.validate(); err != nil {
		return err
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	const insert = `INSERT INTO events (learner_id, event_type, data, created_at)
		VALUES ($1, $2, $3::jsonb, $4)`
	if _, err := l.pool.Exec(ctx, insert, event.LearnerID, string(event.Type), string(data), event.CreatedAt); err != nil {
		return fmt.Errorf("insert %s event: %w", event.Type, err)
	}

	slog.Debug("event logged", "type", event.Type, "learner_id", event.LearnerID)
	return nil
}
