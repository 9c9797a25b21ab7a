package coach

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

// SQLiteStore is a SQLite-backed AttemptStore for local use.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore wraps a handle opened with database.OpenSQLite.
func NewSQLiteStore(db *sqlx.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, learnerID string, a practice.Attempt) error {
	return s.AppendAll(ctx, learnerID, []practice.Attempt{a})
}

// AppendAll inserts attempts in one transaction, in order.
func (s *SQLiteStore) AppendAll(ctx context.Context, learnerID string, attempts []practice.Attempt) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	for i, a := range attempts {
		if err := checkAttempt(learnerID, a); err != nil {
			return fmt.Errorf("attempt %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attempts
			   (learner_id, exercise_id, skill, difficulty, is_correct, confidence, attempted_at, time_taken_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			learnerID,
			a.ExerciseID,
			string(a.Skill),
			a.Difficulty.String(),
			a.Correct,
			a.Confidence,
			a.Timestamp.UTC(),
			a.TimeTaken.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert attempt %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, learnerID string) ([]practice.Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var rows []attemptRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT exercise_id, skill, difficulty, is_correct, confidence, attempted_at, time_taken_ms
		 FROM attempts
		 WHERE learner_id = ?
		 ORDER BY id ASC`,
		learnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}

	attempts := make([]practice.Attempt, 0, len(rows))
	for _, r := range rows {
		attempts = append(attempts, r.attempt())
	}
	return attempts, nil
}

func (s *SQLiteStore) Learners(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT DISTINCT learner_id FROM attempts ORDER BY learner_id`); err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, learnerID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE learner_id = ?`, learnerID)
	if err != nil {
		return 0, fmt.Errorf("clear attempts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear attempts: %w", err)
	}
	return int(n), nil
}
