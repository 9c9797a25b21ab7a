package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

// PostgresStore is a PostgreSQL-backed AttemptStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed attempt store. The attempts
// table must exist; see database.DB.Migrate.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

const insertAttemptPG = `INSERT INTO attempts
	(learner_id, exercise_id, skill, difficulty, is_correct, confidence, attempted_at, time_taken_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (s *PostgresStore) Append(ctx context.Context, learnerID string, a practice.Attempt) error {
	return s.AppendAll(ctx, learnerID, []practice.Attempt{a})
}

// AppendAll inserts attempts in one transaction, in order.
func (s *PostgresStore) AppendAll(ctx context.Context, learnerID string, attempts []practice.Attempt) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i, a := range attempts {
			if err := checkAttempt(learnerID, a); err != nil {
				return fmt.Errorf("attempt %d: %w", i, err)
			}
			if _, err := tx.Exec(ctx, insertAttemptPG,
				learnerID,
				a.ExerciseID,
				string(a.Skill),
				a.Difficulty.String(),
				a.Correct,
				a.Confidence,
				a.Timestamp,
				a.TimeTaken.Milliseconds(),
			); err != nil {
				return fmt.Errorf("insert attempt %d: %w", i, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) History(ctx context.Context, learnerID string) ([]practice.Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT exercise_id, skill, difficulty, is_correct, confidence, attempted_at, time_taken_ms
		 FROM attempts
		 WHERE learner_id = $1
		 ORDER BY id ASC`,
		learnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []practice.Attempt{}
	for rows.Next() {
		var r attemptRow
		if err := rows.Scan(
			&r.ExerciseID,
			&r.Skill,
			&r.Difficulty,
			&r.Correct,
			&r.Confidence,
			&r.AttemptedAt,
			&r.TimeTakenMS,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, r.attempt())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

func (s *PostgresStore) Learners(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT learner_id FROM attempts ORDER BY learner_id`)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Clear(ctx context.Context, learnerID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM attempts WHERE learner_id = $1`, learnerID)
	if err != nil {
		return 0, fmt.Errorf("clear attempts: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// attemptRow is the column layout shared by the SQL stores.
type attemptRow struct {
	ExerciseID  string    `db:"exercise_id"`
	Skill       string    `db:"skill"`
	Difficulty  string    `db:"difficulty"`
	Correct     bool      `db:"is_correct"`
	Confidence  int       `db:"confidence"`
	AttemptedAt time.Time `db:"attempted_at"`
	TimeTakenMS int64     `db:"time_taken_ms"`
}

// attempt converts a row. Unknown difficulty text decodes to the zero value,
// which the adapter and scheduler tolerate.
func (r attemptRow) attempt() practice.Attempt {
	d, _ := practice.ParseDifficulty(r.Difficulty)
	return practice.Attempt{
		ExerciseID: r.ExerciseID,
		Skill:      practice.Skill(r.Skill),
		Difficulty: d,
		Correct:    r.Correct,
		Confidence: r.Confidence,
		Timestamp:  r.AttemptedAt,
		TimeTaken:  time.Duration(r.TimeTakenMS) * time.Millisecond,
	}
}
