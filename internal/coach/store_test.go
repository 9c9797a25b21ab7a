package coach_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/platform/database"
	"github.com/p-n-ai/pai-practice/internal/practice"
)

func sqliteStore(t *testing.T) *coach.SQLiteStore {
	t.Helper()
	db, err := database.OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "practice.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store, err := coach.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	return store
}

// testAttemptStore exercises the AttemptStore contract.
func testAttemptStore(t *testing.T, store coach.AttemptStore) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)

	history, err := store.History(ctx, "amy")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("History() on empty store = %d, want 0", len(history))
	}

	want := []practice.Attempt{
		{ExerciseID: "e1", Skill: practice.Addition, Difficulty: practice.Easy, Correct: true, Confidence: 3, Timestamp: at, TimeTaken: 4 * time.Second},
		{ExerciseID: "e2", Skill: practice.Time, Difficulty: practice.Hard, Correct: false, Confidence: 1, Timestamp: at.Add(-time.Hour), TimeTaken: 1500 * time.Millisecond},
		{ExerciseID: "e1", Skill: practice.Addition, Difficulty: practice.Medium, Correct: false, Confidence: 2, Timestamp: at.Add(time.Minute)},
	}
	for _, a := range want {
		if err := store.Append(ctx, "amy", a); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := store.Append(ctx, "ben", want[0]); err != nil {
		t.Fatalf("Append(ben) error = %v", err)
	}
	if err := store.Append(ctx, "", want[0]); err == nil {
		t.Error("Append() with empty learner should fail")
	}

	history, err = store.History(ctx, "amy")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != len(want) {
		t.Fatalf("History() = %d attempts, want %d", len(history), len(want))
	}
	// Insertion order, not timestamp order.
	for i := range want {
		got := history[i]
		if got.ExerciseID != want[i].ExerciseID || got.Skill != want[i].Skill ||
			got.Difficulty != want[i].Difficulty || got.Correct != want[i].Correct ||
			got.Confidence != want[i].Confidence || got.TimeTaken != want[i].TimeTaken ||
			!got.Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("History()[%d] = %+v, want %+v", i, got, want[i])
		}
	}

	learners, err := store.Learners(ctx)
	if err != nil {
		t.Fatalf("Learners() error = %v", err)
	}
	if len(learners) != 2 || learners[0] != "amy" || learners[1] != "ben" {
		t.Errorf("Learners() = %v, want [amy ben]", learners)
	}

	n, err := store.Clear(ctx, "amy")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if history, _ := store.History(ctx, "amy"); len(history) != 0 {
		t.Errorf("History() after Clear = %d, want 0", len(history))
	}
	if history, _ := store.History(ctx, "ben"); len(history) != 1 {
		t.Errorf("History(ben) after Clear(amy) = %d, want 1", len(history))
	}

	// A bad record in the middle leaves nothing behind.
	batch := []practice.Attempt{want[0], {Skill: practice.Money, Difficulty: practice.Easy, Timestamp: at}, want[1]}
	if err := store.AppendAll(ctx, "cat", batch); !errors.Is(err, coach.ErrInvalidAttempt) {
		t.Errorf("AppendAll() error = %v, want ErrInvalidAttempt", err)
	}
	if history, _ := store.History(ctx, "cat"); len(history) != 0 {
		t.Errorf("History(cat) after failed AppendAll = %d, want 0", len(history))
	}
	if err := store.AppendAll(ctx, "cat", want[:2]); err != nil {
		t.Fatalf("AppendAll() error = %v", err)
	}
	if history, _ := store.History(ctx, "cat"); len(history) != 2 || history[1].ExerciseID != "e2" {
		t.Errorf("History(cat) = %+v, want e1, e2", history)
	}
}

func TestMemoryStore(t *testing.T) {
	testAttemptStore(t, coach.NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	testAttemptStore(t, sqliteStore(t))
}

func TestSQLiteStore_NilDB(t *testing.T) {
	if _, err := coach.NewSQLiteStore(nil); err == nil {
		t.Error("NewSQLiteStore(nil) should fail")
	}
}

func TestPostgresStore_NilPool(t *testing.T) {
	if _, err := coach.NewPostgresStore(nil); err == nil {
		t.Error("NewPostgresStore(nil) should fail")
	}
}

func TestMemoryLevels(t *testing.T) {
	ctx := context.Background()
	levels := coach.NewMemoryLevels()

	if _, ok, _ := levels.Level(ctx, "amy", practice.Money); ok {
		t.Error("Level() on empty store should not be found")
	}
	if err := levels.SetLevel(ctx, "amy", practice.Money, practice.Hard); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	d, ok, err := levels.Level(ctx, "amy", practice.Money)
	if err != nil || !ok || d != practice.Hard {
		t.Errorf("Level() = %v, %v, %v, want hard", d, ok, err)
	}
	if err := levels.Reset(ctx, "amy"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, ok, _ := levels.Level(ctx, "amy", practice.Money); ok {
		t.Error("Level() after Reset should not be found")
	}
}

func TestMemoryIssued(t *testing.T) {
	ctx := context.Background()
	issued := coach.NewMemoryIssued(time.Hour)
	ex := practice.Exercise{ID: "ex-1", Skill: practice.Addition, Difficulty: practice.Easy, Answer: "4"}

	if err := issued.Put(ctx, "amy", coach.Issued{Exercise: ex, IssuedAt: time.Now()}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok, _ := issued.Take(ctx, "ben", "ex-1"); ok {
		t.Error("Take() for another learner should not be found")
	}
	item, ok, err := issued.Take(ctx, "amy", "ex-1")
	if err != nil || !ok {
		t.Fatalf("Take() = %v, %v, want found", ok, err)
	}
	if item.Exercise.Answer != "4" {
		t.Errorf("Take() exercise = %+v", item.Exercise)
	}
	if _, ok, _ := issued.Take(ctx, "amy", "ex-1"); ok {
		t.Error("second Take() should not be found")
	}
}

func TestMemoryIssued_Expiry(t *testing.T) {
	ctx := context.Background()
	issued := coach.NewMemoryIssued(time.Minute)
	ex := practice.Exercise{ID: "old"}

	issued.Put(ctx, "amy", coach.Issued{Exercise: ex, IssuedAt: time.Now().Add(-2 * time.Minute)})
	if _, ok, _ := issued.Take(ctx, "amy", "old"); ok {
		t.Error("Take() of expired exercise should not be found")
	}
}
