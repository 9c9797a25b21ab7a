package coach_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/platform/cache"
	"github.com/p-n-ai/pai-practice/internal/platform/database"
	"github.com/p-n-ai/pai-practice/internal/practice"
)

func startPostgres(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("practice"),
		postgres.WithUsername("practice"),
		postgres.WithPassword("practice"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}

	db, err := database.New(ctx, dsn, 4, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func startRedis(t *testing.T) *cache.Cache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	endpoint, err := ctr.Endpoint(ctx, "redis")
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}

	c, err := cache.New(ctx, endpoint)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPostgresStore(t *testing.T) {
	db := startPostgres(t)
	store, err := coach.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	testAttemptStore(t, store)
}

func TestPostgresEventLogger(t *testing.T) {
	db := startPostgres(t)
	logger := coach.NewPostgresEventLogger(db.Pool)

	err := logger.LogEvent(coach.Event{
		LearnerID: "amy",
		Type:      coach.EventAttemptRecorded,
		Data:      map[string]any{"skill": "addition", "correct": true},
	})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	var n int
	if err := db.Pool.QueryRow(context.Background(),
		`SELECT count(*) FROM events WHERE learner_id = $1 AND data->>'skill' = 'addition'`, "amy",
	).Scan(&n); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if n != 1 {
		t.Errorf("events = %d, want 1", n)
	}
}

func TestRedisLevelsAndIssued(t *testing.T) {
	c := startRedis(t)
	ctx := context.Background()

	levels := coach.NewRedisLevels(c)
	if _, ok, err := levels.Level(ctx, "amy", practice.Money); err != nil || ok {
		t.Fatalf("Level() on empty hash = %v, %v, want not found", ok, err)
	}
	if err := levels.SetLevel(ctx, "amy", practice.Money, practice.Medium); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	d, ok, err := levels.Level(ctx, "amy", practice.Money)
	if err != nil || !ok || d != practice.Medium {
		t.Errorf("Level() = %v, %v, %v, want medium", d, ok, err)
	}
	if err := levels.Reset(ctx, "amy"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, ok, _ := levels.Level(ctx, "amy", practice.Money); ok {
		t.Error("Level() after Reset should not be found")
	}

	issued := coach.NewRedisIssued(c, time.Hour)
	ex, err := practice.GenerateExercise(practice.Fractions, practice.Hard)
	if err != nil {
		t.Fatalf("GenerateExercise() error = %v", err)
	}
	if err := issued.Put(ctx, "amy", coach.Issued{Exercise: ex, IssuedAt: time.Now()}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	item, ok, err := issued.Take(ctx, "amy", ex.ID)
	if err != nil || !ok {
		t.Fatalf("Take() = %v, %v, want found", ok, err)
	}
	if !practice.CheckAnswer(item.Exercise, ex.Answer) {
		t.Errorf("decoded exercise does not accept its own answer %q", ex.Answer)
	}
	if _, ok, _ := issued.Take(ctx, "amy", ex.ID); ok {
		t.Error("second Take() should not be found")
	}
}

func TestEngine_PostgresAndRedis(t *testing.T) {
	db := startPostgres(t)
	c := startRedis(t)
	ctx := context.Background()

	store, err := coach.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	engine := coach.NewEngine(coach.EngineConfig{
		Attempts:    store,
		Levels:      coach.NewRedisLevels(c),
		Issued:      coach.NewRedisIssued(c, time.Hour),
		EventLogger: coach.NewPostgresEventLogger(db.Pool),
	})

	for range 5 {
		answerNext(t, engine, "amy", practice.Percentages, true)
	}
	level, err := engine.Level(ctx, "amy", practice.Percentages)
	if err != nil {
		t.Fatalf("Level() error = %v", err)
	}
	if level != practice.Medium {
		t.Errorf("Level() = %s, want medium", level)
	}
}
