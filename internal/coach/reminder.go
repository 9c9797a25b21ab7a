package coach

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

// Notifier tells a learner (or their parent) that reviews are waiting.
type Notifier interface {
	NotifyDue(ctx context.Context, learnerID string, due []practice.Attempt) error
}

// LogNotifier writes due-review reminders to the log.
type LogNotifier struct{}

func (LogNotifier) NotifyDue(_ context.Context, learnerID string, due []practice.Attempt) error {
	slog.Info("reviews due", "learner_id", learnerID, "count", len(due))
	return nil
}

// Reminder periodically scans every learner for due reviews. A learner is
// reminded again only when their due set changes.
type Reminder struct {
	engine    *Engine
	notifier  Notifier
	interval  time.Duration
	scheduler *gocron.Scheduler

	mu   sync.Mutex
	sent map[string]string // learner -> due set last notified
}

// NewReminder creates a reminder that runs every interval once started.
func NewReminder(engine *Engine, notifier Notifier, interval time.Duration) *Reminder {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Reminder{
		engine:    engine,
		notifier:  notifier,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
		sent:      make(map[string]string),
	}
}

// Start schedules the scan and returns immediately.
func (r *Reminder) Start() error {
	if r.interval <= 0 {
		return fmt.Errorf("reminder interval must be positive, got %s", r.interval)
	}
	if _, err := r.scheduler.Every(r.interval).Do(r.run); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	r.scheduler.StartAsync()
	slog.Info("reminder started", "interval", r.interval.String())
	return nil
}

// Stop terminates the scheduled scan.
func (r *Reminder) Stop() {
	r.scheduler.Stop()
}

func (r *Reminder) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()
	if _, err := r.Scan(ctx); err != nil {
		slog.Error("reminder scan failed", "error", err)
	}
}

// Scan notifies every learner whose due reviews changed since the last
// notification and returns how many were notified. A failure for one
// learner is logged, does not stop the scan and is retried next time.
func (r *Reminder) Scan(ctx context.Context) (int, error) {
	learners, err := r.engine.Learners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list learners: %w", err)
	}

	notified := 0
	for _, id := range learners {
		due, err := r.engine.DueItems(ctx, id)
		if err != nil {
			slog.Warn("failed to load due reviews", "learner_id", id, "error", err)
			continue
		}
		key := dueKey(due)
		if !r.changed(id, key) {
			continue
		}
		if err := r.notifier.NotifyDue(ctx, id, due); err != nil {
			slog.Warn("failed to send reminder", "learner_id", id, "error", err)
			continue
		}
		r.remember(id, key)
		notified++
	}
	return notified, nil
}

// changed reports whether key needs a notification. An empty due set
// resets the learner.
func (r *Reminder) changed(learnerID, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key == "" {
		delete(r.sent, learnerID)
		return false
	}
	return r.sent[learnerID] != key
}

func (r *Reminder) remember(learnerID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[learnerID] = key
}

// dueKey identifies a due set by its exercises and their last miss.
func dueKey(due []practice.Attempt) string {
	keys := make([]string, 0, len(due))
	for _, a := range due {
		keys = append(keys, a.ExerciseID+"@"+strconv.FormatInt(a.Timestamp.UnixMilli(), 10))
	}
	slices.Sort(keys)
	return strings.Join(keys, ",")
}
