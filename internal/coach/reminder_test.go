package coach_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/practice"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string]int
	sends map[string]int
	fail  string
}

func (n *recordingNotifier) NotifyDue(_ context.Context, learnerID string, due []practice.Attempt) error {
	if learnerID == n.fail {
		return errors.New("mailbox full")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[learnerID] = len(due)
	n.sends[learnerID]++
	return nil
}

func TestReminder_Scan(t *testing.T) {
	clock := newClock()
	engine, _ := newTestEngine(t, clock)

	answerNext(t, engine, "amy", practice.Addition, false)
	answerNext(t, engine, "amy", practice.Time, false)
	answerNext(t, engine, "ben", practice.Addition, true)
	answerNext(t, engine, "cat", practice.Money, false)
	clock.Advance(2 * 24 * time.Hour)

	notifier := &recordingNotifier{calls: map[string]int{}, sends: map[string]int{}, fail: "cat"}
	reminder := coach.NewReminder(engine, notifier, time.Hour)

	n, err := reminder.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Scan() notified %d, want 1", n)
	}
	if notifier.calls["amy"] != 2 {
		t.Errorf("amy notified with %d items, want 2", notifier.calls["amy"])
	}
	if _, ok := notifier.calls["ben"]; ok {
		t.Error("ben has nothing due and should not be notified")
	}
}

func TestReminder_ScanOnlyWhenDueSetChanges(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	engine, _ := newTestEngine(t, clock)
	notifier := &recordingNotifier{calls: map[string]int{}, sends: map[string]int{}}
	reminder := coach.NewReminder(engine, notifier, time.Hour)

	answerNext(t, engine, "amy", practice.Addition, false)
	clock.Advance(2 * 24 * time.Hour)

	scan := func(want int) {
		t.Helper()
		n, err := reminder.Scan(ctx)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if n != want {
			t.Errorf("Scan() notified %d, want %d", n, want)
		}
	}

	scan(1)
	clock.Advance(time.Hour)
	scan(0)
	if notifier.sends["amy"] != 1 {
		t.Errorf("amy reminded %d times for the same due set, want 1", notifier.sends["amy"])
	}

	// A new miss becoming due changes the set.
	answerNext(t, engine, "amy", practice.Time, false)
	clock.Advance(2 * 24 * time.Hour)
	scan(1)
	if notifier.calls["amy"] != 2 {
		t.Errorf("amy notified with %d items, want 2", notifier.calls["amy"])
	}
}

func TestReminder_StartStop(t *testing.T) {
	engine, _ := newTestEngine(t, newClock())

	if err := coach.NewReminder(engine, nil, 0).Start(); err == nil {
		t.Error("Start() with zero interval should fail")
	}

	reminder := coach.NewReminder(engine, nil, time.Hour)
	if err := reminder.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	reminder.Stop()
}
