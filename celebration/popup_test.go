package celebration

import (
	"testing"
	"time"

	"dailybag/core"
	"dailybag/timeline"
)

func shortPopupConfig() PopupConfig {
	cfg := DefaultPopupConfig()
	cfg.Entrance = 5 * time.Millisecond
	cfg.Ascend = 10 * time.Millisecond
	cfg.Exit = 5 * time.Millisecond
	cfg.BonusDelay = 5 * time.Millisecond
	cfg.BonusStagger = 5 * time.Millisecond
	cfg.StaleAfter = time.Second
	return cfg
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestPopupLifecycle(t *testing.T) {
	q := NewPopupQueue(shortPopupConfig(), timeline.NopAnimator{}, nil)
	defer q.Close()

	id := q.Enqueue(core.KindPoints, 10, "Dishes", 100, 200)
	if id == "" {
		t.Fatal("expected a popup id")
	}
	active := q.Active()
	if len(active) != 1 {
		t.Fatalf("expected 1 active popup, got %d", len(active))
	}
	if active[0].Kind != core.KindPoints || active[0].Points != 10 || active[0].Title != "Dishes" {
		t.Fatalf("unexpected popup: %+v", active[0])
	}
	if dx := active[0].OriginX - 100; dx < -15 || dx > 15 {
		t.Fatalf("origin x jitter out of range: %v", active[0].OriginX)
	}

	waitFor(t, func() bool { return q.Len() == 0 }, "popup never left the queue")
}

func TestPopupBonusFanOut(t *testing.T) {
	cfg := shortPopupConfig()
	cfg.Entrance = 300 * time.Millisecond
	cfg.Ascend = 500 * time.Millisecond
	q := NewPopupQueue(cfg, timeline.NopAnimator{}, nil)
	defer q.Close()

	q.Enqueue(core.KindPoints, 30, "Laundry", 50, 50)
	waitFor(t, func() bool { return q.Len() == 3 }, "expected primary plus 2 bonus popups")

	bonuses := 0
	for _, ev := range q.Active() {
		if ev.Kind == core.KindBonus {
			bonuses++
			if ev.Points != 4 {
				t.Fatalf("bonus worth should be 4 for 30 points, got %d", ev.Points)
			}
		}
	}
	if bonuses != 2 {
		t.Fatalf("expected 2 bonus popups, got %d", bonuses)
	}
}

func TestPopupBigBonusFanOut(t *testing.T) {
	cfg := shortPopupConfig()
	cfg.Entrance = 300 * time.Millisecond
	cfg.Ascend = 500 * time.Millisecond
	q := NewPopupQueue(cfg, timeline.NopAnimator{}, nil)
	defer q.Close()

	q.Enqueue(core.KindStreak, 60, "Garage", 50, 50)
	waitFor(t, func() bool { return q.Len() == 4 }, "expected primary plus 3 bonus popups")
}

func TestPopupSmallCompletionNoFanOut(t *testing.T) {
	cfg := shortPopupConfig()
	cfg.Entrance = 200 * time.Millisecond
	q := NewPopupQueue(cfg, timeline.NopAnimator{}, nil)
	defer q.Close()

	q.Enqueue(core.KindPoints, 10, "Trash", 50, 50)
	time.Sleep(50 * time.Millisecond)
	if got := q.Len(); got != 1 {
		t.Fatalf("expected only the primary popup, got %d", got)
	}
}

func TestPopupBonusKindDoesNotFanOut(t *testing.T) {
	cfg := shortPopupConfig()
	cfg.Entrance = 200 * time.Millisecond
	q := NewPopupQueue(cfg, timeline.NopAnimator{}, nil)
	defer q.Close()

	q.Enqueue(core.KindBonus, 100, "", 50, 50)
	time.Sleep(50 * time.Millisecond)
	if got := q.Len(); got != 1 {
		t.Fatalf("bonus popups must not cascade, got %d", got)
	}
}

func TestPopupPrunesFiredBonusTimers(t *testing.T) {
	q := NewPopupQueue(shortPopupConfig(), timeline.NopAnimator{}, nil)
	defer q.Close()

	for i := 0; i < 50; i++ {
		q.Enqueue(core.KindPoints, 60, "Laundry", 0, 0)
	}

	waitFor(t, func() bool { return q.Len() == 0 }, "popups never drained")
	waitFor(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.pending) == 0
	}, "fired bonus timers still tracked")
}

func TestPopupMaxActiveEvictsOldest(t *testing.T) {
	cfg := shortPopupConfig()
	cfg.Entrance = time.Second
	cfg.Ascend = time.Second
	cfg.MaxActive = 3
	cfg.BonusThreshold = 1000
	q := NewPopupQueue(cfg, timeline.NopAnimator{}, nil)
	defer q.Close()

	first := q.Enqueue(core.KindPoints, 1, "a", 0, 0)
	q.Enqueue(core.KindPoints, 2, "b", 0, 0)
	q.Enqueue(core.KindPoints, 3, "c", 0, 0)
	q.Enqueue(core.KindPoints, 4, "d", 0, 0)

	if got := q.Len(); got != 3 {
		t.Fatalf("expected cap of 3, got %d", got)
	}
	for _, ev := range q.Active() {
		if ev.ID == first {
			t.Fatal("oldest popup should have been evicted")
		}
	}
}

func TestPopupStaleForceRemoval(t *testing.T) {
	cfg := shortPopupConfig()
	// Ascend loops forever so the timeline never completes on its own.
	cfg.StaleAfter = 20 * time.Millisecond
	q := newStuckQueue(cfg)
	defer q.Close()

	q.Enqueue(core.KindPoints, 5, "Stuck", 0, 0)
	waitFor(t, func() bool { return q.Len() == 0 }, "stale popup never force-removed")
}

// newStuckQueue builds a queue whose popups never finish their timelines,
// simulating an interrupted animation.
func newStuckQueue(cfg PopupConfig) *PopupQueue {
	cfg.Entrance = time.Hour
	cfg.Ascend = time.Hour
	cfg.Exit = time.Hour
	return NewPopupQueue(cfg, timeline.NopAnimator{}, nil)
}

func TestPopupCloseStopsEverything(t *testing.T) {
	cfg := shortPopupConfig()
	cfg.Entrance = 500 * time.Millisecond
	q := NewPopupQueue(cfg, timeline.NopAnimator{}, nil)

	q.Enqueue(core.KindPoints, 60, "Mow lawn", 0, 0)
	q.Close()

	if got := q.Len(); got != 0 {
		t.Fatalf("close should drop all popups, got %d", got)
	}
	if id := q.Enqueue(core.KindPoints, 10, "late", 0, 0); id != "" {
		t.Fatal("enqueue after close should be ignored")
	}
	time.Sleep(30 * time.Millisecond)
	if got := q.Len(); got != 0 {
		t.Fatalf("pending bonus popups should be cancelled, got %d", got)
	}
}

func TestPopupSounds(t *testing.T) {
	player := &fakePlayer{}
	sounds := NewDebouncer(player, nil, time.Nanosecond)
	q := NewPopupQueue(shortPopupConfig(), timeline.NopAnimator{}, sounds)
	defer q.Close()

	q.Enqueue(core.KindPoints, 5, "Sweep", 0, 0)
	q.Enqueue(core.KindBonus, 5, "", 0, 0)

	player.mu.Lock()
	defer player.mu.Unlock()
	if len(player.played) != 2 || player.played[0] != SoundCashRegister || player.played[1] != SoundBonus {
		t.Fatalf("unexpected sounds: %v", player.played)
	}
}
