package core

import (
	"testing"
	"time"
)

func completedAt(id string, user UserID, at time.Time) ChoreRecord {
	return ChoreRecord{ID: id, AssignedTo: user, Points: 5, Completed: true, CompletedAt: &at}
}

func TestStreaksConsecutiveDays(t *testing.T) {
	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.Local)
	records := []ChoreRecord{
		completedAt("a", "alex", now.Add(-1*time.Hour)),     // today
		completedAt("b", "alex", now.AddDate(0, 0, -1)),     // yesterday
		completedAt("c", "alex", now.AddDate(0, 0, -1)),     // same day, deduped
		completedAt("d", "alex", now.AddDate(0, 0, -2)),     // two days ago
		completedAt("old", "alex", now.AddDate(0, 0, -10)),  // isolated
		completedAt("other", "janice", now.AddDate(0, 0, -3)),
	}
	current, longest := Streaks(records, "alex", now)
	if current != 3 {
		t.Fatalf("current = %d, want 3", current)
	}
	if longest != 3 {
		t.Fatalf("longest = %d, want 3", longest)
	}
}

func TestStreakBrokenWithoutToday(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	records := []ChoreRecord{
		completedAt("a", "alex", now.AddDate(0, 0, -1)),
		completedAt("b", "alex", now.AddDate(0, 0, -2)),
	}
	current, longest := Streaks(records, "alex", now)
	if current != 0 {
		t.Fatalf("current = %d, want 0 when today has no completion", current)
	}
	if longest != 2 {
		t.Fatalf("longest = %d, want 2", longest)
	}
}

func TestStreaksEmpty(t *testing.T) {
	current, longest := Streaks(nil, "alex", time.Now())
	if current != 0 || longest != 0 {
		t.Fatalf("got %d/%d, want 0/0", current, longest)
	}
}
