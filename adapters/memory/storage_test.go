package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailybag/core"
	"dailybag/engine"
)

func TestCompleteRecordLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := core.UserID("alex")

	if err := s.PutRecord(ctx, core.ChoreRecord{ID: "dishes", Title: "Do the dishes", AssignedTo: user, Points: 10}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.CompleteRecord(ctx, user, "dishes", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Completed || rec.CompletedBy != user || rec.CompletedAt == nil {
		t.Fatalf("record not completed: %+v", rec)
	}

	if _, err := s.CompleteRecord(ctx, user, "dishes", time.Now()); !errors.Is(err, engine.ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if _, err := s.CompleteRecord(ctx, user, "missing", time.Now()); !errors.Is(err, engine.ErrChoreNotFound) {
		t.Fatalf("err = %v, want ErrChoreNotFound", err)
	}
}

func TestListRecordsStableOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := core.UserID("alex")
	for _, id := range []string{"a", "b", "c"} {
		if err := s.PutRecord(ctx, core.ChoreRecord{ID: id, AssignedTo: user, Points: 1}); err != nil {
			t.Fatal(err)
		}
	}
	records, err := s.ListRecords(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0].ID != "a" || records[2].ID != "c" {
		t.Fatalf("records = %+v", records)
	}
}

func TestLifetimePointsMonotone(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := core.UserID("alex")

	if _, err := s.AddLifetimePoints(ctx, user, 10); err != nil {
		t.Fatal(err)
	}
	// Negative deltas are ignored: lifetime never decreases.
	total, err := s.AddLifetimePoints(ctx, user, -5)
	if err != nil {
		t.Fatal(err)
	}
	if total != 10 {
		t.Fatalf("total = %d, want 10", total)
	}
}
