package engine

import (
	"context"
	"errors"
	"time"

	"dailybag/core"
)

var (
	// ErrChoreNotFound is returned when a chore id does not exist for the user.
	ErrChoreNotFound = errors.New("chore not found")
	// ErrAlreadyCompleted is returned when completing a chore twice.
	ErrAlreadyCompleted = errors.New("chore already completed")
)

// Storage abstracts the chore store the engine reads and the lifetime-points
// counter it maintains.
type Storage interface {
	// ListRecords returns every chore record visible to user (assigned to or
	// completed by them).
	ListRecords(ctx context.Context, user core.UserID) ([]core.ChoreRecord, error)
	// PutRecord inserts or replaces a record.
	PutRecord(ctx context.Context, rec core.ChoreRecord) error
	// CompleteRecord marks the chore completed by user at the given time and
	// returns the updated record. ErrChoreNotFound / ErrAlreadyCompleted on
	// the obvious failures.
	CompleteRecord(ctx context.Context, user core.UserID, choreID string, at time.Time) (core.ChoreRecord, error)
	// LifetimePoints returns the monotone lifetime counter for user.
	LifetimePoints(ctx context.Context, user core.UserID) (int, error)
	// AddLifetimePoints increments the lifetime counter and returns the new value.
	AddLifetimePoints(ctx context.Context, user core.UserID, delta int) (int, error)
}
