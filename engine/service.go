package engine

import (
	"context"
	"time"

	"dailybag/core"
)

// Service wires the chore store, level table, and dispatcher into the
// completion workflow: complete a chore, recompute progress, and raise the
// celebration signals the delta calls for.
type Service struct {
	storage Storage
	table   *core.LevelTable
	bus     *Dispatcher
}

func NewService(storage Storage, table *core.LevelTable, bus *Dispatcher) *Service {
	if storage == nil || table == nil || bus == nil {
		panic("NewService requires non-nil storage, table, and bus")
	}
	return &Service{storage: storage, table: table, bus: bus}
}

// Origin is the screen coordinate a completion was triggered from; celebration
// popups spawn there.
type Origin struct {
	X float64
	Y float64
}

// CompleteChore marks the chore done for user, updates the lifetime counter,
// and dispatches choreCompleted plus, when the level rose, exactly one
// levelChanged carrying the final level. Returns the fresh progress snapshot.
func (s *Service) CompleteChore(ctx context.Context, user core.UserID, choreID string, origin Origin) (core.UserProgress, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return core.UserProgress{}, err
	}

	before, err := s.Progress(ctx, normalized)
	if err != nil {
		return core.UserProgress{}, err
	}

	rec, err := s.storage.CompleteRecord(ctx, normalized, choreID, time.Now().UTC())
	if err != nil {
		return core.UserProgress{}, err
	}
	awarded := rec.AwardedPoints()
	if _, err := s.storage.AddLifetimePoints(ctx, normalized, awarded); err != nil {
		return core.UserProgress{}, err
	}

	after, err := s.Progress(ctx, normalized)
	if err != nil {
		return core.UserProgress{}, err
	}

	kind := core.KindPoints
	s.bus.DispatchChoreCompleted(ctx, core.NewChoreCompleted(
		normalized, awarded, after.EarnedPoints, rec.Title, origin.X, origin.Y, kind))

	if after.CurrentLevel > before.CurrentLevel {
		// One signal per recomputation, carrying the final level; the
		// dispatcher latch drops it if this level was already announced.
		s.bus.DispatchLevelChanged(ctx, core.NewLevelChanged(normalized, after.CurrentLevel))
	}
	return after, nil
}

// Progress recomputes the derived progress snapshot for user.
func (s *Service) Progress(ctx context.Context, user core.UserID) (core.UserProgress, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return core.UserProgress{}, err
	}
	records, err := s.storage.ListRecords(ctx, normalized)
	if err != nil {
		return core.UserProgress{}, err
	}
	lifetime, err := s.storage.LifetimePoints(ctx, normalized)
	if err != nil {
		return core.UserProgress{}, err
	}
	return core.ComputeProgress(s.table, records, normalized, lifetime), nil
}

// Records returns the user's chore records.
func (s *Service) Records(ctx context.Context, user core.UserID) ([]core.ChoreRecord, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return nil, err
	}
	return s.storage.ListRecords(ctx, normalized)
}

// Levels exposes the shared level ladder.
func (s *Service) Levels() *core.LevelTable { return s.table }

// Subscribe convenience passthroughs.

func (s *Service) OnChoreCompleted(fn Handler) func() { return s.bus.OnChoreCompleted(fn) }
func (s *Service) OnLevelChanged(fn Handler) func()   { return s.bus.OnLevelChanged(fn) }

// Bus exposes the dispatcher for collaborators that dispatch directly.
func (s *Service) Bus() *Dispatcher { return s.bus }
