package memory

import (
	"context"
	"sync"
	"time"

	"dailybag/core"
	"dailybag/engine"
)

// Store is a concurrent in-memory chore store.
type Store struct {
	users sync.Map // map[core.UserID]*userRecord
}

type userRecord struct {
	mu       sync.Mutex
	chores   map[string]core.ChoreRecord
	order    []string // insertion order, so listings are stable
	lifetime int
}

func New() *Store { return &Store{} }

func (s *Store) getOrCreate(user core.UserID) *userRecord {
	if v, ok := s.users.Load(user); ok {
		return v.(*userRecord)
	}
	rec := &userRecord{chores: map[string]core.ChoreRecord{}}
	actual, _ := s.users.LoadOrStore(user, rec)
	return actual.(*userRecord)
}

func (s *Store) ListRecords(_ context.Context, user core.UserID) ([]core.ChoreRecord, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]core.ChoreRecord, 0, len(rec.order))
	for _, id := range rec.order {
		out = append(out, rec.chores[id])
	}
	return out, nil
}

func (s *Store) PutRecord(_ context.Context, r core.ChoreRecord) error {
	rec := s.getOrCreate(r.AssignedTo)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, ok := rec.chores[r.ID]; !ok {
		rec.order = append(rec.order, r.ID)
	}
	rec.chores[r.ID] = r
	return nil
}

func (s *Store) CompleteRecord(_ context.Context, user core.UserID, choreID string, at time.Time) (core.ChoreRecord, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	r, ok := rec.chores[choreID]
	if !ok {
		return core.ChoreRecord{}, engine.ErrChoreNotFound
	}
	if r.Completed {
		return r, engine.ErrAlreadyCompleted
	}
	r.Completed = true
	r.CompletedBy = user
	r.CompletedAt = &at
	rec.chores[choreID] = r
	return r, nil
}

func (s *Store) LifetimePoints(_ context.Context, user core.UserID) (int, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.lifetime, nil
}

func (s *Store) AddLifetimePoints(_ context.Context, user core.UserID, delta int) (int, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if delta > 0 {
		rec.lifetime += delta
	}
	return rec.lifetime, nil
}

var _ engine.Storage = (*Store)(nil)
