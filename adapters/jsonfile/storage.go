package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dailybag/core"
	"dailybag/engine"
)

// userState is the on-disk shape for one user's board.
type userState struct {
	Chores   []core.ChoreRecord `json:"chores"`
	Lifetime int                `json:"lifetime"`
}

// Store persists entire state to a single JSON file.
// Suitable for demos and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data map[core.UserID]*userState
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[core.UserID]*userState{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]*userState
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s.data[core.UserID(k)] = v
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	raw := make(map[string]*userState, len(s.data))
	for k, v := range s.data {
		raw[string(k)] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) get(user core.UserID) *userState {
	if st, ok := s.data[user]; ok {
		return st
	}
	st := &userState{}
	s.data[user] = st
	return st
}

func (s *Store) ListRecords(_ context.Context, user core.UserID) ([]core.ChoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(user)
	out := make([]core.ChoreRecord, len(st.Chores))
	copy(out, st.Chores)
	return out, nil
}

func (s *Store) PutRecord(_ context.Context, rec core.ChoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(rec.AssignedTo)
	for i := range st.Chores {
		if st.Chores[i].ID == rec.ID {
			st.Chores[i] = rec
			return s.persist()
		}
	}
	st.Chores = append(st.Chores, rec)
	return s.persist()
}

func (s *Store) CompleteRecord(_ context.Context, user core.UserID, choreID string, at time.Time) (core.ChoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(user)
	for i := range st.Chores {
		if st.Chores[i].ID != choreID {
			continue
		}
		if st.Chores[i].Completed {
			return st.Chores[i], engine.ErrAlreadyCompleted
		}
		st.Chores[i].Completed = true
		st.Chores[i].CompletedBy = user
		st.Chores[i].CompletedAt = &at
		if err := s.persist(); err != nil {
			return core.ChoreRecord{}, err
		}
		return st.Chores[i], nil
	}
	return core.ChoreRecord{}, engine.ErrChoreNotFound
}

func (s *Store) LifetimePoints(_ context.Context, user core.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(user).Lifetime, nil
}

func (s *Store) AddLifetimePoints(_ context.Context, user core.UserID, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(user)
	if delta > 0 {
		st.Lifetime += delta
		if err := s.persist(); err != nil {
			return 0, err
		}
	}
	return st.Lifetime, nil
}

var _ engine.Storage = (*Store)(nil)
