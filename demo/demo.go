// Package demo ships a self-contained chore board with canned data so the
// app can be explored without a backend. Its stats come from the same
// derivation the live engine uses.
package demo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"dailybag/core"
	"dailybag/engine"
)

// Stats is the demo dashboard payload for one user.
type Stats struct {
	User           core.UserID       `json:"user"`
	Progress       core.UserProgress `json:"progress"`
	CompletedCount int               `json:"completed_count"`
	TotalCount     int               `json:"total_count"`
	CompletionRate float64           `json:"completion_rate"`
	CurrentStreak  int               `json:"current_streak"`
	LongestStreak  int               `json:"longest_streak"`
}

// Store holds the demo chore board. State lives in memory and can be
// snapshotted to disk between runs.
type Store struct {
	mu      sync.Mutex
	table   *core.LevelTable
	records []core.ChoreRecord
	now     func() time.Time
}

func NewStore(table *core.LevelTable, records []core.ChoreRecord) *Store {
	if table == nil {
		table = core.DefaultLevels()
	}
	cp := make([]core.ChoreRecord, len(records))
	copy(cp, records)
	return &Store{table: table, records: cp, now: time.Now}
}

// Records returns a snapshot of the board.
func (s *Store) Records() []core.ChoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ChoreRecord, len(s.records))
	copy(out, s.records)
	return out
}

// CompleteChore marks the chore done for the user and returns the updated
// record.
func (s *Store) CompleteChore(user core.UserID, choreID string) (core.ChoreRecord, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return core.ChoreRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != choreID {
			continue
		}
		if s.records[i].Completed {
			return core.ChoreRecord{}, engine.ErrAlreadyCompleted
		}
		at := s.now()
		s.records[i].Completed = true
		s.records[i].CompletedBy = user
		s.records[i].CompletedAt = &at
		return s.records[i], nil
	}
	return core.ChoreRecord{}, engine.ErrChoreNotFound
}

// Stats derives the dashboard numbers for the user from the board. In demo
// mode lifetime points equal earned points, since there is no prior history.
func (s *Store) Stats(user core.UserID) Stats {
	if normalized, err := core.NormalizeUserID(user); err == nil {
		user = normalized
	}
	s.mu.Lock()
	records := make([]core.ChoreRecord, len(s.records))
	copy(records, s.records)
	now := s.now()
	s.mu.Unlock()

	progress := core.ComputeProgress(s.table, records, user, 0)
	current, longest := core.Streaks(records, user, now)

	total, completed := 0, 0
	for _, r := range records {
		if r.Owner() != user {
			continue
		}
		total++
		if r.Completed {
			completed++
		}
	}
	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total)
	}

	return Stats{
		User:           user,
		Progress:       progress,
		CompletedCount: completed,
		TotalCount:     total,
		CompletionRate: rate,
		CurrentStreak:  current,
		LongestStreak:  longest,
	}
}

// Save snapshots the board to path as JSON, writing to a temp file first so
// a crash never leaves a torn snapshot.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.records, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("demo: marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".demo-*.json")
	if err != nil {
		return fmt.Errorf("demo: create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("demo: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("demo: close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("demo: replace snapshot: %w", err)
	}
	return nil
}

// Load replaces the board with the snapshot at path.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("demo: read snapshot: %w", err)
	}
	var records []core.ChoreRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("demo: decode snapshot: %w", err)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// DefaultChores seeds a family board: a mix of open and recently completed
// chores for two kids, enough history to show a streak.
func DefaultChores(now time.Time) []core.ChoreRecord {
	day := func(offset int, hour int) *time.Time {
		t := now.AddDate(0, 0, offset)
		t = time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
		return &t
	}
	done := func(title string, user core.UserID, points int, at *time.Time) core.ChoreRecord {
		return core.ChoreRecord{
			ID:          uuid.NewString(),
			Title:       title,
			AssignedTo:  user,
			CompletedBy: user,
			Points:      points,
			Completed:   true,
			CompletedAt: at,
		}
	}
	open := func(title string, user core.UserID, points int) core.ChoreRecord {
		return core.ChoreRecord{
			ID:         uuid.NewString(),
			Title:      title,
			AssignedTo: user,
			Points:     points,
		}
	}

	return []core.ChoreRecord{
		done("Make the bed", "mia", 5, day(-2, 8)),
		done("Feed the dog", "mia", 10, day(-1, 7)),
		done("Unload dishwasher", "mia", 15, day(0, 9)),
		open("Take out recycling", "mia", 10),
		open("Water the plants", "mia", 5),

		done("Set the table", "leo", 5, day(-1, 18)),
		done("Sweep the porch", "leo", 10, day(0, 10)),
		open("Fold laundry", "leo", 15),
		open("Clean the fish tank", "leo", 25),
	}
}
