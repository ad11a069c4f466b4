package core

import (
	"errors"
	"strings"
	"time"
)

// UserID uniquely identifies a household member.
type UserID string

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty user id")
	}
	return UserID(strings.ToLower(s)), nil
}

// CelebrationKind is the closed set of celebration flavors. Consumers switch
// exhaustively on it; an unknown kind is a programming error, not user input.
type CelebrationKind string

const (
	KindPoints CelebrationKind = "points"
	KindBonus  CelebrationKind = "bonus"
	KindStreak CelebrationKind = "streak"
	KindLevel  CelebrationKind = "level"
)

// Valid reports whether k is one of the known celebration kinds.
func (k CelebrationKind) Valid() bool {
	switch k {
	case KindPoints, KindBonus, KindStreak, KindLevel:
		return true
	}
	return false
}

// ChoreRecord is a read-only view of one chore entry as held by the chore
// store. The engine derives state from these; it never writes them back except
// through an explicit completion action.
type ChoreRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	AssignedTo  UserID     `json:"assigned_to"`
	CompletedBy UserID     `json:"completed_by,omitempty"`
	Points      int        `json:"points"`
	FinalPoints *int       `json:"final_points,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Owner returns the user the record counts for: CompletedBy when set,
// otherwise AssignedTo.
func (r ChoreRecord) Owner() UserID {
	if r.CompletedBy != "" {
		return r.CompletedBy
	}
	return r.AssignedTo
}

// AwardedPoints returns the point value a completed record is worth.
// FinalPoints overrides the base value when bonuses were applied; negative
// values clamp to zero rather than erroring.
func (r ChoreRecord) AwardedPoints() int {
	p := r.Points
	if r.FinalPoints != nil {
		p = *r.FinalPoints
	}
	if p < 0 {
		return 0
	}
	return p
}

// UserProgress is the derived progress snapshot. It is recomputed from the
// completion log on demand and never persisted by this engine.
type UserProgress struct {
	EarnedPoints       int `json:"earned_points"`
	LifetimePoints     int `json:"lifetime_points"`
	CurrentLevel       int `json:"current_level"`
	CurrentLevelPoints int `json:"current_level_points"`
	PointsToNextLevel  int `json:"points_to_next_level"`
}

// CelebrationEvent is one in-flight popup effect. It is owned by the popup
// queue from creation until its timeline completes.
type CelebrationEvent struct {
	ID        string          `json:"id"`
	Kind      CelebrationKind `json:"kind"`
	Points    int             `json:"points"`
	Title     string          `json:"title"`
	OriginX   float64         `json:"origin_x"`
	OriginY   float64         `json:"origin_y"`
	CreatedAt time.Time       `json:"created_at"`
}
