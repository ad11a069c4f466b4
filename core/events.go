package core

import "time"

// SignalType enumerates the signals the dispatcher carries.
type SignalType string

const (
	SignalChoreCompleted SignalType = "chore_completed"
	SignalLevelChanged   SignalType = "level_changed"
)

// Signal is an immutable progress signal fanned out to subscribers.
type Signal struct {
	Type     SignalType      `json:"type"`
	Time     time.Time       `json:"time"`
	User     UserID          `json:"user"`
	Points   int             `json:"points,omitempty"`
	Total    int             `json:"total,omitempty"`
	Title    string          `json:"title,omitempty"`
	Kind     CelebrationKind `json:"kind,omitempty"`
	OriginX  float64         `json:"origin_x,omitempty"`
	OriginY  float64         `json:"origin_y,omitempty"`
	NewLevel int             `json:"new_level,omitempty"`
}

func NewChoreCompleted(user UserID, points, total int, title string, x, y float64, kind CelebrationKind) Signal {
	if !kind.Valid() {
		kind = KindPoints
	}
	return Signal{
		Type:    SignalChoreCompleted,
		Time:    time.Now().UTC(),
		User:    user,
		Points:  points,
		Total:   total,
		Title:   title,
		Kind:    kind,
		OriginX: x,
		OriginY: y,
	}
}

func NewLevelChanged(user UserID, newLevel int) Signal {
	return Signal{Type: SignalLevelChanged, Time: time.Now().UTC(), User: user, NewLevel: newLevel}
}
