package core

import "fmt"

// LevelDefinition maps a point threshold to a level with its display data and
// the rewards it unlocks.
type LevelDefinition struct {
	Level          int      `json:"level"`
	PointsRequired int      `json:"points_required"`
	Name           string   `json:"name"`
	Icon           string   `json:"icon"`
	Rewards        []string `json:"rewards"`
}

// LevelTable is the ordered, immutable level ladder. Loaded once at process
// start and shared read-only after that.
type LevelTable struct {
	defs []LevelDefinition
}

// NewLevelTable validates and wraps an ordered level list. The table must
// start at level 1 with a zero threshold and thresholds must be strictly
// increasing; anything else is a configuration defect.
func NewLevelTable(defs []LevelDefinition) (*LevelTable, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("level table is empty")
	}
	if defs[0].Level != 1 || defs[0].PointsRequired != 0 {
		return nil, fmt.Errorf("level table must start with level 1 at 0 points, got level %d at %d", defs[0].Level, defs[0].PointsRequired)
	}
	for i := 1; i < len(defs); i++ {
		if defs[i].Level != defs[i-1].Level+1 {
			return nil, fmt.Errorf("level numbers must be contiguous: %d follows %d", defs[i].Level, defs[i-1].Level)
		}
		if defs[i].PointsRequired <= defs[i-1].PointsRequired {
			return nil, fmt.Errorf("points_required must be strictly increasing: level %d requires %d after %d", defs[i].Level, defs[i].PointsRequired, defs[i-1].PointsRequired)
		}
	}
	cp := make([]LevelDefinition, len(defs))
	copy(cp, defs)
	return &LevelTable{defs: cp}, nil
}

// MustLevelTable is NewLevelTable that panics on a malformed table.
func MustLevelTable(defs []LevelDefinition) *LevelTable {
	t, err := NewLevelTable(defs)
	if err != nil {
		panic(err)
	}
	return t
}

// LevelFor returns the highest level whose threshold is at or below points.
// Negative points are treated as zero.
func (t *LevelTable) LevelFor(points int) LevelDefinition {
	if points < 0 {
		points = 0
	}
	cur := t.defs[0]
	for _, d := range t.defs[1:] {
		if d.PointsRequired > points {
			break
		}
		cur = d
	}
	return cur
}

// NextLevelFor returns the level after the one points falls in, or false at the
// top of the ladder.
func (t *LevelTable) NextLevelFor(points int) (LevelDefinition, bool) {
	cur := t.LevelFor(points)
	return t.Definition(cur.Level + 1)
}

// Definition returns the definition for an exact level number.
func (t *LevelTable) Definition(level int) (LevelDefinition, bool) {
	idx := level - 1
	if idx < 0 || idx >= len(t.defs) {
		return LevelDefinition{}, false
	}
	return t.defs[idx], true
}

// MaxLevel returns the top level of the ladder.
func (t *LevelTable) MaxLevel() int { return t.defs[len(t.defs)-1].Level }

// Definitions returns a copy of the full ladder for display.
func (t *LevelTable) Definitions() []LevelDefinition {
	cp := make([]LevelDefinition, len(t.defs))
	copy(cp, t.defs)
	return cp
}

// DefaultLevels is the stock Daily Bag ladder. Thresholds are product tuning;
// treat them as configuration, not derived values.
func DefaultLevels() *LevelTable {
	return MustLevelTable([]LevelDefinition{
		{Level: 1, PointsRequired: 0, Name: "Penny Pincher", Icon: "🪙", Rewards: []string{"Starter bag unlocked", "Chore board access"}},
		{Level: 2, PointsRequired: 25, Name: "Coin Collector", Icon: "💰", Rewards: []string{"Bronze bag badge", "Pick one chore to skip"}},
		{Level: 3, PointsRequired: 60, Name: "Piggy Banker", Icon: "🐷", Rewards: []string{"Silver bag badge", "+5 bonus on streak days"}},
		{Level: 4, PointsRequired: 110, Name: "Allowance Ace", Icon: "💵", Rewards: []string{"Custom avatar frame", "Weekend bonus multiplier"}},
		{Level: 5, PointsRequired: 180, Name: "Savings Star", Icon: "⭐", Rewards: []string{"Gold bag badge", "Choose next family movie"}},
		{Level: 6, PointsRequired: 275, Name: "Budget Boss", Icon: "💼", Rewards: []string{"Boss title on the leaderboard", "Double points day token"}},
		{Level: 7, PointsRequired: 400, Name: "Money Maker", Icon: "🤑", Rewards: []string{"Platinum bag badge", "One chore veto per week"}},
		{Level: 8, PointsRequired: 560, Name: "Fortune Builder", Icon: "🏦", Rewards: []string{"Animated avatar glow", "Extra reward redemption"}},
		{Level: 9, PointsRequired: 760, Name: "Treasure Hunter", Icon: "👑", Rewards: []string{"Crown on the leaderboard", "Free pass day"}},
		{Level: 10, PointsRequired: 1000, Name: "Bag Legend", Icon: "🏆", Rewards: []string{"Legend hall of fame entry", "Design a family reward"}},
	})
}
