package core

// EarnedPoints sums the awarded points of completed records owned by user.
// Incomplete records and records owned by someone else contribute nothing.
func EarnedPoints(records []ChoreRecord, user UserID) int {
	total := 0
	for _, r := range records {
		if !r.Completed || r.Owner() != user {
			continue
		}
		total += r.AwardedPoints()
	}
	return total
}

// ComputeProgress derives a user's progress snapshot from their completion
// log. It is a pure, total function of its input: safe to call on every tick,
// deterministic, no I/O.
//
// priorLifetime is the externally persisted lifetime counter (points ever
// earned, including ones later redeemed). Lifetime never decreases, so the
// result is the larger of the prior counter and the current earned sum.
func ComputeProgress(table *LevelTable, records []ChoreRecord, user UserID, priorLifetime int) UserProgress {
	earned := EarnedPoints(records, user)

	cur := table.LevelFor(earned)
	toNext := 0
	if next, ok := table.NextLevelFor(earned); ok {
		toNext = next.PointsRequired - earned
	}

	lifetime := priorLifetime
	if earned > lifetime {
		lifetime = earned
	}

	return UserProgress{
		EarnedPoints:       earned,
		LifetimePoints:     lifetime,
		CurrentLevel:       cur.Level,
		CurrentLevelPoints: earned - cur.PointsRequired,
		PointsToNextLevel:  toNext,
	}
}

// BandFraction returns how far through the current level band the snapshot
// is, in [0,1]. Used to size progress bars; the band total is clamped to at
// least 1 so a malformed table can not divide by zero.
func (p UserProgress) BandFraction(table *LevelTable) float64 {
	cur, ok := table.Definition(p.CurrentLevel)
	if !ok {
		return 0
	}
	next, ok := table.Definition(p.CurrentLevel + 1)
	if !ok {
		return 1 // ceiling level: bar reads full
	}
	band := next.PointsRequired - cur.PointsRequired
	if band < 1 {
		band = 1
	}
	f := float64(p.CurrentLevelPoints) / float64(band)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
