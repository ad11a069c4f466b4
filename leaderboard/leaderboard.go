package leaderboard

import (
	"context"

	"dailybag/core"
	"dailybag/engine"
)

// Entry is one family member's standing.
type Entry struct {
	User   core.UserID
	Points int64
}

// Board abstracts leaderboard operations.
type Board interface {
	Update(user core.UserID, points int64)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
}

// Bind keeps the board current from chore-completed signals. The signal's
// running total is the user's score, so replays and restarts converge.
// Returns the unsubscribe func.
func Bind(board Board, d *engine.Dispatcher) func() {
	return d.OnChoreCompleted(func(_ context.Context, sig core.Signal) {
		board.Update(sig.User, int64(sig.Total))
	})
}
