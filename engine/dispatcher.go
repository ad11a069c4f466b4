package engine

import (
	"context"
	"sync"

	"dailybag/core"
)

// Handler receives a signal. Delivery is synchronous within the dispatching
// call; handlers must not block.
type Handler func(context.Context, core.Signal)

type subscriber struct {
	id int64
	fn Handler
}

// Dispatcher is the process-wide celebration signal bus. It is an explicit,
// constructible object passed through configuration rather than an ambient
// global channel. Subscribers are invoked in registration order.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    int64
	choreSubs []subscriber
	levelSubs []subscriber

	// lastLevel is the last level a levelChanged signal was dispatched for,
	// per user. It suppresses duplicate signals when recomputation lands on
	// the same level, and collapses skipped levels into one signal.
	lastLevel map[core.UserID]int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{lastLevel: map[core.UserID]int{}}
}

// OnChoreCompleted registers a handler for choreCompleted signals and returns
// its unsubscribe func. Unsubscribing twice is a no-op.
func (d *Dispatcher) OnChoreCompleted(fn Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.choreSubs = append(d.choreSubs, subscriber{id: id, fn: fn})
	return func() { d.unsubscribe(&d.choreSubs, id) }
}

// OnLevelChanged registers a handler for levelChanged signals and returns its
// unsubscribe func.
func (d *Dispatcher) OnLevelChanged(fn Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.levelSubs = append(d.levelSubs, subscriber{id: id, fn: fn})
	return func() { d.unsubscribe(&d.levelSubs, id) }
}

func (d *Dispatcher) unsubscribe(subs *[]subscriber, id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range *subs {
		if s.id == id {
			*subs = append((*subs)[:i], (*subs)[i+1:]...)
			return
		}
	}
}

// DispatchChoreCompleted fans a choreCompleted signal out to subscribers.
func (d *Dispatcher) DispatchChoreCompleted(ctx context.Context, sig core.Signal) {
	sig.Type = core.SignalChoreCompleted
	d.deliver(ctx, d.snapshot(&d.choreSubs), sig)
}

// DispatchLevelChanged fans a levelChanged signal out to subscribers, at most
// once per level attained per user. A signal at or below the last dispatched
// level is suppressed and false is returned; a jump over several levels
// produces exactly one signal carrying the final level.
func (d *Dispatcher) DispatchLevelChanged(ctx context.Context, sig core.Signal) bool {
	sig.Type = core.SignalLevelChanged

	d.mu.Lock()
	last, seen := d.lastLevel[sig.User]
	if !seen {
		last = 1 // everyone starts at level 1; reaching it is not a level-up
	}
	if sig.NewLevel <= last {
		d.mu.Unlock()
		return false
	}
	d.lastLevel[sig.User] = sig.NewLevel
	handlers := make([]subscriber, len(d.levelSubs))
	copy(handlers, d.levelSubs)
	d.mu.Unlock()

	d.deliver(ctx, handlers, sig)
	return true
}

// ObserveLevel seeds the suppression latch without dispatching, for users
// whose level is already known at startup (a reload must not re-celebrate).
func (d *Dispatcher) ObserveLevel(user core.UserID, level int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if level > d.lastLevel[user] {
		d.lastLevel[user] = level
	}
}

func (d *Dispatcher) snapshot(subs *[]subscriber) []subscriber {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]subscriber, len(*subs))
	copy(cp, *subs)
	return cp
}

// deliver invokes handlers outside the lock, in registration order.
func (d *Dispatcher) deliver(ctx context.Context, subs []subscriber, sig core.Signal) {
	for _, s := range subs {
		s.fn(ctx, sig)
	}
}
