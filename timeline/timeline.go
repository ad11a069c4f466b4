// Package timeline runs declarative animation phase lists against an opaque
// animate capability. It owns scheduling and cancellation only; what a phase
// looks like on screen is the renderer's business.
package timeline

import (
	"sync"
	"time"
)

// Phase is one step of a timeline. Delay is the offset from timeline start;
// Duration how long the step runs. A Loop phase repeats until the timeline is
// cancelled and never holds up completion.
type Phase struct {
	Name     string
	Delay    time.Duration
	Duration time.Duration
	Loop     bool
}

// Handle cancels a running visual effect. Cancel must be safe to call more
// than once.
type Handle interface {
	Cancel()
}

// Animator is the opaque rendering capability: start drawing a phase, get a
// cancellable handle back.
type Animator interface {
	Animate(phase Phase) Handle
}

// AnimatorFunc adapts a function to the Animator interface.
type AnimatorFunc func(phase Phase) Handle

func (f AnimatorFunc) Animate(phase Phase) Handle { return f(phase) }

// NopAnimator ignores every phase. Useful headless and in tests.
type NopAnimator struct{}

func (NopAnimator) Animate(Phase) Handle { return nopHandle{} }

type nopHandle struct{}

func (nopHandle) Cancel() {}

// Timeline is a running phase list. All timers are wall-clock so the schedule
// stays correct even when rendering stalls.
type Timeline struct {
	mu        sync.Mutex
	timers    []*time.Timer
	handles   []Handle
	cancelled bool
	done      bool
}

// Run schedules phases against anim and returns a cancellable handle.
// onComplete fires once, after the last non-loop phase ends. Cancelling stops
// pending phases, cancels live effect handles, and suppresses onComplete;
// a cancelled timeline must not run its completion side effects.
func Run(phases []Phase, anim Animator, onComplete func()) *Timeline {
	t := &Timeline{}
	t.mu.Lock()
	defer t.mu.Unlock()

	var end time.Duration
	for _, p := range phases {
		p := p
		timer := time.AfterFunc(p.Delay, func() {
			t.mu.Lock()
			if t.cancelled {
				t.mu.Unlock()
				return
			}
			h := anim.Animate(p)
			if h != nil {
				t.handles = append(t.handles, h)
			}
			t.mu.Unlock()
		})
		t.timers = append(t.timers, timer)
		if !p.Loop && p.Delay+p.Duration > end {
			end = p.Delay + p.Duration
		}
	}

	completion := time.AfterFunc(end, func() {
		t.mu.Lock()
		if t.cancelled || t.done {
			t.mu.Unlock()
			return
		}
		t.done = true
		t.mu.Unlock()
		if onComplete != nil {
			onComplete()
		}
	})
	t.timers = append(t.timers, completion)
	return t
}

// Cancel stops the timeline. Idempotent; never invokes onComplete.
func (t *Timeline) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	timers := t.timers
	handles := t.handles
	t.timers = nil
	t.handles = nil
	t.mu.Unlock()

	for _, timer := range timers {
		timer.Stop()
	}
	for _, h := range handles {
		h.Cancel()
	}
}

// Done reports whether the timeline ran to completion (not cancelled).
func (t *Timeline) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
