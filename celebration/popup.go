package celebration

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"dailybag/core"
	"dailybag/timeline"
)

// PopupConfig tunes the floating point-popup layer.
type PopupConfig struct {
	// Entrance, Ascend and Exit are the phase durations of each popup.
	Entrance time.Duration
	Ascend   time.Duration
	Exit     time.Duration
	// StaleAfter force-removes a popup whose timeline never completed.
	StaleAfter time.Duration
	// MaxActive caps simultaneously visible popups. Oldest are evicted.
	MaxActive int
	// BonusThreshold and BigBonusThreshold set the point totals at which a
	// completion spawns two or three trailing bonus popups.
	BonusThreshold    int
	BigBonusThreshold int
	// BonusFraction is each trailing popup's worth relative to the primary.
	BonusFraction float64
	// BonusDelay and BonusStagger schedule trailing popups after the primary.
	BonusDelay   time.Duration
	BonusStagger time.Duration
}

func DefaultPopupConfig() PopupConfig {
	return PopupConfig{
		Entrance:          400 * time.Millisecond,
		Ascend:            800 * time.Millisecond,
		Exit:              400 * time.Millisecond,
		StaleAfter:        5 * time.Second,
		MaxActive:         12,
		BonusThreshold:    25,
		BigBonusThreshold: 50,
		BonusFraction:     0.15,
		BonusDelay:        80 * time.Millisecond,
		BonusStagger:      60 * time.Millisecond,
	}
}

type activePopup struct {
	event core.CelebrationEvent
	tl    *timeline.Timeline
	stale *time.Timer
}

// PopupQueue owns the set of live point popups. Each Enqueue spawns a
// short timeline; the popup leaves the queue only when that timeline
// completes, is force-removed as stale, or is evicted by MaxActive.
type PopupQueue struct {
	mu      sync.Mutex
	cfg     PopupConfig
	anim    timeline.Animator
	sounds  *Debouncer
	active  map[string]*activePopup
	order   []string
	pending map[int]*time.Timer
	nextKey int
	closed  bool
	rng     *rand.Rand
}

func NewPopupQueue(cfg PopupConfig, anim timeline.Animator, sounds *Debouncer) *PopupQueue {
	if cfg.MaxActive <= 0 {
		cfg.MaxActive = DefaultPopupConfig().MaxActive
	}
	if anim == nil {
		anim = timeline.NopAnimator{}
	}
	return &PopupQueue{
		cfg:     cfg,
		anim:    anim,
		sounds:  sounds,
		active:  map[string]*activePopup{},
		pending: map[int]*time.Timer{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Enqueue shows a popup for the completed chore at the given screen origin
// and, for large totals, schedules trailing bonus popups. Returns the primary
// popup's id.
func (q *PopupQueue) Enqueue(kind core.CelebrationKind, points int, title string, x, y float64) string {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ""
	}
	jx := x + q.jitterLocked(15)
	jy := y + q.jitterLocked(15)
	q.mu.Unlock()

	id := q.spawn(kind, points, title, jx, jy)

	if kind != core.KindBonus && points >= q.cfg.BonusThreshold {
		count := 2
		if points >= q.cfg.BigBonusThreshold {
			count = 3
		}
		worth := int(float64(points) * q.cfg.BonusFraction)
		for i := 0; i < count; i++ {
			delay := q.cfg.BonusDelay + time.Duration(i)*q.cfg.BonusStagger
			q.mu.Lock()
			if q.closed {
				q.mu.Unlock()
				break
			}
			bx := x + q.jitterLocked(80)
			by := y + q.jitterLocked(60)
			key := q.nextKey
			q.nextKey++
			// The timer removes itself once fired so pending never grows
			// past the bonus popups still waiting to spawn.
			q.pending[key] = time.AfterFunc(delay, func() {
				q.mu.Lock()
				delete(q.pending, key)
				q.mu.Unlock()
				q.spawn(core.KindBonus, worth, "", bx, by)
			})
			q.mu.Unlock()
		}
	}

	if q.sounds != nil {
		switch kind {
		case core.KindBonus:
			q.sounds.Trigger(SoundBonus)
		default:
			q.sounds.Trigger(SoundCashRegister)
		}
	}
	return id
}

func (q *PopupQueue) spawn(kind core.CelebrationKind, points int, title string, x, y float64) string {
	ev := core.CelebrationEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Points:    points,
		Title:     title,
		OriginX:   x,
		OriginY:   y,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ""
	}
	for len(q.order) >= q.cfg.MaxActive {
		q.evictOldestLocked()
	}

	ap := &activePopup{event: ev}
	q.active[ev.ID] = ap
	q.order = append(q.order, ev.ID)
	q.mu.Unlock()

	phases := []timeline.Phase{
		{Name: "entrance", Duration: q.cfg.Entrance},
		{Name: "ascend", Delay: q.cfg.Entrance, Duration: q.cfg.Ascend},
		{Name: "exit", Delay: q.cfg.Entrance + q.cfg.Ascend, Duration: q.cfg.Exit},
	}
	tl := timeline.Run(phases, q.anim, func() {
		q.remove(ev.ID)
	})

	q.mu.Lock()
	if cur, ok := q.active[ev.ID]; ok {
		cur.tl = tl
		if q.cfg.StaleAfter > 0 {
			cur.stale = time.AfterFunc(q.cfg.StaleAfter, func() {
				q.remove(ev.ID)
			})
		}
	} else {
		// Evicted before the timeline attached.
		tl.Cancel()
	}
	q.mu.Unlock()
	return ev.ID
}

// remove drops the popup with the given id. Unknown ids are a no-op, so the
// timeline completion callback and the stale timer can race safely.
func (q *PopupQueue) remove(id string) {
	q.mu.Lock()
	ap, ok := q.active[id]
	if ok {
		q.dropLocked(id)
	}
	q.mu.Unlock()
	if ok {
		q.stop(ap)
	}
}

func (q *PopupQueue) evictOldestLocked() {
	if len(q.order) == 0 {
		return
	}
	id := q.order[0]
	ap := q.active[id]
	q.dropLocked(id)
	if ap != nil {
		go q.stop(ap)
	}
}

func (q *PopupQueue) dropLocked(id string) {
	delete(q.active, id)
	for i, cur := range q.order {
		if cur == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func (q *PopupQueue) stop(ap *activePopup) {
	if ap.stale != nil {
		ap.stale.Stop()
	}
	if ap.tl != nil {
		ap.tl.Cancel()
	}
}

// Active returns the visible popups in spawn order.
func (q *PopupQueue) Active() []core.CelebrationEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]core.CelebrationEvent, 0, len(q.order))
	for _, id := range q.order {
		if ap, ok := q.active[id]; ok {
			out = append(out, ap.event)
		}
	}
	return out
}

func (q *PopupQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Close cancels all pending and live popups. Further Enqueue calls are
// ignored.
func (q *PopupQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	pending := make([]*time.Timer, 0, len(q.pending))
	for _, t := range q.pending {
		pending = append(pending, t)
	}
	q.pending = map[int]*time.Timer{}
	var live []*activePopup
	for _, id := range q.order {
		if ap, ok := q.active[id]; ok {
			live = append(live, ap)
		}
	}
	q.active = map[string]*activePopup{}
	q.order = nil
	q.mu.Unlock()

	for _, t := range pending {
		t.Stop()
	}
	for _, ap := range live {
		q.stop(ap)
	}
}

func (q *PopupQueue) jitterLocked(span float64) float64 {
	return (q.rng.Float64()*2 - 1) * span
}
