package celebration

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"dailybag/timeline"
)

// Coin is one in-flight coin travelling from a completion origin to the
// points counter.
type Coin struct {
	ID    string
	Value int
	FromX float64
	FromY float64
	ToX   float64
	ToY   float64
}

// FlightConfig tunes the flying-coin effect.
type FlightConfig struct {
	MaxCoins int
	// PointsPerCoin sets how many points one coin represents before another
	// coin is added, up to MaxCoins.
	PointsPerCoin int
	Stagger       time.Duration
	Duration      time.Duration
}

func DefaultFlightConfig() FlightConfig {
	return FlightConfig{
		MaxCoins:      5,
		PointsPerCoin: 20,
		Stagger:       60 * time.Millisecond,
		Duration:      700 * time.Millisecond,
	}
}

// SplitCoins divides a point value into one coin per PointsPerCoin started,
// capped at MaxCoins, each of equal worth rounded up so the coins never
// undercount the value. 10 points is a single coin of 10; 100 points is five
// coins of 20.
func SplitCoins(value int, cfg FlightConfig) []int {
	if value <= 0 {
		return nil
	}
	per := cfg.PointsPerCoin
	if per <= 0 {
		per = DefaultFlightConfig().PointsPerCoin
	}
	count := (value + per - 1) / per
	if count > cfg.MaxCoins {
		count = cfg.MaxCoins
	}
	each := (value + count - 1) / count
	out := make([]int, count)
	for i := range out {
		out[i] = each
	}
	return out
}

// Flight animates a burst of coins. Each coin lands independently and fires
// OnLanded with its value so the points counter can tick up in steps.
type Flight struct {
	mu      sync.Mutex
	cfg     FlightConfig
	anim    timeline.Animator
	timers  map[int]*time.Timer
	lines   map[int]*timeline.Timeline
	nextKey int
	closed  bool
}

func NewFlight(cfg FlightConfig, anim timeline.Animator) *Flight {
	if cfg.MaxCoins <= 0 {
		cfg.MaxCoins = DefaultFlightConfig().MaxCoins
	}
	if anim == nil {
		anim = timeline.NopAnimator{}
	}
	return &Flight{
		cfg:    cfg,
		anim:   anim,
		timers: map[int]*time.Timer{},
		lines:  map[int]*timeline.Timeline{},
	}
}

// Launch splits value into coins and starts their staggered flights.
// onLanded is invoked once per coin, from the timeline goroutine, and may be
// nil. Returns the launched coins.
func (f *Flight) Launch(value int, fromX, fromY, toX, toY float64, onLanded func(Coin)) []Coin {
	values := SplitCoins(value, f.cfg)
	if len(values) == 0 {
		return nil
	}

	coins := make([]Coin, len(values))
	for i, v := range values {
		coins[i] = Coin{
			ID:    uuid.NewString(),
			Value: v,
			FromX: fromX,
			FromY: fromY,
			ToX:   toX,
			ToY:   toY,
		}
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	for i, coin := range coins {
		coin := coin
		key := f.nextKey
		f.nextKey++
		// Fired timers remove themselves so only coins still waiting to
		// launch are tracked.
		f.timers[key] = time.AfterFunc(time.Duration(i)*f.cfg.Stagger, func() {
			f.mu.Lock()
			if f.closed {
				f.mu.Unlock()
				return
			}
			delete(f.timers, key)
			f.mu.Unlock()
			f.fly(key, coin, onLanded)
		})
	}
	f.mu.Unlock()
	return coins
}

func (f *Flight) fly(key int, coin Coin, onLanded func(Coin)) {
	tl := timeline.Run([]timeline.Phase{
		{Name: "arc", Duration: f.cfg.Duration},
	}, f.anim, func() {
		f.mu.Lock()
		delete(f.lines, key)
		f.mu.Unlock()
		if onLanded != nil {
			onLanded(coin)
		}
	})

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		tl.Cancel()
		return
	}
	if !tl.Done() {
		f.lines[key] = tl
	}
	f.mu.Unlock()
}

// Close stops pending launches and cancels in-flight coins. Coins already
// cancelled never land.
func (f *Flight) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	timers := make([]*time.Timer, 0, len(f.timers))
	for _, t := range f.timers {
		timers = append(timers, t)
	}
	lines := make([]*timeline.Timeline, 0, len(f.lines))
	for _, tl := range f.lines {
		lines = append(lines, tl)
	}
	f.timers = map[int]*time.Timer{}
	f.lines = map[int]*timeline.Timeline{}
	f.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	for _, tl := range lines {
		tl.Cancel()
	}
}
