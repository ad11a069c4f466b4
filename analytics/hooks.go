package analytics

import (
	"sync"

	"dailybag/core"
)

// Hook receives celebration signals for KPI aggregation.
type Hook interface {
	OnSignal(sig core.Signal)
}

// BridgeHook bridges a signal source to multiple hooks.
type BridgeHook struct{ hooks []Hook }

func NewBridge(hooks ...Hook) *BridgeHook { return &BridgeHook{hooks: hooks} }

func (b *BridgeHook) OnSignal(sig core.Signal) {
	for _, h := range b.hooks {
		h.OnSignal(sig)
	}
}

// DAU tracks daily active users, keyed by UTC day.
type DAU struct {
	mu   sync.Mutex
	days map[string]map[core.UserID]struct{}
}

func NewDAU() *DAU { return &DAU{days: map[string]map[core.UserID]struct{}{}} }

func (d *DAU) OnSignal(sig core.Signal) {
	day := sig.Time.UTC().Format("2006-01-02")
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.days[day]
	if m == nil {
		m = map[core.UserID]struct{}{}
		d.days[day] = m
	}
	m[sig.User] = struct{}{}
}

func (d *DAU) Count(day string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.days[day])
}

// CompletionMetrics aggregates chore completions and level-ups.
type CompletionMetrics struct {
	mu sync.RWMutex

	completionsByKind map[core.CelebrationKind]int64
	pointsByDay       map[string]int64
	levelUpsByDay     map[string]int64
	levelDistribution map[int]int64
}

func NewCompletionMetrics() *CompletionMetrics {
	return &CompletionMetrics{
		completionsByKind: map[core.CelebrationKind]int64{},
		pointsByDay:       map[string]int64{},
		levelUpsByDay:     map[string]int64{},
		levelDistribution: map[int]int64{},
	}
}

func (m *CompletionMetrics) OnSignal(sig core.Signal) {
	day := sig.Time.UTC().Format("2006-01-02")
	m.mu.Lock()
	defer m.mu.Unlock()
	switch sig.Type {
	case core.SignalChoreCompleted:
		m.completionsByKind[sig.Kind]++
		m.pointsByDay[day] += int64(sig.Points)
	case core.SignalLevelChanged:
		m.levelUpsByDay[day]++
		m.levelDistribution[sig.NewLevel]++
	}
}

// Completions returns how many completions of the given kind were seen.
func (m *CompletionMetrics) Completions(kind core.CelebrationKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.completionsByKind[kind]
}

// PointsOn returns total points awarded on the given UTC day (2006-01-02).
func (m *CompletionMetrics) PointsOn(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pointsByDay[day]
}

// LevelUpsOn returns level-ups recorded on the given UTC day.
func (m *CompletionMetrics) LevelUpsOn(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.levelUpsByDay[day]
}

// AtLevel returns how many level-up signals landed on the given level.
func (m *CompletionMetrics) AtLevel(level int) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.levelDistribution[level]
}
