// Package bag assembles the progress engine and its celebration layers behind
// a single constructor, for embedders that do not want to wire the pieces by
// hand.
package bag

import (
	"context"

	"dailybag/analytics"
	"dailybag/celebration"
	"dailybag/core"
	"dailybag/engine"
	"dailybag/integrations/webhook"
	"dailybag/realtime"
	"dailybag/timeline"
)

// Option configures the Bag builder.
type Option func(*settings)

type settings struct {
	storage       engine.Storage
	table         *core.LevelTable
	hub           *realtime.Hub
	anim          timeline.Animator
	player        celebration.Player
	soundSettings celebration.SoundSettings
	debounce      *celebration.Debouncer
	popupCfg      celebration.PopupConfig
	flightCfg     celebration.FlightConfig
	seqCfg        celebration.SequencerConfig
	hooks         []analytics.Hook
	sink          *webhook.Sink
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *settings) { c.storage = s } }

// WithLevelTable overrides the default level ladder.
func WithLevelTable(t *core.LevelTable) Option { return func(c *settings) { c.table = t } }

// WithRealtime wires a realtime hub to receive all celebration signals.
func WithRealtime(h *realtime.Hub) Option { return func(c *settings) { c.hub = h } }

// WithAnimator sets the animation backend driven by popup and level-up
// timelines. Defaults to a no-op, which is what headless servers want.
func WithAnimator(a timeline.Animator) Option { return func(c *settings) { c.anim = a } }

// WithSoundPlayer sets the audio backend.
func WithSoundPlayer(p celebration.Player) Option { return func(c *settings) { c.player = p } }

// WithSoundSettings wires the user's sound preference store.
func WithSoundSettings(s celebration.SoundSettings) Option {
	return func(c *settings) { c.soundSettings = s }
}

// WithPopupConfig overrides popup tuning.
func WithPopupConfig(cfg celebration.PopupConfig) Option {
	return func(c *settings) { c.popupCfg = cfg }
}

// WithFlightConfig overrides flying-coin tuning.
func WithFlightConfig(cfg celebration.FlightConfig) Option {
	return func(c *settings) { c.flightCfg = cfg }
}

// WithSequencerConfig overrides level-up takeover tuning.
func WithSequencerConfig(cfg celebration.SequencerConfig) Option {
	return func(c *settings) { c.seqCfg = cfg }
}

// WithAnalytics registers KPI hooks fed from every signal.
func WithAnalytics(hooks ...analytics.Hook) Option {
	return func(c *settings) { c.hooks = append(c.hooks, hooks...) }
}

// WithWebhook posts every signal to the sink's endpoints.
func WithWebhook(sink *webhook.Sink) Option { return func(c *settings) { c.sink = sink } }

// Bag is the assembled engine: the chore completion service plus the
// celebration layers subscribed to its signals.
type Bag struct {
	Service   *engine.Service
	Popups    *celebration.PopupQueue
	Flight    *celebration.Flight
	Sequencer *celebration.Sequencer
	Sounds    *celebration.Debouncer

	unsubs []func()
}

// New builds a configured Bag. If not provided, defaults are used:
//   - storage: must be passed explicitly (panics otherwise)
//   - levels: the stock ten-level ladder
//   - animator: no-op
func New(opts ...Option) *Bag {
	cfg := &settings{
		popupCfg:  celebration.DefaultPopupConfig(),
		flightCfg: celebration.DefaultFlightConfig(),
		seqCfg:    celebration.DefaultSequencerConfig(),
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.table == nil {
		cfg.table = core.DefaultLevels()
	}
	if cfg.anim == nil {
		cfg.anim = timeline.NopAnimator{}
	}

	bus := engine.NewDispatcher()
	svc := engine.NewService(cfg.storage, cfg.table, bus)

	sounds := cfg.debounce
	if sounds == nil && cfg.player != nil {
		sounds = celebration.NewDebouncer(cfg.player, cfg.soundSettings, celebration.DefaultDebounce)
	}

	b := &Bag{
		Service:   svc,
		Popups:    celebration.NewPopupQueue(cfg.popupCfg, cfg.anim, sounds),
		Flight:    celebration.NewFlight(cfg.flightCfg, cfg.anim),
		Sequencer: celebration.NewSequencer(cfg.seqCfg, cfg.table, cfg.anim, sounds),
		Sounds:    sounds,
	}

	b.unsubs = append(b.unsubs,
		bus.OnChoreCompleted(func(_ context.Context, sig core.Signal) {
			b.Popups.Enqueue(sig.Kind, sig.Points, sig.Title, sig.OriginX, sig.OriginY)
		}),
		bus.OnLevelChanged(func(_ context.Context, sig core.Signal) {
			b.Sequencer.LevelReached(sig.User, sig.NewLevel)
		}),
	)

	if cfg.hub != nil {
		// Bridge all signals to realtime
		b.unsubs = append(b.unsubs,
			bus.OnChoreCompleted(func(ctx context.Context, sig core.Signal) { cfg.hub.Broadcast(ctx, sig) }),
			bus.OnLevelChanged(func(ctx context.Context, sig core.Signal) { cfg.hub.Broadcast(ctx, sig) }),
		)
	}
	if len(cfg.hooks) > 0 {
		bridge := analytics.NewBridge(cfg.hooks...)
		b.unsubs = append(b.unsubs,
			bus.OnChoreCompleted(func(_ context.Context, sig core.Signal) { bridge.OnSignal(sig) }),
			bus.OnLevelChanged(func(_ context.Context, sig core.Signal) { bridge.OnSignal(sig) }),
		)
	}
	if cfg.sink != nil {
		b.unsubs = append(b.unsubs,
			bus.OnChoreCompleted(func(_ context.Context, sig core.Signal) { cfg.sink.OnSignal(sig) }),
			bus.OnLevelChanged(func(_ context.Context, sig core.Signal) { cfg.sink.OnSignal(sig) }),
		)
	}
	return b
}

// Close detaches the celebration layers and cancels anything in flight.
func (b *Bag) Close() {
	for _, u := range b.unsubs {
		u()
	}
	b.unsubs = nil
	b.Popups.Close()
	b.Flight.Close()
	b.Sequencer.Close()
}
