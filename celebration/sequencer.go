package celebration

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dailybag/core"
	"dailybag/timeline"
)

// SequencerState is the lifecycle phase of the level-up takeover.
type SequencerState string

const (
	StateIdle     SequencerState = "idle"
	StateEntering SequencerState = "entering"
	StateActive   SequencerState = "active"
	StateExiting  SequencerState = "exiting"
)

// ShareSink receives the share text for a reached level. The primary sink is
// the platform share sheet; Clipboard is the fallback when it fails.
type ShareSink interface {
	Share(text string) error
}

// Clipboard is the fallback share target.
type Clipboard interface {
	Copy(text string) error
}

// Notifier surfaces a short user-facing message. Failures to notify are
// ignored; it exists for the share fallback toast.
type Notifier interface {
	Notify(message string)
}

// SequencerConfig tunes the level-up takeover.
type SequencerConfig struct {
	Entrance    time.Duration
	Exit        time.Duration
	AutoDismiss time.Duration
	// ShareText renders the share message for a reached level. Nil uses a
	// stock message.
	ShareText func(def core.LevelDefinition) string
}

func DefaultSequencerConfig() SequencerConfig {
	return SequencerConfig{
		Entrance:    600 * time.Millisecond,
		Exit:        400 * time.Millisecond,
		AutoDismiss: 7 * time.Second,
	}
}

// Sequencer runs the full-screen level-up celebration. At most one takeover
// is ever live; a level-up arriving mid-celebration is parked and replayed
// once the screen is idle again, keeping only the newest. The celebrated-level
// watermark is kept per user, so one household member's level 3 never swallows
// another member's level 2.
type Sequencer struct {
	mu      sync.Mutex
	cfg     SequencerConfig
	table   *core.LevelTable
	anim    timeline.Animator
	sounds  *Debouncer
	share   ShareSink
	clip    Clipboard
	notify  Notifier
	state   SequencerState
	current core.LevelDefinition
	lastAck map[core.UserID]int
	pending *core.LevelDefinition
	enter   *timeline.Timeline
	exit    *timeline.Timeline
	ambient []*timeline.Timeline
	auto    *time.Timer
	closed  bool
}

func NewSequencer(cfg SequencerConfig, table *core.LevelTable, anim timeline.Animator, sounds *Debouncer) *Sequencer {
	if table == nil {
		panic("celebration: sequencer requires a level table")
	}
	if anim == nil {
		anim = timeline.NopAnimator{}
	}
	if cfg.AutoDismiss <= 0 {
		cfg.AutoDismiss = DefaultSequencerConfig().AutoDismiss
	}
	return &Sequencer{
		cfg:     cfg,
		table:   table,
		anim:    anim,
		sounds:  sounds,
		state:   StateIdle,
		lastAck: map[core.UserID]int{},
	}
}

// watermarkLocked returns the highest level already celebrated for user.
// Level 1 is the floor; it is never celebrated. Caller holds s.mu.
func (s *Sequencer) watermarkLocked(user core.UserID) int {
	if ack, ok := s.lastAck[user]; ok {
		return ack
	}
	return 1
}

// SetShareTargets wires the share sheet, clipboard fallback and toast
// notifier. All three may be nil.
func (s *Sequencer) SetShareTargets(share ShareSink, clip Clipboard, notify Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.share = share
	s.clip = clip
	s.notify = notify
}

// ObserveLevel seeds the celebrated-level watermark for a user, typically
// with their level at session start so historical levels never replay.
func (s *Sequencer) ObserveLevel(user core.UserID, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level > s.watermarkLocked(user) {
		s.lastAck[user] = level
	}
}

// LevelReached reports that a user hit a new level. Reports whether a
// takeover was started or parked; stale and duplicate levels for that user
// return false.
func (s *Sequencer) LevelReached(user core.UserID, level int) bool {
	s.mu.Lock()
	if s.closed || level <= s.watermarkLocked(user) {
		s.mu.Unlock()
		return false
	}
	def, ok := s.table.Definition(level)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.lastAck[user] = level

	if s.state != StateIdle {
		// Latest wins; an older parked level is discarded.
		s.pending = &def
		s.mu.Unlock()
		return true
	}
	s.startLocked(def)
	s.mu.Unlock()
	return true
}

// startLocked transitions Idle -> Entering and arms the takeover. Caller
// holds s.mu.
func (s *Sequencer) startLocked(def core.LevelDefinition) {
	s.state = StateEntering
	s.current = def

	enter := timeline.Run([]timeline.Phase{
		{Name: "backdrop", Duration: s.cfg.Entrance},
		{Name: "badge", Delay: s.cfg.Entrance / 2, Duration: s.cfg.Entrance},
	}, s.anim, func() {
		s.activate(def.Level)
	})
	s.enter = enter

	s.ambient = []*timeline.Timeline{
		timeline.Run([]timeline.Phase{{Name: "confetti", Duration: time.Second, Loop: true}}, s.anim, nil),
		timeline.Run([]timeline.Phase{{Name: "shimmer", Duration: 2 * time.Second, Loop: true}}, s.anim, nil),
	}

	s.auto = time.AfterFunc(s.cfg.AutoDismiss, func() {
		s.dismiss(def.Level)
	})

	if s.sounds != nil {
		s.sounds.Trigger(SoundLevelUp)
	}
}

func (s *Sequencer) activate(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEntering && s.current.Level == level {
		s.state = StateActive
	}
}

// Dismiss ends the takeover early, the same path the Escape key and the
// close button take.
func (s *Sequencer) Dismiss() {
	s.mu.Lock()
	level := s.current.Level
	s.mu.Unlock()
	s.dismiss(level)
}

// dismiss transitions Entering/Active -> Exiting for the given level. Stale
// calls, such as an auto-dismiss timer firing after a manual dismiss, are
// no-ops.
func (s *Sequencer) dismiss(level int) {
	s.mu.Lock()
	if s.closed || s.current.Level != level {
		s.mu.Unlock()
		return
	}
	if s.state != StateEntering && s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.state = StateExiting
	s.teardownLocked()

	exit := timeline.Run([]timeline.Phase{
		{Name: "fade", Duration: s.cfg.Exit},
	}, s.anim, func() {
		s.settle(level)
	})
	s.exit = exit
	s.mu.Unlock()

	if s.sounds != nil {
		s.sounds.Trigger(SoundWoosh)
	}
}

// settle returns to Idle after the exit animation and replays a parked
// level-up if one arrived mid-celebration.
func (s *Sequencer) settle(level int) {
	s.mu.Lock()
	if s.closed || s.state != StateExiting || s.current.Level != level {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	s.exit = nil
	next := s.pending
	s.pending = nil
	if next != nil {
		s.startLocked(*next)
	}
	s.mu.Unlock()
}

// teardownLocked stops the auto-dismiss timer and every ambient loop in one
// critical section so no loop outlives the takeover. Caller holds s.mu.
func (s *Sequencer) teardownLocked() {
	if s.auto != nil {
		s.auto.Stop()
		s.auto = nil
	}
	if s.enter != nil {
		s.enter.Cancel()
		s.enter = nil
	}
	for _, tl := range s.ambient {
		tl.Cancel()
	}
	s.ambient = nil
}

// Share sends the share text for the level being celebrated. Share-sheet
// failure falls back to the clipboard; clipboard failure surfaces a toast.
// Sharing never returns an error to the caller.
func (s *Sequencer) Share() {
	s.mu.Lock()
	state := s.state
	def := s.current
	share := s.share
	clip := s.clip
	notify := s.notify
	render := s.cfg.ShareText
	s.mu.Unlock()

	if state != StateActive && state != StateEntering {
		return
	}

	text := defaultShareText(def)
	if render != nil {
		text = render(def)
	}

	if share != nil {
		if err := share.Share(text); err == nil {
			return
		} else {
			slog.Debug("share sheet failed, falling back to clipboard", "level", def.Level, "error", err)
		}
	}
	if clip != nil {
		if err := clip.Copy(text); err == nil {
			if notify != nil {
				notify.Notify("Copied to clipboard!")
			}
			return
		}
	}
	if notify != nil {
		notify.Notify("Couldn't share right now")
	}
}

func defaultShareText(def core.LevelDefinition) string {
	return fmt.Sprintf("I just reached Level %d: %s %s in Daily Bag!", def.Level, def.Name, def.Icon)
}

// State returns the current lifecycle phase.
func (s *Sequencer) State() SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the level definition on screen and whether a takeover is
// live.
func (s *Sequencer) Current() (core.LevelDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return core.LevelDefinition{}, false
	}
	return s.current, true
}

// Close tears the sequencer down. Parked level-ups are discarded and further
// LevelReached calls are ignored.
func (s *Sequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.teardownLocked()
	if s.exit != nil {
		s.exit.Cancel()
		s.exit = nil
	}
	s.state = StateIdle
	s.mu.Unlock()
}
