package celebration

import (
	"log/slog"
	"sync"
	"time"
)

// Sound identifies one of the stock effect clips.
type Sound string

const (
	SoundClick        Sound = "click"
	SoundSuccess      Sound = "success"
	SoundLevelUp      Sound = "level-up"
	SoundPoints       Sound = "points"
	SoundBonus        Sound = "bonus"
	SoundError        Sound = "error"
	SoundWoosh        Sound = "woosh"
	SoundCashRegister Sound = "cash-register"
)

// Player is the audio playback primitive. Implementations may fail freely
// (autoplay restrictions, missing asset); the debouncer swallows errors.
type Player interface {
	Play(sound Sound, volume float64) error
}

// SoundSettings reads the user's sound preference from the external settings
// store.
type SoundSettings interface {
	SoundEnabled() bool
	Volume() float64
}

// DefaultDebounce is the minimum gap between repeats of the same sound.
const DefaultDebounce = 150 * time.Millisecond

// Debouncer rate-limits repeated audio triggers keyed by sound identity.
// Distinct sounds never block each other. Sound is a non-critical
// enhancement: nothing here ever returns an error to the caller.
type Debouncer struct {
	mu         sync.Mutex
	lastPlayed map[Sound]time.Time
	window     time.Duration
	player     Player
	settings   SoundSettings
	now        func() time.Time
}

func NewDebouncer(player Player, settings SoundSettings, window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{
		lastPlayed: map[Sound]time.Time{},
		window:     window,
		player:     player,
		settings:   settings,
		now:        time.Now,
	}
}

// Trigger plays the sound unless sound is disabled or the same sound played
// within the debounce window. Reports whether playback was attempted.
func (d *Debouncer) Trigger(sound Sound) bool {
	if d == nil || d.player == nil {
		return false
	}
	if d.settings != nil && !d.settings.SoundEnabled() {
		return false
	}

	d.mu.Lock()
	now := d.now()
	if last, ok := d.lastPlayed[sound]; ok && now.Sub(last) < d.window {
		d.mu.Unlock()
		return false
	}
	d.lastPlayed[sound] = now
	d.mu.Unlock()

	volume := 0.1
	if d.settings != nil {
		volume = d.settings.Volume()
	}
	if err := d.player.Play(sound, volume); err != nil {
		// Playback failure never affects gameplay state.
		slog.Debug("sound playback failed", "sound", sound, "error", err)
	}
	return true
}

// MemorySettings is an in-memory SoundSettings, the stand-in for the external
// key-value preference store.
type MemorySettings struct {
	mu      sync.Mutex
	enabled bool
	volume  float64
}

func NewMemorySettings(enabled bool, volume float64) *MemorySettings {
	return &MemorySettings{enabled: enabled, volume: volume}
}

func (m *MemorySettings) SoundEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *MemorySettings) SetSoundEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

func (m *MemorySettings) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *MemorySettings) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.volume = v
}
