package celebration

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePlayer struct {
	mu     sync.Mutex
	played []Sound
	err    error
}

func (p *fakePlayer) Play(sound Sound, volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, sound)
	return p.err
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.played)
}

func TestDebounceWindow(t *testing.T) {
	player := &fakePlayer{}
	d := NewDebouncer(player, NewMemorySettings(true, 0.5), 150*time.Millisecond)

	now := time.Now()
	d.now = func() time.Time { return now }

	if !d.Trigger(SoundClick) {
		t.Fatal("first trigger should play")
	}
	if d.Trigger(SoundClick) {
		t.Fatal("trigger inside window should be dropped")
	}

	now = now.Add(100 * time.Millisecond)
	if d.Trigger(SoundClick) {
		t.Fatal("trigger at 100ms should still be dropped")
	}

	now = now.Add(60 * time.Millisecond)
	if !d.Trigger(SoundClick) {
		t.Fatal("trigger past the window should play")
	}
	if got := player.count(); got != 2 {
		t.Fatalf("expected 2 playbacks, got %d", got)
	}
}

func TestDebouncePerSound(t *testing.T) {
	player := &fakePlayer{}
	d := NewDebouncer(player, nil, 150*time.Millisecond)
	now := time.Now()
	d.now = func() time.Time { return now }

	if !d.Trigger(SoundClick) || !d.Trigger(SoundSuccess) || !d.Trigger(SoundLevelUp) {
		t.Fatal("distinct sounds must not debounce each other")
	}
	if got := player.count(); got != 3 {
		t.Fatalf("expected 3 playbacks, got %d", got)
	}
}

func TestDebounceRespectsSettings(t *testing.T) {
	player := &fakePlayer{}
	settings := NewMemorySettings(false, 0.5)
	d := NewDebouncer(player, settings, 0)

	if d.Trigger(SoundClick) {
		t.Fatal("disabled settings should mute playback")
	}
	if got := player.count(); got != 0 {
		t.Fatalf("expected no playbacks, got %d", got)
	}

	settings.SetSoundEnabled(true)
	if !d.Trigger(SoundClick) {
		t.Fatal("enabled settings should allow playback")
	}
}

func TestDebounceSwallowsPlaybackErrors(t *testing.T) {
	player := &fakePlayer{err: errors.New("autoplay blocked")}
	d := NewDebouncer(player, nil, 0)

	if !d.Trigger(SoundError) {
		t.Fatal("playback should be attempted even when the player fails")
	}
	if got := player.count(); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestMemorySettingsClampVolume(t *testing.T) {
	s := NewMemorySettings(true, 0.5)
	s.SetVolume(1.7)
	if got := s.Volume(); got != 1 {
		t.Fatalf("expected volume clamped to 1, got %v", got)
	}
	s.SetVolume(-0.3)
	if got := s.Volume(); got != 0 {
		t.Fatalf("expected volume clamped to 0, got %v", got)
	}
}
