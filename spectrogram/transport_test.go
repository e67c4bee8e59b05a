package spectrogram

import (
	"math"
	"testing"
	"time"
)

// fakeClock drives a Transport deterministically
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestTransport(duration time.Duration) (*Transport, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := NewTransport(duration)
	tr.now = clock.now
	return tr, clock
}

func TestTransportStoppedIsZero(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTransport(10 * time.Second)
	if tr.State() != TransportStopped {
		t.Errorf("initial state = %s, want stopped", tr.State())
	}
	if got := tr.Position(); got != 0 {
		t.Errorf("Position() = %g, want 0", got)
	}
}

func TestTransportPlayAdvances(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTransport(10 * time.Second)
	tr.Play()
	clock.advance(2500 * time.Millisecond)

	if got := tr.Position(); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Position() = %g, want 0.25", got)
	}
}

func TestTransportLoopWraps(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTransport(10 * time.Second)
	tr.Play()
	clock.advance(12 * time.Second)

	if got := tr.Position(); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("Position() after wrap = %g, want 0.2", got)
	}
}

func TestTransportPauseFreezes(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTransport(10 * time.Second)
	tr.Play()
	clock.advance(4 * time.Second)
	tr.Pause()

	clock.advance(30 * time.Second)
	if got := tr.Position(); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("paused Position() = %g, want 0.4", got)
	}
	if tr.State() != TransportPaused {
		t.Errorf("state = %s, want paused", tr.State())
	}

	// Resuming continues from the frozen offset.
	tr.Play()
	clock.advance(1 * time.Second)
	if got := tr.Position(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("resumed Position() = %g, want 0.5", got)
	}
}

func TestTransportStopResets(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTransport(10 * time.Second)
	tr.Play()
	clock.advance(5 * time.Second)
	tr.Stop()

	if got := tr.Position(); got != 0 {
		t.Errorf("Position() after Stop = %g, want 0", got)
	}
	if tr.State() != TransportStopped {
		t.Errorf("state = %s, want stopped", tr.State())
	}
}

func TestTransportSeekClamps(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTransport(10 * time.Second)
	tr.Pause() // no-op while stopped

	// Seek past the end clamps to 1, which is the loop boundary and
	// wraps to 0 once playing.
	tr.Seek(1.7)
	tr.Play()
	if got := tr.Position(); got != 0 {
		t.Errorf("Position() after Seek(1.7) = %g, want 0", got)
	}
	tr.Stop()

	tr.Seek(-3)
	if got := tr.Position(); got != 0 {
		t.Errorf("Position() after Seek(-3) = %g, want 0", got)
	}
}

func TestTransportSeekWhilePlaying(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTransport(10 * time.Second)
	tr.Play()
	clock.advance(8 * time.Second)

	tr.Seek(0.1)
	clock.advance(1 * time.Second)
	if got := tr.Position(); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("Position() after mid-play seek = %g, want 0.2", got)
	}
}

func TestTransportZeroDuration(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTransport(0)
	tr.Play()
	clock.advance(time.Hour)
	if got := tr.Position(); got != 0 {
		t.Errorf("Position() with zero duration = %g, want 0", got)
	}
}

func TestTransportStateString(t *testing.T) {
	t.Parallel()

	cases := map[TransportState]string{
		TransportStopped: "stopped",
		TransportPlaying: "playing",
		TransportPaused:  "paused",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
