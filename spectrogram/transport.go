package spectrogram

import (
	"math"
	"sync"
	"time"

	"github.com/sonogrid/sonogrid/algorithms/common"
)

// TransportState is the playback state of a Transport
type TransportState int

const (
	TransportStopped TransportState = iota
	TransportPlaying
	TransportPaused
)

func (s TransportState) String() string {
	switch s {
	case TransportPlaying:
		return "playing"
	case TransportPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Transport tracks a normalized playhead over a fixed duration.
// Position runs [0, 1) and wraps at the loop boundary while playing;
// pausing freezes it and stopping resets it to 0. All transitions are
// caller-driven. Safe for a renderer polling Position concurrently with
// transport control.
type Transport struct {
	mu       sync.Mutex
	duration time.Duration
	state    TransportState
	offset   float64   // frozen position while not playing, base while playing
	started  time.Time // wall time the offset was anchored at
	now      func() time.Time
}

// NewTransport creates a stopped transport for audio of the given
// duration. A non-positive duration pins the position to 0.
func NewTransport(duration time.Duration) *Transport {
	return &Transport{
		duration: duration,
		now:      time.Now,
	}
}

// Duration returns the transport's total duration
func (t *Transport) Duration() time.Duration {
	return t.duration
}

// State returns the current playback state
func (t *Transport) State() TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Play starts or resumes playback from the current position
func (t *Transport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TransportPlaying {
		return
	}
	t.started = t.now()
	t.state = TransportPlaying
}

// Pause freezes the playhead at its current position
func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TransportPlaying {
		return
	}
	t.offset = t.position()
	t.state = TransportPaused
}

// Stop halts playback and resets the playhead to 0
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.offset = 0
	t.state = TransportStopped
}

// Seek repositions the playhead to a normalized fraction, clamped to
// [0, 1]. Playback state is unchanged; a playing transport continues
// from the new position.
func (t *Transport) Seek(frac float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.offset = common.Clamp01(frac)
	if t.state == TransportPlaying {
		t.started = t.now()
	}
}

// Position returns the playhead as a fraction of the duration: elapsed
// wall time modulo duration while playing, the frozen offset while
// paused, 0 while stopped or when the duration is degenerate.
func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position()
}

func (t *Transport) position() float64 {
	if t.duration <= 0 || t.state == TransportStopped {
		return 0
	}
	if t.state == TransportPaused {
		return t.offset
	}

	elapsed := t.now().Sub(t.started).Seconds() / t.duration.Seconds()
	pos := t.offset + elapsed
	return pos - math.Floor(pos)
}
