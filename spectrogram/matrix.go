// Package spectrogram turns decoded audio into byte-quantized
// time/frequency matrices and maps them onto display grids: frequency
// axis warping, resampling, color mapping, and playhead tracking.
package spectrogram

import (
	"github.com/sonogrid/sonogrid/algorithms/common"
)

// ValueRange is the observed (min, max) byte range across a whole matrix,
// used for contrast normalization when packing
type ValueRange struct {
	Min uint8 `json:"min"`
	Max uint8 `json:"max"`
}

// FullValueRange spans every possible byte value
func FullValueRange() ValueRange {
	return ValueRange{Min: 0, Max: 255}
}

// NewObservedRange returns the inverted starting range (255, 0) so the
// first Observe call initializes both ends
func NewObservedRange() ValueRange {
	return ValueRange{Min: 255, Max: 0}
}

// Observe widens the range to include b
func (r *ValueRange) Observe(b uint8) {
	if b < r.Min {
		r.Min = b
	}
	if b > r.Max {
		r.Max = b
	}
}

// Span returns the range width clamped to at least 1, so normalization
// never divides by zero even for constant (e.g. silent) matrices
func (r ValueRange) Span() float64 {
	span := int(r.Max) - int(r.Min)
	if span < 1 {
		return 1.0
	}
	return float64(span)
}

// Normalized rescales a magnitude value through the range onto [0, 1]
func (r ValueRange) Normalized(v float64) float64 {
	return common.Clamp01((v - float64(r.Min)) / r.Span())
}

// Matrix is a complete offline spectrogram: FrameCount frames of
// BinCount byte-coded magnitude bins each. Frames are frame-major:
// Frames[t][bin], bin 0 carrying the lowest frequency. A built matrix is
// treated as an immutable snapshot; rebuild instead of mutating.
type Matrix struct {
	Frames     [][]uint8  `json:"-"`
	FrameCount int        `json:"time_frames"`
	BinCount   int        `json:"freq_bins"`
	SampleRate int        `json:"sample_rate"`
	FFTSize    int        `json:"fft_size"`
	HopSize    int        `json:"hop_size"`
	MelBands   int        `json:"mel_bands,omitempty"` // >0 when rows are mel filterbank bands
	Range      ValueRange `json:"range"`
}

// Duration returns the audio time covered by the matrix in seconds
func (m *Matrix) Duration() float64 {
	if m.SampleRate <= 0 {
		return 0
	}
	return float64(m.FrameCount) * float64(m.HopSize) / float64(m.SampleRate)
}

// Empty reports whether the matrix holds no frames
func (m *Matrix) Empty() bool {
	return m.FrameCount == 0
}

// At returns the byte at (frame, bin). Out-of-range indices clamp to the
// nearest valid cell; an empty matrix reads as 0.
func (m *Matrix) At(frame, bin int) uint8 {
	if m.FrameCount == 0 || m.BinCount == 0 {
		return 0
	}

	if frame < 0 {
		frame = 0
	} else if frame >= m.FrameCount {
		frame = m.FrameCount - 1
	}
	if bin < 0 {
		bin = 0
	} else if bin >= m.BinCount {
		bin = m.BinCount - 1
	}

	return m.Frames[frame][bin]
}

// Frame returns frame t clamped to the valid range, or nil for an empty
// matrix. The returned slice aliases the matrix; callers must not
// modify it.
func (m *Matrix) Frame(t int) []uint8 {
	if m.FrameCount == 0 {
		return nil
	}
	if t < 0 {
		t = 0
	} else if t >= m.FrameCount {
		t = m.FrameCount - 1
	}
	return m.Frames[t]
}
