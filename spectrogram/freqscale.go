package spectrogram

import (
	"fmt"
	"math"

	"github.com/sonogrid/sonogrid/algorithms/common"
	"github.com/sonogrid/sonogrid/algorithms/spectral"
	"github.com/sonogrid/sonogrid/spectrogram/config"
)

// DefaultMinHz anchors the low end of the log, mel and bark display
// curves. Frequencies below it share the bottom edge of the display.
const DefaultMinHz = 20.0

// fallbackMaxHz stands in for the Nyquist frequency when the sample rate
// is too low to carry audible content above the anchor
const fallbackMaxHz = 20000.0

// FreqScale maps normalized display positions onto normalized
// frequencies and back. Warp takes a display fraction (0 = bottom of the
// axis, 1 = top) to a frequency fraction of the maximum frequency;
// Unwarp is its monotonic inverse.
//
// The logarithmic mode uses the anchored-Hz formulation: display
// positions spread geometrically between MinHz and MaxHz, so
// hz(t) = MinHz * (MaxHz/MinHz)^t. Mel and bark interpolate linearly on
// their perceptual scales between the same anchors.
type FreqScale struct {
	scaleType config.ScaleType
	minHz     float64
	maxHz     float64

	mel  *spectral.MelScale
	bark *spectral.BarkScale

	melMin, melMax   float64
	barkMin, barkMax float64
	logRatio         float64
}

// NewFreqScale creates a frequency scale for the given sample rate. The
// upper anchor is the Nyquist frequency, falling back to 20 kHz when the
// sample rate is degenerate.
func NewFreqScale(scaleType config.ScaleType, sampleRate int) (*FreqScale, error) {
	if _, err := config.ParseScaleType(string(scaleType)); err != nil {
		return nil, err
	}

	maxHz := float64(sampleRate) / 2
	if maxHz <= DefaultMinHz {
		maxHz = fallbackMaxHz
	}

	s := &FreqScale{
		scaleType: scaleType,
		minHz:     DefaultMinHz,
		maxHz:     maxHz,
		mel:       spectral.NewMelScale(),
		bark:      spectral.NewBarkScale(),
	}

	s.melMin = s.mel.HzToMel(s.minHz)
	s.melMax = s.mel.HzToMel(s.maxHz)
	s.barkMin = s.bark.HzToBark(s.minHz)
	s.barkMax = s.bark.HzToBark(s.maxHz)
	s.logRatio = math.Log(s.maxHz / s.minHz)

	return s, nil
}

// Type returns the scale type
func (s *FreqScale) Type() config.ScaleType {
	return s.scaleType
}

// MaxHz returns the upper anchor frequency
func (s *FreqScale) MaxHz() float64 {
	return s.maxHz
}

// Hz returns the anchor-curve frequency for a display fraction. Used for
// axis labelling and by Warp.
func (s *FreqScale) Hz(t float64) float64 {
	t = common.Clamp01(t)

	switch s.scaleType {
	case config.ScaleLog:
		return s.minHz * math.Exp(t*s.logRatio)
	case config.ScaleMel:
		return s.mel.MelToHz(common.Lerp(s.melMin, s.melMax, t))
	case config.ScaleBark:
		return s.bark.BarkToHz(common.Lerp(s.barkMin, s.barkMax, t))
	default:
		return t * s.maxHz
	}
}

// Warp maps a display fraction to a frequency fraction of MaxHz
func (s *FreqScale) Warp(t float64) float64 {
	if s.scaleType == config.ScaleLinear {
		return common.Clamp01(t)
	}
	return common.Clamp01(s.Hz(t) / s.maxHz)
}

// Unwarp maps a frequency fraction of MaxHz back to a display fraction
func (s *FreqScale) Unwarp(f float64) float64 {
	f = common.Clamp01(f)
	hz := f * s.maxHz

	switch s.scaleType {
	case config.ScaleLog:
		if hz <= s.minHz {
			return 0
		}
		return common.Clamp01(math.Log(hz/s.minHz) / s.logRatio)
	case config.ScaleMel:
		return common.Clamp01((s.mel.HzToMel(hz) - s.melMin) / (s.melMax - s.melMin))
	case config.ScaleBark:
		return common.Clamp01((s.bark.HzToBark(hz) - s.barkMin) / (s.barkMax - s.barkMin))
	default:
		return f
	}
}

// Ticks returns n axis label frequencies in Hz, evenly spaced in display
// position from bottom to top
func (s *FreqScale) Ticks(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{s.Hz(0)}
	}

	ticks := make([]float64, n)
	for i := range ticks {
		ticks[i] = s.Hz(float64(i) / float64(n-1))
	}
	return ticks
}

// String implements fmt.Stringer
func (s *FreqScale) String() string {
	return fmt.Sprintf("%s[%g-%gHz]", s.scaleType, s.minHz, s.maxHz)
}
