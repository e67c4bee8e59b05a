package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/sonogrid/sonogrid/algorithms/windowing"
)

// SpectrumAnalyzer computes single-frame magnitude spectra suitable for
// display pipelines. The frame is windowed, transformed, and reduced to
// fftSize/2 linear magnitudes scaled by 2/fftSize so a full-scale sine
// maps to magnitude 1.0.
//
// The analyzer reuses an internal frame buffer, so a single instance is
// not safe for concurrent use. Create one per worker.
type SpectrumAnalyzer struct {
	fftSize int
	window  windowing.Window
	fft     *FFT
	frame   []float64
}

// NewSpectrumAnalyzer creates an analyzer with the given FFT size and
// window. A nil window selects the Hann window.
func NewSpectrumAnalyzer(fftSize int, window windowing.Window) (*SpectrumAnalyzer, error) {
	if fftSize <= 0 {
		return nil, fmt.Errorf("fft size must be positive, got %d", fftSize)
	}

	if window == nil {
		window = windowing.NewHann(fftSize)
	}
	if window.Size() != fftSize {
		return nil, fmt.Errorf("window size (%d) doesn't match fft size (%d)", window.Size(), fftSize)
	}

	return &SpectrumAnalyzer{
		fftSize: fftSize,
		window:  window,
		fft:     NewFFT(),
		frame:   make([]float64, fftSize),
	}, nil
}

// FFTSize returns the analysis frame length in samples
func (a *SpectrumAnalyzer) FFTSize() int {
	return a.fftSize
}

// Bins returns the number of magnitude bins per frame (fftSize/2)
func (a *SpectrumAnalyzer) Bins() int {
	return a.fftSize / 2
}

// BinFrequency returns the center frequency in Hz of bin k at the given
// sample rate
func (a *SpectrumAnalyzer) BinFrequency(k, sampleRate int) float64 {
	return float64(k) * float64(sampleRate) / float64(a.fftSize)
}

// Magnitudes computes the linear magnitude spectrum of the frame starting
// at start. Samples outside the buffer read as zero, so frames that
// overhang the end are zero-padded and a start past the end yields an
// all-zero spectrum. dst is reused when it has capacity for Bins()
// values; otherwise a new slice is allocated.
func (a *SpectrumAnalyzer) Magnitudes(samples []float64, start int, dst []float64) []float64 {
	bins := a.Bins()
	if cap(dst) >= bins {
		dst = dst[:bins]
	} else {
		dst = make([]float64, bins)
	}

	for i := range a.fftSize {
		n := start + i
		if n >= 0 && n < len(samples) {
			a.frame[i] = samples[n]
		} else {
			a.frame[i] = 0
		}
	}

	if err := a.window.ApplyInPlace(a.frame); err != nil {
		for i := range dst {
			dst[i] = 0
		}
		return dst
	}

	spectrum := a.fft.Compute(a.frame)

	scale := 2.0 / float64(a.fftSize)
	for k := range bins {
		dst[k] = cmplx.Abs(spectrum[k]) * scale
	}

	return dst
}

// PowerSpectrum computes squared magnitudes for the frame starting at
// start, using the same windowing and scaling as Magnitudes
func (a *SpectrumAnalyzer) PowerSpectrum(samples []float64, start int, dst []float64) []float64 {
	dst = a.Magnitudes(samples, start, dst)
	for k := range dst {
		dst[k] *= dst[k]
	}
	return dst
}
