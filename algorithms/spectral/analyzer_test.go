package spectral

import (
	"math"
	"testing"

	"github.com/sonogrid/sonogrid/algorithms/windowing"
	"github.com/sonogrid/sonogrid/internal/sigtest"
)

func TestNewSpectrumAnalyzerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewSpectrumAnalyzer(0, nil); err == nil {
		t.Error("fft size 0 should return an error")
	}
	if _, err := NewSpectrumAnalyzer(-16, nil); err == nil {
		t.Error("negative fft size should return an error")
	}
	if _, err := NewSpectrumAnalyzer(1024, windowing.NewHann(512)); err == nil {
		t.Error("mismatched window size should return an error")
	}
}

func TestBinsIsHalfFFTSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		fftSize int
		want    int
	}{
		{fftSize: 32, want: 16},
		{fftSize: 1024, want: 512},
		{fftSize: 4096, want: 2048},
	}

	for _, tc := range cases {
		a, err := NewSpectrumAnalyzer(tc.fftSize, nil)
		if err != nil {
			t.Fatalf("NewSpectrumAnalyzer(%d): %v", tc.fftSize, err)
		}
		if a.Bins() != tc.want {
			t.Errorf("Bins() for fft size %d = %d, want %d", tc.fftSize, a.Bins(), tc.want)
		}
	}
}

func TestMagnitudesSinePeak(t *testing.T) {
	t.Parallel()

	const (
		fftSize = 256
		rate    = 44100
		bin     = 8
	)

	// A full-scale sine at an exact bin frequency concentrates in that bin.
	// With a rectangular window and the 2/N scaling, the peak reads the
	// sine's amplitude.
	freq := float64(bin) * float64(rate) / float64(fftSize)
	signal := sigtest.Sine(fftSize, freq, 1.0, rate)

	a, err := NewSpectrumAnalyzer(fftSize, windowing.NewRectangular(fftSize))
	if err != nil {
		t.Fatal(err)
	}

	mags := a.Magnitudes(signal, 0, nil)
	if len(mags) != fftSize/2 {
		t.Fatalf("got %d bins, want %d", len(mags), fftSize/2)
	}

	if math.Abs(mags[bin]-1.0) > 1e-9 {
		t.Errorf("peak bin magnitude = %g, want 1.0", mags[bin])
	}

	for k, m := range mags {
		if k == bin {
			continue
		}
		if m > 1e-9 {
			t.Errorf("bin %d leaked magnitude %g", k, m)
		}
	}
}

func TestMagnitudesHannCoherentGain(t *testing.T) {
	t.Parallel()

	const (
		fftSize = 512
		rate    = 48000
		bin     = 16
	)

	freq := float64(bin) * float64(rate) / float64(fftSize)
	signal := sigtest.Sine(fftSize, freq, 1.0, rate)

	a, err := NewSpectrumAnalyzer(fftSize, nil)
	if err != nil {
		t.Fatal(err)
	}

	mags := a.Magnitudes(signal, 0, nil)

	// Hann attenuates a coherent tone by its 0.5 gain.
	if math.Abs(mags[bin]-0.5) > 0.01 {
		t.Errorf("Hann peak magnitude = %g, want ~0.5", mags[bin])
	}
}

func TestMagnitudesZeroPadding(t *testing.T) {
	t.Parallel()

	a, err := NewSpectrumAnalyzer(64, nil)
	if err != nil {
		t.Fatal(err)
	}

	// 10 samples against a 64-sample frame: the tail pads with zeros
	// instead of reading out of range.
	short := sigtest.Sine(10, 1000, 1.0, 44100)
	mags := a.Magnitudes(short, 0, nil)
	if len(mags) != 32 {
		t.Fatalf("got %d bins, want 32", len(mags))
	}

	// A start past the end of the buffer reads all zeros.
	past := a.Magnitudes(short, 100, nil)
	for k, m := range past {
		if m != 0 {
			t.Fatalf("bin %d = %g for out-of-range start, want 0", k, m)
		}
	}
}

func TestMagnitudesSilence(t *testing.T) {
	t.Parallel()

	a, err := NewSpectrumAnalyzer(128, nil)
	if err != nil {
		t.Fatal(err)
	}

	mags := a.Magnitudes(sigtest.Silence(1024), 0, nil)
	for k, m := range mags {
		if m != 0 {
			t.Fatalf("bin %d = %g for silence, want 0", k, m)
		}
	}
}

func TestMagnitudesReusesDst(t *testing.T) {
	t.Parallel()

	a, err := NewSpectrumAnalyzer(64, nil)
	if err != nil {
		t.Fatal(err)
	}

	signal := sigtest.Noise(256, 0.5, 42)
	dst := make([]float64, 32)
	got := a.Magnitudes(signal, 0, dst)

	if &got[0] != &dst[0] {
		t.Error("Magnitudes should reuse the provided destination slice")
	}
}

func TestPowerSpectrumIsSquaredMagnitude(t *testing.T) {
	t.Parallel()

	a, err := NewSpectrumAnalyzer(128, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSpectrumAnalyzer(128, nil)
	if err != nil {
		t.Fatal(err)
	}

	signal := sigtest.Noise(512, 0.8, 7)
	mags := a.Magnitudes(signal, 64, nil)
	power := b.PowerSpectrum(signal, 64, nil)

	for k := range mags {
		want := mags[k] * mags[k]
		if math.Abs(power[k]-want) > 1e-12 {
			t.Fatalf("power[%d] = %g, want %g", k, power[k], want)
		}
	}
}

func TestBinFrequency(t *testing.T) {
	t.Parallel()

	a, err := NewSpectrumAnalyzer(1024, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := a.BinFrequency(0, 44100); got != 0 {
		t.Errorf("BinFrequency(0) = %g, want 0", got)
	}
	if got := a.BinFrequency(512, 44100); math.Abs(got-22050) > 1e-9 {
		t.Errorf("BinFrequency(512) = %g, want 22050", got)
	}
}

func BenchmarkMagnitudes(b *testing.B) {
	a, err := NewSpectrumAnalyzer(1024, nil)
	if err != nil {
		b.Fatal(err)
	}

	signal := sigtest.Noise(44100, 0.5, 1)
	dst := make([]float64, a.Bins())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = a.Magnitudes(signal, (i*441)%len(signal), dst)
	}
}
