package spectrogram

import (
	"sync"
	"testing"

	"github.com/sonogrid/sonogrid/internal/sigtest"
	"github.com/sonogrid/sonogrid/spectrogram/config"
)

func testBuildConfig() *config.BuildConfig {
	cfg := config.DefaultBuildConfig()
	cfg.Analysis.FFTSize = 1024
	cfg.FrameRate = 30
	return cfg
}

func TestBuildOneSecondScenario(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}

	// One second at 44100 Hz, FFT 1024, 30 frames/s.
	samples := sigtest.Sine(44100, 440, 0.8, 44100)
	m, err := b.Build(samples, 44100)
	if err != nil {
		t.Fatal(err)
	}

	if m.HopSize != 1470 {
		t.Errorf("hop size = %d, want 1470", m.HopSize)
	}
	if m.FrameCount != 30 {
		t.Errorf("frame count = %d, want 30", m.FrameCount)
	}
	if m.BinCount != 512 {
		t.Errorf("bin count = %d, want 512", m.BinCount)
	}
	for i, frame := range m.Frames {
		if len(frame) != 512 {
			t.Fatalf("frame %d has %d bins, want 512", i, len(frame))
		}
	}
}

func TestBuildEmptyBuffer(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}

	m, err := b.Build(nil, 44100)
	if err != nil {
		t.Fatal(err)
	}

	if !m.Empty() || m.FrameCount != 0 {
		t.Errorf("empty buffer should build a zero-frame matrix, got %d frames", m.FrameCount)
	}
	if m.Range.Span() < 1 {
		t.Errorf("Span() = %g, want at least 1", m.Range.Span())
	}
}

func TestBuildShortBufferSingleFrame(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}

	// 100 samples is far less than one FFT window; the tail zero-pads
	// into exactly one frame.
	m, err := b.Build(sigtest.Sine(100, 440, 0.5, 44100), 44100)
	if err != nil {
		t.Fatal(err)
	}

	if m.FrameCount != 1 {
		t.Errorf("frame count = %d, want 1", m.FrameCount)
	}
	if len(m.Frames[0]) != 512 {
		t.Errorf("frame has %d bins, want 512", len(m.Frames[0]))
	}
}

func TestBuildSilence(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}

	m, err := b.Build(sigtest.Silence(44100), 44100)
	if err != nil {
		t.Fatal(err)
	}

	for i, frame := range m.Frames {
		for k, v := range frame {
			if v != 0 {
				t.Fatalf("frame %d bin %d = %d, want 0 for silence", i, k, v)
			}
		}
	}

	if m.Range.Min != 0 || m.Range.Max != 0 {
		t.Errorf("silent range = (%d, %d), want (0, 0)", m.Range.Min, m.Range.Max)
	}
	if m.Range.Span() != 1 {
		t.Errorf("silent Span() = %g, want clamped to 1", m.Range.Span())
	}
}

func TestBuildIdempotent(t *testing.T) {
	t.Parallel()

	cfg := testBuildConfig()
	cfg.Workers = 4

	b, err := NewBuilder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	samples := sigtest.Noise(44100, 0.7, 99)
	first, err := b.Build(samples, 44100)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(samples, 44100)
	if err != nil {
		t.Fatal(err)
	}

	if first.FrameCount != second.FrameCount {
		t.Fatalf("frame counts differ: %d vs %d", first.FrameCount, second.FrameCount)
	}
	for i := range first.Frames {
		for k := range first.Frames[i] {
			if first.Frames[i][k] != second.Frames[i][k] {
				t.Fatalf("frame %d bin %d differs between builds", i, k)
			}
		}
	}
	if first.Range != second.Range {
		t.Errorf("ranges differ: %+v vs %+v", first.Range, second.Range)
	}
}

func TestBuildTonePeaksAtExpectedBin(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}

	// 4306.6 Hz sits exactly on bin 100 at 44100 Hz with FFT 1024.
	freq := 100.0 * 44100.0 / 1024.0
	m, err := b.Build(sigtest.Sine(44100, freq, 0.9, 44100), 44100)
	if err != nil {
		t.Fatal(err)
	}

	frame := m.Frames[m.FrameCount/2]
	peakBin := 0
	for k, v := range frame {
		if v > frame[peakBin] {
			peakBin = k
		}
	}

	if peakBin != 100 {
		t.Errorf("peak bin = %d, want 100", peakBin)
	}
	if frame[peakBin] == 0 {
		t.Error("peak bin should be above the floor")
	}
}

func TestBuildOnFrameOrdering(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}

	var frames []int
	b.OnFrame = func(index, total int, frame []uint8) {
		if total != 30 {
			t.Errorf("total = %d, want 30", total)
		}
		if len(frame) != 512 {
			t.Errorf("frame %d has %d bins", index, len(frame))
		}
		frames = append(frames, index)
	}

	if _, err := b.Build(sigtest.Sine(44100, 440, 0.5, 44100), 44100); err != nil {
		t.Fatal(err)
	}

	if len(frames) != 30 {
		t.Fatalf("OnFrame called %d times, want 30", len(frames))
	}
	for i, got := range frames {
		if got != i {
			t.Fatalf("OnFrame order broken at %d: got index %d", i, got)
		}
	}
}

func TestBuildOnProgressReachesTotal(t *testing.T) {
	t.Parallel()

	cfg := testBuildConfig()
	cfg.Workers = 4

	b, err := NewBuilder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	maxDone := 0
	b.OnProgress = func(done, total int) {
		mu.Lock()
		if done > maxDone {
			maxDone = done
		}
		mu.Unlock()
	}

	if _, err := b.Build(sigtest.Noise(22050, 0.5, 3), 44100); err != nil {
		t.Fatal(err)
	}

	if maxDone != 15 {
		t.Errorf("max progress = %d, want 15", maxDone)
	}
}

func TestBuildMelBandCount(t *testing.T) {
	t.Parallel()

	cfg := testBuildConfig()
	cfg.MelBands = 64

	b, err := NewBuilder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	m, err := b.BuildMel(sigtest.Sine(44100, 1000, 0.8, 44100), 44100)
	if err != nil {
		t.Fatal(err)
	}

	if m.MelBands != 64 {
		t.Errorf("MelBands = %d, want 64", m.MelBands)
	}
	if m.BinCount != 64 {
		t.Errorf("BinCount = %d, want 64", m.BinCount)
	}
	for i, frame := range m.Frames {
		if len(frame) != 64 {
			t.Fatalf("frame %d has %d bands, want 64", i, len(frame))
		}
	}
}

func TestBuildMelCapsBandsAtBins(t *testing.T) {
	t.Parallel()

	cfg := testBuildConfig()
	cfg.Analysis.FFTSize = 256
	cfg.MelBands = 400

	b, err := NewBuilder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	m, err := b.BuildMel(sigtest.Sine(8192, 500, 0.5, 44100), 44100)
	if err != nil {
		t.Fatal(err)
	}

	if m.BinCount != 128 {
		t.Errorf("BinCount = %d, want capped at 128", m.BinCount)
	}
}

func TestBuildSharpModeDiffersFromClassic(t *testing.T) {
	t.Parallel()

	samples := sigtest.Noise(44100, 0.6, 11)

	classic, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}
	classicMatrix, err := classic.Build(samples, 44100)
	if err != nil {
		t.Fatal(err)
	}

	sharpCfg := testBuildConfig()
	sharpCfg.Mode = config.ModeSharp
	sharp, err := NewBuilder(sharpCfg)
	if err != nil {
		t.Fatal(err)
	}
	sharpMatrix, err := sharp.Build(samples, 44100)
	if err != nil {
		t.Fatal(err)
	}

	// The percentile-anchored window saturates the loudest cells.
	if sharpMatrix.Range.Max != 255 {
		t.Errorf("sharp range max = %d, want 255", sharpMatrix.Range.Max)
	}

	same := true
	for i := range classicMatrix.Frames {
		for k := range classicMatrix.Frames[i] {
			if classicMatrix.Frames[i][k] != sharpMatrix.Frames[i][k] {
				same = false
				break
			}
		}
		if !same {
			break
		}
	}
	if same {
		t.Error("sharp mode should change the coded output")
	}
}

func TestBuildRejectsBadSampleRate(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(testBuildConfig())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.Build(sigtest.Silence(100), 0); err == nil {
		t.Error("zero sample rate should return an error")
	}
	if _, err := b.Build(sigtest.Silence(100), -44100); err == nil {
		t.Error("negative sample rate should return an error")
	}
}

func TestNewBuilderValidatesConfig(t *testing.T) {
	t.Parallel()

	cfg := testBuildConfig()
	cfg.Analysis.FFTSize = 1000
	if _, err := NewBuilder(cfg); err == nil {
		t.Error("invalid fft size should fail")
	}

	if _, err := NewBuilder(nil); err != nil {
		t.Errorf("nil config should select defaults, got %v", err)
	}
}
