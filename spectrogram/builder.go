package spectrogram

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sonogrid/sonogrid/algorithms/common"
	"github.com/sonogrid/sonogrid/algorithms/filters"
	"github.com/sonogrid/sonogrid/algorithms/spectral"
	"github.com/sonogrid/sonogrid/algorithms/windowing"
	"github.com/sonogrid/sonogrid/logging"
	"github.com/sonogrid/sonogrid/spectrogram/config"
)

// Builder computes complete offline spectrogram matrices from decoded
// sample buffers. A Builder is reusable across inputs; each Build call
// produces an independent Matrix snapshot.
type Builder struct {
	cfg    *config.BuildConfig
	logger logging.Logger

	// OnFrame, when set, receives every quantized frame in order during
	// the coding pass. The slice is the matrix's own storage; receivers
	// must copy it if they keep it.
	OnFrame func(index, total int, frame []uint8)

	// OnProgress, when set, receives analysis progress counts. It may be
	// called concurrently from worker goroutines.
	OnProgress func(done, total int)
}

// NewBuilder creates a builder. A nil config selects the defaults.
func NewBuilder(cfg *config.BuildConfig) (*Builder, error) {
	if cfg == nil {
		cfg = config.DefaultBuildConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid build config: %w", err)
	}

	return &Builder{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "spectrogram_builder",
		}),
	}, nil
}

// HopSize returns the samples advanced between frames at the given
// sample rate: round(rate/frameRate), at least 1.
func (b *Builder) HopSize(sampleRate int) int {
	hop := int(math.Round(float64(sampleRate) / b.cfg.FrameRate))
	if hop < 1 {
		hop = 1
	}
	return hop
}

// FrameCount returns ceil(sampleCount/hop) for the given buffer length
// and sample rate. An empty buffer maps to zero frames.
func (b *Builder) FrameCount(sampleCount, sampleRate int) int {
	if sampleCount <= 0 {
		return 0
	}
	hop := b.HopSize(sampleRate)
	return (sampleCount + hop - 1) / hop
}

// Build analyzes the whole buffer into a byte-quantized matrix with
// fftSize/2 linear-frequency bins per frame. An empty buffer yields a
// valid zero-frame matrix.
func (b *Builder) Build(samples []float64, sampleRate int) (*Matrix, error) {
	return b.build(samples, sampleRate, 0)
}

// BuildMel analyzes the buffer into a mel-band matrix: each frame is the
// configured number of triangular mel filterbank outputs instead of raw
// bins. Band counts above fftSize/2 are capped.
func (b *Builder) BuildMel(samples []float64, sampleRate int) (*Matrix, error) {
	bands := b.cfg.MelBands
	if bands <= 0 {
		bands = config.DefaultBuildConfig().MelBands
	}
	if bands > b.cfg.Analysis.FFTSize/2 {
		bands = b.cfg.Analysis.FFTSize / 2
	}
	return b.build(samples, sampleRate, bands)
}

func (b *Builder) build(samples []float64, sampleRate int, melBands int) (*Matrix, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	fftSize := b.cfg.Analysis.FFTSize
	hop := b.HopSize(sampleRate)
	frameCount := b.FrameCount(len(samples), sampleRate)
	bins := fftSize / 2
	if melBands > 0 {
		bins = melBands
	}

	m := &Matrix{
		Frames:     make([][]uint8, frameCount),
		FrameCount: frameCount,
		BinCount:   bins,
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		HopSize:    hop,
		MelBands:   melBands,
	}

	if frameCount == 0 {
		b.logger.Debug("built empty matrix", logging.Fields{
			"sample_rate": sampleRate,
		})
		return m, nil
	}

	params := b.cfg.Mode.Params()
	if params.PreEmphasis > 0 {
		samples = filters.NewPreEmphasis(params.PreEmphasis).ProcessBuffer(samples)
	}

	dbFrames, err := b.analyze(samples, sampleRate, frameCount, hop, melBands)
	if err != nil {
		return nil, err
	}

	coder := b.coderFor(dbFrames, params)

	rng := NewObservedRange()
	for i, db := range dbFrames {
		frame := make([]uint8, len(db))
		for k, v := range db {
			frame[k] = coder.Code(v)
			rng.Observe(frame[k])
		}
		m.Frames[i] = frame
		if b.OnFrame != nil {
			b.OnFrame(i, frameCount, frame)
		}
	}
	m.Range = rng

	b.logger.Debug("built matrix", logging.Fields{
		"frames":      frameCount,
		"bins":        bins,
		"hop":         hop,
		"mode":        string(b.cfg.Mode),
		"floor_db":    coder.FloorDB,
		"ceil_db":     coder.CeilDB,
		"range_min":   rng.Min,
		"range_max":   rng.Max,
		"duration_s":  m.Duration(),
		"sample_rate": sampleRate,
	})

	return m, nil
}

// analyze runs the windowed analysis across all frames with a worker
// pool, one analyzer per worker, and returns per-frame decibel values.
func (b *Builder) analyze(samples []float64, sampleRate, frameCount, hop, melBands int) ([][]float64, error) {
	fftSize := b.cfg.Analysis.FFTSize
	floorDB := b.cfg.Analysis.FloorDB

	windowType, err := windowing.ParseWindowType(b.cfg.Analysis.WindowType)
	if err != nil {
		return nil, err
	}

	var filterBank [][]float64
	if melBands > 0 {
		filterBank = spectral.NewMelScale().CreateMelFilterBank(
			melBands, fftSize, sampleRate, 0, float64(sampleRate)/2)
	}

	dbFrames := make([][]float64, frameCount)

	workers := b.workerCount(frameCount)
	jobs := make(chan int, frameCount)
	errs := make(chan error, workers)
	var done atomic.Int64

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			window, err := windowing.New(windowType, fftSize)
			if err != nil {
				errs <- err
				return
			}
			analyzer, err := spectral.NewSpectrumAnalyzer(fftSize, window)
			if err != nil {
				errs <- err
				return
			}

			scratch := make([]float64, analyzer.Bins())
			for i := range jobs {
				var db []float64
				if melBands > 0 {
					scratch = analyzer.PowerSpectrum(samples, i*hop, scratch)
					bands := spectral.NewMelScale().ApplyFilterBank(scratch, filterBank)
					db = make([]float64, len(bands))
					for k, p := range bands {
						db[k] = spectral.AmplitudeToDB(math.Sqrt(p), floorDB)
					}
				} else {
					scratch = analyzer.Magnitudes(samples, i*hop, scratch)
					db = make([]float64, len(scratch))
					for k, mag := range scratch {
						db[k] = spectral.AmplitudeToDB(mag, floorDB)
					}
				}
				dbFrames[i] = db

				if b.OnProgress != nil {
					b.OnProgress(int(done.Add(1)), frameCount)
				}
			}
		}()
	}

	for i := range frameCount {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return nil, err
	default:
	}

	return dbFrames, nil
}

// coderFor picks the decibel window for quantization: the configured
// fixed window, or one anchored at a percentile of the observed levels
// when the mode asks for it.
func (b *Builder) coderFor(dbFrames [][]float64, params config.ModeParams) spectral.ByteCoder {
	if params.CeilPercentile <= 0 || params.TopDB <= 0 || len(dbFrames) == 0 {
		return spectral.NewByteCoder(b.cfg.Analysis.FloorDB, b.cfg.Analysis.CeilDB)
	}

	flat := make([]float64, 0, len(dbFrames)*len(dbFrames[0]))
	for _, frame := range dbFrames {
		flat = append(flat, frame...)
	}

	ceiling := common.Percentile(flat, params.CeilPercentile)
	floor := ceiling - params.TopDB
	return spectral.NewByteCoder(floor, ceiling)
}

func (b *Builder) workerCount(frameCount int) int {
	workers := b.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > frameCount {
		workers = frameCount
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
