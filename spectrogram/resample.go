package spectrogram

import (
	"fmt"

	"github.com/sonogrid/sonogrid/algorithms/common"
	"github.com/sonogrid/sonogrid/logging"
	"github.com/sonogrid/sonogrid/spectrogram/config"
)

// Grid is a matrix resampled onto display dimensions: Width columns
// across time, Height rows across frequency, row 0 at the top carrying
// the highest frequency. Values are contrast-normalized magnitudes in
// [0, 1], row-major. A packed grid is an immutable snapshot like the
// matrix it came from.
type Grid struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Values []float64 `json:"-"`
}

// NewGrid allocates a zeroed grid. Non-positive dimensions clamp to 1.
func NewGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Grid{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// At returns the value at column x, row y. Out-of-range coordinates
// clamp to the nearest cell.
func (g *Grid) At(x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= g.Width {
		x = g.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.Height {
		y = g.Height - 1
	}
	return g.Values[y*g.Width+x]
}

// Packer resamples matrices onto display grids: nearest or linear
// sampling along the frequency axis, optional linear smoothing along
// time, with the frequency axis warped through the configured scale.
type Packer struct {
	cfg    *config.DisplayConfig
	interp *common.Interpolator
	smooth bool
	logger logging.Logger
}

// NewPacker creates a packer. A nil config selects the defaults.
func NewPacker(cfg *config.DisplayConfig) (*Packer, error) {
	if cfg == nil {
		cfg = config.DefaultDisplayConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid display config: %w", err)
	}

	method, err := common.ParseInterpolationType(cfg.Interpolation)
	if err != nil {
		return nil, err
	}

	return &Packer{
		cfg:    cfg,
		interp: common.NewInterpolator(method),
		smooth: cfg.TimeSmoothing,
		logger: logging.WithFields(logging.Fields{
			"component": "spectrogram_packer",
		}),
	}, nil
}

// axisFraction spreads n cells over [0, 1] so the first cell sits at 0
// and the last at 1. A single cell maps to 0.
func axisFraction(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// Pack resamples the matrix onto a Width x Height grid.
//
// Column x samples the frame at round(axisFraction(x)*(frameCount-1)),
// or blends the two neighboring frames when time smoothing is on.
// Spreading columns over frameCount-1 (rather than frameCount) keeps
// packing onto a same-sized grid an exact identity. Row y maps through
// the frequency scale from the top down: display fraction
// 1-axisFraction(y) warps to a frequency fraction, which picks a
// fractional bin sampled by the configured interpolation. A mel-band
// matrix bypasses the warp since its rows are already perceptually
// spaced. Every sampled value renormalizes through the matrix range
// onto [0, 1]. An empty matrix packs to an all-zero grid.
func (p *Packer) Pack(m *Matrix) (*Grid, error) {
	if m == nil {
		return nil, fmt.Errorf("matrix is required")
	}

	grid := NewGrid(p.cfg.Width, p.cfg.Height)
	if m.Empty() || m.BinCount == 0 {
		return grid, nil
	}

	scaleType := p.cfg.Scale
	if m.MelBands > 0 {
		scaleType = config.ScaleLinear
	}
	scale, err := NewFreqScale(scaleType, m.SampleRate)
	if err != nil {
		return nil, err
	}

	// Bin positions are identical for every column; compute them once
	// per row, top row first.
	binPos := make([]float64, grid.Height)
	for y := range binPos {
		displayFrac := 1 - axisFraction(y, grid.Height)
		binPos[y] = scale.Warp(displayFrac) * float64(m.BinCount-1)
	}

	frames := matrixToFloat(m)

	for x := range grid.Width {
		pos := axisFraction(x, grid.Width) * float64(m.FrameCount-1)

		for y := range grid.Height {
			var v float64
			if p.smooth {
				v = p.sampleSmoothed(frames, pos, binPos[y])
			} else {
				v = p.interp.Interpolate(frames[nearestFrame(pos, m.FrameCount)], binPos[y])
			}
			grid.Values[y*grid.Width+x] = m.Range.Normalized(v)
		}
	}

	p.logger.Debug("packed grid", logging.Fields{
		"width":  grid.Width,
		"height": grid.Height,
		"frames": m.FrameCount,
		"bins":   m.BinCount,
		"scale":  string(scaleType),
	})

	return grid, nil
}

// sampleSmoothed blends the two frames straddling pos, sampling each at
// the same fractional bin.
func (p *Packer) sampleSmoothed(frames [][]float64, pos, binPos float64) float64 {
	i0 := int(pos)
	if i0 < 0 {
		i0 = 0
	}
	if i0 >= len(frames)-1 {
		return p.interp.Interpolate(frames[len(frames)-1], binPos)
	}

	frac := pos - float64(i0)
	a := p.interp.Interpolate(frames[i0], binPos)
	b := p.interp.Interpolate(frames[i0+1], binPos)
	return common.Lerp(a, b, frac)
}

// nearestFrame rounds a fractional frame position to a valid index
func nearestFrame(pos float64, frameCount int) int {
	i := int(pos + 0.5)
	if i < 0 {
		return 0
	}
	if i >= frameCount {
		return frameCount - 1
	}
	return i
}

// matrixToFloat widens the byte frames for interpolation
func matrixToFloat(m *Matrix) [][]float64 {
	frames := make([][]float64, m.FrameCount)
	for i, frame := range m.Frames {
		row := make([]float64, len(frame))
		for k, b := range frame {
			row[k] = float64(b)
		}
		frames[i] = row
	}
	return frames
}
