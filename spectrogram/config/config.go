// Package config holds the plain-data configuration for spectrogram
// analysis and display. Configs are value types with JSON tags; zero or
// missing fields are filled by the Default* constructors and checked by
// Validate before use.
package config

import (
	"fmt"
	"strings"

	"github.com/sonogrid/sonogrid/algorithms/common"
	"github.com/sonogrid/sonogrid/algorithms/windowing"
)

// ScaleType selects the frequency axis warp used for display
type ScaleType string

const (
	ScaleLinear ScaleType = "linear"
	ScaleLog    ScaleType = "log"
	ScaleMel    ScaleType = "mel"
	ScaleBark   ScaleType = "bark"
)

// ParseScaleType converts a scale name to a ScaleType
func ParseScaleType(name string) (ScaleType, error) {
	switch ScaleType(strings.ToLower(strings.TrimSpace(name))) {
	case ScaleLinear:
		return ScaleLinear, nil
	case ScaleLog, "logarithmic":
		return ScaleLog, nil
	case ScaleMel:
		return ScaleMel, nil
	case ScaleBark:
		return ScaleBark, nil
	default:
		return "", fmt.Errorf("unknown frequency scale: %s", name)
	}
}

// PaletteType selects the color mapping for display values
type PaletteType string

const (
	PaletteGray      PaletteType = "gray"
	PaletteRainbow   PaletteType = "rainbow"
	PaletteInferno   PaletteType = "inferno"
	PaletteForest    PaletteType = "forest"
	PaletteMountains PaletteType = "mountains"
	PaletteNebula    PaletteType = "nebula"
)

// ParsePaletteType converts a palette name to a PaletteType
func ParsePaletteType(name string) (PaletteType, error) {
	switch PaletteType(strings.ToLower(strings.TrimSpace(name))) {
	case PaletteGray, "grayscale", "greyscale":
		return PaletteGray, nil
	case PaletteRainbow:
		return PaletteRainbow, nil
	case PaletteInferno:
		return PaletteInferno, nil
	case PaletteForest:
		return PaletteForest, nil
	case PaletteMountains:
		return PaletteMountains, nil
	case PaletteNebula:
		return PaletteNebula, nil
	default:
		return "", fmt.Errorf("unknown palette: %s", name)
	}
}

// Palettes lists every selectable palette
func Palettes() []PaletteType {
	return []PaletteType{
		PaletteGray, PaletteRainbow, PaletteInferno,
		PaletteForest, PaletteMountains, PaletteNebula,
	}
}

// Mode selects an enhancement preset applied around the core analysis
type Mode string

const (
	// ModeClassic analyzes the signal as-is with the fixed default
	// decibel window.
	ModeClassic Mode = "classic"

	// ModeSharp pre-emphasizes the signal and anchors the decibel
	// ceiling at the 99.7th percentile of observed levels, keeping an
	// 80 dB window below it.
	ModeSharp Mode = "sharp"

	// ModeSharper pre-emphasizes harder and keeps a 50 dB window below
	// the 99.5th percentile ceiling.
	ModeSharper Mode = "sharper"
)

// ModeParams are the preset knobs behind a Mode. Zero values mean the
// corresponding step is skipped.
type ModeParams struct {
	PreEmphasis    float64 `json:"pre_emphasis,omitempty"`    // filter coefficient, 0 disables
	CeilPercentile float64 `json:"ceil_percentile,omitempty"` // 0..1, 0 keeps the fixed window
	TopDB          float64 `json:"top_db,omitempty"`          // window height below the ceiling
}

// ParseMode converts a mode name to a Mode
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case ModeClassic, "":
		return ModeClassic, nil
	case ModeSharp:
		return ModeSharp, nil
	case ModeSharper:
		return ModeSharper, nil
	default:
		return "", fmt.Errorf("unknown mode: %s", name)
	}
}

// Params returns the preset parameters for the mode
func (m Mode) Params() ModeParams {
	switch m {
	case ModeSharp:
		return ModeParams{PreEmphasis: 0.97, CeilPercentile: 0.997, TopDB: 80}
	case ModeSharper:
		return ModeParams{PreEmphasis: 0.98, CeilPercentile: 0.995, TopDB: 50}
	default:
		return ModeParams{}
	}
}

// AnalysisConfig configures single-frame magnitude analysis
type AnalysisConfig struct {
	FFTSize    int     `json:"fft_size"`
	WindowType string  `json:"window_type"`
	FloorDB    float64 `json:"floor_db"`
	CeilDB     float64 `json:"ceil_db"`
}

// DefaultAnalysisConfig returns the standard analyser settings: 1024-point
// Hann frames coded into the [-100, -30] dB display window
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		FFTSize:    1024,
		WindowType: string(windowing.WindowHann),
		FloorDB:    -100,
		CeilDB:     -30,
	}
}

// Validate checks the analysis settings
func (c *AnalysisConfig) Validate() error {
	if !common.IsPowerOfTwo(c.FFTSize) || c.FFTSize < 32 || c.FFTSize > 32768 {
		return fmt.Errorf("fft size must be a power of two in [32, 32768], got %d", c.FFTSize)
	}
	if _, err := windowing.ParseWindowType(c.WindowType); err != nil {
		return err
	}
	if c.CeilDB <= c.FloorDB {
		return fmt.Errorf("decibel ceiling (%g) must be above the floor (%g)", c.CeilDB, c.FloorDB)
	}
	return nil
}

// BuildConfig configures offline spectrogram building
type BuildConfig struct {
	Analysis  *AnalysisConfig `json:"analysis"`
	FrameRate float64         `json:"frame_rate"` // analysis frames per second of audio
	Mode      Mode            `json:"mode"`
	MelBands  int             `json:"mel_bands,omitempty"` // used by the mel-band matrix path
	Workers   int             `json:"workers,omitempty"`   // 0 selects a worker per CPU
}

// DefaultBuildConfig returns the standard offline build settings
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		Analysis:  DefaultAnalysisConfig(),
		FrameRate: 30,
		Mode:      ModeClassic,
		MelBands:  384,
	}
}

// Validate checks the build settings
func (c *BuildConfig) Validate() error {
	if c.Analysis == nil {
		return fmt.Errorf("analysis config is required")
	}
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	if c.FrameRate <= 0 || c.FrameRate > 1000 {
		return fmt.Errorf("frame rate must be in (0, 1000], got %g", c.FrameRate)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.MelBands < 0 {
		return fmt.Errorf("mel bands must be non-negative, got %d", c.MelBands)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// DisplayConfig configures packing a matrix onto an output grid
type DisplayConfig struct {
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	Scale         ScaleType   `json:"scale"`
	Palette       PaletteType `json:"palette"`
	Interpolation string      `json:"interpolation"`            // "nearest" or "linear" across frequency
	TimeSmoothing bool        `json:"time_smoothing,omitempty"` // linear interpolation across time
}

// DefaultDisplayConfig returns the standard display settings
func DefaultDisplayConfig() *DisplayConfig {
	return &DisplayConfig{
		Width:         1280,
		Height:        720,
		Scale:         ScaleLog,
		Palette:       PaletteInferno,
		Interpolation: "linear",
	}
}

// Validate checks the display settings
func (c *DisplayConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if _, err := ParseScaleType(string(c.Scale)); err != nil {
		return err
	}
	if _, err := ParsePaletteType(string(c.Palette)); err != nil {
		return err
	}
	if _, err := common.ParseInterpolationType(c.Interpolation); err != nil {
		return err
	}
	return nil
}
