package windowing

import (
	"fmt"
	"strings"
)

// WindowType identifies a window function
type WindowType string

const (
	WindowHann        WindowType = "hann"
	WindowHamming     WindowType = "hamming"
	WindowBlackman    WindowType = "blackman"
	WindowRectangular WindowType = "rectangular"
)

// Window is a fixed-size window function with precomputed coefficients
type Window interface {
	// Apply multiplies the signal by the window (creates new array)
	Apply(signal []float64) []float64

	// ApplyInPlace multiplies the signal by the window in-place
	ApplyInPlace(signal []float64) error

	// Coefficients returns a copy of the window coefficients
	Coefficients() []float64

	// Size returns the window size
	Size() int

	// Type returns the window type
	Type() WindowType
}

// ParseWindowType converts a window name to a WindowType
func ParseWindowType(name string) (WindowType, error) {
	switch WindowType(strings.ToLower(strings.TrimSpace(name))) {
	case WindowHann:
		return WindowHann, nil
	case WindowHamming:
		return WindowHamming, nil
	case WindowBlackman:
		return WindowBlackman, nil
	case WindowRectangular:
		return WindowRectangular, nil
	default:
		return "", fmt.Errorf("unknown window type: %s", name)
	}
}

// New creates a window of the given type and size
func New(windowType WindowType, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch windowType {
	case WindowHann:
		return NewHann(size), nil
	case WindowHamming:
		return NewHamming(size), nil
	case WindowBlackman:
		return NewBlackman(size), nil
	case WindowRectangular:
		return NewRectangular(size), nil
	default:
		return nil, fmt.Errorf("unknown window type: %s", windowType)
	}
}

// symmetricDenominator returns size-1 clamped to at least 1 so a
// single-sample window stays finite
func symmetricDenominator(size int) float64 {
	if size <= 1 {
		return 1.0
	}
	return float64(size - 1)
}
