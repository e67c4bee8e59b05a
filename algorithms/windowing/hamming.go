package windowing

import (
	"fmt"
	"math"
)

// Hamming represents a symmetric Hamming window
type Hamming struct {
	size         int
	coefficients []float64
}

// NewHamming creates a new Hamming window
func NewHamming(size int) *Hamming {
	h := &Hamming{size: size}
	h.generate()
	return h
}

func (h *Hamming) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := symmetricDenominator(h.size)
	for i := range h.size {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
}

// Apply applies the window to a signal (creates new array)
func (h *Hamming) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i := 0; i < h.size; i++ {
		windowed[i] = signal[i] * h.coefficients[i]
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hamming) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := 0; i < h.size; i++ {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *Hamming) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *Hamming) Size() int {
	return h.size
}

// Type returns the window type
func (h *Hamming) Type() WindowType {
	return WindowHamming
}
