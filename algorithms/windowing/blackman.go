package windowing

import (
	"fmt"
	"math"
)

// Blackman represents a symmetric Blackman window
type Blackman struct {
	size         int
	coefficients []float64
}

// NewBlackman creates a new Blackman window
func NewBlackman(size int) *Blackman {
	b := &Blackman{size: size}
	b.generate()
	return b
}

func (b *Blackman) generate() {
	b.coefficients = make([]float64, b.size)

	denominator := symmetricDenominator(b.size)
	a0, a1, a2 := 0.42, 0.5, 0.08

	for i := range b.size {
		arg := 2 * math.Pi * float64(i) / denominator
		b.coefficients[i] = a0 - a1*math.Cos(arg) + a2*math.Cos(2*arg)
	}
}

// Apply applies the window to a signal (creates new array)
func (b *Blackman) Apply(signal []float64) []float64 {
	if len(signal) != b.size {
		return nil
	}

	windowed := make([]float64, b.size)
	for i := 0; i < b.size; i++ {
		windowed[i] = signal[i] * b.coefficients[i]
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (b *Blackman) ApplyInPlace(signal []float64) error {
	if len(signal) != b.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), b.size)
	}

	for i := 0; i < b.size; i++ {
		signal[i] *= b.coefficients[i]
	}

	return nil
}

// Coefficients returns a copy of the window coefficients
func (b *Blackman) Coefficients() []float64 {
	coeffs := make([]float64, len(b.coefficients))
	copy(coeffs, b.coefficients)
	return coeffs
}

// Size returns the window size
func (b *Blackman) Size() int {
	return b.size
}

// Type returns the window type
func (b *Blackman) Type() WindowType {
	return WindowBlackman
}
