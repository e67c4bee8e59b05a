package filters

import (
	"math"
	"testing"
)

func TestPreEmphasisDifferenceEquation(t *testing.T) {
	t.Parallel()

	pe := NewPreEmphasis(0.97)
	input := []float64{1.0, 0.5, -0.25, 0.0}

	// y[n] = x[n] - 0.97*x[n-1], starting from zero state.
	want := []float64{
		1.0,
		0.5 - 0.97*1.0,
		-0.25 - 0.97*0.5,
		0.0 - 0.97*(-0.25),
	}

	got := pe.ProcessBuffer(input)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("y[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestPreEmphasisReset(t *testing.T) {
	t.Parallel()

	pe := NewPreEmphasisDefault()
	pe.Process(1.0)
	pe.Reset()

	// After reset the filter behaves as if no samples were seen.
	if got := pe.Process(0.5); got != 0.5 {
		t.Errorf("first sample after reset = %g, want 0.5", got)
	}
}

func TestPreEmphasisSetCoefficient(t *testing.T) {
	t.Parallel()

	pe := NewPreEmphasisDefault()

	if err := pe.SetCoefficient(0.98); err != nil {
		t.Fatalf("SetCoefficient(0.98): %v", err)
	}
	if pe.Coefficient() != 0.98 {
		t.Errorf("Coefficient() = %g, want 0.98", pe.Coefficient())
	}

	for _, bad := range []float64{0.0, -0.5, 1.0, 1.5} {
		if err := pe.SetCoefficient(bad); err == nil {
			t.Errorf("SetCoefficient(%g) should return an error", bad)
		}
	}
}

func TestPreEmphasisDCSuppression(t *testing.T) {
	t.Parallel()

	// Constant input settles to (1-α) of the input level.
	pe := NewPreEmphasis(0.95)
	var last float64
	for range 100 {
		last = pe.Process(1.0)
	}
	if math.Abs(last-0.05) > 1e-12 {
		t.Errorf("steady-state DC output = %g, want 0.05", last)
	}
}
