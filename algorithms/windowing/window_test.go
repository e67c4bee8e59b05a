package windowing

import (
	"math"
	"testing"
)

func TestNewKnownTypes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		windowType WindowType
	}{
		{name: "hann", windowType: WindowHann},
		{name: "hamming", windowType: WindowHamming},
		{name: "blackman", windowType: WindowBlackman},
		{name: "rectangular", windowType: WindowRectangular},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w, err := New(tc.windowType, 64)
			if err != nil {
				t.Fatalf("New(%s, 64) returned error: %v", tc.windowType, err)
			}
			if w.Size() != 64 {
				t.Errorf("Size() = %d, want 64", w.Size())
			}
			if w.Type() != tc.windowType {
				t.Errorf("Type() = %s, want %s", w.Type(), tc.windowType)
			}
			if len(w.Coefficients()) != 64 {
				t.Errorf("len(Coefficients()) = %d, want 64", len(w.Coefficients()))
			}
		})
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := New(WindowHann, 0); err == nil {
		t.Error("New(hann, 0) should return an error")
	}
	if _, err := New(WindowHann, -4); err == nil {
		t.Error("New(hann, -4) should return an error")
	}
	if _, err := New(WindowType("gaussian"), 64); err == nil {
		t.Error("New with unknown type should return an error")
	}
}

func TestParseWindowType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    WindowType
		wantErr bool
	}{
		{input: "hann", want: WindowHann},
		{input: "HANN", want: WindowHann},
		{input: " hamming ", want: WindowHamming},
		{input: "blackman", want: WindowBlackman},
		{input: "rectangular", want: WindowRectangular},
		{input: "kaiser", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseWindowType(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseWindowType(%q) should return an error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWindowType(%q) returned error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseWindowType(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestHannShape(t *testing.T) {
	t.Parallel()

	const size = 65
	h := NewHann(size)
	coeffs := h.Coefficients()

	// Symmetric raised cosine: zero at the edges, unity at the center.
	if math.Abs(coeffs[0]) > 1e-12 {
		t.Errorf("coeffs[0] = %g, want 0", coeffs[0])
	}
	if math.Abs(coeffs[size-1]) > 1e-12 {
		t.Errorf("coeffs[%d] = %g, want 0", size-1, coeffs[size-1])
	}
	if math.Abs(coeffs[size/2]-1.0) > 1e-12 {
		t.Errorf("center coefficient = %g, want 1", coeffs[size/2])
	}

	for i, c := range coeffs {
		if c < 0 || c > 1 {
			t.Fatalf("coeffs[%d] = %g outside [0, 1]", i, c)
		}
		if coeffs[size-1-i] != coeffs[i] {
			t.Fatalf("window not symmetric at %d: %g vs %g", i, coeffs[i], coeffs[size-1-i])
		}
	}
}

func TestHammingEdges(t *testing.T) {
	t.Parallel()

	h := NewHamming(33)
	coeffs := h.Coefficients()

	if math.Abs(coeffs[0]-0.08) > 1e-12 {
		t.Errorf("coeffs[0] = %g, want 0.08", coeffs[0])
	}
	if math.Abs(coeffs[32]-0.08) > 1e-12 {
		t.Errorf("coeffs[32] = %g, want 0.08", coeffs[32])
	}
}

func TestSingleSampleWindowIsFinite(t *testing.T) {
	t.Parallel()

	for _, windowType := range []WindowType{WindowHann, WindowHamming, WindowBlackman, WindowRectangular} {
		w, err := New(windowType, 1)
		if err != nil {
			t.Fatalf("New(%s, 1) returned error: %v", windowType, err)
		}
		c := w.Coefficients()[0]
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Errorf("%s size-1 coefficient = %g, want finite", windowType, c)
		}
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	t.Parallel()

	h := NewHann(16)
	if got := h.Apply(make([]float64, 8)); got != nil {
		t.Error("Apply with wrong length should return nil")
	}
	if err := h.ApplyInPlace(make([]float64, 8)); err == nil {
		t.Error("ApplyInPlace with wrong length should return an error")
	}
}

func TestApplyMatchesCoefficients(t *testing.T) {
	t.Parallel()

	h := NewHann(32)
	signal := make([]float64, 32)
	for i := range signal {
		signal[i] = 1.0
	}

	windowed := h.Apply(signal)
	coeffs := h.Coefficients()
	for i := range windowed {
		if windowed[i] != coeffs[i] {
			t.Fatalf("windowed[%d] = %g, want %g", i, windowed[i], coeffs[i])
		}
	}

	// Apply must not touch the input.
	for i := range signal {
		if signal[i] != 1.0 {
			t.Fatalf("Apply modified input at %d", i)
		}
	}
}

func TestRectangularPassesThrough(t *testing.T) {
	t.Parallel()

	r := NewRectangular(8)
	signal := []float64{1, -2, 3, -4, 5, -6, 7, -8}

	windowed := r.Apply(signal)
	for i := range signal {
		if windowed[i] != signal[i] {
			t.Fatalf("windowed[%d] = %g, want %g", i, windowed[i], signal[i])
		}
	}
}
