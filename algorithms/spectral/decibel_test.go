package spectral

import (
	"math"
	"testing"
)

func TestAmplitudeToDB(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mag     float64
		floorDB float64
		want    float64
	}{
		{name: "unity is 0 dB", mag: 1.0, floorDB: -100, want: 0},
		{name: "half is about -6 dB", mag: 0.5, floorDB: -100, want: 20 * math.Log10(0.5)},
		{name: "zero clamps to floor", mag: 0, floorDB: -100, want: -100},
		{name: "negative clamps to floor", mag: -0.5, floorDB: -100, want: -100},
		{name: "tiny clamps to floor", mag: 1e-10, floorDB: -100, want: -100},
		{name: "respects custom floor", mag: 0, floorDB: -120, want: -120},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := AmplitudeToDB(tc.mag, tc.floorDB)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("AmplitudeToDB(%g, %g) = %g, want %g", tc.mag, tc.floorDB, got, tc.want)
			}
		})
	}
}

func TestByteCoderEndpoints(t *testing.T) {
	t.Parallel()

	c := NewByteCoder(DefaultFloorDB, DefaultCeilDB)

	if got := c.Code(DefaultFloorDB); got != 0 {
		t.Errorf("Code(floor) = %d, want 0", got)
	}
	if got := c.Code(DefaultCeilDB); got != 255 {
		t.Errorf("Code(ceil) = %d, want 255", got)
	}
	if got := c.Code(DefaultFloorDB - 50); got != 0 {
		t.Errorf("Code(below floor) = %d, want 0", got)
	}
	if got := c.Code(DefaultCeilDB + 50); got != 255 {
		t.Errorf("Code(above ceil) = %d, want 255", got)
	}

	mid := (DefaultFloorDB + DefaultCeilDB) / 2
	if got := c.Code(mid); got != 128 {
		t.Errorf("Code(midpoint) = %d, want 128", got)
	}
}

func TestByteCoderMonotonic(t *testing.T) {
	t.Parallel()

	c := NewByteCoder(-100, 0)

	prev := uint8(0)
	for db := -110.0; db <= 10.0; db += 0.5 {
		got := c.Code(db)
		if got < prev {
			t.Fatalf("Code(%g) = %d decreased below %d", db, got, prev)
		}
		prev = got
	}
}

func TestByteCoderDegenerateWindow(t *testing.T) {
	t.Parallel()

	// An empty or inverted window must not divide by zero. Everything at
	// or below the floor codes to 0.
	c := NewByteCoder(-50, -50)
	if got := c.Code(-50); got != 0 {
		t.Errorf("Code(floor) on empty window = %d, want 0", got)
	}
	if got := c.Code(-30); got != 255 {
		t.Errorf("Code(above floor) on empty window = %d, want 255", got)
	}

	inv := NewByteCoder(-30, -100)
	if got := inv.Code(-65); got != 0 {
		t.Errorf("Code below floor on inverted window = %d, want 0", got)
	}
}

func TestByteCoderSilenceFloorsToZero(t *testing.T) {
	t.Parallel()

	c := NewByteCoder(DefaultFloorDB, DefaultCeilDB)
	if got := c.CodeMagnitude(0); got != 0 {
		t.Errorf("CodeMagnitude(0) = %d, want 0", got)
	}
}

func TestByteCoderDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewByteCoder(-100, -30)
	for _, b := range []uint8{0, 1, 64, 128, 200, 255} {
		db := c.Decode(b)
		if got := c.Code(db); got != b {
			t.Errorf("Code(Decode(%d)) = %d, want %d", b, got, b)
		}
	}
}
