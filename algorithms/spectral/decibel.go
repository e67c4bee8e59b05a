package spectral

import (
	"math"
)

// Default decibel window for byte coding. Matches the usual analyser
// display range: anything at or below the floor is black, anything at or
// above the ceiling saturates.
const (
	DefaultFloorDB = -100.0
	DefaultCeilDB  = -30.0
)

// AmplitudeToDB converts a linear magnitude to decibels (20*log10).
// Non-positive magnitudes clamp to floorDB, as do magnitudes whose level
// falls below it.
func AmplitudeToDB(mag, floorDB float64) float64 {
	if mag <= 0 {
		return floorDB
	}

	db := 20.0 * math.Log10(mag)
	if db < floorDB {
		return floorDB
	}
	return db
}

// ByteCoder rescales decibel values into display bytes. Values clamp to
// [FloorDB, CeilDB] and map linearly onto [0, 255].
type ByteCoder struct {
	FloorDB float64 `json:"floor_db"`
	CeilDB  float64 `json:"ceil_db"`
}

// NewByteCoder creates a coder for the given decibel window
func NewByteCoder(floorDB, ceilDB float64) ByteCoder {
	return ByteCoder{FloorDB: floorDB, CeilDB: ceilDB}
}

// span returns the window width, guarded so an inverted or empty window
// cannot divide by zero
func (c ByteCoder) span() float64 {
	span := c.CeilDB - c.FloorDB
	if span <= 0 {
		return 1.0
	}
	return span
}

// Code maps a decibel value to a byte
func (c ByteCoder) Code(db float64) uint8 {
	t := (db - c.FloorDB) / c.span()
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 255
	}
	return uint8(math.Round(t * 255.0))
}

// CodeMagnitude converts a linear magnitude to decibels and codes it
func (c ByteCoder) CodeMagnitude(mag float64) uint8 {
	return c.Code(AmplitudeToDB(mag, c.FloorDB))
}

// Decode maps a byte back to the decibel value at the center of its
// quantization step
func (c ByteCoder) Decode(b uint8) float64 {
	return c.FloorDB + float64(b)/255.0*c.span()
}
