package common

import (
	"fmt"
	"math"
	"strings"
)

// InterpolationType defines interpolation method
type InterpolationType int

const (
	Nearest InterpolationType = iota
	Linear
)

func (t InterpolationType) String() string {
	switch t {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseInterpolationType converts a method name to an InterpolationType
func ParseInterpolationType(name string) (InterpolationType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest":
		return Nearest, nil
	case "linear":
		return Linear, nil
	default:
		return Nearest, fmt.Errorf("unknown interpolation type: %s", name)
	}
}

// Interpolator samples arrays at fractional indices
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Method returns the interpolation method
func (interp *Interpolator) Method() InterpolationType {
	return interp.method
}

// Interpolate samples data at a fractional index. Indices outside the
// array clamp to the first or last element rather than wrapping.
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	switch interp.method {
	case Linear:
		return interp.linearInterpolate(data, index)
	default:
		return interp.nearestInterpolate(data, index)
	}
}

// nearestInterpolate rounds to the closest sample
func (interp *Interpolator) nearestInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	i := int(math.Round(index))
	if i < 0 {
		i = 0
	}
	if i >= len(data) {
		i = len(data) - 1
	}

	return data[i]
}

// linearInterpolate performs linear interpolation
func (interp *Interpolator) linearInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	if i >= len(data)-1 {
		return data[len(data)-1]
	}

	return data[i] + frac*(data[i+1]-data[i])
}
