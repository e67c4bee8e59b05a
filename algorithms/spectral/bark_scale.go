package spectral

// BarkScale provides bark frequency conversion utilities
// Based on critical bands of human auditory perception
type BarkScale struct {
	// No state needed - stateless conversion functions
}

// NewBarkScale creates a new bark scale converter
func NewBarkScale() *BarkScale {
	return &BarkScale{}
}

// HzToBark converts frequency in Hz to bark scale
// Using Traunmüller (1990) formula
func (bs *BarkScale) HzToBark(hz float64) float64 {
	return (26.81 * hz / (1960.0 + hz)) - 0.53
}

// BarkToHz converts bark scale to frequency in Hz
// Inverse of Traunmüller formula
func (bs *BarkScale) BarkToHz(bark float64) float64 {
	return 1960.0 * (bark + 0.53) / (26.28 - bark)
}
