// Package sigtest provides deterministic test signals for the analysis
// and rendering tests.
package sigtest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Sine returns n samples of a sine wave at freq Hz with the given
// amplitude, sampled at rate Hz.
func Sine(n int, freq, amp float64, rate int) []float64 {
	samples := make([]float64, n)
	step := 2 * math.Pi * freq / float64(rate)
	for i := range samples {
		samples[i] = amp * math.Sin(step*float64(i))
	}
	return samples
}

// Silence returns n zero samples.
func Silence(n int) []float64 {
	return make([]float64, n)
}

// Impulse returns n samples with a single unit spike at index 0.
func Impulse(n int) []float64 {
	samples := make([]float64, n)
	if n > 0 {
		samples[0] = 1.0
	}
	return samples
}

// Noise returns n pseudo-random samples in [-amp, amp] from a fixed
// linear congruential generator, so runs are reproducible.
func Noise(n int, amp float64, seed uint64) []float64 {
	samples := make([]float64, n)
	state := seed
	for i := range samples {
		state = state*6364136223846793005 + 1442695040888963407
		u := float64(state>>11) / float64(1<<53)
		samples[i] = amp * (2*u - 1)
	}
	return samples
}

// WAVBytes encodes interleaved samples as a canonical 44-byte-header
// 16-bit PCM WAV file. Samples clip to [-1, 1].
func WAVBytes(samples []float64, rate, channels int) []byte {
	buf := new(bytes.Buffer)

	dataSize := uint32(len(samples) * 2)
	byteRate := uint32(rate * channels * 2)
	blockAlign := uint16(channels * 2)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(rate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)

	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.Write(buf, binary.LittleEndian, int16(math.Round(s*32767)))
	}

	return buf.Bytes()
}

// Ramp returns n samples rising linearly from 0 to amp.
func Ramp(n int, amp float64) []float64 {
	samples := make([]float64, n)
	if n <= 1 {
		if n == 1 {
			samples[0] = 0
		}
		return samples
	}
	for i := range samples {
		samples[i] = amp * float64(i) / float64(n-1)
	}
	return samples
}
