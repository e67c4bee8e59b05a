package transcode

import (
	goaudio "github.com/go-audio/audio"
)

// pcmBufferToFloats scales a go-audio integer PCM buffer onto [-1, 1]
// by the full-scale value of its source bit depth, falling back to the
// decoder-reported depth when the buffer doesn't carry one
func pcmBufferToFloats(buf *goaudio.IntBuffer, fallbackDepth int) []float64 {
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = fallbackDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	out := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float64(v) / scale
	}
	return out
}
