package transcode

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Decoder decodes MPEG layer III via go-mp3, which emits 16-bit
// little-endian stereo PCM regardless of the source channel layout
type mp3Decoder struct{}

func (mp3Decoder) Decode(r io.Reader) ([]float64, int, int, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("opening decoder: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading pcm: %w", err)
	}
	if len(raw) < 2 {
		return nil, 0, 0, ErrNoAudio
	}

	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float64(v) / 32768.0
	}

	return samples, dec.SampleRate(), 2, nil
}
