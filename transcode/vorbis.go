package transcode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// vorbisDecoder decodes Ogg Vorbis via jfreymuth/oggvorbis, which
// already produces interleaved float samples
type vorbisDecoder struct{}

func (vorbisDecoder) Decode(r io.Reader) ([]float64, int, int, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading stream: %w", err)
	}
	if len(data) == 0 {
		return nil, 0, 0, ErrNoAudio
	}

	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v)
	}

	return samples, format.SampleRate, format.Channels, nil
}
