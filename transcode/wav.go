package transcode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// wavDecoder decodes RIFF/WAVE PCM via go-audio/wav. The library needs
// a seekable source, so the stream is buffered in memory first.
type wavDecoder struct{}

func (wavDecoder) Decode(r io.Reader) ([]float64, int, int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading stream: %w", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(raw))
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%w: not a wav file", ErrInvalidStream)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading pcm: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, 0, ErrNoAudio
	}

	return pcmBufferToFloats(buf, int(dec.BitDepth)), buf.Format.SampleRate, buf.Format.NumChannels, nil
}
