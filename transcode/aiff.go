package transcode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
)

// aiffDecoder decodes AIFF PCM via go-audio/aiff, buffering the stream
// for the seekable source the library requires
type aiffDecoder struct{}

func (aiffDecoder) Decode(r io.Reader) ([]float64, int, int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading stream: %w", err)
	}

	dec := aiff.NewDecoder(bytes.NewReader(raw))
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%w: not an aiff file", ErrInvalidStream)
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
