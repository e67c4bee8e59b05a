package transcode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// flacDecoder decodes FLAC via mewkiz/flac, walking the frame stream
// and scaling each subframe by the source bit depth
type flacDecoder struct{}

func (flacDecoder) Decode(r io.Reader) ([]float64, int, int, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, 0, fmt.Errorf("parsing frame: %w", err)
		}

		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			for ch := range channels {
				samples = append(samples, float64(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}

	if len(samples) == 0 {
		return nil, 0, 0, ErrNoAudio
	}

	return samples, int(info.SampleRate), channels, nil
}
