// Package transcode decodes audio containers into mono float64 sample
// buffers ready for analysis. Decoding is pure Go; each supported format
// registers a Decoder and DecodeFile dispatches on the file extension.
package transcode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sonogrid/sonogrid/logging"
)

// AudioData is a decoded audio buffer. PCM holds mono samples in
// [-1, 1]; Channels records the source channel count before mixdown.
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Format     string        `json:"format"`
}

// Decoder decodes one container format into interleaved samples
type Decoder interface {
	// Decode reads the whole stream and returns interleaved samples in
	// [-1, 1] together with the source sample rate and channel count.
	Decode(r io.Reader) (samples []float64, sampleRate, channels int, err error)
}

var decoders = map[string]Decoder{
	"wav":  wavDecoder{},
	"aiff": aiffDecoder{},
	"aif":  aiffDecoder{},
	"mp3":  mp3Decoder{},
	"ogg":  vorbisDecoder{},
	"oga":  vorbisDecoder{},
	"flac": flacDecoder{},
}

// Formats returns the registered format names, sorted
func Formats() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether the format has a registered decoder
func Supported(format string) bool {
	_, ok := decoders[normalizeFormat(format)]
	return ok
}

// Decode decodes the stream as the named format and mixes it down to
// mono. The format name matches the usual file extension ("wav",
// "mp3", ...).
func Decode(r io.Reader, format string) (*AudioData, error) {
	format = normalizeFormat(format)
	dec, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	samples, sampleRate, channels, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidStream, sampleRate)
	}
	if channels <= 0 {
		channels = 1
	}

	mono := downmix(samples, channels)

	data := &AudioData{
		PCM:        mono,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(float64(len(mono)) / float64(sampleRate) * float64(time.Second)),
		Format:     format,
	}

	logging.Debug("decoded audio", logging.Fields{
		"component":   "transcode",
		"format":      format,
		"sample_rate": sampleRate,
		"channels":    channels,
		"samples":     len(mono),
		"duration_s":  data.Duration.Seconds(),
	})

	return data, nil
}

// DecodeFile decodes an audio file, picking the decoder from the file
// extension
func DecodeFile(path string) (*AudioData, error) {
	format := normalizeFormat(filepath.Ext(path))
	if _, ok := decoders[format]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f, format)
}

// downmix averages interleaved channels into a mono buffer. Mono input
// passes through untouched; a trailing partial frame is dropped.
func downmix(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for ch := range channels {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}
