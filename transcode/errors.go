package transcode

import (
	"errors"
)

var (
	// ErrUnknownFormat indicates no decoder is registered for the format
	ErrUnknownFormat = errors.New("unknown audio format")

	// ErrInvalidStream indicates the stream decoded but its header
	// carries unusable parameters
	ErrInvalidStream = errors.New("invalid audio stream")

	// ErrNoAudio indicates the stream held no decodable samples
	ErrNoAudio = errors.New("no audio data")
)
