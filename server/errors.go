package server

import (
	"errors"
)

var (
	// ErrTaskNotFound indicates an unknown task id
	ErrTaskNotFound = errors.New("task not found")

	// ErrUnsupportedFormat indicates the uploaded file extension has no
	// registered decoder
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileTooLarge indicates the upload exceeds the configured cap
	ErrFileTooLarge = errors.New("file too large")
)
