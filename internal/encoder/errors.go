package encoder

import (
	"errors"
	"fmt"
)

var (
	// ErrUpscaleRejected is returned when a variant wider than its source is requested.
	ErrUpscaleRejected = errors.New("upscale rejected")
	// ErrUnsupportedFormat is returned by codecs that cannot produce a format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// EncodeError reports a failed variant write. Nothing is left at Path.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
