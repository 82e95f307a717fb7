package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"webopt/internal/fsutil"
)

// Request describes one variant to write.
type Request struct {
	Source      string
	Destination string
	// SourceWidth is the probed width of Source, zero when unknown.
	SourceWidth int
	Options
}

// Encoder writes variants through a Codec. Output is staged in a temporary
// file beside the destination and renamed into place only on success.
type Encoder struct {
	codec Codec
}

func New(codec Codec) *Encoder {
	return &Encoder{codec: codec}
}

// Encode writes req.Destination and returns its size. The size is nil when
// the written file cannot be stat'ed afterwards.
func (e *Encoder) Encode(ctx context.Context, req Request) (*int64, error) {
	if req.Width > 0 && req.SourceWidth > 0 && req.Width > req.SourceWidth {
		return nil, fmt.Errorf("%w: %s at %dpx exceeds source width %dpx",
			ErrUpscaleRejected, filepath.Base(req.Destination), req.Width, req.SourceWidth)
	}

	destDir := filepath.Dir(req.Destination)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, &EncodeError{Path: req.Destination, Err: err}
	}

	tmpFile, err := os.CreateTemp(destDir, ".webopt-*.tmp")
	if err != nil {
		return nil, &EncodeError{Path: req.Destination, Err: err}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	if err := tmpFile.Close(); err != nil {
		return nil, &EncodeError{Path: req.Destination, Err: err}
	}

	if err := e.codec.Encode(ctx, req.Source, tmpPath, req.Options); err != nil {
		return nil, &EncodeError{Path: req.Destination, Err: err}
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return nil, &EncodeError{Path: req.Destination, Err: err}
	}
	if info.Size() == 0 {
		return nil, &EncodeError{Path: req.Destination, Err: fmt.Errorf("codec produced an empty file")}
	}

	if err := fsutil.ReplaceFile(tmpPath, req.Destination); err != nil {
		return nil, &EncodeError{Path: req.Destination, Err: err}
	}

	outInfo, err := os.Stat(req.Destination)
	if err != nil {
		return nil, nil
	}
	size := outInfo.Size()
	return &size, nil
}
