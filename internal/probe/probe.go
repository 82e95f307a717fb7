// Package probe reads the intrinsic dimensions of a source image without
// decoding its pixels.
package probe

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/webp"

	"webopt/pkg/imgutil"
)

// ErrProbeFailed marks a source whose width could not be determined.
var ErrProbeFailed = errors.New("probe failed")

// Dimensions is the probed size of a source image.
type Dimensions struct {
	Kind   imgutil.Kind
	Width  int
	Height int
}

// Probe sniffs the container at path and returns its pixel dimensions. The
// container header is tried first; when it cannot be read, EXIF dimension tags
// are used. Any failure is reported wrapped in ErrProbeFailed.
func Probe(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}
	defer f.Close()

	kind, err := imgutil.SniffReader(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}
	if kind == imgutil.KindUnknown {
		return Dimensions{}, fmt.Errorf("%w: %s: unrecognized image container", ErrProbeFailed, path)
	}

	dims, headerErr := headerDimensions(f, kind)
	if headerErr == nil {
		return dims, nil
	}

	w, h, exifErr := exifDimensions(f)
	if exifErr == nil {
		return Dimensions{Kind: kind, Width: w, Height: h}, nil
	}

	return Dimensions{}, fmt.Errorf("%w: %s: %v (exif: %v)", ErrProbeFailed, path, headerErr, exifErr)
}

func headerDimensions(rs io.ReadSeeker, kind imgutil.Kind) (Dimensions, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Dimensions{}, err
	}

	if kind == imgutil.KindAVIF {
		w, h, err := imgutil.AVIFDimensions(rs)
		if err != nil {
			return Dimensions{}, err
		}
		return Dimensions{Kind: kind, Width: w, Height: h}, nil
	}

	cfg, _, err := image.DecodeConfig(rs)
	if err != nil {
		return Dimensions{}, err
	}
	if cfg.Width <= 0 {
		return Dimensions{}, fmt.Errorf("invalid width %d", cfg.Width)
	}
	return Dimensions{Kind: kind, Width: cfg.Width, Height: cfg.Height}, nil
}
