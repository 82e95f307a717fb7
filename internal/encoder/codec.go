package encoder

import "context"

// Options selects the geometry and encoding of one output.
type Options struct {
	// Width is the target width in pixels; zero keeps the native width.
	Width   int
	Format  string
	Quality int
}

// Codec is the image-encoding capability. Encode reads src and writes exactly
// one encoded image to dst, resizing to opts.Width with the aspect ratio kept.
type Codec interface {
	Encode(ctx context.Context, src, dst string, opts Options) error
}

// Extension returns the file extension used for a format.
func Extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
