package encoder

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// NativeCodec encodes in-process. It decodes JPEG, PNG and WebP sources and
// writes JPEG or PNG; other formats return ErrUnsupportedFormat.
type NativeCodec struct{}

func (NativeCodec) Encode(ctx context.Context, src, dst string, opts Options) error {
	if opts.Format != "jpeg" && opts.Format != "png" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, opts.Format)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(in)
	_ = in.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	native := img.Bounds().Dx()
	if opts.Width > native {
		return fmt.Errorf("%w: %dpx exceeds source width %dpx", ErrUpscaleRejected, opts.Width, native)
	}
	if opts.Width > 0 && opts.Width < native {
		img = resize.Resize(uint(opts.Width), 0, img, resize.Lanczos3)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "jpeg":
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: opts.Quality})
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(out, img)
	}
	if err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
