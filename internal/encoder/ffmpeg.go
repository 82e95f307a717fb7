package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegCodec encodes through an ffmpeg binary built with libwebp and libaom.
type FFmpegCodec struct {
	Path string
}

func NewFFmpegCodec(path string) *FFmpegCodec {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegCodec{Path: path}
}

// Encode runs one ffmpeg invocation. Stderr is captured and attached to the
// returned error.
func (c *FFmpegCodec) Encode(ctx context.Context, src, dst string, opts Options) error {
	args, err := BuildArgs(src, dst, opts)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderrBuf.String()); msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// BuildArgs returns the ffmpeg arguments (without the binary) for one output.
func BuildArgs(src, dst string, opts Options) ([]string, error) {
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", src}
	if opts.Width > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:-2:flags=lanczos", opts.Width))
	}
	args = append(args, "-frames:v", "1", "-map_metadata", "-1")

	switch opts.Format {
	case "webp":
		args = append(args, "-c:v", "libwebp", "-quality", strconv.Itoa(opts.Quality), "-f", "webp")
	case "avif":
		args = append(args, "-c:v", "libaom-av1", "-still-picture", "1",
			"-crf", strconv.Itoa(avifCRF(opts.Quality)), "-f", "avif")
	case "jpeg":
		args = append(args, "-c:v", "mjpeg", "-q:v", strconv.Itoa(jpegQScale(opts.Quality)),
			"-f", "image2", "-update", "1")
	case "png":
		args = append(args, "-c:v", "png", "-f", "image2", "-update", "1")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, opts.Format)
	}

	return append(args, dst), nil
}

// avifCRF maps a 1..100 quality onto libaom's 63..0 constant rate factor.
func avifCRF(quality int) int {
	return 63 - quality*63/100
}

// jpegQScale maps a 1..100 quality onto mjpeg's 31..2 qscale.
func jpegQScale(quality int) int {
	return 2 + (100-quality)*29/100
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
