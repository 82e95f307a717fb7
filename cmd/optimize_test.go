package cmd

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"webopt/internal/config"
	"webopt/internal/encoder"
	"webopt/internal/processor"
	"webopt/internal/report"
	"webopt/internal/tui"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, x%height, color.RGBA{R: uint8(x), G: 90, B: 200, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func nativeRoot(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.Codec = config.CodecNative
	require.NoError(t, os.MkdirAll(cfg.OriginalsPath(), 0o755))
	writePNG(t, filepath.Join(cfg.OriginalsPath(), "pic.png"), 600, 300)
	return cfg
}

func TestOptimizeCommandWritesReport(t *testing.T) {
	cfg := nativeRoot(t)
	restore := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdoutIsTerminal = restore })

	rootCmd.SetArgs([]string{"optimize", "--root", cfg.Root, "--codec", "native"})
	require.NoError(t, rootCmd.Execute())

	rep, err := report.Read(cfg.ReportPath())
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)

	rec := rep.Results[0]
	assert.Equal(t, "pic.png", rec.File)
	require.NotNil(t, rec.OriginalWidth)
	assert.Equal(t, 600, *rec.OriginalWidth)

	var paths []string
	for _, out := range rec.Outputs {
		paths = append(paths, out.Path)
	}
	assert.Equal(t, []string{"optimized/pic-400.jpg"}, paths)
	assert.FileExists(t, filepath.Join(cfg.OptimizedPath(), "pic-400.jpg"))
}

func TestOptimizeCommandQuietSkipsProgress(t *testing.T) {
	cfg := nativeRoot(t)
	restore := stdoutIsTerminal
	stdoutIsTerminal = func() bool {
		t.Error("progress display considered with --quiet")
		return true
	}
	t.Cleanup(func() {
		stdoutIsTerminal = restore
		optimizeQuiet = false
	})

	rootCmd.SetArgs([]string{"optimize", "--quiet", "--root", cfg.Root, "--codec", "native"})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, cfg.ReportPath())
}

type fakeUI struct {
	model tea.Model
	err   error
}

func (f fakeUI) Run() (tea.Model, error) {
	return f.model, f.err
}

func TestRunWithProgress(t *testing.T) {
	ctrlC, _ := tui.NewModel(nil).Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	tests := []struct {
		name      string
		ui        fakeUI
		cancelled bool
	}{
		{name: "display fails to start", ui: fakeUI{err: errors.New("could not open a new TTY: open /dev/tty: no such device or address")}},
		{name: "display exits early", ui: fakeUI{model: tui.NewModel(nil)}},
		{name: "interrupt error", ui: fakeUI{err: tea.ErrInterrupted}, cancelled: true},
		{name: "ctrl+c model", ui: fakeUI{model: ctrlC}, cancelled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := nativeRoot(t)
			logger := zaptest.NewLogger(t)
			gen := processor.NewGenerator(cfg, encoder.New(encoder.NativeCodec{}), logger, nil)
			runner := processor.NewRunner(cfg, gen, logger, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			summary, err := runWithProgress(ctx, cancel, runner, tt.ui, make(chan processor.ProgressUpdate), logger)

			if tt.cancelled {
				assert.ErrorIs(t, ctx.Err(), context.Canceled)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, ctx.Err())
			assert.Equal(t, 1, summary.Files)
			assert.FileExists(t, cfg.ReportPath())
		})
	}
}
