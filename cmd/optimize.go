package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"webopt/internal/config"
	"webopt/internal/encoder"
	"webopt/internal/metrics"
	"webopt/internal/processor"
	"webopt/internal/tui"
)

var (
	optimizeConfigFile  string
	optimizeRoot        string
	optimizeWorkers     int
	optimizeCodec       string
	optimizeFFmpegPath  string
	optimizeMetricsFile string
	optimizeQuiet       bool
)

// stdoutIsTerminal gates the progress display; without a terminal the run
// logs per-file progress instead.
var stdoutIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags]",
	Short: "Generate responsive variants for every image under <root>/originals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(optimizeConfigFile)
		if err != nil {
			return err
		}
		applyOptimizeFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		showProgress := !optimizeQuiet && stdoutIsTerminal()

		// per-file info lines would tear the progress display on a shared terminal
		level := zapcore.InfoLevel
		if optimizeQuiet || (showProgress && isatty.IsTerminal(os.Stderr.Fd())) {
			level = zapcore.WarnLevel
		}
		logger := newLogger(level)
		defer logger.Sync()

		var codec encoder.Codec = encoder.NewFFmpegCodec(cfg.FFmpegPath)
		if cfg.Codec == config.CodecNative {
			codec = encoder.NativeCodec{}
		}

		m := metrics.NewMetrics()
		gen := processor.NewGenerator(cfg, encoder.New(codec), logger, m)
		runner := processor.NewRunner(cfg, gen, logger, m)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		var summary processor.Summary
		if showProgress {
			updates := make(chan processor.ProgressUpdate, 64)
			program := tea.NewProgram(tui.NewModel(updates))
			summary, err = runWithProgress(ctx, cancel, runner, program, updates, logger)
		} else {
			summary, _, err = runner.Run(ctx, nil)
		}
		if err != nil {
			return err
		}

		if cfg.MetricsFile != "" {
			if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Warn("write metrics failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
			}
		}

		rows := []tui.SummaryRow{
			{Label: "Images processed", Value: fmt.Sprintf("%d", summary.Files)},
			{Label: "Variants written", Value: fmt.Sprintf("%d", summary.Variants)},
			{Label: "Variant failures", Value: fmt.Sprintf("%d", summary.VariantFailures), Warn: summary.VariantFailures > 0},
			{Label: "Probe failures", Value: fmt.Sprintf("%d", summary.ProbeFailures), Warn: summary.ProbeFailures > 0},
			{Label: "Bytes written", Value: fmt.Sprintf("%d", summary.BytesWritten)},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

		reportPath := cfg.ReportPath()
		if abs, absErr := filepath.Abs(reportPath); absErr == nil {
			reportPath = abs
		}
		fmt.Fprintf(os.Stdout, "Report written to: %s\n", reportPath)
		return nil
	},
}

// progressUI is the part of *tea.Program the optimize command drives.
type progressUI interface {
	Run() (tea.Model, error)
}

// runWithProgress runs the runner while ui renders its updates. Only a user
// interrupt stops the run; if the display fails to start or exits early the
// run continues and the remaining updates are drained.
func runWithProgress(ctx context.Context, cancel context.CancelFunc, runner *processor.Runner, ui progressUI, updates chan processor.ProgressUpdate, logger *zap.Logger) (processor.Summary, error) {
	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		final, err := ui.Run()
		switch {
		case errors.Is(err, tea.ErrInterrupted) || interrupted(final):
			logger.Warn("interrupted, stopping after in-flight images")
			cancel()
		case err != nil:
			logger.Warn("progress display unavailable", zap.Error(err))
		}
		for range updates {
		}
	}()

	summary, _, err := runner.Run(ctx, updates)
	close(updates)
	<-uiDone
	return summary, err
}

func interrupted(model tea.Model) bool {
	m, ok := model.(interface{ Interrupted() bool })
	return ok && m.Interrupted()
}

func applyOptimizeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = optimizeRoot
	}
	if flags.Changed("workers") {
		cfg.Workers = optimizeWorkers
	}
	if flags.Changed("codec") {
		cfg.Codec = optimizeCodec
	}
	if flags.Changed("ffmpeg") {
		cfg.FFmpegPath = optimizeFFmpegPath
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = optimizeMetricsFile
	}
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeConfigFile, "config", "c", "", "YAML file overriding the variant matrix and settings")
	optimizeCmd.Flags().StringVarP(&optimizeRoot, "root", "r", config.DefaultRoot, "directory containing originals/ and optimized/")
	optimizeCmd.Flags().IntVarP(&optimizeWorkers, "workers", "w", 1, "number of images processed concurrently")
	optimizeCmd.Flags().StringVar(&optimizeCodec, "codec", config.CodecFFmpeg, "encoding backend: ffmpeg or native (jpeg/png only)")
	optimizeCmd.Flags().StringVar(&optimizeFFmpegPath, "ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	optimizeCmd.Flags().StringVar(&optimizeMetricsFile, "metrics-file", "", "write Prometheus textfile metrics after the run")
	optimizeCmd.Flags().BoolVarP(&optimizeQuiet, "quiet", "q", false, "disable the progress display and log warnings and errors only")

	rootCmd.AddCommand(optimizeCmd)
}
