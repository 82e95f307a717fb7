package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"webopt/internal/config"
	"webopt/internal/metrics"
	"webopt/internal/report"
)

// ErrReportWrite marks a run whose report could not be persisted.
var ErrReportWrite = errors.New("report write failed")

// Runner enumerates the originals directory, generates variants per file and
// persists the report.
type Runner struct {
	cfg     config.Config
	gen     *Generator
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewRunner(cfg config.Config, gen *Generator, logger *zap.Logger, m *metrics.Metrics) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, gen: gen, logger: logger, metrics: m, now: time.Now}
}

// Run processes every source image and writes the report. Per-file failures
// are recorded and logged; only listing the originals or writing the report
// fails the run. Records keep listing order regardless of worker count.
func (r *Runner) Run(ctx context.Context, updates chan<- ProgressUpdate) (Summary, report.Report, error) {
	summary := Summary{}

	r.logger.Info("scanning", zap.String("dir", r.cfg.OriginalsPath()))
	if err := os.MkdirAll(r.cfg.OptimizedPath(), 0o755); err != nil {
		return summary, report.Report{}, fmt.Errorf("%w: %v", ErrReportWrite, err)
	}

	names, err := ListSources(r.cfg.OriginalsPath())
	if err != nil {
		return summary, report.Report{}, fmt.Errorf("list originals: %w", err)
	}
	if updates != nil {
		updates <- ProgressUpdate{TotalDelta: len(names)}
	}

	records := make([]report.Record, len(names))

	jobs := make(chan Job)
	results := make(chan FileOutcome)

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			r.worker(ctx, jobs, results)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			records[res.Index] = res.Record
			summary.Files++
			if r.metrics != nil {
				r.metrics.IncFilesProcessed()
			}

			update := ProgressUpdate{ProcessedDelta: 1, File: res.Record.File, Formats: map[string]int{}}
			if res.ProbeErr != nil {
				summary.ProbeFailures++
				update.ProbeFailureDelta = 1
			}
			failed := len(res.Failures())
			summary.VariantFailures += failed
			update.FailureDelta = failed
			for _, out := range res.Record.Outputs {
				summary.Variants++
				update.VariantDelta++
				update.Formats[out.Format]++
				if out.Size != nil {
					summary.BytesWritten += *out.Size
					update.BytesDelta += *out.Size
				}
			}
			if len(res.Record.Outputs) == 0 {
				r.logger.Error("no variants produced", zap.String("file", res.Record.File))
			}
			if updates != nil {
				updates <- update
			}
		}
	}()

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			break
		}
		jobs <- Job{Index: i, Name: name}
	}
	close(jobs)

	wg.Wait()
	close(results)
	<-collectorDone

	if err := ctx.Err(); err != nil {
		return summary, report.Report{}, err
	}

	rep := report.New(r.now(), records)
	if err := report.Write(r.cfg.ReportPath(), rep); err != nil {
		return summary, rep, fmt.Errorf("%w: %s: %v", ErrReportWrite, r.cfg.ReportPath(), err)
	}
	r.logger.Info("report written",
		zap.String("path", r.cfg.ReportPath()),
		zap.Int("files", summary.Files),
		zap.Int("variants", summary.Variants),
	)

	return summary, rep, nil
}

func (r *Runner) worker(ctx context.Context, jobs <-chan Job, results chan<- FileOutcome) {
	for job := range jobs {
		r.logger.Info("optimizing", zap.String("file", job.Name))
		outcome := r.gen.Generate(ctx, job.Name)
		outcome.Index = job.Index
		results <- outcome
	}
}
