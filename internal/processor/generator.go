package processor

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"webopt/internal/config"
	"webopt/internal/encoder"
	"webopt/internal/metrics"
	"webopt/internal/probe"
	"webopt/internal/report"
)

// ProbeFunc returns the dimensions of a source image.
type ProbeFunc func(path string) (probe.Dimensions, error)

// Generator realizes the variant matrix for one source image at a time.
type Generator struct {
	cfg     config.Config
	matrix  []VariantSpec
	enc     *encoder.Encoder
	probe   ProbeFunc
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewGenerator(cfg config.Config, enc *encoder.Encoder, logger *zap.Logger, m *metrics.Metrics) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:     cfg,
		matrix:  BuildMatrix(cfg),
		enc:     enc,
		probe:   probe.Probe,
		logger:  logger,
		metrics: m,
	}
}

// WithProbe replaces the metadata probe.
func (g *Generator) WithProbe(fn ProbeFunc) *Generator {
	g.probe = fn
	return g
}

// Generate writes every admissible variant of fileName plus the preservation
// variant. Failures are logged and kept in the outcome; they never stop the
// remaining variants.
//
// When the probe fails the source width is unknown and every configured
// width is attempted. With a codec that does not check the decoded width
// this can enlarge a small source.
func (g *Generator) Generate(ctx context.Context, fileName string) FileOutcome {
	srcPath := filepath.Join(g.cfg.OriginalsPath(), fileName)
	log := g.logger.With(zap.String("file", fileName))

	record := report.Record{File: fileName, Outputs: []report.Output{}}
	outcome := FileOutcome{}

	if info, err := os.Stat(srcPath); err == nil {
		record.OriginalSize = report.Int64(info.Size())
	} else {
		log.Warn("stat source failed", zap.Error(err))
	}

	sourceWidth := 0
	if dims, err := g.probe(srcPath); err == nil {
		record.OriginalWidth = report.Int(dims.Width)
		sourceWidth = dims.Width
	} else {
		outcome.ProbeErr = err
		log.Warn("probe failed, attempting every configured width", zap.Error(err))
		if g.metrics != nil {
			g.metrics.IncProbeFailures()
		}
	}

	base := baseName(fileName)
	for _, spec := range Plan(g.matrix, record.OriginalWidth) {
		name := fmt.Sprintf("%s-%d.%s", base, spec.Width, encoder.Extension(spec.Format.Name))
		v := g.encode(ctx, log, srcPath, name, sourceWidth, spec, report.Int(spec.Width))
		outcome.Variants = append(outcome.Variants, v)
	}

	keep := VariantSpec{Format: g.cfg.Preservation}
	name := fmt.Sprintf("%s-orig.%s", base, encoder.Extension(keep.Format.Name))
	v := g.encode(ctx, log, srcPath, name, sourceWidth, keep, record.OriginalWidth)
	v.Preservation = true
	outcome.Variants = append(outcome.Variants, v)

	for _, v := range outcome.Variants {
		if v.Output != nil {
			record.Outputs = append(record.Outputs, *v.Output)
		}
	}
	outcome.Record = record
	return outcome
}

func (g *Generator) encode(ctx context.Context, log *zap.Logger, srcPath, name string, sourceWidth int, spec VariantSpec, width *int) VariantOutcome {
	started := time.Now()
	size, err := g.enc.Encode(ctx, encoder.Request{
		Source:      srcPath,
		Destination: filepath.Join(g.cfg.OptimizedPath(), name),
		SourceWidth: sourceWidth,
		Options: encoder.Options{
			Width:   spec.Width,
			Format:  spec.Format.Name,
			Quality: spec.Format.Quality,
		},
	})
	if err != nil {
		log.Error("variant failed", append(variantFields(spec, sourceWidth), zap.Error(err))...)
		if g.metrics != nil {
			g.metrics.IncVariantFailures(spec.Format.Name)
		}
		return VariantOutcome{Spec: spec, Err: err}
	}

	if size == nil {
		log.Warn("variant written but size unavailable", zap.String("variant", name))
	} else if g.metrics != nil {
		g.metrics.ObserveVariant(spec.Format.Name, *size, time.Since(started))
	}

	return VariantOutcome{
		Spec: spec,
		Output: &report.Output{
			Path:   path.Join(config.OptimizedDir, name),
			Size:   size,
			Width:  width,
			Format: spec.Format.Name,
		},
	}
}

// variantFields describes a variant for logs. The preservation variant has no
// target width, so the source width is logged instead.
func variantFields(spec VariantSpec, sourceWidth int) []zap.Field {
	fields := []zap.Field{zap.String("format", spec.Format.Name), zap.Int("quality", spec.Format.Quality)}
	if spec.Width > 0 {
		return append(fields, zap.Int("width", spec.Width))
	}
	fields = append(fields, zap.String("width", "native"))
	if sourceWidth > 0 {
		fields = append(fields, zap.Int("sourceWidth", sourceWidth))
	}
	return fields
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// baseName is the lowercased file stem with whitespace runs replaced by "-".
func baseName(fileName string) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return strings.ToLower(whitespaceRun.ReplaceAllString(stem, "-"))
}
