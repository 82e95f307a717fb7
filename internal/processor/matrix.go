package processor

import "webopt/internal/config"

// BuildMatrix expands the configured widths and formats in generation order:
// widths outer, formats inner.
func BuildMatrix(cfg config.Config) []VariantSpec {
	specs := make([]VariantSpec, 0, len(cfg.Widths)*len(cfg.Formats))
	for _, w := range cfg.Widths {
		for _, f := range cfg.Formats {
			specs = append(specs, VariantSpec{Width: w, Format: f})
		}
	}
	return specs
}

// Admissible reports whether spec may be generated for a source of the given
// width. An unknown width admits every spec.
func Admissible(spec VariantSpec, originalWidth *int) bool {
	if originalWidth == nil {
		return true
	}
	return spec.Width <= *originalWidth
}

// Plan filters the matrix down to the admissible specs, keeping order.
func Plan(matrix []VariantSpec, originalWidth *int) []VariantSpec {
	var planned []VariantSpec
	for _, spec := range matrix {
		if Admissible(spec, originalWidth) {
			planned = append(planned, spec)
		}
	}
	return planned
}
