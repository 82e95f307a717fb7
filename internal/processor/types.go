package processor

import (
	"webopt/internal/config"
	"webopt/internal/report"
)

// VariantSpec is one cell of the width x format matrix.
type VariantSpec struct {
	Width  int
	Format config.Format
}

// Job is one source image, Index is its position in the directory listing.
type Job struct {
	Index int
	Name  string
}

// VariantOutcome is the result of attempting one variant. Exactly one of
// Output and Err is set.
type VariantOutcome struct {
	Spec         VariantSpec
	Preservation bool
	Output       *report.Output
	Err          error
}

// FileOutcome is the result of processing one source image. Record holds the
// successful outputs; failed variants stay inspectable in Variants.
type FileOutcome struct {
	Index    int
	Record   report.Record
	ProbeErr error
	Variants []VariantOutcome
}

// Failures returns the variants that could not be written.
func (o FileOutcome) Failures() []VariantOutcome {
	var failed []VariantOutcome
	for _, v := range o.Variants {
		if v.Err != nil {
			failed = append(failed, v)
		}
	}
	return failed
}

// Summary counts what a run produced.
type Summary struct {
	Files           int
	Variants        int
	VariantFailures int
	ProbeFailures   int
	BytesWritten    int64
}

// ProgressUpdate is a delta emitted after listing and after each file. File
// names the image just finished and Formats counts its written variants by
// output format.
type ProgressUpdate struct {
	TotalDelta        int
	ProcessedDelta    int
	VariantDelta      int
	FailureDelta      int
	ProbeFailureDelta int
	BytesDelta        int64
	File              string
	Formats           map[string]int
}
