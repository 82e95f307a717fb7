// Package report defines the JSON report shared by the optimize and summary
// stages. The report is the only state passed between them.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"webopt/internal/fsutil"
)

// TimeLayout is ISO-8601 in UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Output is one written variant.
type Output struct {
	Path   string `json:"path"`
	Size   *int64 `json:"size"`
	Width  *int   `json:"width"`
	Format string `json:"format"`
}

// Record is the result for one source image. Outputs are in generation order.
type Record struct {
	File          string   `json:"file"`
	OriginalSize  *int64   `json:"originalSize"`
	OriginalWidth *int     `json:"originalWidth"`
	Outputs       []Output `json:"outputs"`
}

// Report is the aggregate of one run, one record per source in listing order.
type Report struct {
	GeneratedAt string   `json:"generatedAt"`
	Results     []Record `json:"results"`
}

// New stamps records with the generation time.
func New(at time.Time, records []Record) Report {
	if records == nil {
		records = []Record{}
	}
	for i := range records {
		if records[i].Outputs == nil {
			records[i].Outputs = []Output{}
		}
	}
	return Report{GeneratedAt: at.UTC().Format(TimeLayout), Results: records}
}

// Marshal renders the report with two-space indentation.
func Marshal(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Write replaces the report at path.
func Write(path string, r Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	return fsutil.WriteFile(path, data, 0o644)
}

// Read loads and validates a report.
func Read(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if r.Results == nil {
		return Report{}, errors.New("report has no results array")
	}
	return r, nil
}

// Int and Int64 return pointers for optional report fields.
func Int(v int) *int       { return &v }
func Int64(v int64) *int64 { return &v }
