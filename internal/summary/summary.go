// Package summary derives the per-image best variant and aggregate savings
// from a written report.
package summary

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"webopt/internal/fsutil"
	"webopt/internal/report"
)

var (
	ErrReportRead   = errors.New("report read failed")
	ErrSummaryWrite = errors.New("summary write failed")
)

// TotalLabel names the aggregate row.
const TotalLabel = "TOTAL"

// Header is the first CSV row.
var Header = []string{"file", "originalSize", "bestOptimizedSize", "bestFormat", "bestPath", "savingsBytes", "savingsPercent"}

type Row struct {
	File           string
	OriginalSize   int64
	BestSize       int64
	BestFormat     string
	BestPath       string
	SavingsBytes   int64
	SavingsPercent string
}

// Summary holds one row per record plus the TOTAL row.
type Summary struct {
	Rows  []Row
	Total Row
}

// Best returns the output with the smallest known size. Earlier outputs win
// ties; outputs without a size are never chosen.
func Best(outputs []report.Output) (report.Output, bool) {
	best := -1
	for i := range outputs {
		if best < 0 || compareSize(outputs[i].Size, outputs[best].Size) < 0 {
			best = i
		}
	}
	if best < 0 || outputs[best].Size == nil {
		return report.Output{}, false
	}
	return outputs[best], true
}

// compareSize orders sizes with an absent size above every known one.
func compareSize(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// Summarize computes the rows for every record in report order.
func Summarize(r report.Report) Summary {
	s := Summary{Rows: make([]Row, 0, len(r.Results))}

	var totalOrig, totalBest int64
	for _, rec := range r.Results {
		var orig int64
		if rec.OriginalSize != nil {
			orig = *rec.OriginalSize
		}

		row := Row{File: rec.File, OriginalSize: orig}
		if best, ok := Best(rec.Outputs); ok {
			row.BestSize = *best.Size
			row.BestFormat = best.Format
			row.BestPath = strings.ReplaceAll(best.Path, `\`, "/")
		}
		row.SavingsBytes, row.SavingsPercent = savings(orig, row.BestSize)

		totalOrig += orig
		totalBest += row.BestSize
		s.Rows = append(s.Rows, row)
	}

	s.Total = Row{File: TotalLabel, OriginalSize: totalOrig, BestSize: totalBest}
	s.Total.SavingsBytes, s.Total.SavingsPercent = savings(totalOrig, totalBest)
	return s
}

func savings(orig, best int64) (int64, string) {
	saved := orig - best
	if orig <= 0 {
		return saved, "0.0"
	}
	return saved, formatTenths(roundTenths(saved, orig))
}

// roundTenths returns saved/orig as a percentage in tenths, with ties rounded
// away from zero.
func roundTenths(saved, orig int64) int64 {
	num := saved * 1000
	q, r := num/orig, num%orig
	if r < 0 {
		r = -r
	}
	if 2*r >= orig {
		if num < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

func formatTenths(t int64) string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	return fmt.Sprintf("%s%d.%d", sign, t/10, t%10)
}

// CSV renders the header, the rows and the TOTAL row, joined by newlines.
// Fields containing a comma are wrapped in double quotes; embedded quotes and
// newlines are written as-is.
func (s Summary) CSV() []byte {
	lines := make([]string, 0, len(s.Rows)+2)
	lines = append(lines, joinFields(Header))
	for _, row := range s.Rows {
		lines = append(lines, joinFields(row.fields()))
	}
	lines = append(lines, joinFields(s.Total.fields()))
	return []byte(strings.Join(lines, "\n"))
}

func (r Row) fields() []string {
	return []string{
		r.File,
		strconv.FormatInt(r.OriginalSize, 10),
		strconv.FormatInt(r.BestSize, 10),
		r.BestFormat,
		r.BestPath,
		strconv.FormatInt(r.SavingsBytes, 10),
		r.SavingsPercent,
	}
}

func joinFields(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		if strings.Contains(f, ",") {
			f = `"` + f + `"`
		}
		quoted[i] = f
	}
	return strings.Join(quoted, ",")
}

// Run reads the report at input and writes the CSV to output. Nothing is
// written when the report cannot be read.
func Run(input, output string) (Summary, error) {
	r, err := report.Read(input)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %s: %v", ErrReportRead, input, err)
	}

	s := Summarize(r)
	if err := fsutil.WriteFile(output, s.CSV(), 0o644); err != nil {
		return s, fmt.Errorf("%w: %s: %v", ErrSummaryWrite, output, err)
	}
	return s, nil
}
