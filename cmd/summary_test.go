package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webopt/internal/report"
	"webopt/internal/summary"
)

func TestSummaryCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.json")
	output := filepath.Join(dir, "summary.csv")
	require.NoError(t, report.Write(input, report.New(time.Now(), []report.Record{{
		File:         "photo.jpg",
		OriginalSize: report.Int64(2000),
		Outputs: []report.Output{
			{Path: "optimized/photo-400.webp", Size: report.Int64(500), Width: report.Int(400), Format: "webp"},
		},
	}})))

	rootCmd.SetArgs([]string{"summary", input, output})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "photo.jpg,2000,500,webp,optimized/photo-400.webp,1500,75.0")
}

func TestSummaryCommandMalformedReport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.json")
	output := filepath.Join(dir, "summary.csv")
	require.NoError(t, os.WriteFile(input, []byte("]"), 0o644))

	rootCmd.SetArgs([]string{"summary", input, output})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, summary.ErrReportRead)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSummaryCommandRejectsExtraArgs(t *testing.T) {
	rootCmd.SetArgs([]string{"summary", "a", "b", "c"})
	assert.Error(t, rootCmd.Execute())
}
