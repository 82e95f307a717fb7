package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := NewMetrics()
	m.IncFilesProcessed()
	m.IncFilesProcessed()
	m.IncProbeFailures()
	m.ObserveVariant("webp", 1200, 30*time.Millisecond)
	m.ObserveVariant("webp", 800, 20*time.Millisecond)
	m.IncVariantFailures("avif")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VariantsEncoded.WithLabelValues("webp")))
	assert.Equal(t, 2000.0, testutil.ToFloat64(m.VariantBytes.WithLabelValues("webp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VariantFailures.WithLabelValues("avif")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.IncFilesProcessed()

	path := filepath.Join(t.TempDir(), "webopt.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "webopt_files_processed_total 1")
}
