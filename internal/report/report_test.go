package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimized", "report.json")
	at := time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

	r := New(at, []Record{
		{
			File:          "photo.jpg",
			OriginalSize:  Int64(500000),
			OriginalWidth: Int(2000),
			Outputs: []Output{
				{Path: "optimized/photo-1920.webp", Size: Int64(120000), Width: Int(1920), Format: "webp"},
			},
		},
		{File: "broken.png"},
	})
	require.NoError(t, Write(path, r))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04T05:06:07.890Z", got.GeneratedAt)
	require.Len(t, got.Results, 2)
	assert.Equal(t, r.Results[0], got.Results[0])
	assert.Nil(t, got.Results[1].OriginalSize)
	assert.Nil(t, got.Results[1].OriginalWidth)
	assert.Empty(t, got.Results[1].Outputs)
}

func TestMarshalShape(t *testing.T) {
	data, err := Marshal(New(time.Unix(0, 0), []Record{{File: "a.png"}}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"generatedAt": "1970-01-01T00:00:00.000Z",
		"results": [
			{"file": "a.png", "originalSize": null, "originalWidth": null, "outputs": []}
		]
	}`, string(data))
	assert.Contains(t, string(data), "\n  \"results\"")
}

func TestReadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"generatedAt": "x", "results": [`), 0o644))
	_, err := Read(bad)
	assert.Error(t, err)

	noResults := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(noResults, []byte(`{"generatedAt": "x"}`), 0o644))
	_, err = Read(noResults)
	assert.Error(t, err)

	_, err = Read(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
