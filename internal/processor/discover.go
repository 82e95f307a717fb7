package processor

import (
	"os"
	"path/filepath"
	"strings"
)

var sourceExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".avif": true,
}

// IsSourceImage reports whether name has an allowed extension, ignoring case.
func IsSourceImage(name string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListSources returns the eligible regular files in dir, in listing order.
func ListSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsSourceImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
