// Package config loads the optimizer settings: the project root, the variant
// matrix (widths and formats, in generation order) and the codec backend.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	OriginalsDir = "originals"
	OptimizedDir = "optimized"
	ReportFile   = "report.json"
	SummaryFile  = "summary.csv"

	DefaultRoot = "images/canva"

	CodecFFmpeg = "ffmpeg"
	CodecNative = "native"
)

// Format is an output encoding with its fixed quality parameter.
type Format struct {
	Name    string `mapstructure:"name"`
	Quality int    `mapstructure:"quality"`
}

// Config stores all settings for an optimize run. Width and format order is
// the generation order and also breaks ties when summarizing.
type Config struct {
	Root         string   `mapstructure:"root"`
	Workers      int      `mapstructure:"workers"`
	Codec        string   `mapstructure:"codec"`
	FFmpegPath   string   `mapstructure:"ffmpeg_path"`
	MetricsFile  string   `mapstructure:"metrics_file"`
	Widths       []int    `mapstructure:"widths"`
	Formats      []Format `mapstructure:"formats"`
	Preservation Format   `mapstructure:"preservation"`
}

var knownFormats = map[string]bool{
	"webp": true,
	"avif": true,
	"jpeg": true,
	"png":  true,
}

// Default returns the standard responsive matrix.
func Default() Config {
	return Config{
		Root:       DefaultRoot,
		Workers:    1,
		Codec:      CodecFFmpeg,
		FFmpegPath: "ffmpeg",
		Widths:     []int{1920, 1200, 800, 400},
		Formats: []Format{
			{Name: "webp", Quality: 80},
			{Name: "avif", Quality: 50},
			{Name: "jpeg", Quality: 75},
		},
		Preservation: Format{Name: "webp", Quality: 80},
	}
}

// Load reads configuration from an optional YAML file and WEBOPT_* environment
// variables on top of Default.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("webopt")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("root", def.Root)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("codec", def.Codec)
	v.SetDefault("ffmpeg_path", def.FFmpegPath)
	v.SetDefault("metrics_file", def.MetricsFile)
	v.SetDefault("widths", def.Widths)

	formats := make([]map[string]any, 0, len(def.Formats))
	for _, f := range def.Formats {
		formats = append(formats, map[string]any{"name": f.Name, "quality": f.Quality})
	}
	v.SetDefault("formats", formats)
	v.SetDefault("preservation.name", def.Preservation.Name)
	v.SetDefault("preservation.quality", def.Preservation.Quality)
}

// Validate checks the matrix and runtime settings.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root directory is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Codec != CodecFFmpeg && c.Codec != CodecNative {
		return fmt.Errorf("unknown codec %q (want %s or %s)", c.Codec, CodecFFmpeg, CodecNative)
	}
	if len(c.Widths) == 0 {
		return fmt.Errorf("at least one target width is required")
	}
	seen := make(map[int]bool, len(c.Widths))
	for _, w := range c.Widths {
		if w <= 0 {
			return fmt.Errorf("target width must be positive, got %d", w)
		}
		if seen[w] {
			return fmt.Errorf("duplicate target width %d", w)
		}
		seen[w] = true
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("at least one output format is required")
	}
	for _, f := range c.Formats {
		if err := validateFormat(f); err != nil {
			return err
		}
	}
	return validateFormat(c.Preservation)
}

func validateFormat(f Format) error {
	if !knownFormats[f.Name] {
		return fmt.Errorf("unknown format %q", f.Name)
	}
	if f.Quality < 1 || f.Quality > 100 {
		return fmt.Errorf("quality for %s must be within 1..100, got %d", f.Name, f.Quality)
	}
	return nil
}

// OriginalsPath is the directory scanned for source images.
func (c Config) OriginalsPath() string {
	return filepath.Join(c.Root, OriginalsDir)
}

// OptimizedPath is the directory receiving variants and the report.
func (c Config) OptimizedPath() string {
	return filepath.Join(c.Root, OptimizedDir)
}

// ReportPath is the location of the JSON report.
func (c Config) ReportPath() string {
	return filepath.Join(c.OptimizedPath(), ReportFile)
}

// DefaultReportPath and DefaultSummaryPath are the summarizer's defaults.
func DefaultReportPath() string {
	return filepath.Join(DefaultRoot, OptimizedDir, ReportFile)
}

func DefaultSummaryPath() string {
	return filepath.Join(DefaultRoot, OptimizedDir, SummaryFile)
}
