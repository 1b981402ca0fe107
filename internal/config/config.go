// Package config loads dirsize settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = ".dirsize.yaml"

// Cache configures the in-memory size cache.
type Cache struct {
	// Size is the maximum number of cached roots.
	Size int `yaml:"size"`
	// TTL expires cached totals, e.g. "10m".
	TTL time.Duration `yaml:"ttl"`
}

// Config mirrors the command-line flags. Sizes are human-readable strings
// ("10MB", "1.5GiB") and dates are YYYY-MM-DD or RFC 3339.
type Config struct {
	Path           string             `yaml:"path"`
	FileTypes      []string           `yaml:"file_types"`
	Exclude        []string           `yaml:"exclude"`
	IncludeHidden  bool               `yaml:"include_hidden"`
	MaxFileSize    string             `yaml:"max_file_size"`
	OversizePolicy string             `yaml:"oversize_policy"`
	MaxTotalSize   string             `yaml:"max_total_size"`
	StartDate      string             `yaml:"start_date"`
	EndDate        string             `yaml:"end_date"`
	IncludeSubdirs *bool              `yaml:"include_subdirs"`
	SortBy         string             `yaml:"sort_by"`
	Workers        int                `yaml:"workers"`
	OutputFile     string             `yaml:"output_file"`
	Output         string             `yaml:"output"`
	Unit           string             `yaml:"unit"`
	Top            int                `yaml:"top"`
	Sniff          bool               `yaml:"sniff"`
	Ratios         map[string]float64 `yaml:"ratios"`
	Cache          Cache              `yaml:"cache"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Path:           ".",
		Exclude:        []string{".git", "node_modules"},
		OversizePolicy: "drop",
		Output:         "table",
		Unit:           "B",
		Top:            10,
	}
}

// IncludesSubdirs reports whether the walk recurses (default true).
func (c *Config) IncludesSubdirs() bool {
	return c.IncludeSubdirs == nil || *c.IncludeSubdirs
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	return cfg, nil
}
