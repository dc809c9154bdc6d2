package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Source             string `yaml:"source" json:"source"`
	Output             string `yaml:"output" json:"output"`
	ImagesPerPage      int    `yaml:"images_per_page" json:"images_per_page"`
	IncludeMaps        bool   `yaml:"include_maps" json:"include_maps"`
	Jobs               int    `yaml:"jobs" json:"jobs"`
	TempDir            string `yaml:"temp_dir" json:"temp_dir"`
	ExifToolTimeoutSec int    `yaml:"exiftool_timeout_sec" json:"exiftool_timeout_sec"`
	MapZoom            int    `yaml:"map_zoom" json:"map_zoom"`
	MapSizePx          int    `yaml:"map_size_px" json:"map_size_px"`
	LogFile            string `yaml:"log_file" json:"log_file"`
	LogJSON            bool   `yaml:"log_json" json:"log_json"`
}

func DefaultConfig() *Config {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 1
	}

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".appendix")

	return &Config{
		Output:             "appendix.pdf",
		ImagesPerPage:      2,
		IncludeMaps:        false,
		Jobs:               jobs,
		TempDir:            os.TempDir(),
		ExifToolTimeoutSec: 20,
		MapZoom:            14,
		MapSizePx:          300,
		LogFile:            filepath.Join(dataDir, "appendix.log"),
		LogJSON:            false,
	}
}

func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source directory is required"}
	}
	if c.Output == "" {
		c.Output = "appendix.pdf"
	}
	switch c.ImagesPerPage {
	case 1, 2, 4:
	default:
		return &ValidationError{Field: "images_per_page", Message: "images per page must be 1, 2 or 4"}
	}
	if c.Jobs < 1 {
		c.Jobs = 1
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.ExifToolTimeoutSec < 1 {
		c.ExifToolTimeoutSec = 20
	}
	if c.MapZoom < 1 {
		c.MapZoom = 14
	}
	if c.MapSizePx < 50 {
		c.MapSizePx = 300
	}

	if c.LogFile == "" {
		homeDir, _ := os.UserHomeDir()
		c.LogFile = filepath.Join(homeDir, ".appendix", "appendix.log")
	}

	return nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
