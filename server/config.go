package server

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the HTTP service settings, loaded from YAML with
// SONOGRID_* environment overrides on top
type Config struct {
	Addr         string `yaml:"addr"`          // listen address, e.g. ":8080"
	UploadDir    string `yaml:"upload_dir"`    // temporary storage for uploaded audio
	OutputDir    string `yaml:"output_dir"`    // rendered image storage
	MaxUploadMB  int64  `yaml:"max_upload_mb"` // upload size cap
	PreviewWidth int    `yaml:"preview_width"` // width of synchronous previews
	RenderWidth  int    `yaml:"render_width"`  // width of full task renders
	RenderHeight int    `yaml:"render_height"` // height of full task renders
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
	MaxAgeHours  int    `yaml:"max_age_hours"` // default cleanup cutoff
}

// DefaultConfig returns the standard service settings
func DefaultConfig() *Config {
	return &Config{
		Addr:         ":8080",
		UploadDir:    "uploads",
		OutputDir:    "outputs",
		MaxUploadMB:  100,
		PreviewWidth: 320,
		RenderWidth:  3840,
		RenderHeight: 2160,
		LogLevel:     "info",
		MaxAgeHours:  24,
	}
}

// LoadConfig reads the YAML file at path when it is non-empty, then
// applies environment overrides. A missing path keeps the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from SONOGRID_* environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("SONOGRID_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SONOGRID_UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("SONOGRID_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("SONOGRID_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SONOGRID_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxUploadMB = n
		}
	}
}

// Validate checks the service settings
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.UploadDir == "" || c.OutputDir == "" {
		return fmt.Errorf("upload and output directories are required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d MB", c.MaxUploadMB)
	}
	if c.PreviewWidth <= 0 || c.RenderWidth <= 0 || c.RenderHeight <= 0 {
		return fmt.Errorf("render dimensions must be positive")
	}
	if c.MaxAgeHours <= 0 {
		return fmt.Errorf("cleanup max age must be positive, got %d", c.MaxAgeHours)
	}
	return nil
}

// MaxUploadBytes returns the upload cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}
