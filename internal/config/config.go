package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/dsaviz/dsaviz/internal/document"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	MaxArraySize     int     `envconfig:"MAX_ARRAY_SIZE" default:"20"`
	MaxStructureSize int     `envconfig:"MAX_STRUCTURE_SIZE" default:"20"`
	HistoryLimit     int     `envconfig:"HISTORY_LIMIT" default:"50"`
	MinZoom          float64 `envconfig:"MIN_ZOOM" default:"0.5"`
	MaxZoom          float64 `envconfig:"MAX_ZOOM" default:"5"`
	ZoomStep         float64 `envconfig:"ZOOM_STEP" default:"1.1"`

	ExportWidth  int `envconfig:"EXPORT_WIDTH" default:"1280"`
	ExportHeight int `envconfig:"EXPORT_HEIGHT" default:"800"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.MaxArraySize < 1:
		return fmt.Errorf("MAX_ARRAY_SIZE must be positive, got %d", c.MaxArraySize)
	case c.MaxStructureSize < 1:
		return fmt.Errorf("MAX_STRUCTURE_SIZE must be positive, got %d", c.MaxStructureSize)
	case c.HistoryLimit < 1:
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	case c.MinZoom <= 0 || c.MaxZoom < c.MinZoom:
		return fmt.Errorf("zoom range [%g, %g] is invalid", c.MinZoom, c.MaxZoom)
	case c.ZoomStep <= 1:
		return fmt.Errorf("ZOOM_STEP must be greater than 1, got %g", c.ZoomStep)
	case c.ExportWidth < 1 || c.ExportHeight < 1:
		return fmt.Errorf("export size %dx%d is invalid", c.ExportWidth, c.ExportHeight)
	}
	return nil
}

// Limits overlays the configured bounds on the defaults.
func (c *Config) Limits() document.Limits {
	l := document.DefaultLimits()
	l.MaxArraySize = c.MaxArraySize
	l.MaxStructureSize = c.MaxStructureSize
	l.HistoryLimit = c.HistoryLimit
	l.MinZoom = c.MinZoom
	l.MaxZoom = c.MaxZoom
	l.ZoomStep = c.ZoomStep
	return l
}

// Origins splits ALLOWED_ORIGINS into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
