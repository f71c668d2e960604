// Package config loads editor settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphedit/pkg/logging"
	"github.com/dd0wney/cluso-graphedit/pkg/validation"
)

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid configuration")

	// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Format is a config file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// Config is the complete editor configuration.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport" toml:"viewport"`
	Editor   EditorConfig   `yaml:"editor" toml:"editor"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
	UI       UIConfig       `yaml:"ui" toml:"ui"`
}

// MaxViewportSide bounds each viewport dimension.
const MaxViewportSide = 16384

// ViewportConfig is the initial canvas size in screen pixels.
type ViewportConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

type EditorConfig struct {
	HitRadius float64 `yaml:"hit_radius" toml:"hit_radius"`
	// Graphs with more nodes than this search for paths in the background.
	// Zero disables background search.
	AsyncPathThreshold int `yaml:"async_path_threshold" toml:"async_path_threshold"`
}

type StorageConfig struct {
	Dir string   `yaml:"dir" toml:"dir"`
	S3  S3Config `yaml:"s3" toml:"s3"`
}

// S3Config configures s3:// locations. Empty fields fall back to the AWS
// default configuration chain.
type S3Config struct {
	Region          string `yaml:"region" toml:"region"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint" validate:"omitempty,url"`
	UsePathStyle    bool   `yaml:"use_path_style" toml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"` // used by the interactive editor
}

type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr" validate:"omitempty,hostname_port"` // empty disables the endpoint
}

// UIConfig maps terminal cells to canvas pixels.
type UIConfig struct {
	CellWidth    float64       `yaml:"cell_width" toml:"cell_width"`
	CellHeight   float64       `yaml:"cell_height" toml:"cell_height"`
	TickInterval time.Duration `yaml:"tick_interval" toml:"tick_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: 800, Height: 600},
		Editor:   EditorConfig{HitRadius: 10, AsyncPathThreshold: 5000},
		Logging:  LoggingConfig{Level: "info", File: "graphedit.log"},
		UI:       UIConfig{CellWidth: 8, CellHeight: 16, TickInterval: 33 * time.Millisecond},
	}
}

// FormatFor picks the encoding from a file name.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(data, format); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte, format Format) error {
	switch format {
	case FormatTOML:
		_, err := toml.Decode(string(data), c)
		return err
	default:
		return yaml.Unmarshal(data, c)
	}
}

// Encode writes the configuration in the given format.
func (c *Config) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(c)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Validate checks ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	checks := []*validation.ConfigValidator{
		validation.NewConfigValidator("viewport").
			RangeInt("width", c.Viewport.Width, 1, MaxViewportSide).
			RangeInt("height", c.Viewport.Height, 1, MaxViewportSide),

		validation.NewConfigValidator("editor").
			PositiveFloat("hit_radius", c.Editor.HitRadius).
			NonNegative("async_path_threshold", c.Editor.AsyncPathThreshold),

		validation.NewConfigValidator("storage").
			When(c.Storage.S3.AccessKeyID != "", func(v *validation.ConfigValidator) {
				v.Required("s3.secret_access_key", c.Storage.S3.SecretAccessKey)
			}),

		validation.NewConfigValidator("logging").
			OneOf("level", strings.ToLower(strings.TrimSpace(c.Logging.Level)), logging.LevelNames),

		validation.NewConfigValidator("ui").
			RangeFloat("cell_width", c.UI.CellWidth, 1, 64).
			RangeFloat("cell_height", c.UI.CellHeight, 1, 64).
			RangeDuration("tick_interval", c.UI.TickInterval, 5*time.Millisecond, time.Second),
	}

	var errs []error
	for _, cv := range checks {
		if err := cv.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
