// Package config loads and validates engine options from YAML files and
// TESSERA_* environment variables.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/errors"
)

// Default configuration values exported for documentation and validation
const (
	DefaultTargetFPS   = 30
	MinTargetFPS       = 1
	MaxTargetFPS       = 240
	DefaultBackground  = "#000000"
	DefaultWidthMethod = "unicode"
	DefaultCorner      = "bottom-right"
	DefaultMetricsAddr = "127.0.0.1:9633"
	DefaultLogLevel    = "info"
)

// Corner names accepted for the debug overlay position.
const (
	CornerTopLeft     = "top-left"
	CornerTopRight    = "top-right"
	CornerBottomLeft  = "bottom-left"
	CornerBottomRight = "bottom-right"
)

// Options represents the complete engine configuration.
type Options struct {
	TargetFPS      int                 `yaml:"target_fps"`
	MouseEnabled   bool                `yaml:"mouse_enabled"`
	MouseMotion    bool                `yaml:"mouse_motion"`
	DebugOverlay   DebugOverlayOptions `yaml:"debug_overlay"`
	Background     string              `yaml:"background"`
	WidthMethod    string              `yaml:"width_method"`
	MetricsAddr    string              `yaml:"metrics_addr"`
	UseAccelerated bool                `yaml:"use_accelerated"`
	Logging        LoggingOptions      `yaml:"logging"`
}

// DebugOverlayOptions controls the built-in frame statistics overlay.
type DebugOverlayOptions struct {
	Enabled bool   `yaml:"enabled"`
	Corner  string `yaml:"corner"`
}

// LoggingOptions controls the JSONL diagnostics sink.
type LoggingOptions struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Level   string `yaml:"level"`
}

// Default returns the baseline options used when no file or overrides
// are present.
func Default() Options {
	return Options{
		TargetFPS:    DefaultTargetFPS,
		MouseEnabled: true,
		MouseMotion:  true,
		DebugOverlay: DebugOverlayOptions{
			Enabled: false,
			Corner:  DefaultCorner,
		},
		Background:     DefaultBackground,
		WidthMethod:    DefaultWidthMethod,
		MetricsAddr:    DefaultMetricsAddr,
		UseAccelerated: false,
		Logging: LoggingOptions{
			Enabled: false,
			Dir:     "",
			Level:   DefaultLogLevel,
		},
	}
}

// Load reads options from path, merged over the defaults. A missing file
// is not an error; the defaults plus environment overrides are returned.
func Load(path string) (Options, error) {
	opts := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &opts); err != nil {
				return Options{}, errors.Wrap(err, errors.ErrCodeConfigParse, "invalid YAML in config file").
					WithContext("path", path)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return Options{}, errors.Wrap(err, errors.ErrCodeConfigLoad, "failed to read config file").
				WithContext("path", path)
		}
	}

	applyEnvOverrides(&opts)

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// applyEnvOverrides applies TESSERA_* environment variable overrides
func applyEnvOverrides(opts *Options) {
	if v := strings.TrimSpace(os.Getenv("TESSERA_TARGET_FPS")); v != "" {
		if fps, err := strconv.Atoi(v); err == nil {
			opts.TargetFPS = fps
		}
	}
	if val, ok := envBool("TESSERA_MOUSE"); ok {
		opts.MouseEnabled = val
	}
	if val, ok := envBool("TESSERA_MOUSE_MOTION"); ok {
		opts.MouseMotion = val
	}
	if val, ok := envBool("TESSERA_DEBUG_OVERLAY"); ok {
		opts.DebugOverlay.Enabled = val
	}
	if v := os.Getenv("TESSERA_DEBUG_CORNER"); v != "" {
		opts.DebugOverlay.Corner = v
	}
	if v := os.Getenv("TESSERA_BACKGROUND"); v != "" {
		opts.Background = v
	}
	if v := os.Getenv("TESSERA_WIDTH_METHOD"); v != "" {
		opts.WidthMethod = v
	}
	if v := os.Getenv("TESSERA_METRICS_ADDR"); v != "" {
		opts.MetricsAddr = v
	}
	if val, ok := envBool("TESSERA_ACCELERATED"); ok {
		opts.UseAccelerated = val
	}
	if val, ok := envBool("TESSERA_LOG"); ok {
		opts.Logging.Enabled = val
	}
	if v := os.Getenv("TESSERA_LOG_DIR"); v != "" {
		opts.Logging.Dir = v
	}
	if v := os.Getenv("TESSERA_LOG_LEVEL"); v != "" {
		opts.Logging.Level = v
	}
}

func envBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// Validate checks option validity
func (o *Options) Validate() error {
	if o.TargetFPS < MinTargetFPS || o.TargetFPS > MaxTargetFPS {
		return errors.New(errors.ErrCodeConfigInvalid, "target_fps out of range").
			WithContext("target_fps", o.TargetFPS).
			WithContext("min", MinTargetFPS).
			WithContext("max", MaxTargetFPS)
	}

	validCorners := map[string]bool{
		CornerTopLeft:     true,
		CornerTopRight:    true,
		CornerBottomLeft:  true,
		CornerBottomRight: true,
	}
	corner := normalizeName(o.DebugOverlay.Corner, DefaultCorner)
	if !validCorners[corner] {
		return errors.New(errors.ErrCodeConfigInvalid, "invalid debug overlay corner").
			WithContext("corner", o.DebugOverlay.Corner).
			WithRemediation("use one of top-left, top-right, bottom-left, bottom-right")
	}
	o.DebugOverlay.Corner = corner

	if o.Background != "" {
		if _, err := color.FromHex(o.Background); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid background color").
				WithContext("background", o.Background)
		}
	}

	method := normalizeName(o.WidthMethod, DefaultWidthMethod)
	if method != "wcwidth" && method != "unicode" {
		return errors.New(errors.ErrCodeConfigInvalid, "invalid width method").
			WithContext("width_method", o.WidthMethod).
			WithRemediation("use wcwidth or unicode")
	}
	o.WidthMethod = method

	if o.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(o.MetricsAddr); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid metrics address").
				WithContext("metrics_addr", o.MetricsAddr)
		}
	}

	level := normalizeName(o.Logging.Level, DefaultLogLevel)
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[level] {
		return errors.New(errors.ErrCodeConfigInvalid, "invalid log level").
			WithContext("level", o.Logging.Level)
	}
	o.Logging.Level = level

	return nil
}

func normalizeName(name, fallback string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fallback
	}
	return name
}

// BackgroundRGBA parses the configured background color.
func (o *Options) BackgroundRGBA() color.RGBA {
	c, err := color.FromHex(o.Background)
	if err != nil {
		return color.Black
	}
	return c
}

// BufferWidthMethod maps the configured width method name onto the
// buffer package's enum.
func (o *Options) BufferWidthMethod() buffer.WidthMethod {
	if o.WidthMethod == "wcwidth" {
		return buffer.WidthWCWidth
	}
	return buffer.WidthUnicode
}
