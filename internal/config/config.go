// Package config loads folio settings from a TOML file.
//
// Settings start from Default, are overlaid by the file, then by FOLIO_*
// environment variables, and are validated last.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

// Config is the complete folio configuration.
type Config struct {
	Document DocumentConfig `toml:"document"`
	Layout   LayoutConfig   `toml:"layout"`
	Viewport ViewportConfig `toml:"viewport"`
	Log      LogConfig      `toml:"log"`
}

// DocumentConfig controls height estimates for unmeasured paragraphs.
type DocumentConfig struct {
	EstimatedLineHeight   float64 `toml:"estimated_line_height"`
	EstimatedCharsPerLine int     `toml:"estimated_chars_per_line"`
}

// LayoutConfig controls paragraph layout and the layout cache.
type LayoutConfig struct {
	// Width is the layout width in pixels. Zero uses the terminal width.
	Width            float64 `toml:"width"`
	CellWidth        float64 `toml:"cell_width"`
	LineHeight       float64 `toml:"line_height"`
	TabWidth         int     `toml:"tab_width"`
	EastAsian        bool    `toml:"east_asian"`
	MaxCachedLayouts int     `toml:"max_cached_layouts"`
	BufferSize       int     `toml:"buffer_size"`
}

// ViewportConfig describes the simulated viewport.
type ViewportConfig struct {
	Height     float64 `toml:"height"`
	ScrollStep float64 `toml:"scroll_step"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Document: DocumentConfig{
			EstimatedLineHeight:   20,
			EstimatedCharsPerLine: 80,
		},
		Layout: LayoutConfig{
			CellWidth:        8,
			LineHeight:       20,
			TabWidth:         4,
			MaxCachedLayouts: 150,
			BufferSize:       50,
		},
		Viewport: ViewportConfig{
			Height:     600,
			ScrollStep: 300,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults, applies the environment,
// and validates the result. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return finish(Default())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finish(Default())
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg, err := parse(path, data)
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

// LoadFromReader reads TOML from r over the defaults and validates the
// result. The environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse("<reader>", data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse decodes data over the defaults. Unknown keys are errors.
func parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		var se *toml.StrictMissingError
		switch {
		case errors.As(err, &de):
			pe.Line, pe.Column = de.Position()
		case errors.As(err, &se) && len(se.Errors) > 0:
			pe.Line, pe.Column = se.Errors[0].Position()
			pe.Message = "unknown setting " + strings.Join(se.Errors[0].Key(), ".")
		}
		return nil, pe
	}
	return cfg, nil
}

// Validate reports every unusable setting, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, field, msg string, v any) {
		if !ok {
			errs = append(errs, &ValidationError{Field: field, Message: msg, Value: v})
		}
	}

	check(c.Document.EstimatedLineHeight > 0, "document.estimated_line_height", "must be positive", c.Document.EstimatedLineHeight)
	check(c.Document.EstimatedCharsPerLine > 0, "document.estimated_chars_per_line", "must be positive", c.Document.EstimatedCharsPerLine)

	check(c.Layout.Width >= 0, "layout.width", "must not be negative", c.Layout.Width)
	check(c.Layout.CellWidth > 0, "layout.cell_width", "must be positive", c.Layout.CellWidth)
	check(c.Layout.LineHeight > 0, "layout.line_height", "must be positive", c.Layout.LineHeight)
	check(c.Layout.TabWidth >= 1 && c.Layout.TabWidth <= 16, "layout.tab_width", "must be between 1 and 16", c.Layout.TabWidth)
	check(c.Layout.MaxCachedLayouts > 0, "layout.max_cached_layouts", "must be positive", c.Layout.MaxCachedLayouts)
	check(c.Layout.BufferSize >= 0, "layout.buffer_size", "must not be negative", c.Layout.BufferSize)

	check(c.Viewport.Height > 0, "viewport.height", "must be positive", c.Viewport.Height)
	check(c.Viewport.ScrollStep > 0, "viewport.scroll_step", "must be positive", c.Viewport.ScrollStep)

	_, err := c.Log.ZapLevel()
	check(err == nil, "log.level", "must be one of debug, info, warn, error", c.Log.Level)

	return errors.Join(errs...)
}

// ZapLevel parses the configured level.
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(l.Level)
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
