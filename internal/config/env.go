package config

import (
	"errors"
	"strconv"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "FOLIO_"

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	field string
	set   func(c *Config, v string) error
}

// envMapping maps environment variables to settings.
var envMapping = map[string]envBinding{
	EnvPrefix + "LOG_LEVEL": {"log.level", func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	}},
	EnvPrefix + "LAYOUT_WIDTH": {"layout.width", func(c *Config, v string) error {
		return parseFloat(v, &c.Layout.Width)
	}},
	EnvPrefix + "EAST_ASIAN": {"layout.east_asian", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err == nil {
			c.Layout.EastAsian = b
		}
		return err
	}},
	EnvPrefix + "MAX_CACHED_LAYOUTS": {"layout.max_cached_layouts", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			c.Layout.MaxCachedLayouts = n
		}
		return err
	}},
	EnvPrefix + "VIEWPORT_HEIGHT": {"viewport.height", func(c *Config, v string) error {
		return parseFloat(v, &c.Viewport.Height)
	}},
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err == nil {
		*dst = f
	}
	return err
}

// ApplyEnv overlays the FOLIO_* variables reported by lookup. Values that
// fail to parse are reported as validation errors.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	var errs []error
	for key, b := range envMapping {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			errs = append(errs, &ValidationError{Field: b.field, Message: "cannot parse " + key, Value: v})
		}
	}
	return errors.Join(errs...)
}
