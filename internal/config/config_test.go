package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Layout.MaxCachedLayouts != 150 || cfg.Layout.BufferSize != 50 {
		t.Errorf("cache defaults = %d, %d", cfg.Layout.MaxCachedLayouts, cfg.Layout.BufferSize)
	}
	if lvl, _ := cfg.Log.ZapLevel(); lvl != zapcore.InfoLevel {
		t.Errorf("ZapLevel() = %v, want info", lvl)
	}
}

func TestLoadFromReaderOverrides(t *testing.T) {
	const src = `
[document]
estimated_line_height = 18.5

[layout]
width = 640
tab_width = 8
east_asian = true

[log]
level = "debug"
`
	cfg, err := LoadFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	want := Default()
	want.Document.EstimatedLineHeight = 18.5
	want.Layout.Width = 640
	want.Layout.TabWidth = 8
	want.Layout.EastAsian = true
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromReaderParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
		contains string
	}{
		{"syntax", "[layout]\nwidth = = 3\n", 2, ""},
		{"unknown key", "[layout]\nzoom = 2\n", 2, "layout.zoom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.src))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
			if !strings.Contains(pe.Error(), tt.contains) {
				t.Errorf("Error() = %q, want it to mention %q", pe.Error(), tt.contains)
			}
		})
	}
}

func TestValidateReportsFields(t *testing.T) {
	cfg := Default()
	cfg.Layout.CellWidth = 0
	cfg.Layout.TabWidth = 40
	cfg.Viewport.ScrollStep = -1
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		if errors.As(e, &ve) {
			fields = append(fields, ve.Field)
		}
	}
	want := []string{"layout.cell_width", "layout.tab_width", "viewport.scroll_step", "log.level"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("invalid fields (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	if err := os.WriteFile(path, []byte("[viewport]\nheight = 900\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewport.Height != 900 {
		t.Errorf("Viewport.Height = %v, want 900", cfg.Viewport.Height)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.CellWidth != Default().Layout.CellWidth {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[layout]\nmax_cached_layouts = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "layout.max_cached_layouts" {
		t.Errorf("Load() error = %v, want max_cached_layouts validation error", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FOLIO_LOG_LEVEL":          "warn",
		"FOLIO_LAYOUT_WIDTH":       "320",
		"FOLIO_EAST_ASIAN":         "true",
		"FOLIO_MAX_CACHED_LAYOUTS": "64",
		"FOLIO_VIEWPORT_HEIGHT":    "480",
		"FOLIO_UNRELATED":          "x",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Layout.Width != 320 || !cfg.Layout.EastAsian ||
		cfg.Layout.MaxCachedLayouts != 64 || cfg.Viewport.Height != 480 {
		t.Errorf("ApplyEnv result = %+v", cfg)
	}

	env = map[string]string{"FOLIO_LAYOUT_WIDTH": "wide"}
	err := Default().ApplyEnv(lookup)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "layout.width" {
		t.Errorf("ApplyEnv error = %v, want layout.width validation error", err)
	}

	if err := Default().ApplyEnv(nil); err != nil {
		t.Errorf("ApplyEnv(nil) = %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Layout.Width = 720

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := LoadFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
