// Package main is the entry point for the folio manuscript indexer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/dshills/folio/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// options holds the parsed command line.
type options struct {
	ConfigPath string
	LogLevel   string
	JSON       bool
	Watch      bool
	Width      float64
	Y          float64
	Pos        int
	Path       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, ok := parseFlags()
	if !ok {
		return 2
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	text, err := os.ReadFile(opts.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read manuscript: %v\n", err)
		return 1
	}

	s := newSession(cfg, layoutWidth(opts.Width, cfg), logger)
	s.load(string(text))

	if err := s.report(opts).write(os.Stdout, opts.JSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !opts.Watch {
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := watch(ctx, s, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (options, bool) {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.JSON, "json", false, "Print the report as JSON")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-index when the manuscript changes")
	flag.Float64Var(&opts.Width, "width", 0, "Layout width in pixels (default: config, then terminal)")
	flag.Float64Var(&opts.Y, "y", -1, "Report the paragraph at this pixel offset")
	flag.IntVar(&opts.Pos, "pos", -1, "Report the formatting at this character offset")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "folio - manuscript geometry and formatting indexer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: folio [options] manuscript.txt\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  folio book.txt              Summarize a manuscript\n")
		fmt.Fprintf(os.Stderr, "  folio -y 12000 book.txt     Find the paragraph at y=12000\n")
		fmt.Fprintf(os.Stderr, "  folio -json -watch book.txt Emit JSON on every save\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("folio %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return opts, false
	}
	opts.Path = flag.Arg(0)
	return opts, true
}

// newLogger builds a console logger on stderr at the configured level.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	lvl, err := lc.ZapLevel()
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	return zc.Build()
}

// layoutWidth picks the layout width: the flag, then the config, then the
// terminal width in cells. Zero means no wrapping.
func layoutWidth(flagWidth float64, cfg *config.Config) float64 {
	if flagWidth > 0 {
		return flagWidth
	}
	if cfg.Layout.Width > 0 {
		return cfg.Layout.Width
	}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return 0
	}
	return float64(cols) * cfg.Layout.CellWidth
}
