// Package layout breaks paragraphs into visual lines on a monospace cell
// grid.
//
// Lines break at Unicode line-break opportunities. A word wider than the
// available width is broken between grapheme clusters. Layouts are not safe
// for concurrent use.
package layout

import (
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Default cell metrics in pixels.
const (
	DefaultCellWidth  = 8.0
	DefaultLineHeight = 20.0
	DefaultTabWidth   = 4
)

// Line is one visual line of a paragraph.
type Line struct {
	Start int // First rune offset in the paragraph
	End   int // Rune offset just past the line
	Cells int // Width in cells, trailing spaces included
}

// Len returns the number of runes on the line.
func (l Line) Len() int {
	return l.End - l.Start
}

// Engine creates paragraph layouts with shared cell metrics.
type Engine struct {
	cellWidth  float64
	lineHeight float64
	tabs       TabStops
	cond       *runewidth.Condition
}

// Option configures an Engine.
type Option func(*Engine)

// WithCellWidth sets the width of one cell in pixels.
func WithCellWidth(w float64) Option {
	return func(e *Engine) {
		if w > 0 {
			e.cellWidth = w
		}
	}
}

// WithLineHeight sets the height of one visual line in pixels.
func WithLineHeight(h float64) Option {
	return func(e *Engine) {
		if h > 0 {
			e.lineHeight = h
		}
	}
}

// WithTabWidth sets the distance between tab stops in cells.
func WithTabWidth(n int) Option {
	return func(e *Engine) {
		e.tabs = NewTabStops(n)
	}
}

// WithEastAsian treats ambiguous-width characters as wide.
func WithEastAsian(on bool) Option {
	return func(e *Engine) {
		e.cond = runewidth.NewCondition()
		e.cond.EastAsianWidth = on
	}
}

// NewEngine creates a layout engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cellWidth:  DefaultCellWidth,
		lineHeight: DefaultLineHeight,
		tabs:       NewTabStops(DefaultTabWidth),
	}
	e.cond = runewidth.NewCondition()
	e.cond.EastAsianWidth = false
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CellWidth returns the width of one cell in pixels.
func (e *Engine) CellWidth() float64 { return e.cellWidth }

// LineHeight returns the height of one visual line in pixels.
func (e *Engine) LineHeight() float64 { return e.lineHeight }

// TabWidth returns the distance between tab stops in cells.
func (e *Engine) TabWidth() int { return e.tabs.Width() }

// NewLayout creates an unmeasured layout for a paragraph.
func (e *Engine) NewLayout(text string) *LineLayout {
	return &LineLayout{engine: e, text: text}
}

// Columns returns how many cells fit in width pixels. Zero means
// unlimited.
func (e *Engine) Columns(width float64) int {
	if width <= 0 {
		return 0
	}
	return max(int(width/e.cellWidth), 1)
}

// LineLayout is the visual layout of one paragraph.
type LineLayout struct {
	engine *Engine
	text   string
	lines  []Line
	cols   int
	height float64
	done   bool
}

// Text returns the paragraph text.
func (l *LineLayout) Text() string {
	return l.text
}

// SetText replaces the text and discards the computed lines.
func (l *LineLayout) SetText(text string) {
	l.text = text
	l.lines = nil
	l.height = 0
	l.done = false
}

// IsPerformed reports whether Perform ran since the last SetText.
func (l *LineLayout) IsPerformed() bool {
	return l.done
}

// Perform breaks the text into lines no wider than width pixels and returns
// the resulting height. A non-positive width disables wrapping. The layout
// always has at least one line.
func (l *LineLayout) Perform(width float64) float64 {
	e := l.engine
	l.cols = e.Columns(width)
	l.lines = l.breakLines(l.cols)
	l.height = float64(len(l.lines)) * e.lineHeight
	l.done = true
	return l.height
}

func (l *LineLayout) breakLines(cols int) []Line {
	e := l.engine
	var lines []Line

	var (
		lineStart  int
		lineCells  int
		pos        int
		breakAt    = -1
		breakCells int
	)
	emit := func(end, cells int) {
		lines = append(lines, Line{Start: lineStart, End: end, Cells: cells})
		lineStart = end
	}

	rest := l.text
	state := -1
	for len(rest) > 0 {
		var cluster string
		var boundaries int
		cluster, rest, boundaries, state = uniseg.StepString(rest, state)
		w := clusterWidth(e.cond, cluster, lineCells, e.tabs)
		space := isSpace(cluster)

		if cols > 0 && !space && lineCells > 0 && lineCells+w > cols {
			if breakAt > lineStart {
				emit(breakAt, breakCells)
				lineCells -= breakCells
			} else {
				emit(pos, lineCells)
				lineCells = 0
			}
			breakAt = -1
			if cluster == "\t" {
				w = clusterWidth(e.cond, cluster, lineCells, e.tabs)
			}
		}

		lineCells += w
		pos += utf8.RuneCountInString(cluster)

		switch boundaries & uniseg.MaskLine {
		case uniseg.LineMustBreak:
			if len(rest) > 0 {
				emit(pos, lineCells)
				lineCells = 0
				breakAt = -1
			}
		case uniseg.LineCanBreak:
			breakAt = pos
			breakCells = lineCells
		}
	}
	emit(pos, lineCells)
	return lines
}

func isSpace(cluster string) bool {
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return cluster != ""
}

// Lines returns the computed lines, or nil before Perform.
func (l *LineLayout) Lines() []Line {
	return l.lines
}

// LineCount returns the number of computed lines.
func (l *LineLayout) LineCount() int {
	return len(l.lines)
}

// Height returns the height computed by the last Perform.
func (l *LineLayout) Height() float64 {
	return l.height
}

// Width returns the width in pixels of the widest line.
func (l *LineLayout) Width() float64 {
	widest := 0
	for _, ln := range l.lines {
		widest = max(widest, ln.Cells)
	}
	return float64(widest) * l.engine.cellWidth
}

// LineForOffset returns the index of the line holding the rune at offset.
// Offsets past the end map to the last line.
func (l *LineLayout) LineForOffset(offset int) int {
	for i, ln := range l.lines {
		if offset < ln.End {
			return i
		}
	}
	return max(len(l.lines)-1, 0)
}

// IsEmpty reports whether the paragraph has no text.
func (l *LineLayout) IsEmpty() bool {
	return l.text == ""
}
