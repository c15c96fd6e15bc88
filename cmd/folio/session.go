package main

import (
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/engine/document"
	"github.com/dshills/folio/internal/format"
	"github.com/dshills/folio/internal/renderer/layout"
	"github.com/dshills/folio/internal/renderer/layoutcache"
)

// session wires a document to its format index and layout cache.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	doc     *document.Document
	formats *format.Index
	engine  *layout.Engine
	cache   *layoutcache.Cache
	steps   int
}

func newSession(cfg *config.Config, width float64, logger *zap.Logger) *session {
	doc := document.New(
		document.WithEstimatedLineHeight(cfg.Document.EstimatedLineHeight),
		document.WithEstimatedCharsPerLine(cfg.Document.EstimatedCharsPerLine),
		document.WithLogger(logger.Named("document")),
	)

	formats := format.NewIndex(format.WithLogger(logger.Named("format")))
	formats.Attach(doc)

	engine := layout.NewEngine(
		layout.WithCellWidth(cfg.Layout.CellWidth),
		layout.WithLineHeight(cfg.Layout.LineHeight),
		layout.WithTabWidth(cfg.Layout.TabWidth),
		layout.WithEastAsian(cfg.Layout.EastAsian),
	)
	factory := func(text string) layoutcache.Layout {
		return engine.NewLayout(text)
	}

	cache := layoutcache.New(doc, factory,
		layoutcache.WithMaxCachedLayouts(cfg.Layout.MaxCachedLayouts),
		layoutcache.WithBufferSize(cfg.Layout.BufferSize),
		layoutcache.WithWidth(width),
		layoutcache.WithLogger(logger.Named("layout")),
	)
	cache.Attach(doc)

	return &session{
		cfg:     cfg,
		logger:  logger,
		doc:     doc,
		formats: formats,
		engine:  engine,
		cache:   cache,
	}
}

// load replaces the manuscript, indexes its emphasis and scrolls through it.
func (s *session) load(text string) {
	s.doc.SetText(text)
	n := s.scanFormats()
	s.steps = s.scroll()
	s.logger.Info("manuscript indexed",
		zap.Int("paragraphs", s.doc.ParagraphCount()),
		zap.Int("formats", n),
		zap.Int("scroll_steps", s.steps),
		zap.Float64("total_height", s.cache.TotalHeight()),
	)
}

// scanFormats adds the emphasis spans of every paragraph to the format
// index and returns the number of ranges stored.
func (s *session) scanFormats() int {
	offset := 0
	for i := range s.doc.ParagraphCount() {
		for _, sp := range scanEmphasis(s.doc.ParagraphText(i)) {
			s.formats.AddFormat(offset+sp.start, offset+sp.end, format.Of(sp.attr))
		}
		offset += s.doc.ParagraphLength(i)
	}
	s.formats.CoalesceRanges()
	return s.formats.RangeCount()
}

// scroll moves the viewport from the top to the bottom of the document in
// scroll steps, laying out each window. It returns the number of steps.
func (s *session) scroll() int {
	vh := s.cfg.Viewport.Height
	step := s.cfg.Viewport.ScrollStep
	steps := 0
	for y := 0.0; ; y += step {
		s.cache.SetViewport(y, vh)
		visible := s.cache.LayoutVisibleParagraphs()
		steps++
		s.logger.Debug("viewport laid out",
			zap.Float64("y", y),
			zap.Int("first", s.cache.FirstVisible()),
			zap.Int("last", s.cache.LastVisible()),
			zap.Float64("visible_height", visible),
		)
		if y+vh >= s.cache.TotalHeight() {
			break
		}
	}
	return steps
}

// span is an emphasized run of paragraph-local rune offsets.
type span struct {
	start, end int
	attr       format.Attribute
}

// scanEmphasis finds **bold** and *italic* runs in text. The spans cover
// the text between the markers. Unclosed markers are ignored.
func scanEmphasis(text string) []span {
	rs := []rune(text)
	var spans []span
	for i := 0; i < len(rs); i++ {
		if rs[i] != '*' {
			continue
		}
		if i+1 < len(rs) && rs[i+1] == '*' {
			if j := indexPair(rs, i+2); j > i+2 {
				spans = append(spans, span{i + 2, j, format.Bold})
				i = j + 1
				continue
			}
			i++
			continue
		}
		if j := indexSingle(rs, i+1); j > i+1 {
			spans = append(spans, span{i + 1, j, format.Italic})
			i = j
		}
	}
	return spans
}

// indexPair returns the index of the next "**" at or after from, or -1.
func indexPair(rs []rune, from int) int {
	for j := from; j+1 < len(rs); j++ {
		if rs[j] == '*' && rs[j+1] == '*' {
			return j
		}
	}
	return -1
}

// indexSingle returns the index of the next lone '*' at or after from, or -1.
func indexSingle(rs []rune, from int) int {
	for j := from; j < len(rs); j++ {
		if rs[j] != '*' {
			continue
		}
		if j+1 < len(rs) && rs[j+1] == '*' {
			return -1
		}
		return j
	}
	return -1
}
