package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/sjson"

	"github.com/dshills/folio/internal/renderer/layoutcache"
)

const previewCells = 48

// report summarizes an indexed manuscript.
type report struct {
	Paragraphs  int
	Characters  int
	Calculated  int
	TotalHeight float64
	Width       float64
	Formats     int
	ScrollSteps int
	Cache       layoutcache.Stats

	// At is set when a y offset was requested.
	At *paragraphReport
	// FormatAt is set when a character offset was requested.
	FormatAt *formatReport
}

type paragraphReport struct {
	Y       float64
	Index   int
	Top     float64
	Height  float64
	Preview string
}

type formatReport struct {
	Pos    int
	Format string
}

func (s *session) report(opts options) report {
	r := report{
		Paragraphs:  s.doc.ParagraphCount(),
		Characters:  s.doc.CharacterCount(),
		Calculated:  s.doc.CalculatedCount(),
		TotalHeight: s.cache.TotalHeight(),
		Width:       s.cache.Width(),
		Formats:     s.formats.RangeCount(),
		ScrollSteps: s.steps,
		Cache:       s.cache.Stats(),
	}
	if opts.Y >= 0 {
		i := min(s.cache.FindParagraphAtY(opts.Y), r.Paragraphs-1)
		rect := s.cache.ParagraphRect(i)
		r.At = &paragraphReport{
			Y:       opts.Y,
			Index:   i,
			Top:     rect.Y,
			Height:  rect.Height,
			Preview: preview(s.doc.ParagraphText(i)),
		}
	}
	if opts.Pos >= 0 {
		r.FormatAt = &formatReport{
			Pos:    opts.Pos,
			Format: s.formats.MergedFormatAt(opts.Pos).String(),
		}
	}
	return r
}

// preview truncates text to previewCells terminal cells.
func preview(text string) string {
	return runewidth.Truncate(text, previewCells, "…")
}

func (r report) write(w io.Writer, asJSON bool) error {
	if asJSON {
		doc, err := r.json()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, doc)
		return err
	}
	_, err := io.WriteString(w, r.text())
	return err
}

func (r report) text() string {
	out := fmt.Sprintf("paragraphs    %d\n", r.Paragraphs)
	out += fmt.Sprintf("characters    %d\n", r.Characters)
	out += fmt.Sprintf("measured      %d\n", r.Calculated)
	out += fmt.Sprintf("total height  %.1f\n", r.TotalHeight)
	out += fmt.Sprintf("width         %s\n", widthLabel(r.Width))
	out += fmt.Sprintf("format ranges %d\n", r.Formats)
	out += fmt.Sprintf("scroll steps  %d\n", r.ScrollSteps)
	out += fmt.Sprintf("layouts       %d/%d (hits %d, misses %d, evicted %d, hit rate %.2f)\n",
		r.Cache.Size, r.Cache.MaxSize, r.Cache.Hits, r.Cache.Misses, r.Cache.Evictions, r.Cache.HitRate)
	if r.At != nil {
		out += fmt.Sprintf("at y=%g      paragraph %d [%.1f, +%.1f] %q\n",
			r.At.Y, r.At.Index, r.At.Top, r.At.Height, r.At.Preview)
	}
	if r.FormatAt != nil {
		out += fmt.Sprintf("format @%d    %s\n", r.FormatAt.Pos, r.FormatAt.Format)
	}
	return out
}

func widthLabel(w float64) string {
	if w <= 0 {
		return "unlimited"
	}
	return strconv.FormatFloat(w, 'f', 1, 64)
}

// jsonField is one sjson path and its value.
type jsonField struct {
	path  string
	value any
}

// json encodes the report with sjson, one path at a time.
func (r report) json() (string, error) {
	fields := []jsonField{
		{"paragraphs", r.Paragraphs},
		{"characters", r.Characters},
		{"measured", r.Calculated},
		{"total_height", r.TotalHeight},
		{"width", r.Width},
		{"format_ranges", r.Formats},
		{"scroll_steps", r.ScrollSteps},
		{"cache.size", r.Cache.Size},
		{"cache.max_size", r.Cache.MaxSize},
		{"cache.hits", r.Cache.Hits},
		{"cache.misses", r.Cache.Misses},
		{"cache.evictions", r.Cache.Evictions},
		{"cache.performed", r.Cache.Performed},
		{"cache.stale", r.Cache.Stale},
		{"cache.hit_rate", r.Cache.HitRate},
	}
	if r.At != nil {
		fields = append(fields,
			jsonField{"at.y", r.At.Y},
			jsonField{"at.index", r.At.Index},
			jsonField{"at.top", r.At.Top},
			jsonField{"at.height", r.At.Height},
			jsonField{"at.preview", r.At.Preview},
		)
	}
	if r.FormatAt != nil {
		fields = append(fields,
			jsonField{"format_at.pos", r.FormatAt.Pos},
			jsonField{"format_at.format", r.FormatAt.Format},
		)
	}

	doc := "{}"
	for _, f := range fields {
		var err error
		doc, err = sjson.Set(doc, f.path, f.value)
		if err != nil {
			return "", fmt.Errorf("encoding %s: %w", f.path, err)
		}
	}
	return doc, nil
}
