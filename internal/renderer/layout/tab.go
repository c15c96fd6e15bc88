package layout

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// TabStops places tab stops every width cells.
type TabStops struct {
	width int
}

// NewTabStops creates tab stops of the given width. Non-positive widths
// default to 4.
func NewTabStops(width int) TabStops {
	if width < 1 {
		width = 4
	}
	return TabStops{width: width}
}

// Width returns the distance between stops.
func (t TabStops) Width() int {
	return t.width
}

// Next returns the first stop after col.
func (t TabStops) Next(col int) int {
	return col + t.Advance(col)
}

// Advance returns how many cells a tab at col occupies.
func (t TabStops) Advance(col int) int {
	return t.width - col%t.width
}

// clusterWidth returns the cell width of a grapheme cluster starting at
// col. Zero-width clusters other than controls are measured again by
// uniseg so combining sequences are not lost.
func clusterWidth(cond *runewidth.Condition, cluster string, col int, tabs TabStops) int {
	switch cluster {
	case "\t":
		return tabs.Advance(col)
	case "":
		return 0
	}
	w := cond.StringWidth(cluster)
	if w <= 0 {
		w = max(uniseg.StringWidth(cluster), 0)
	}
	return w
}

// StringWidth returns the cell width of s starting at column 0, with tabs
// expanded.
func (t TabStops) StringWidth(cond *runewidth.Condition, s string) int {
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		col += clusterWidth(cond, g.Str(), col, t)
	}
	return col
}
