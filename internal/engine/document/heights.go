package document

import (
	"math"
	"unicode/utf8"

	"go.uber.org/zap"
)

// HeightState tracks where a paragraph height came from.
type HeightState uint8

const (
	// HeightEstimated is derived from the text length.
	HeightEstimated HeightState = iota
	// HeightCalculated was measured by a layout.
	HeightCalculated
	// HeightInvalid was measured once but the text changed since.
	HeightInvalid
)

// String returns the state name.
func (s HeightState) String() string {
	switch s {
	case HeightEstimated:
		return "estimated"
	case HeightCalculated:
		return "calculated"
	case HeightInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// heightEpsilon is the smallest height change reported to observers.
const heightEpsilon = 0.001

func (d *Document) initializeHeights() {
	d.heights.Resize(len(d.paras), 0)
	d.calculated = 0
	for i, p := range d.paras {
		_ = d.heights.SetHeight(i, d.EstimateHeight(p.text))
	}
}

// EstimateHeight returns the estimated height of a paragraph holding text,
// assuming one line per charsPerLine characters.
func (d *Document) EstimateHeight(text string) float64 {
	n := utf8.RuneCountInString(text)
	lines := math.Ceil(float64(n) / float64(d.charsPerLine))
	if lines < 1 {
		lines = 1
	}
	return lines * d.lineHeight
}

// SetEstimatedLineHeight sets the line height used for future estimates.
func (d *Document) SetEstimatedLineHeight(h float64) {
	if h > 0 {
		d.lineHeight = h
	}
}

// EstimatedLineHeight returns the line height used for estimates.
func (d *Document) EstimatedLineHeight() float64 {
	return d.lineHeight
}

// SetEstimatedCharsPerLine sets the wrap width used for future estimates.
func (d *Document) SetEstimatedCharsPerLine(n int) {
	if n > 0 {
		d.charsPerLine = n
	}
}

// ParagraphHeight returns the current height of paragraph i. Invalid
// indexes report one estimated line.
func (d *Document) ParagraphHeight(i int) float64 {
	h, err := d.heights.Height(i)
	if err != nil {
		return d.lineHeight
	}
	return h
}

// HeightState returns the height state of paragraph i.
func (d *Document) HeightState(i int) HeightState {
	if !d.valid(i) {
		return HeightEstimated
	}
	return d.paras[i].state
}

// SetParagraphHeight records a measured height for paragraph i.
func (d *Document) SetParagraphHeight(i int, h float64) error {
	if !d.valid(i) {
		return &RangeError{Op: "set paragraph height", Value: i, Limit: len(d.paras)}
	}
	old := d.ParagraphHeight(i)
	if d.paras[i].state != HeightCalculated {
		d.calculated++
	}
	d.paras[i].state = HeightCalculated
	_ = d.heights.SetHeight(i, h)
	if math.Abs(old-h) > heightEpsilon {
		d.notifyHeightChanged(i, old, h)
	}
	return nil
}

// InvalidateParagraphHeight reverts paragraph i to an estimated height.
func (d *Document) InvalidateParagraphHeight(i int) error {
	if !d.valid(i) {
		return &RangeError{Op: "invalidate paragraph height", Value: i, Limit: len(d.paras)}
	}
	old := d.ParagraphHeight(i)
	if d.paras[i].state == HeightCalculated {
		d.calculated--
	}
	estimated := d.EstimateHeight(d.paras[i].text)
	d.paras[i].state = HeightInvalid
	_ = d.heights.SetHeight(i, estimated)
	if math.Abs(old-estimated) > heightEpsilon {
		d.logger.Debug("paragraph height invalidated",
			zap.Int("index", i), zap.Float64("old", old), zap.Float64("estimated", estimated))
		d.notifyHeightChanged(i, old, estimated)
	}
	return nil
}

// ParagraphY returns the top edge of paragraph i.
func (d *Document) ParagraphY(i int) float64 {
	return d.heights.Y(i)
}

// ParagraphAtY returns the paragraph containing y. y at or past the total
// height yields ParagraphCount().
func (d *Document) ParagraphAtY(y float64) int {
	return d.heights.FindIndexForY(y)
}

// TotalHeight returns the height of the whole document.
func (d *Document) TotalHeight() float64 {
	return d.heights.TotalHeight()
}

// CalculatedCount returns how many paragraphs have a measured height.
func (d *Document) CalculatedCount() int {
	return d.calculated
}
