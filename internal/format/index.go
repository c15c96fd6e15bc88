package format

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/dshills/folio/internal/engine/document"
	"github.com/dshills/folio/internal/format/interval"
)

// Range is a styled half-open range of document offsets.
type Range = interval.Range[AttributeSet]

// ParagraphSource reports paragraph lengths in document offsets,
// including the trailing separator.
type ParagraphSource interface {
	ParagraphCount() int
	ParagraphLength(index int) int
}

// Subject is a paragraph source that delivers change notifications.
type Subject interface {
	ParagraphSource
	AddObserver(o document.Observer)
	RemoveObserver(o document.Observer)
}

// Index stores character formatting as ranges over document offsets.
// It is not safe for concurrent use.
type Index struct {
	tree    *interval.Tree[AttributeSet]
	source  ParagraphSource
	subject Subject
	logger  *zap.Logger
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithLogger sets the logger for debug events.
func WithLogger(l *zap.Logger) IndexOption {
	return func(x *Index) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithSource sets the paragraph source used by FormatsForParagraph
// without subscribing to it.
func WithSource(src ParagraphSource) IndexOption {
	return func(x *Index) {
		x.source = src
	}
}

// NewIndex creates an empty format index.
func NewIndex(opts ...IndexOption) *Index {
	x := &Index{
		tree:   interval.New[AttributeSet](),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Attach subscribes the index to s and uses it as paragraph source.
// A previously attached subject is detached first.
func (x *Index) Attach(s Subject) {
	x.Detach()
	if s == nil {
		return
	}
	x.subject = s
	x.source = s
	s.AddObserver(x)
}

// Detach unsubscribes from the attached subject, if any.
func (x *Index) Detach() {
	if x.subject == nil {
		return
	}
	x.subject.RemoveObserver(x)
	if x.source == ParagraphSource(x.subject) {
		x.source = nil
	}
	x.subject = nil
}

// Mutators

// AddFormat applies attrs over [start, end). Ranges are stored as given;
// call CoalesceRanges to merge adjacent identical ranges.
func (x *Index) AddFormat(start, end int, attrs AttributeSet) {
	start = max(start, 0)
	if start >= end || attrs.IsEmpty() {
		return
	}
	x.tree.Insert(Range{Start: start, End: end, Value: attrs})
}

// RemoveFormat clears attr over [start, end). Every range carrying attr
// that overlaps the window is split: the parts outside keep their full
// attribute set, the part inside keeps the remaining attributes.
func (x *Index) RemoveFormat(start, end int, attr Attribute) {
	if start >= end {
		return
	}
	var hits []Range
	for _, r := range x.tree.FindOverlapping(start, end) {
		if r.Value.Has(attr) {
			hits = append(hits, r)
		}
	}
	if len(hits) == 0 {
		return
	}

	x.tree.RemoveIf(func(r Range) bool {
		return r.Overlaps(start, end) && r.Value.Has(attr)
	})
	for _, r := range hits {
		x.reinsertOutside(r, start, end)
		rest := r.Value.Without(attr)
		if !rest.IsEmpty() {
			x.tree.Insert(Range{Start: max(r.Start, start), End: min(r.End, end), Value: rest})
		}
	}
}

// ClearFormats removes every attribute over [start, end). Ranges that
// extend past the window keep their parts outside it.
func (x *Index) ClearFormats(start, end int) {
	if start >= end {
		return
	}
	hits := x.tree.FindOverlapping(start, end)
	if len(hits) == 0 {
		return
	}
	x.tree.RemoveIf(func(r Range) bool {
		return r.Overlaps(start, end)
	})
	for _, r := range hits {
		x.reinsertOutside(r, start, end)
	}
}

func (x *Index) reinsertOutside(r Range, start, end int) {
	if r.Start < start {
		x.tree.Insert(Range{Start: r.Start, End: start, Value: r.Value})
	}
	if r.End > end {
		x.tree.Insert(Range{Start: end, End: r.End, Value: r.Value})
	}
}

// ClearAll removes every range.
func (x *Index) ClearAll() {
	if x.tree.Len() > 0 {
		x.logger.Debug("format index cleared", zap.Int("ranges", x.tree.Len()))
	}
	x.tree.Clear()
}

// ToggleFormat removes attr from [start, end) if it holds at every offset
// of the range, and applies it over the whole range otherwise. It returns
// whether attr is now applied. Valued attributes can only be toggled off.
func (x *Index) ToggleFormat(start, end int, attr Attribute) bool {
	if start >= end {
		return false
	}
	if x.HasFormatInRange(start, end, attr) {
		x.RemoveFormat(start, end, attr)
		return false
	}
	set := Of(attr)
	if set.IsEmpty() {
		return false
	}
	x.AddFormat(start, end, set)
	return true
}

// CoalesceRanges merges ranges that touch end to start and carry equal
// attribute sets.
func (x *Index) CoalesceRanges() {
	ranges := x.tree.All()
	if len(ranges) < 2 {
		return
	}
	slices.SortStableFunc(ranges, func(a, b Range) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	x.tree.Clear()
	cur := ranges[0]
	for _, next := range ranges[1:] {
		if cur.End == next.Start && cur.Value.Equal(next.Value) {
			cur.End = next.End
			continue
		}
		x.tree.Insert(cur)
		cur = next
	}
	x.tree.Insert(cur)
	x.logger.Debug("format ranges coalesced",
		zap.Int("before", len(ranges)), zap.Int("after", x.tree.Len()))
}

// Queries

// FormatsAt returns the ranges containing pos in ascending start order.
func (x *Index) FormatsAt(pos int) []Range {
	return x.tree.FindAt(pos)
}

// MergedFormatAt folds every range containing pos in ascending start
// order. Later ranges win valued attributes and vertical alignment.
func (x *Index) MergedFormatAt(pos int) AttributeSet {
	var merged AttributeSet
	for _, r := range x.tree.FindAt(pos) {
		merged = merged.Merge(r.Value)
	}
	return merged
}

// FormatsInRange returns the ranges overlapping [start, end).
func (x *Index) FormatsInRange(start, end int) []Range {
	return x.tree.FindOverlapping(start, end)
}

// FormatsForParagraph returns the ranges overlapping paragraph index. It
// returns nil without a paragraph source or when index is out of range.
func (x *Index) FormatsForParagraph(index int) []Range {
	if x.source == nil || index < 0 || index >= x.source.ParagraphCount() {
		return nil
	}
	start := 0
	for i := 0; i < index; i++ {
		start += x.source.ParagraphLength(i)
	}
	return x.tree.FindOverlapping(start, start+x.source.ParagraphLength(index))
}

// HasFormatAt reports whether any range containing pos carries attr.
func (x *Index) HasFormatAt(pos int, attr Attribute) bool {
	for _, r := range x.tree.FindAt(pos) {
		if r.Value.Has(attr) {
			return true
		}
	}
	return false
}

// HasFormatInRange reports whether attr holds at every offset of
// [start, end). An empty range reports false.
func (x *Index) HasFormatInRange(start, end int, attr Attribute) bool {
	if start >= end {
		return false
	}
	covered := start
	for _, r := range x.tree.FindOverlapping(start, end) {
		if !r.Value.Has(attr) {
			continue
		}
		if r.Start > covered {
			return false
		}
		covered = max(covered, r.End)
		if covered >= end {
			return true
		}
	}
	return false
}

// AllRanges returns every range in ascending start order.
func (x *Index) AllRanges() []Range {
	return x.tree.All()
}

// RangeCount returns the number of stored ranges.
func (x *Index) RangeCount() int {
	return x.tree.Len()
}

// IsEmpty reports whether no formatting is stored.
func (x *Index) IsEmpty() bool {
	return x.tree.Len() == 0
}

// Edit handlers

// OnTextInserted shifts ranges for length characters inserted at pos.
func (x *Index) OnTextInserted(pos, length int) {
	if length <= 0 {
		return
	}
	x.tree.ShiftRanges(pos, length)
}

// OnTextDeleted drops ranges lying wholly inside the deleted span and
// shifts the rest.
func (x *Index) OnTextDeleted(pos, length int) {
	if length <= 0 {
		return
	}
	end := pos + length
	n := x.tree.RemoveIf(func(r Range) bool {
		return r.Start >= pos && r.End <= end
	})
	if n > 0 {
		x.logger.Debug("format ranges deleted with text",
			zap.Int("pos", pos), zap.Int("length", length), zap.Int("ranges", n))
	}
	x.tree.ShiftRanges(pos, -length)
}

// OnTextChanged handles a full content replacement by dropping all
// formatting.
func (x *Index) OnTextChanged() {
	x.ClearAll()
}

// document.Observer

// ContentChanged implements document.Observer.
func (x *Index) ContentChanged() { x.OnTextChanged() }

// ParagraphInserted implements document.Observer. Offsets arrive
// through TextInserted.
func (x *Index) ParagraphInserted(int) {}

// ParagraphRemoved implements document.Observer. Offsets arrive through
// TextDeleted.
func (x *Index) ParagraphRemoved(int) {}

// ParagraphChanged implements document.Observer.
func (x *Index) ParagraphChanged(int) {}

// HeightChanged implements document.Observer.
func (x *Index) HeightChanged(int, float64, float64) {}

// TextInserted implements document.TextObserver.
func (x *Index) TextInserted(pos, length int) { x.OnTextInserted(pos, length) }

// TextDeleted implements document.TextObserver.
func (x *Index) TextDeleted(pos, length int) { x.OnTextDeleted(pos, length) }

var (
	_ document.Observer     = (*Index)(nil)
	_ document.TextObserver = (*Index)(nil)
)
