// Package layoutcache keeps paragraph layouts for the region around the
// viewport and bounds how many exist at once.
//
// Layouts are created lazily for the visible paragraphs plus a buffer zone
// on each side, measured when dirty, and their heights written back to the
// source. Entries outside the buffer zone are released once the cache is
// over capacity, oldest access first. A Cache is not safe for concurrent
// use.
package layoutcache

import (
	"cmp"
	"maps"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/engine/document"
)

const (
	// DefaultMaxCachedLayouts is the number of layouts kept after a pass.
	DefaultMaxCachedLayouts = 150

	// DefaultBufferSize is the number of paragraphs laid out beyond each
	// edge of the viewport.
	DefaultBufferSize = 50
)

// Layout is a measurable paragraph layout.
type Layout interface {
	Text() string
	SetText(text string)
	// Perform lays the text out for width and returns its height.
	Perform(width float64) float64
}

// Factory creates a layout for paragraph text.
type Factory func(text string) Layout

// Source provides paragraph text and the height index.
type Source interface {
	ParagraphCount() int
	ParagraphText(index int) string
	ParagraphHeight(index int) float64
	SetParagraphHeight(index int, height float64) error
	InvalidateParagraphHeight(index int) error
	ParagraphY(index int) float64
	ParagraphAtY(y float64) int
	TotalHeight() float64
}

// Subject is a source that delivers change notifications.
type Subject interface {
	Source
	AddObserver(o document.Observer)
	RemoveObserver(o document.Observer)
}

// identified is implemented by sources with stable paragraph ids.
type identified interface {
	ParagraphID(index int) uuid.UUID
}

// Rect is a paragraph's bounds in document coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

type entry struct {
	layout     Layout
	id         uuid.UUID
	lastAccess uint64
	dirty      bool
}

// Cache holds the layouts of paragraphs near the viewport.
type Cache struct {
	source  Source
	ids     identified
	subject Subject
	factory Factory
	logger  *zap.Logger

	width          float64
	viewportY      float64
	viewportHeight float64
	firstVisible   int
	lastVisible    int

	entries    map[int]*entry
	clock      uint64
	maxCached  int
	bufferSize int

	hits      uint64
	misses    uint64
	evictions uint64
	performed uint64
	stale     uint64
}

// New creates a cache over src using factory to build layouts. It does not
// subscribe to src; see Attach.
func New(src Source, factory Factory, opts ...Option) *Cache {
	c := &Cache{
		factory:    factory,
		logger:     zap.NewNop(),
		entries:    make(map[int]*entry),
		maxCached:  DefaultMaxCachedLayouts,
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setSource(src)
	return c
}

func (c *Cache) setSource(src Source) {
	c.source = src
	c.ids, _ = src.(identified)
	c.updateVisibleRange()
}

// Attach replaces the source with s and subscribes to its notifications.
// Cached layouts are discarded.
func (c *Cache) Attach(s Subject) {
	c.Detach()
	c.ClearLayouts()
	if s == nil {
		return
	}
	c.subject = s
	c.setSource(s)
	s.AddObserver(c)
}

// Detach unsubscribes from the attached subject. The source stays in use.
func (c *Cache) Detach() {
	if c.subject == nil {
		return
	}
	c.subject.RemoveObserver(c)
	c.subject = nil
}

func (c *Cache) count() int {
	if c.source == nil {
		return 0
	}
	return c.source.ParagraphCount()
}

// Configuration

// SetWidth sets the layout width and marks every layout dirty when it
// changes.
func (c *Cache) SetWidth(width float64) {
	if c.width == width {
		return
	}
	c.width = width
	c.InvalidateAllLayouts()
}

// Width returns the layout width.
func (c *Cache) Width() float64 {
	return c.width
}

// SetFactory replaces the layout factory, for example after a font change.
// Existing layouts were built by the old factory and are discarded.
func (c *Cache) SetFactory(f Factory) {
	c.factory = f
	c.ClearLayouts()
}

// Viewport

// SetViewport sets the visible window and recomputes the visible range.
func (c *Cache) SetViewport(y, height float64) {
	c.viewportY = y
	c.viewportHeight = height
	c.updateVisibleRange()
}

// Viewport returns the visible window.
func (c *Cache) Viewport() (y, height float64) {
	return c.viewportY, c.viewportHeight
}

// FirstVisible returns the first paragraph intersecting the viewport.
func (c *Cache) FirstVisible() int { return c.firstVisible }

// LastVisible returns the last paragraph intersecting the viewport.
func (c *Cache) LastVisible() int { return c.lastVisible }

// BufferStart returns the first paragraph laid out by a pass.
func (c *Cache) BufferStart() int {
	return max(c.firstVisible-c.bufferSize, 0)
}

// BufferEnd returns the last paragraph laid out by a pass.
func (c *Cache) BufferEnd() int {
	n := c.count()
	if n == 0 {
		return 0
	}
	return min(c.lastVisible+c.bufferSize, n-1)
}

func (c *Cache) updateVisibleRange() {
	n := c.count()
	if n == 0 {
		c.firstVisible, c.lastVisible = 0, 0
		return
	}
	c.firstVisible = min(c.source.ParagraphAtY(c.viewportY), n-1)
	c.lastVisible = min(c.source.ParagraphAtY(c.viewportY+c.viewportHeight), n-1)
}

// Layout passes

// LayoutVisibleParagraphs lays out the buffer zone around the viewport and
// returns the summed height of the visible paragraphs only. Distant layouts
// are released afterwards.
func (c *Cache) LayoutVisibleParagraphs() float64 {
	if c.count() == 0 {
		return 0
	}
	c.updateVisibleRange()

	start, end := c.BufferStart(), c.BufferEnd()
	first, last := c.firstVisible, c.lastVisible
	var visible float64
	for i := start; i <= end; i++ {
		h := c.LayoutParagraph(i)
		if i >= first && i <= last {
			visible += h
		}
	}

	c.ReleaseDistantLayouts()
	return visible
}

// LayoutParagraph creates the layout for paragraph index if needed,
// measures it when dirty, and returns the paragraph height.
func (c *Cache) LayoutParagraph(index int) float64 {
	if index < 0 || index >= c.count() {
		return 0
	}
	e := c.getOrCreate(index)
	if e == nil {
		return c.source.ParagraphHeight(index)
	}
	if !e.dirty {
		return c.source.ParagraphHeight(index)
	}

	if text := c.source.ParagraphText(index); e.layout.Text() != text {
		e.layout.SetText(text)
	}
	h := e.layout.Perform(c.width)
	c.performed++
	e.dirty = false
	if err := c.source.SetParagraphHeight(index, h); err != nil {
		c.logger.Warn("layout height rejected", zap.Int("index", index), zap.Error(err))
	}
	return h
}

func (c *Cache) getOrCreate(index int) *entry {
	if e := c.lookup(index); e != nil {
		c.hits++
		c.touch(e)
		return e
	}
	if c.factory == nil {
		return nil
	}
	c.misses++
	c.clock++
	e := &entry{
		layout:     c.factory(c.source.ParagraphText(index)),
		id:         c.idOf(index),
		lastAccess: c.clock,
		dirty:      true,
	}
	c.entries[index] = e
	return e
}

// lookup returns the entry at index, dropping it if it was created for a
// different paragraph.
func (c *Cache) lookup(index int) *entry {
	e, ok := c.entries[index]
	if !ok {
		return nil
	}
	if c.ids != nil && e.id != c.ids.ParagraphID(index) {
		delete(c.entries, index)
		c.stale++
		c.logger.Debug("stale layout dropped", zap.Int("index", index))
		return nil
	}
	return e
}

func (c *Cache) idOf(index int) uuid.UUID {
	if c.ids == nil {
		return uuid.Nil
	}
	return c.ids.ParagraphID(index)
}

func (c *Cache) touch(e *entry) {
	c.clock++
	e.lastAccess = c.clock
}

// Layout returns the cached layout for index without laying it out, or nil.
// Call LayoutVisibleParagraphs first to refresh dirty layouts.
func (c *Cache) Layout(index int) Layout {
	e := c.lookup(index)
	if e == nil {
		return nil
	}
	c.touch(e)
	return e.layout
}

// HasLayout reports whether index has a measured layout.
func (c *Cache) HasLayout(index int) bool {
	e, ok := c.entries[index]
	if !ok || e.dirty {
		return false
	}
	return c.ids == nil || e.id == c.ids.ParagraphID(index)
}

// LayoutCount returns the number of cached layouts.
func (c *Cache) LayoutCount() int {
	return len(c.entries)
}

// Indices returns the cached paragraph indexes in ascending order.
func (c *Cache) Indices() []int {
	return slices.Sorted(maps.Keys(c.entries))
}

// Geometry

// ParagraphHeight returns the height of paragraph index.
func (c *Cache) ParagraphHeight(index int) float64 {
	if c.source == nil {
		return 0
	}
	return c.source.ParagraphHeight(index)
}

// ParagraphY returns the top edge of paragraph index.
func (c *Cache) ParagraphY(index int) float64 {
	if c.source == nil {
		return 0
	}
	return c.source.ParagraphY(index)
}

// TotalHeight returns the height of the whole document.
func (c *Cache) TotalHeight() float64 {
	if c.source == nil {
		return 0
	}
	return c.source.TotalHeight()
}

// FindParagraphAtY returns the paragraph containing y.
func (c *Cache) FindParagraphAtY(y float64) int {
	if c.source == nil {
		return 0
	}
	return c.source.ParagraphAtY(y)
}

// ParagraphRect returns the bounds of paragraph index at the layout width.
func (c *Cache) ParagraphRect(index int) Rect {
	return Rect{
		Y:      c.ParagraphY(index),
		Width:  c.width,
		Height: c.ParagraphHeight(index),
	}
}

// Invalidation

// InvalidateLayout marks the layout of index dirty and reverts the
// paragraph to an estimated height.
func (c *Cache) InvalidateLayout(index int) {
	c.markDirty(index)
	if c.source != nil {
		if err := c.source.InvalidateParagraphHeight(index); err != nil {
			c.logger.Debug("height invalidation rejected", zap.Int("index", index), zap.Error(err))
		}
	}
}

func (c *Cache) markDirty(index int) {
	if e, ok := c.entries[index]; ok {
		e.dirty = true
	}
}

// InvalidateAllLayouts marks every cached layout dirty. Entries are kept.
func (c *Cache) InvalidateAllLayouts() {
	for _, e := range c.entries {
		e.dirty = true
	}
}

// ClearLayouts discards every layout and resets the access clock.
func (c *Cache) ClearLayouts() {
	if len(c.entries) > 0 {
		c.logger.Debug("layouts cleared", zap.Int("count", len(c.entries)))
	}
	clear(c.entries)
	c.clock = 0
}

// ReleaseDistantLayouts enforces the capacity. When over capacity it
// first drops every layout outside the buffer zone, then the least
// recently used ones until at capacity.
func (c *Cache) ReleaseDistantLayouts() {
	if len(c.entries) <= c.maxCached {
		return
	}
	before := len(c.entries)

	start, end := c.BufferStart(), c.BufferEnd()
	for i := range c.entries {
		if i < start || i > end {
			delete(c.entries, i)
		}
	}
	if len(c.entries) > c.maxCached {
		c.evictOldest(c.maxCached)
	}

	released := before - len(c.entries)
	c.evictions += uint64(released)
	c.logger.Debug("distant layouts released",
		zap.Int("released", released), zap.Int("kept", len(c.entries)),
		zap.Int("bufferStart", start), zap.Int("bufferEnd", end))
}

func (c *Cache) evictOldest(keep int) {
	indices := slices.Collect(maps.Keys(c.entries))
	slices.SortFunc(indices, func(a, b int) int {
		return cmp.Compare(c.entries[a].lastAccess, c.entries[b].lastAccess)
	})
	for _, i := range indices[:len(indices)-keep] {
		delete(c.entries, i)
	}
}

// ShiftLayoutIndices moves every cached layout at or after from by delta.
// A negative delta treats [from+delta, from) as removed: layouts there are
// dropped before the shift. Keys that would become negative are dropped.
func (c *Cache) ShiftLayoutIndices(from, delta int) {
	if delta == 0 || len(c.entries) == 0 {
		return
	}
	shifted := make(map[int]*entry, len(c.entries))
	for i, e := range c.entries {
		switch {
		case delta < 0 && i >= from+delta && i < from:
		case i < from:
			shifted[i] = e
		case i+delta >= 0:
			shifted[i+delta] = e
		}
	}
	c.entries = shifted
	c.logger.Debug("layout indices shifted", zap.Int("from", from), zap.Int("delta", delta))
}

// Stats reports cache activity.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Performed uint64
	Stale     uint64
	HitRate   float64
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	var rate float64
	if total := c.hits + c.misses; total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:      len(c.entries),
		MaxSize:   c.maxCached,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Performed: c.performed,
		Stale:     c.stale,
		HitRate:   rate,
	}
}
