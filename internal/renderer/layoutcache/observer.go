package layoutcache

import "github.com/dshills/folio/internal/engine/document"

var _ document.Observer = (*Cache)(nil)

// ContentChanged discards every layout since no index refers to the same
// paragraph anymore.
func (c *Cache) ContentChanged() {
	c.ClearLayouts()
	c.updateVisibleRange()
}

// ParagraphInserted shifts layouts at or after index down by one.
func (c *Cache) ParagraphInserted(index int) {
	c.ShiftLayoutIndices(index, 1)
}

// ParagraphRemoved drops the layout of index and shifts the ones after it.
func (c *Cache) ParagraphRemoved(index int) {
	c.ShiftLayoutIndices(index+1, -1)
	c.updateVisibleRange()
}

// ParagraphChanged marks the layout of index dirty. The source has already
// reverted its height.
func (c *Cache) ParagraphChanged(index int) {
	c.markDirty(index)
}

// HeightChanged recomputes the visible range.
func (c *Cache) HeightChanged(int, float64, float64) {
	c.updateVisibleRange()
}
