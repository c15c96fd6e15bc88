package document

// Observer receives paragraph-level change notifications.
type Observer interface {
	// ContentChanged is called after the whole document was replaced.
	ContentChanged()

	// ParagraphInserted is called after a paragraph was inserted at index.
	ParagraphInserted(index int)

	// ParagraphRemoved is called after the paragraph at index was removed.
	ParagraphRemoved(index int)

	// ParagraphChanged is called after the text of the paragraph at index changed.
	ParagraphChanged(index int)

	// HeightChanged is called when the height of a paragraph moved.
	HeightChanged(index int, oldHeight, newHeight float64)
}

// TextObserver receives character-level notifications in absolute offsets.
// Observers registered with AddObserver that implement TextObserver get
// these calls in addition to the Observer ones.
type TextObserver interface {
	// TextInserted is called after length characters were inserted at pos.
	TextInserted(pos, length int)

	// TextDeleted is called after length characters were deleted at pos.
	TextDeleted(pos, length int)
}

// BaseObserver implements Observer with no-op methods. Embed it to handle
// only the notifications you need.
type BaseObserver struct{}

// ContentChanged does nothing.
func (BaseObserver) ContentChanged() {}

// ParagraphInserted does nothing.
func (BaseObserver) ParagraphInserted(int) {}

// ParagraphRemoved does nothing.
func (BaseObserver) ParagraphRemoved(int) {}

// ParagraphChanged does nothing.
func (BaseObserver) ParagraphChanged(int) {}

// HeightChanged does nothing.
func (BaseObserver) HeightChanged(int, float64, float64) {}
