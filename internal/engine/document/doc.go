// Package document provides the paragraph document that the geometry and
// formatting indexes observe.
//
// A Document is an ordered sequence of paragraphs. Every paragraph has a
// stable identifier, its text, and a height that starts as an estimate
// derived from the text and is replaced by a measured height once a layout
// has been performed.
//
// # Offsets
//
// Absolute character offsets count runes. Each paragraph occupies its rune
// count plus one trailing separator, so paragraph i begins at the sum of
// ParagraphLength over the preceding paragraphs.
//
// # Notifications
//
// Every edit is applied, reflected in the height index, and then announced
// to observers synchronously before the edit method returns. Observers that
// also implement TextObserver receive character-level insert and delete
// notifications describing the same edit in absolute offsets.
//
// A Document is not safe for concurrent use.
package document
