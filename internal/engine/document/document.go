package document

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/folio/internal/engine/height"
)

// Separator is the paragraph separator used by Text and NewFromString.
const Separator = "\n"

const (
	defaultLineHeight   = 20.0
	defaultCharsPerLine = 80
)

// ParagraphID identifies a paragraph for as long as it exists.
type ParagraphID = uuid.UUID

type paragraph struct {
	id    ParagraphID
	text  string
	runes int
	state HeightState
}

// Document is an observable sequence of paragraphs with a height index.
type Document struct {
	paras        []paragraph
	heights      *height.Index
	lineHeight   float64
	charsPerLine int
	calculated   int
	observers    []Observer
	logger       *zap.Logger
}

// New creates an empty document with no paragraphs.
func New(opts ...Option) *Document {
	d := &Document{
		heights:      height.New(0, 0),
		lineHeight:   defaultLineHeight,
		charsPerLine: defaultCharsPerLine,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromString creates a document whose paragraphs are the lines of text.
func NewFromString(text string, opts ...Option) *Document {
	d := New(opts...)
	d.load(text)
	return d
}

// normalize converts line endings to Separator and composes text to NFC.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}

func newParagraph(text string) paragraph {
	return paragraph{
		id:    uuid.New(),
		text:  text,
		runes: utf8.RuneCountInString(text),
		state: HeightEstimated,
	}
}

func (d *Document) load(text string) {
	lines := strings.Split(normalize(text), Separator)
	d.paras = make([]paragraph, len(lines))
	for i, line := range lines {
		d.paras[i] = newParagraph(line)
	}
	d.initializeHeights()
}

// SetText replaces the whole document and notifies ContentChanged.
func (d *Document) SetText(text string) {
	d.load(text)
	d.logger.Debug("document content replaced", zap.Int("paragraphs", len(d.paras)))
	d.notifyContentChanged()
}

// Text returns the document with paragraphs joined by Separator.
func (d *Document) Text() string {
	var b strings.Builder
	for i, p := range d.paras {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(p.text)
	}
	return b.String()
}

// ParagraphCount returns the number of paragraphs.
func (d *Document) ParagraphCount() int {
	return len(d.paras)
}

// ParagraphText returns the text of paragraph i, or "" if i is invalid.
func (d *Document) ParagraphText(i int) string {
	if !d.valid(i) {
		return ""
	}
	return d.paras[i].text
}

// ParagraphPlainText returns the text of paragraph i without markup.
// Paragraphs hold plain text, so this equals ParagraphText.
func (d *Document) ParagraphPlainText(i int) string {
	return d.ParagraphText(i)
}

// ParagraphLength returns the number of offsets paragraph i occupies,
// including its separator, or 0 if i is invalid.
func (d *Document) ParagraphLength(i int) int {
	if !d.valid(i) {
		return 0
	}
	return d.paras[i].runes + 1
}

// ParagraphOffset returns the absolute offset where paragraph i begins.
// i == ParagraphCount() yields the offset just past the document.
func (d *Document) ParagraphOffset(i int) int {
	if i > len(d.paras) {
		i = len(d.paras)
	}
	offset := 0
	for k := 0; k < i; k++ {
		offset += d.paras[k].runes + 1
	}
	return offset
}

// CharacterCount returns the number of offsets in the document.
func (d *Document) CharacterCount() int {
	return d.ParagraphOffset(len(d.paras))
}

// ParagraphAt returns the paragraph containing offset and the offset
// relative to the paragraph start. The separator position of a paragraph
// maps to local offset equal to the paragraph's rune count.
func (d *Document) ParagraphAt(offset int) (index, local int, err error) {
	if offset < 0 {
		return 0, 0, &RangeError{Op: "paragraph at", Value: offset, Limit: d.CharacterCount()}
	}
	start := 0
	for i, p := range d.paras {
		if offset <= start+p.runes {
			return i, offset - start, nil
		}
		start += p.runes + 1
	}
	return 0, 0, &RangeError{Op: "paragraph at", Value: offset, Limit: start}
}

// ParagraphID returns the identifier of paragraph i, or uuid.Nil.
func (d *Document) ParagraphID(i int) ParagraphID {
	if !d.valid(i) {
		return uuid.Nil
	}
	return d.paras[i].id
}

// IndexOfID returns the current index of the paragraph with id.
func (d *Document) IndexOfID(id ParagraphID) (int, bool) {
	for i, p := range d.paras {
		if p.id == id {
			return i, true
		}
	}
	return 0, false
}

func (d *Document) valid(i int) bool {
	return i >= 0 && i < len(d.paras)
}

func containsSeparator(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// Editing

// InsertParagraph inserts a paragraph holding text before index i.
// i == ParagraphCount() appends.
func (d *Document) InsertParagraph(i int, text string) error {
	if i < 0 || i > len(d.paras) {
		return &RangeError{Op: "insert paragraph", Value: i, Limit: len(d.paras) + 1}
	}
	if containsSeparator(text) {
		return ErrInvalidText
	}

	offset := d.ParagraphOffset(i)
	p := newParagraph(norm.NFC.String(text))
	d.paras = append(d.paras, paragraph{})
	copy(d.paras[i+1:], d.paras[i:])
	d.paras[i] = p
	_ = d.heights.Insert(i, d.EstimateHeight(p.text))

	d.logger.Debug("paragraph inserted", zap.Int("index", i), zap.Int("offset", offset))
	d.notifyParagraphInserted(i)
	d.notifyTextInserted(offset, p.runes+1)
	return nil
}

// RemoveParagraph removes paragraph i.
func (d *Document) RemoveParagraph(i int) error {
	if !d.valid(i) {
		return &RangeError{Op: "remove paragraph", Value: i, Limit: len(d.paras)}
	}

	offset := d.ParagraphOffset(i)
	length := d.paras[i].runes + 1
	if d.paras[i].state == HeightCalculated {
		d.calculated--
	}
	d.paras = append(d.paras[:i], d.paras[i+1:]...)
	_ = d.heights.Remove(i)

	d.logger.Debug("paragraph removed", zap.Int("index", i), zap.Int("offset", offset))
	d.notifyParagraphRemoved(i)
	d.notifyTextDeleted(offset, length)
	return nil
}

// SetParagraphText replaces the text of paragraph i.
func (d *Document) SetParagraphText(i int, text string) error {
	if !d.valid(i) {
		return &RangeError{Op: "set paragraph text", Value: i, Limit: len(d.paras)}
	}
	if containsSeparator(text) {
		return ErrInvalidText
	}

	offset := d.ParagraphOffset(i)
	old := d.paras[i].runes
	text = norm.NFC.String(text)
	d.paras[i].text = text
	d.paras[i].runes = utf8.RuneCountInString(text)

	if old > 0 {
		d.notifyTextDeleted(offset, old)
	}
	if d.paras[i].runes > 0 {
		d.notifyTextInserted(offset, d.paras[i].runes)
	}
	_ = d.InvalidateParagraphHeight(i)
	d.notifyParagraphChanged(i)
	return nil
}

// InsertText inserts text at an absolute offset inside a paragraph.
// Use SplitParagraph to insert a separator.
func (d *Document) InsertText(offset int, text string) error {
	if containsSeparator(text) {
		return ErrInvalidText
	}
	i, local, err := d.ParagraphAt(offset)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	p := &d.paras[i]
	head, tail := splitAtRune(p.text, local)
	text = norm.NFC.String(text)
	p.text = head + text + tail
	n := utf8.RuneCountInString(text)
	p.runes += n

	d.notifyTextInserted(offset, n)
	_ = d.InvalidateParagraphHeight(i)
	d.notifyParagraphChanged(i)
	return nil
}

// DeleteText deletes length characters at an absolute offset. The range
// must lie within a single paragraph's text. A non-positive length is a
// no-op.
func (d *Document) DeleteText(offset, length int) error {
	if length <= 0 {
		return nil
	}
	i, local, err := d.ParagraphAt(offset)
	if err != nil {
		return err
	}
	p := &d.paras[i]
	if local+length > p.runes {
		return ErrInvalidRange
	}

	head, rest := splitAtRune(p.text, local)
	_, tail := splitAtRune(rest, length)
	p.text = head + tail
	p.runes -= length

	d.notifyTextDeleted(offset, length)
	_ = d.InvalidateParagraphHeight(i)
	d.notifyParagraphChanged(i)
	return nil
}

// SplitParagraph breaks the paragraph containing offset in two. The text
// after offset moves to a new paragraph inserted directly below.
func (d *Document) SplitParagraph(offset int) error {
	i, local, err := d.ParagraphAt(offset)
	if err != nil {
		return err
	}

	head, tail := splitAtRune(d.paras[i].text, local)
	d.paras[i].text = head
	d.paras[i].runes = local
	next := newParagraph(tail)
	d.paras = append(d.paras, paragraph{})
	copy(d.paras[i+2:], d.paras[i+1:])
	d.paras[i+1] = next
	_ = d.heights.Insert(i+1, d.EstimateHeight(tail))

	d.notifyTextInserted(offset, 1)
	d.notifyParagraphInserted(i + 1)
	_ = d.InvalidateParagraphHeight(i)
	d.notifyParagraphChanged(i)
	return nil
}

// JoinParagraphs appends paragraph i+1 to paragraph i, removing the
// separator between them. Paragraph i keeps its identifier.
func (d *Document) JoinParagraphs(i int) error {
	if i < 0 || i+1 >= len(d.paras) {
		return &RangeError{Op: "join paragraphs", Value: i, Limit: max(len(d.paras)-1, 0)}
	}

	sep := d.ParagraphOffset(i) + d.paras[i].runes
	next := d.paras[i+1]
	d.paras[i].text += next.text
	d.paras[i].runes += next.runes
	if next.state == HeightCalculated {
		d.calculated--
	}
	d.paras = append(d.paras[:i+1], d.paras[i+2:]...)
	_ = d.heights.Remove(i + 1)

	d.notifyTextDeleted(sep, 1)
	d.notifyParagraphRemoved(i + 1)
	_ = d.InvalidateParagraphHeight(i)
	d.notifyParagraphChanged(i)
	return nil
}

// splitAtRune splits s before its n-th rune.
func splitAtRune(s string, n int) (string, string) {
	if n <= 0 {
		return "", s
	}
	count := 0
	for pos := range s {
		if count == n {
			return s[:pos], s[pos:]
		}
		count++
	}
	return s, ""
}

// Subscriptions

// AddObserver subscribes o to change notifications.
func (d *Document) AddObserver(o Observer) {
	if o != nil {
		d.observers = append(d.observers, o)
	}
}

// RemoveObserver unsubscribes o.
func (d *Document) RemoveObserver(o Observer) {
	for i, existing := range d.observers {
		if existing == o {
			d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
			return
		}
	}
}

// snapshot returns the current observers so callbacks may unsubscribe.
func (d *Document) snapshot() []Observer {
	return append([]Observer(nil), d.observers...)
}

func (d *Document) notifyContentChanged() {
	for _, o := range d.snapshot() {
		o.ContentChanged()
	}
}

func (d *Document) notifyParagraphInserted(i int) {
	for _, o := range d.snapshot() {
		o.ParagraphInserted(i)
	}
}

func (d *Document) notifyParagraphRemoved(i int) {
	for _, o := range d.snapshot() {
		o.ParagraphRemoved(i)
	}
}

func (d *Document) notifyParagraphChanged(i int) {
	for _, o := range d.snapshot() {
		o.ParagraphChanged(i)
	}
}

func (d *Document) notifyHeightChanged(i int, oldHeight, newHeight float64) {
	for _, o := range d.snapshot() {
		o.HeightChanged(i, oldHeight, newHeight)
	}
}

func (d *Document) notifyTextInserted(pos, length int) {
	for _, o := range d.snapshot() {
		if t, ok := o.(TextObserver); ok {
			t.TextInserted(pos, length)
		}
	}
}

func (d *Document) notifyTextDeleted(pos, length int) {
	for _, o := range d.snapshot() {
		if t, ok := o.(TextObserver); ok {
			t.TextDeleted(pos, length)
		}
	}
}
