package document

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// recorder logs every notification it receives.
type recorder struct {
	events []string
}

func (r *recorder) ContentChanged()         { r.events = append(r.events, "content") }
func (r *recorder) ParagraphInserted(i int) { r.events = append(r.events, fmt.Sprintf("inserted %d", i)) }
func (r *recorder) ParagraphRemoved(i int)  { r.events = append(r.events, fmt.Sprintf("removed %d", i)) }
func (r *recorder) ParagraphChanged(i int)  { r.events = append(r.events, fmt.Sprintf("changed %d", i)) }
func (r *recorder) HeightChanged(i int, o, n float64) {
	r.events = append(r.events, fmt.Sprintf("height %d %g->%g", i, o, n))
}

// textRecorder also receives character-level notifications.
type textRecorder struct {
	recorder
}

func (r *textRecorder) TextInserted(pos, n int) {
	r.events = append(r.events, fmt.Sprintf("text+ %d %d", pos, n))
}

func (r *textRecorder) TextDeleted(pos, n int) {
	r.events = append(r.events, fmt.Sprintf("text- %d %d", pos, n))
}

func newTestDoc(text string) *Document {
	return NewFromString(text, WithEstimatedLineHeight(10), WithEstimatedCharsPerLine(10))
}

func TestNewFromString(t *testing.T) {
	d := newTestDoc("one\r\ntwo\rthree\n")

	if d.ParagraphCount() != 4 {
		t.Fatalf("ParagraphCount() = %d, want 4", d.ParagraphCount())
	}
	want := []string{"one", "two", "three", ""}
	for i, w := range want {
		if got := d.ParagraphText(i); got != w {
			t.Errorf("ParagraphText(%d) = %q, want %q", i, got, w)
		}
	}
	if got := d.Text(); got != "one\ntwo\nthree\n" {
		t.Errorf("Text() = %q", got)
	}
}

func TestNewIsEmpty(t *testing.T) {
	d := New()

	if d.ParagraphCount() != 0 || d.TotalHeight() != 0 || d.CharacterCount() != 0 {
		t.Errorf("New() should have no paragraphs, got count %d", d.ParagraphCount())
	}
}

func TestNormalizesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	d := newTestDoc("cafe\u0301")

	if got := d.ParagraphText(0); got != "caf\u00e9" {
		t.Errorf("ParagraphText(0) = %q, want composed form", got)
	}
	if got := d.ParagraphLength(0); got != 5 {
		t.Errorf("ParagraphLength(0) = %d, want 5", got)
	}
}

func TestParagraphOffsets(t *testing.T) {
	d := newTestDoc("ab\ncde\n\nf")

	tests := []struct {
		index  int
		offset int
		length int
	}{
		{0, 0, 3},
		{1, 3, 4},
		{2, 7, 1},
		{3, 8, 2},
		{4, 10, 0},
	}
	for _, tt := range tests {
		if got := d.ParagraphOffset(tt.index); got != tt.offset {
			t.Errorf("ParagraphOffset(%d) = %d, want %d", tt.index, got, tt.offset)
		}
		if got := d.ParagraphLength(tt.index); got != tt.length {
			t.Errorf("ParagraphLength(%d) = %d, want %d", tt.index, got, tt.length)
		}
	}
	if got := d.CharacterCount(); got != 10 {
		t.Errorf("CharacterCount() = %d, want 10", got)
	}
}

func TestParagraphAt(t *testing.T) {
	d := newTestDoc("ab\ncde")

	tests := []struct {
		offset      int
		index, loc  int
		wantErr     bool
	}{
		{0, 0, 0, false},
		{2, 0, 2, false},
		{3, 1, 0, false},
		{6, 1, 3, false},
		{7, 0, 0, true},
		{-1, 0, 0, true},
	}
	for _, tt := range tests {
		i, loc, err := d.ParagraphAt(tt.offset)
		if tt.wantErr {
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("ParagraphAt(%d) error = %v, want ErrOutOfRange", tt.offset, err)
			}
			continue
		}
		if err != nil || i != tt.index || loc != tt.loc {
			t.Errorf("ParagraphAt(%d) = %d, %d, %v; want %d, %d", tt.offset, i, loc, err, tt.index, tt.loc)
		}
	}
}

func TestInsertParagraphNotifies(t *testing.T) {
	d := newTestDoc("ab\ncd")
	rec := &textRecorder{}
	d.AddObserver(rec)

	if err := d.InsertParagraph(1, "xyz"); err != nil {
		t.Fatalf("InsertParagraph: %v", err)
	}

	if diff := cmp.Diff([]string{"inserted 1", "text+ 3 4"}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if got := d.Text(); got != "ab\nxyz\ncd" {
		t.Errorf("Text() = %q", got)
	}
	if got := d.ParagraphHeight(1); got != 10 {
		t.Errorf("ParagraphHeight(1) = %v, want 10", got)
	}
	if got := d.TotalHeight(); got != 30 {
		t.Errorf("TotalHeight() = %v, want 30", got)
	}
}

func TestInsertParagraphErrors(t *testing.T) {
	d := newTestDoc("ab")

	if err := d.InsertParagraph(3, "x"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("InsertParagraph(3) error = %v, want ErrOutOfRange", err)
	}
	if err := d.InsertParagraph(0, "a\nb"); !errors.Is(err, ErrInvalidText) {
		t.Errorf("InsertParagraph with separator error = %v, want ErrInvalidText", err)
	}
	if d.ParagraphCount() != 1 {
		t.Errorf("failed inserts changed the document: count %d", d.ParagraphCount())
	}
}

func TestRemoveParagraph(t *testing.T) {
	d := newTestDoc("ab\ncde\nf")
	rec := &textRecorder{}
	d.AddObserver(rec)

	if err := d.RemoveParagraph(1); err != nil {
		t.Fatalf("RemoveParagraph: %v", err)
	}
	if diff := cmp.Diff([]string{"removed 1", "text- 3 4"}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if got := d.Text(); got != "ab\nf" {
		t.Errorf("Text() = %q", got)
	}
	if err := d.RemoveParagraph(5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("RemoveParagraph(5) error = %v, want ErrOutOfRange", err)
	}
}

func TestPlainObserverSkipsTextEvents(t *testing.T) {
	d := newTestDoc("ab")
	rec := &recorder{}
	d.AddObserver(rec)

	_ = d.InsertParagraph(0, "x")
	if diff := cmp.Diff([]string{"inserted 0"}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertAndDeleteText(t *testing.T) {
	d := newTestDoc("hello\nworld")
	rec := &textRecorder{}
	d.AddObserver(rec)

	if err := d.InsertText(8, "XX"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if got := d.ParagraphText(1); got != "woXXrld" {
		t.Errorf("ParagraphText(1) = %q, want %q", got, "woXXrld")
	}
	if err := d.DeleteText(1, 3); err != nil {
		t.Fatalf("DeleteText: %v", err)
	}
	if got := d.ParagraphText(0); got != "ho" {
		t.Errorf("ParagraphText(0) = %q, want %q", got, "ho")
	}

	want := []string{"text+ 8 2", "changed 1", "text- 1 3", "changed 0"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteTextAcrossSeparator(t *testing.T) {
	d := newTestDoc("ab\ncd")

	if err := d.DeleteText(1, 3); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("DeleteText across separator error = %v, want ErrInvalidRange", err)
	}
	if err := d.DeleteText(1, 0); err != nil {
		t.Errorf("DeleteText with zero length error = %v, want nil", err)
	}
	if got := d.Text(); got != "ab\ncd" {
		t.Errorf("Text() = %q, want unchanged", got)
	}
}

func TestInsertTextRejectsSeparator(t *testing.T) {
	d := newTestDoc("ab")

	if err := d.InsertText(1, "x\ny"); !errors.Is(err, ErrInvalidText) {
		t.Errorf("InsertText error = %v, want ErrInvalidText", err)
	}
}

func TestSetParagraphText(t *testing.T) {
	d := newTestDoc("ab\ncd")
	rec := &textRecorder{}
	d.AddObserver(rec)

	if err := d.SetParagraphText(1, "wxyz"); err != nil {
		t.Fatalf("SetParagraphText: %v", err)
	}
	want := []string{"text- 3 2", "text+ 3 4", "changed 1"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitAndJoinParagraphs(t *testing.T) {
	d := newTestDoc("hello world")
	id := d.ParagraphID(0)
	rec := &textRecorder{}
	d.AddObserver(rec)

	if err := d.SplitParagraph(5); err != nil {
		t.Fatalf("SplitParagraph: %v", err)
	}
	if d.ParagraphText(0) != "hello" || d.ParagraphText(1) != " world" {
		t.Fatalf("after split: %q / %q", d.ParagraphText(0), d.ParagraphText(1))
	}
	if d.ParagraphID(0) != id {
		t.Error("split should keep the head paragraph id")
	}
	if d.ParagraphID(1) == id || d.ParagraphID(1) == uuid.Nil {
		t.Error("split should assign a fresh id to the tail paragraph")
	}

	if err := d.JoinParagraphs(0); err != nil {
		t.Fatalf("JoinParagraphs: %v", err)
	}
	if got := d.Text(); got != "hello world" {
		t.Errorf("after join Text() = %q", got)
	}
	if d.ParagraphID(0) != id {
		t.Error("join should keep the surviving paragraph id")
	}

	want := []string{
		"text+ 5 1", "inserted 1", "height 0 20->10", "changed 0",
		"text- 5 1", "removed 1", "height 0 10->20", "changed 0",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if err := d.JoinParagraphs(0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("JoinParagraphs on last paragraph error = %v, want ErrOutOfRange", err)
	}
}

func TestIDs(t *testing.T) {
	d := newTestDoc("a\nb\nc")
	id := d.ParagraphID(2)

	_ = d.RemoveParagraph(0)
	i, ok := d.IndexOfID(id)
	if !ok || i != 1 {
		t.Errorf("IndexOfID = %d, %v; want 1, true", i, ok)
	}
	if d.ParagraphID(9) != uuid.Nil {
		t.Error("invalid index should have nil id")
	}
	if _, ok := d.IndexOfID(uuid.New()); ok {
		t.Error("unknown id should not be found")
	}
}

func TestSetText(t *testing.T) {
	d := newTestDoc("a")
	rec := &recorder{}
	d.AddObserver(rec)

	d.SetText("x\ny\nz")
	if d.ParagraphCount() != 3 {
		t.Errorf("ParagraphCount() = %d, want 3", d.ParagraphCount())
	}
	if diff := cmp.Diff([]string{"content"}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveObserver(t *testing.T) {
	d := newTestDoc("a")
	first, second := &recorder{}, &recorder{}
	d.AddObserver(first)
	d.AddObserver(second)
	d.RemoveObserver(first)

	_ = d.InsertParagraph(0, "b")
	if len(first.events) != 0 {
		t.Errorf("removed observer received %v", first.events)
	}
	if len(second.events) != 1 {
		t.Errorf("remaining observer received %v, want one event", second.events)
	}
}

func TestHeightStates(t *testing.T) {
	d := newTestDoc("short\n0123456789abcdef")

	if got := d.ParagraphHeight(1); got != 20 {
		t.Errorf("estimated ParagraphHeight(1) = %v, want 20", got)
	}
	if d.HeightState(0) != HeightEstimated {
		t.Errorf("HeightState(0) = %v, want estimated", d.HeightState(0))
	}

	rec := &recorder{}
	d.AddObserver(rec)

	if err := d.SetParagraphHeight(0, 33); err != nil {
		t.Fatalf("SetParagraphHeight: %v", err)
	}
	if d.HeightState(0) != HeightCalculated || d.CalculatedCount() != 1 {
		t.Errorf("after measuring: state %v, calculated %d", d.HeightState(0), d.CalculatedCount())
	}
	if got := d.ParagraphY(1); got != 33 {
		t.Errorf("ParagraphY(1) = %v, want 33", got)
	}

	// Setting the same height again is not a change.
	_ = d.SetParagraphHeight(0, 33)

	if err := d.InvalidateParagraphHeight(0); err != nil {
		t.Fatalf("InvalidateParagraphHeight: %v", err)
	}
	if d.HeightState(0) != HeightInvalid || d.CalculatedCount() != 0 {
		t.Errorf("after invalidation: state %v, calculated %d", d.HeightState(0), d.CalculatedCount())
	}

	want := []string{"height 0 10->33", "height 0 33->10"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if err := d.SetParagraphHeight(7, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetParagraphHeight(7) error = %v, want ErrOutOfRange", err)
	}
}

func TestParagraphAtY(t *testing.T) {
	d := newTestDoc("a\nb\nc")

	tests := []struct {
		y    float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{15, 1},
		{29.9, 2},
		{30, 3},
	}
	for _, tt := range tests {
		if got := d.ParagraphAtY(tt.y); got != tt.want {
			t.Errorf("ParagraphAtY(%v) = %d, want %d", tt.y, got, tt.want)
		}
	}
}

func TestEstimateHeight(t *testing.T) {
	d := newTestDoc("")

	tests := []struct {
		text string
		want float64
	}{
		{"", 10},
		{"abc", 10},
		{"0123456789", 10},
		{"01234567890", 20},
		{"0123456789012345678901", 30},
	}
	for _, tt := range tests {
		if got := d.EstimateHeight(tt.text); got != tt.want {
			t.Errorf("EstimateHeight(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBaseObserver(t *testing.T) {
	var o Observer = BaseObserver{}
	d := newTestDoc("a")
	d.AddObserver(o)

	_ = d.InsertParagraph(1, "b")
	d.SetText("z")
}
