package format

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestAttributeSetFlags(t *testing.T) {
	s := Of(Bold, Italic)

	if !s.Has(Bold) || !s.Has(Italic) || s.Has(Underline) {
		t.Errorf("Of(Bold, Italic) = %v", s)
	}
	if s.IsEmpty() {
		t.Error("non-empty set reported empty")
	}

	s = s.Without(Bold)
	if s.Has(Bold) || !s.Has(Italic) {
		t.Errorf("Without(Bold) = %v", s)
	}
	if !Of().IsEmpty() || !(AttributeSet{}).IsEmpty() {
		t.Error("empty set reported non-empty")
	}
}

func TestVerticalAlignExclusive(t *testing.T) {
	s := Of(Subscript).With(Superscript)

	if s.Has(Subscript) {
		t.Error("superscript should replace subscript")
	}
	if s.VerticalAlign() != AlignSuperscript {
		t.Errorf("VerticalAlign() = %v, want superscript", s.VerticalAlign())
	}

	// Removing the inactive placement keeps the active one.
	if got := s.Without(Subscript); !got.Has(Superscript) {
		t.Error("Without(Subscript) cleared superscript")
	}
	if got := s.Without(Superscript); !got.IsEmpty() {
		t.Errorf("Without(Superscript) = %v, want empty", got)
	}
}

func TestValuedAttributes(t *testing.T) {
	s := AttributeSet{}.WithFontFamily("Garamond").WithFontSize(12)

	if name, ok := s.FontFamily(); !ok || name != "Garamond" {
		t.Errorf("FontFamily() = %q, %v", name, ok)
	}
	if size, ok := s.FontSize(); !ok || size != 12 {
		t.Errorf("FontSize() = %v, %v", size, ok)
	}
	if !s.Has(FontSize) {
		t.Error("Has(FontSize) = false")
	}
	if Of(FontSize).Has(FontSize) {
		t.Error("Of should ignore valued attributes")
	}
	if s.WithFontSize(0).Has(FontSize) {
		t.Error("WithFontSize(0) should clear the size")
	}
	if _, ok := s.Without(FontFamily).FontFamily(); ok {
		t.Error("Without(FontFamily) kept the family")
	}
}

func TestColors(t *testing.T) {
	s, err := AttributeSet{}.WithForegroundHex("#ff0000")
	if err != nil {
		t.Fatalf("WithForegroundHex: %v", err)
	}
	c, ok := s.Foreground()
	if !ok || c.Hex() != "#ff0000" {
		t.Errorf("Foreground() = %v, %v", c.Hex(), ok)
	}

	if _, err := s.WithBackgroundHex("not a color"); err == nil {
		t.Error("WithBackgroundHex accepted an invalid color")
	}

	other := AttributeSet{}.WithForeground(colorful.Color{R: 1})
	if !s.Equal(other) {
		t.Error("equal colors compared unequal")
	}
}

func TestMerge(t *testing.T) {
	a := Of(Bold, Subscript).WithFontSize(10)
	b := Of(Italic, Superscript).WithFontSize(14)

	m := a.Merge(b)
	if !m.Has(Bold) || !m.Has(Italic) {
		t.Errorf("Merge lost boolean styles: %v", m)
	}
	if m.VerticalAlign() != AlignSuperscript {
		t.Errorf("Merge VerticalAlign = %v, want superscript", m.VerticalAlign())
	}
	if size, _ := m.FontSize(); size != 14 {
		t.Errorf("Merge FontSize = %v, want 14", size)
	}

	// A baseline set does not reset the alignment.
	if got := a.Merge(Of(Underline)); got.VerticalAlign() != AlignSubscript {
		t.Errorf("merging baseline set changed alignment to %v", got.VerticalAlign())
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b AttributeSet
		want bool
	}{
		{"empty", AttributeSet{}, Of(), true},
		{"same flags", Of(Bold, Italic), Of(Italic, Bold), true},
		{"different flags", Of(Bold), Of(Italic), false},
		{"different align", Of(Subscript), Of(Superscript), false},
		{"different size", Of().WithFontSize(10), Of().WithFontSize(11), false},
		{"cleared value ignored", Of().WithFontSize(10).Without(FontSize), Of(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttributeSetString(t *testing.T) {
	tests := []struct {
		set  AttributeSet
		want string
	}{
		{AttributeSet{}, "none"},
		{Of(Bold, Italic), "bold|italic"},
		{Of(Underline, Superscript).WithFontSize(12), "underline|superscript|size=12"},
		{Of().WithFontFamily("Mono"), "font=Mono"},
	}
	for _, tt := range tests {
		if got := tt.set.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if Bold.String() != "bold" || Attribute(0).String() != "unknown" {
		t.Error("Attribute.String mismatch")
	}
}
