package format

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Attribute names a single addressable character style.
type Attribute uint8

const (
	// Bold is heavy weight text.
	Bold Attribute = iota + 1
	// Italic is slanted text.
	Italic
	// Underline draws a line below the text.
	Underline
	// Strikethrough draws a line through the text.
	Strikethrough
	// Subscript lowers the text below the baseline.
	Subscript
	// Superscript raises the text above the baseline.
	Superscript
	// FontFamily overrides the font family.
	FontFamily
	// FontSize overrides the font size in points.
	FontSize
	// ForegroundColor overrides the text color.
	ForegroundColor
	// BackgroundColor sets a highlight color.
	BackgroundColor
	// SmallCaps renders lowercase letters as small capitals.
	SmallCaps
	// AllCaps renders all letters as capitals.
	AllCaps
)

// String returns the attribute name.
func (a Attribute) String() string {
	switch a {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	case Strikethrough:
		return "strikethrough"
	case Subscript:
		return "subscript"
	case Superscript:
		return "superscript"
	case FontFamily:
		return "font-family"
	case FontSize:
		return "font-size"
	case ForegroundColor:
		return "foreground"
	case BackgroundColor:
		return "background"
	case SmallCaps:
		return "small-caps"
	case AllCaps:
		return "all-caps"
	default:
		return "unknown"
	}
}

// VerticalAlign is the baseline placement of text. Subscript and
// superscript are mutually exclusive by construction.
type VerticalAlign uint8

const (
	// AlignBaseline places text on the baseline.
	AlignBaseline VerticalAlign = iota
	// AlignSubscript lowers text below the baseline.
	AlignSubscript
	// AlignSuperscript raises text above the baseline.
	AlignSuperscript
)

// flags holds the orthogonal boolean styles and the presence bits of
// valued attributes.
type flags uint16

const (
	flagBold flags = 1 << iota
	flagItalic
	flagUnderline
	flagStrikethrough
	flagSmallCaps
	flagAllCaps
	flagFontFamily
	flagFontSize
	flagForeground
	flagBackground
)

var attributeFlags = map[Attribute]flags{
	Bold:            flagBold,
	Italic:          flagItalic,
	Underline:       flagUnderline,
	Strikethrough:   flagStrikethrough,
	SmallCaps:       flagSmallCaps,
	AllCaps:         flagAllCaps,
	FontFamily:      flagFontFamily,
	FontSize:        flagFontSize,
	ForegroundColor: flagForeground,
	BackgroundColor: flagBackground,
}

// AttributeSet is a mergeable bag of character styles. The zero value is
// the empty set.
type AttributeSet struct {
	flags      flags
	align      VerticalAlign
	fontFamily string
	fontSize   float64
	foreground colorful.Color
	background colorful.Color
}

// Of returns a set holding the given attributes. Valued attributes
// (FontFamily, FontSize, ForegroundColor, BackgroundColor) need a value and
// are ignored here; use the With* setters instead.
func Of(attrs ...Attribute) AttributeSet {
	var s AttributeSet
	for _, a := range attrs {
		s = s.With(a)
	}
	return s
}

// With returns a copy of s with attr applied. Subscript and Superscript
// replace each other. Valued attributes are ignored.
func (s AttributeSet) With(attr Attribute) AttributeSet {
	switch attr {
	case Subscript:
		s.align = AlignSubscript
	case Superscript:
		s.align = AlignSuperscript
	case Bold, Italic, Underline, Strikethrough, SmallCaps, AllCaps:
		s.flags |= attributeFlags[attr]
	}
	return s
}

// Without returns a copy of s with attr cleared.
func (s AttributeSet) Without(attr Attribute) AttributeSet {
	switch attr {
	case Subscript:
		if s.align == AlignSubscript {
			s.align = AlignBaseline
		}
	case Superscript:
		if s.align == AlignSuperscript {
			s.align = AlignBaseline
		}
	default:
		s.flags &^= attributeFlags[attr]
		switch attr {
		case FontFamily:
			s.fontFamily = ""
		case FontSize:
			s.fontSize = 0
		case ForegroundColor:
			s.foreground = colorful.Color{}
		case BackgroundColor:
			s.background = colorful.Color{}
		}
	}
	return s
}

// Has reports whether attr is present in s.
func (s AttributeSet) Has(attr Attribute) bool {
	switch attr {
	case Subscript:
		return s.align == AlignSubscript
	case Superscript:
		return s.align == AlignSuperscript
	}
	f, ok := attributeFlags[attr]
	return ok && s.flags&f != 0
}

// IsEmpty reports whether no attribute is set.
func (s AttributeSet) IsEmpty() bool {
	return s.flags == 0 && s.align == AlignBaseline
}

// VerticalAlign returns the baseline placement.
func (s AttributeSet) VerticalAlign() VerticalAlign {
	return s.align
}

// WithVerticalAlign returns a copy of s with the given baseline placement.
func (s AttributeSet) WithVerticalAlign(a VerticalAlign) AttributeSet {
	s.align = a
	return s
}

// WithFontFamily returns a copy of s using the named font family.
func (s AttributeSet) WithFontFamily(name string) AttributeSet {
	if name == "" {
		return s.Without(FontFamily)
	}
	s.flags |= flagFontFamily
	s.fontFamily = name
	return s
}

// FontFamily returns the font family override, if any.
func (s AttributeSet) FontFamily() (string, bool) {
	return s.fontFamily, s.flags&flagFontFamily != 0
}

// WithFontSize returns a copy of s using the given size in points.
func (s AttributeSet) WithFontSize(points float64) AttributeSet {
	if points <= 0 {
		return s.Without(FontSize)
	}
	s.flags |= flagFontSize
	s.fontSize = points
	return s
}

// FontSize returns the font size override, if any.
func (s AttributeSet) FontSize() (float64, bool) {
	return s.fontSize, s.flags&flagFontSize != 0
}

// WithForeground returns a copy of s using the given text color.
func (s AttributeSet) WithForeground(c colorful.Color) AttributeSet {
	s.flags |= flagForeground
	s.foreground = c
	return s
}

// WithForegroundHex parses a "#rrggbb" color and applies it as the text color.
func (s AttributeSet) WithForegroundHex(hex string) (AttributeSet, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return s, fmt.Errorf("foreground color %q: %w", hex, err)
	}
	return s.WithForeground(c), nil
}

// Foreground returns the text color override, if any.
func (s AttributeSet) Foreground() (colorful.Color, bool) {
	return s.foreground, s.flags&flagForeground != 0
}

// WithBackground returns a copy of s using the given highlight color.
func (s AttributeSet) WithBackground(c colorful.Color) AttributeSet {
	s.flags |= flagBackground
	s.background = c
	return s
}

// WithBackgroundHex parses a "#rrggbb" color and applies it as the highlight.
func (s AttributeSet) WithBackgroundHex(hex string) (AttributeSet, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return s, fmt.Errorf("background color %q: %w", hex, err)
	}
	return s.WithBackground(c), nil
}

// Background returns the highlight color, if any.
func (s AttributeSet) Background() (colorful.Color, bool) {
	return s.background, s.flags&flagBackground != 0
}

// Merge returns s with other applied on top. Boolean styles union; valued
// attributes and vertical alignment set in other win.
func (s AttributeSet) Merge(other AttributeSet) AttributeSet {
	s.flags |= other.flags
	if other.align != AlignBaseline {
		s.align = other.align
	}
	if other.flags&flagFontFamily != 0 {
		s.fontFamily = other.fontFamily
	}
	if other.flags&flagFontSize != 0 {
		s.fontSize = other.fontSize
	}
	if other.flags&flagForeground != 0 {
		s.foreground = other.foreground
	}
	if other.flags&flagBackground != 0 {
		s.background = other.background
	}
	return s
}

// Equal reports whether both sets carry the same attributes and values.
func (s AttributeSet) Equal(other AttributeSet) bool {
	if s.flags != other.flags || s.align != other.align {
		return false
	}
	if s.flags&flagFontFamily != 0 && s.fontFamily != other.fontFamily {
		return false
	}
	if s.flags&flagFontSize != 0 && s.fontSize != other.fontSize {
		return false
	}
	if s.flags&flagForeground != 0 && !s.foreground.AlmostEqualRgb(other.foreground) {
		return false
	}
	if s.flags&flagBackground != 0 && !s.background.AlmostEqualRgb(other.background) {
		return false
	}
	return true
}

// String returns a compact description such as "bold|italic|size=12".
func (s AttributeSet) String() string {
	if s.IsEmpty() {
		return "none"
	}
	var parts []string
	for _, a := range []Attribute{Bold, Italic, Underline, Strikethrough, SmallCaps, AllCaps, Subscript, Superscript} {
		if s.Has(a) {
			parts = append(parts, a.String())
		}
	}
	if name, ok := s.FontFamily(); ok {
		parts = append(parts, "font="+name)
	}
	if size, ok := s.FontSize(); ok {
		parts = append(parts, fmt.Sprintf("size=%g", size))
	}
	if c, ok := s.Foreground(); ok {
		parts = append(parts, "fg="+c.Hex())
	}
	if c, ok := s.Background(); ok {
		parts = append(parts, "bg="+c.Hex())
	}
	return strings.Join(parts, "|")
}
