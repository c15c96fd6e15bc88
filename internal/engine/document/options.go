package document

import "go.uber.org/zap"

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithEstimatedLineHeight sets the line height used for height estimates.
func WithEstimatedLineHeight(h float64) Option {
	return func(d *Document) {
		if h > 0 {
			d.lineHeight = h
		}
	}
}

// WithEstimatedCharsPerLine sets the wrap width, in characters, used for
// height estimates.
func WithEstimatedCharsPerLine(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.charsPerLine = n
		}
	}
}

// WithLogger sets the logger for debug events.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}
