package layoutcache

import "go.uber.org/zap"

// Option configures a Cache.
type Option func(*Cache)

// WithMaxCachedLayouts sets how many layouts survive a release pass.
func WithMaxCachedLayouts(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxCached = n
		}
	}
}

// WithBufferSize sets how many paragraphs beyond each viewport edge are
// laid out.
func WithBufferSize(n int) Option {
	return func(c *Cache) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}

// WithWidth sets the initial layout width.
func WithWidth(w float64) Option {
	return func(c *Cache) {
		c.width = w
	}
}

// WithLogger sets the logger for debug events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}
