package tpl

import (
	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/value"
)

// Option configures a [Template].
type Option func(*Template)

// WithLogger sets the structured logger for trace-level debugging and for
// block errors when config.error.show is true.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(t *Template) {
		t.logger = logger
	}
}

// WithCache enables or disables the process-wide block extraction cache.
// It is enabled by default.
func WithCache(enabled bool) Option {
	return func(t *Template) {
		t.cached = enabled
	}
}

// WithSchema deep-merges schema over the template's current schema.
func WithSchema(schema *value.Value) Option {
	return func(t *Template) {
		if err := t.MergeSchema(schema); err != nil && t.err == nil {
			t.err = err
		}
	}
}

// WithSource sets the template source text.
func WithSource(source string) Option {
	return func(t *Template) {
		t.SetSource(source)
	}
}

// WithFile reads the template source from path.
func WithFile(path string) Option {
	return func(t *Template) {
		if err := t.SetFile(path); err != nil && t.err == nil {
			t.err = err
		}
	}
}
