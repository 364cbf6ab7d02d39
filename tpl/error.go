package tpl

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadSource   = NewError("failed to read template source")
	ErrReadSchema   = NewError("failed to read schema")
	ErrDecodeSchema = NewError("failed to decode schema")
	ErrSchemaType   = NewError("schema must be an object")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is matches another Error carrying the same message, so values derived from
// a sentinel with Wrap or With still match it.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to a copy of the error.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(merged, e.attrs...)
	merged = append(merged, attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: merged}
}

// UnmatchedError reports a delimiter without a partner at byte Offset of the
// scanned source.
type UnmatchedError struct {
	Offset int
}

func (e *UnmatchedError) Error() string {
	return "Unmatched block at position " + strconv.Itoa(e.Offset)
}

// bifError is a block-level failure. It never escapes a pass; the evaluator
// records it in the error list and the block yields no output.
type bifError struct {
	code int
	msg  string
	src  string // reported instead of the raw block when set
}

func (e *bifError) Error() string { return e.msg }

func fail(code int, msg string) error {
	return &bifError{code: code, msg: msg}
}

func failSrc(code int, msg, src string) error {
	return &bifError{code: code, msg: msg, src: src}
}

// loopGuard is the panic value raised when a pass creates more blocks than
// its ceiling allows.
type loopGuard struct {
	msg string
}
