package log

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"
)

// Level is the severity of a record.
type Level slog.Level

// Severity levels. LevelTrace is below every slog level.
const (
	LevelTrace = Level(-8)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level of a new Logger.
const DefaultLevel = LevelInfo

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// Levels yields the names of the defined levels, lowest first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range levelNames {
			if !yield(l.name) {
				return
			}
		}
	}
}

// String returns the lowercase level name. Levels between the named ones
// are printed as an offset from the next lower name, like "info+2".
func (l Level) String() string {
	for i := len(levelNames) - 1; i >= 0; i-- {
		n := levelNames[i]
		if l == n.level {
			return n.name
		}

		if l > n.level {
			return fmt.Sprintf("%s%+d", n.name, int(l-n.level))
		}
	}

	return fmt.Sprintf("%s%+d", levelNames[0].name, int(l-LevelTrace))
}

// ParseLevel returns the level named by s, ignoring case. Besides the
// names yielded by [Levels] it accepts the slog forms such as "INFO+2".
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)

	if strings.EqualFold(s, "trace") {
		return LevelTrace, nil
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel, fmt.Errorf("invalid log level %q", s)
	}

	return Level(sl), nil
}

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}

	*l = v

	return nil
}

// Format selects the record encoding.
type Format int

// Record encodings.
const (
	FormatJSON Format = iota
	FormatText
)

// DefaultFormat is the format of a new Logger.
const DefaultFormat = FormatText

var formatNames = [...]string{FormatJSON: "json", FormatText: "text"}

// Formats yields the names of the defined formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range formatNames {
			if !yield(name) {
				return
			}
		}
	}
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}

	return formatNames[f]
}

// ParseFormat returns the format named by s, ignoring case and surrounding
// space.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	for f, n := range formatNames {
		if n == name {
			return Format(f), nil
		}
	}

	return DefaultFormat, fmt.Errorf("invalid log format %q", s)
}

// MarshalText implements [encoding.TextMarshaler].
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}

	*f = v

	return nil
}
