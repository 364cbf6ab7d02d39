// Package log is a small structured logger built on [log/slog].
//
// A [Logger] is an immutable value. Options are applied when it is created
// with [New] or derived with [Logger.Wrap], and [Logger.With] attaches
// attributes to every record. The zero Logger discards everything, so
// packages can hold one without checking for nil:
//
//	var l log.Logger
//	l.Info("dropped")
//
//	l = log.New(os.Stderr, log.WithLevel(log.LevelTrace), log.WithPretty(true))
//	l.TraceContext(ctx, "render start", slog.String("file", path))
//
// Besides the slog levels, [LevelTrace] sits below [LevelDebug] for the
// per-block chatter of the template engine.
//
// The package also keeps a process-wide default logger. The command line
// configures it once with [Config], and the package-level functions such
// as [InfoContext] write through it.
//
// Records are written as JSON or logfmt-style text. With [WithPretty] the
// text and JSON forms are coloured with lipgloss styles for terminals; the
// colours are dropped when the output is not a terminal.
package log
