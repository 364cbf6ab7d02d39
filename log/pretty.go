package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles render through a
// renderer bound to the output, so colours are only emitted to terminals.
type palette struct {
	key, str, num, flag, dur, when, null lipgloss.Style
	trace, debug, info, warn, err        lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		flag:  fg("2"),
		dur:   fg("5"),
		when:  fg("4"),
		null:  fg("8").Italic(true),
		trace: fg("8").Bold(true),
		debug: fg("4").Bold(true),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes one coloured line per record in text format, or an
// indented object per record in JSON format.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	mu     *sync.Mutex
	w      io.Writer
	pal    *palette
	prefix string
	attrs  []slog.Attr
}

func newPrettyHandler(w io.Writer, format Format, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		mu:     &sync.Mutex{},
		w:      w,
		pal:    newPalette(w),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// qualify flattens groups into dotted keys under the handler's prefix.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	var walk func(prefix string, attrs []slog.Attr)

	walk = func(prefix string, attrs []slog.Attr) {
		for _, a := range attrs {
			a.Value = a.Value.Resolve()

			if a.Value.Kind() == slog.KindGroup {
				group := a.Value.Group()
				if a.Key != "" {
					walk(prefix+a.Key+".", group)
				} else {
					walk(prefix, group)
				}

				continue
			}

			if a.Equal(slog.Attr{}) {
				continue
			}

			a.Key = prefix + a.Key
			out = append(out, a)
		}
	}

	walk(h.prefix, attrs)

	return out
}

func (h *prettyHandler) builtin(a slog.Attr) (slog.Attr, bool) {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	return a, !a.Equal(slog.Attr{})
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if a, ok := h.builtin(slog.Time(slog.TimeKey, r.Time)); ok {
			fields = append(fields, a)
		}
	}

	levelAt := len(fields)

	if a, ok := h.builtin(slog.Any(slog.LevelKey, r.Level)); ok {
		fields = append(fields, a)
	} else {
		levelAt = -1
	}

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			pos := src.File + ":" + strconv.Itoa(src.Line)
			if a, ok := h.builtin(slog.String(slog.SourceKey, pos)); ok {
				fields = append(fields, a)
			}
		}
	}

	if a, ok := h.builtin(slog.String(slog.MessageKey, r.Message)); ok {
		fields = append(fields, a)
	}

	fields = append(fields, h.attrs...)

	recs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recs = append(recs, a)

		return true
	})

	fields = append(fields, h.qualify(recs)...)

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeJSON(&buf, fields, levelAt, r.Level)
	} else {
		h.writeText(&buf, fields, levelAt, r.Level)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, fields []slog.Attr, levelAt int, level slog.Level) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(a.Key + "="))

		if i == levelAt {
			buf.WriteString(h.pal.level(level).Render(a.Value.String()))

			continue
		}

		buf.WriteString(h.styled(a.Value, a.Value.String()))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, fields []slog.Attr, levelAt int, level slog.Level) {
	buf.WriteString("{\n")

	for i, a := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.pal.key.Render(quote(a.Key)))
		buf.WriteString(": ")

		if i == levelAt {
			buf.WriteString(h.pal.level(level).Render(quote(a.Value.String())))

			continue
		}

		buf.WriteString(h.styled(a.Value, jsonText(a.Value)))
	}

	buf.WriteString("\n}\n")
}

func (h *prettyHandler) styled(v slog.Value, text string) string {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.pal.num.Render(text)
	case slog.KindBool:
		return h.pal.flag.Render(text)
	case slog.KindDuration:
		return h.pal.dur.Render(text)
	case slog.KindTime:
		return h.pal.when.Render(text)
	case slog.KindAny:
		if v.Any() == nil {
			return h.pal.null.Render(text)
		}
	}

	return h.pal.str.Render(text)
}

func jsonText(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quote(v.String())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return quote(v.Duration().String())
	case slog.KindTime:
		return quote(v.Time().Format(time.RFC3339Nano))
	}

	x := v.Any()

	if err, ok := x.(error); ok {
		return quote(err.Error())
	}

	if b, err := json.Marshal(x); err == nil {
		return string(b)
	}

	return quote(fmt.Sprint(x))
}

func quote(s string) string {
	b, _ := json.Marshal(s)

	return string(b)
}
