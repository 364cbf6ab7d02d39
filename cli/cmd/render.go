package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/tpl"
)

// Render renders a template file.
type Render struct {
	SchemaFlags `embed:""`

	Output string `default:"text" enum:"text,json,yaml" help:"Output format: the rendered text, or the full result as JSON or YAML." short:"o"`
	Watch  bool   `help:"Render again whenever the template or a schema file changes."                                              short:"w"`

	File string `arg:"" default:"-" help:"Template file, or '-' for standard input." name:"file"`
}

// watchDelay coalesces the bursts of events editors produce on save.
const watchDelay = 100 * time.Millisecond

// Run executes the render command. It fails when the pass ends with an error
// status.
func (r *Render) Run(ctx context.Context) error {
	out := outputFrom(ctx)

	err := r.renderOnce(ctx, out)

	if !r.Watch {
		return err
	}

	if r.File == stdinPath {
		return ErrWatch.With(slog.String("reason", "cannot watch standard input"))
	}

	if err != nil {
		log.ErrorContext(ctx, "render failed", slog.Any("error", err))
	}

	return r.watch(ctx, out)
}

func (r *Render) renderOnce(ctx context.Context, w io.Writer) error {
	tp, err := r.newTemplate(ctx)
	if err != nil {
		return err
	}

	if err := loadSource(tp, r.File); err != nil {
		return err
	}

	text := tp.Render(ctx)

	log.DebugContext(ctx, "rendered",
		slog.String("file", r.File),
		slog.String("status", tp.StatusCode()),
		slog.Duration("elapsed", tp.Elapsed()),
	)

	for _, e := range tp.Errors() {
		log.WarnContext(ctx, e, slog.String("file", r.File))
	}

	if err := writeResult(w, r.Output, text, tp.Result()); err != nil {
		return err
	}

	return statusError(tp)
}

// writeResult prints text, or res encoded as format.
func writeResult(w io.Writer, format, text string, res tpl.Result) error {
	var (
		b   []byte
		err error
	)

	switch format {
	case "json":
		b, err = json.MarshalIndent(res, "", "  ")
		b = append(b, '\n')
	case "yaml":
		b, err = yaml.Marshal(res)
	default:
		_, err = io.WriteString(w, text)

		return err
	}

	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", format))
	}

	_, err = w.Write(b)

	return err
}

// statusError reports a pass that ended with a 4xx or 5xx status.
func statusError(tp *tpl.Template) error {
	code, err := strconv.Atoi(tp.StatusCode())
	if err != nil || code < 400 {
		return nil
	}

	return ErrRenderStatus.With(
		slog.Int("status", code),
		slog.String("text", tp.StatusText()),
		slog.String("param", tp.StatusParam()),
	)
}

// watch renders again after changes to the template or schema files until
// ctx is done. Directories are watched instead of files so that editors
// which replace a file on save are still seen.
func (r *Render) watch(ctx context.Context, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	files := make(map[string]bool)

	for _, path := range append([]string{r.File}, r.Schema...) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return ErrWatch.Wrap(err).With(slog.String("path", path))
		}

		files[abs] = true

		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("path", path))
		}
	}

	log.InfoContext(ctx, "watching", slog.Int("files", len(files)))

	timer := time.NewTimer(watchDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !files[filepath.Clean(ev.Name)] || !(ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create)) {
				continue
			}

			log.DebugContext(ctx, "change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(watchDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			return ErrWatch.Wrap(err)

		case <-timer.C:
			if err := r.renderOnce(ctx, w); err != nil {
				log.ErrorContext(ctx, "render failed", slog.Any("error", err))
			}

			fmt.Fprintln(w)
		}
	}
}
