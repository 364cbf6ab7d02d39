package tpl

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/value"
)

// Template holds a source text and the schema it is rendered against.
//
// A Template is not safe for concurrent use. Separate Templates may render in
// parallel.
type Template struct {
	raw    string
	file   string
	schema *value.Value
	logger log.Logger
	cached bool
	err    error

	// Results of the last pass.
	st      *state
	out     string
	body    string
	elapsed time.Duration
}

// New returns a Template with the default schema and no source.
func New(opts ...Option) (*Template, error) {
	t := &Template{
		schema: DefaultSchema(),
		cached: true,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.err != nil {
		return nil, t.err
	}

	return t, nil
}

// FromFile returns a Template reading its source from path, with schema
// merged over the default schema.
func FromFile(path string, schema *value.Value, opts ...Option) (*Template, error) {
	return New(append([]Option{WithFile(path), WithSchema(schema)}, opts...)...)
}

// SetSource replaces the source text. The current file is cleared.
func (t *Template) SetSource(source string) {
	t.raw = source
	t.file = ""
}

// SetFile reads the source text from path. Blocks that resolve paths with a
// leading "#" resolve them against the directory of path.
func (t *Template) SetFile(path string) error {
	data, err := readFile(path)
	if err != nil {
		return ErrReadSource.Wrap(err).With(slog.String("path", path))
	}

	t.raw = string(data)
	t.file = path

	return nil
}

// Source returns the source text.
func (t *Template) Source() string { return t.raw }

// File returns the path the source was read from, if any.
func (t *Template) File() string { return t.file }

// Schema returns the merged schema. Changes to it affect later passes.
func (t *Template) Schema() *value.Value { return t.schema }

// SetSchema replaces the whole schema. Unlike [Template.MergeSchema] the
// defaults are not kept.
func (t *Template) SetSchema(schema *value.Value) error {
	if schema.Kind() != value.KindObject {
		return ErrSchemaType.With(slog.String("kind", schema.Kind().String()))
	}

	t.schema = schema

	return nil
}

// MergeSchema deep-merges schema over the current schema. A nil schema is
// ignored.
func (t *Template) MergeSchema(schema *value.Value) error {
	if schema == nil {
		return nil
	}

	if schema.Kind() != value.KindObject {
		return ErrSchemaType.With(slog.String("kind", schema.Kind().String()))
	}

	t.schema.Merge(schema)

	return nil
}

// MergeSchemaJSON decodes a JSON object and merges it over the current
// schema.
func (t *Template) MergeSchemaJSON(data []byte) error {
	v, err := value.Parse(data)
	if err != nil {
		return ErrDecodeSchema.Wrap(err).With(slog.String("format", "json"))
	}

	return t.MergeSchema(v)
}

// MergeSchemaYAML decodes a YAML mapping and merges it over the current
// schema.
func (t *Template) MergeSchemaYAML(data []byte) error {
	v, err := value.ParseYAML(data)
	if err != nil {
		return ErrDecodeSchema.Wrap(err).With(slog.String("format", "yaml"))
	}

	return t.MergeSchema(v)
}

// MergeSchemaFile reads a schema file and merges it over the current schema.
// Files ending in .yaml or .yml are decoded as YAML, all others as JSON.
func (t *Template) MergeSchemaFile(path string) error {
	data, err := readFile(path)
	if err != nil {
		return ErrReadSchema.Wrap(err).With(slog.String("path", path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = t.MergeSchemaYAML(data)
	default:
		err = t.MergeSchemaJSON(data)
	}

	var e *Error
	if errors.As(err, &e) {
		return e.With(slog.String("path", path))
	}

	return err
}

// Render evaluates the source and returns the post-processed output. When
// the pass ends with an error status (400 to 599) the output is the status
// line instead, and redirects yield the status line and target URL.
//
// Canceling ctx stops the pass with status 500.
func (t *Template) Render(ctx context.Context) string {
	start := time.Now()

	root := t.begin(ctx)
	t.body = t.run(ctx, root)
	t.finish(ctx)

	t.elapsed = time.Since(start)

	t.logger.TraceContext(ctx, "render complete",
		slog.String("status", t.st.status),
		slog.Uint64("bifs", t.st.count),
		slog.Bool("error", t.st.hasError),
		slog.Duration("elapsed", t.elapsed),
	)

	return t.out
}

// begin prepares a fresh pass and returns the root frame.
func (t *Template) begin(ctx context.Context) frame {
	t.st = newState(t.schema.Clone(), t.logger, t.cached)
	st := t.st

	st.applyWorkingDir(ctx)

	st.schema.Set(keyMoveTo, value.Object())
	st.schema.Set(keyError, value.Array())
	st.schema.Set(keyIndir, value.Object())

	st.scopes.reset(st.schema.Field(keyInherit).Clone())

	root := frame{scope: 1, file: t.file}

	if t.file != "" {
		root.dir = filepath.Dir(t.file)
	} else {
		root.dir = st.data().Text("CONTEXT->working_dir")
	}

	t.logger.TraceContext(ctx, "render start",
		slog.String("file", t.file),
		slog.String("lang", st.lang),
		slog.Uint64("ceiling", st.ceiling),
	)

	return root
}

// run parses the source in the root parser. A pass that exceeds its block
// ceiling is stopped here.
func (t *Template) run(ctx context.Context, root frame) (out string) {
	src := t.raw
	if strings.Contains(t.st.comments, "remove") {
		src = RemoveComments(src)
	}

	p := newParser(t.st, root)

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		guard, ok := r.(loopGuard)
		if !ok {
			panic(r)
		}

		t.st.abort(ctx, guard.msg)
		out = ""
	}()

	defer p.release()

	return p.parse(ctx, src)
}

// finish applies the post-processing steps to the body of the pass.
func (t *Template) finish(ctx context.Context) {
	st := t.st
	body := t.body

	for _, entry := range st.schema.Field(keyMoveTo).Entries() {
		for tag, text := range entry.Entries() {
			body = moveTo(body, tag, text.Scalar())
		}
	}

	body = stripBackspace(body)
	body = strings.ReplaceAll(body, Unprintable, "")
	t.body = body

	switch {
	case isErrorStatus(st.status):
		t.out = st.status + " " + st.statusText
	case IsRedirect(st.status):
		t.out = st.status + " " + st.statusText + "\n" + st.statusParam
	case st.redirectJS != "":
		t.out = st.redirectJS
	default:
		t.out = body
	}

	if st.hasError {
		t.logger.TraceContext(ctx, "render errors",
			slog.Int("count", st.schema.Field(keyError).Len()),
		)
	}
}

// moveTo inserts text right after the first opening tag, or right before
// the first closing tag, of body. Tags may be given as "tag", "<tag",
// "<tag>", "/tag" or "</tag>". Body is unchanged when the tag is missing.
func moveTo(body, tag, text string) string {
	if !strings.HasPrefix(tag, "<") {
		tag = "<" + tag
	}

	tag = strings.TrimSuffix(tag, ">")

	pos := tagPosition(body, tag)
	if pos < 0 {
		return body
	}

	return body[:pos] + text + body[pos:]
}

func tagPosition(body, tag string) int {
	start := strings.Index(body, tag)
	if start < 0 {
		return -1
	}

	if strings.HasPrefix(tag, "</") {
		return start
	}

	end := strings.IndexByte(body[start:], '>')
	if end < 0 {
		return -1
	}

	return start + end + 1
}

// StatusCode returns the status of the last pass, "200" unless a block
// changed it or the pass failed.
func (t *Template) StatusCode() string {
	if t.st == nil {
		return "200"
	}

	return t.st.status
}

// StatusText returns the reason phrase of [Template.StatusCode].
func (t *Template) StatusText() string {
	if t.st == nil {
		return StatusText("200")
	}

	return t.st.statusText
}

// StatusParam returns the status parameter of the last pass, such as a
// redirect target or the reason of a fatal error.
func (t *Template) StatusParam() string {
	if t.st == nil {
		return ""
	}

	return t.st.statusParam
}

// HasError reports whether the last pass recorded any error.
func (t *Template) HasError() bool { return t.st != nil && t.st.hasError }

// Errors returns the errors recorded by the last pass, in order.
func (t *Template) Errors() []string {
	if t.st == nil {
		return nil
	}

	errs := t.st.schema.Field(keyError)
	list := make([]string, 0, errs.Len())

	for _, e := range errs.Entries() {
		list = append(list, e.Scalar())
	}

	return list
}

// Elapsed returns the duration of the last pass.
func (t *Template) Elapsed() time.Duration { return t.elapsed }

// Result is the outcome of a pass in a form suitable for encoding.
type Result struct {
	Status  string        `json:"status"            yaml:"status"`
	Text    string        `json:"text"              yaml:"text"`
	Param   string        `json:"param,omitempty"   yaml:"param,omitempty"`
	Output  string        `json:"output"            yaml:"output"`
	Body    string        `json:"body"              yaml:"body"`
	Errors  []string      `json:"errors,omitempty"  yaml:"errors,omitempty"`
	Elapsed time.Duration `json:"elapsed"           yaml:"elapsed"`
}

// Result returns the outcome of the last pass. Output is what Render
// returned; Body is the post-processed text before any status rewrite.
func (t *Template) Result() Result {
	return Result{
		Status:  t.StatusCode(),
		Text:    t.StatusText(),
		Param:   t.StatusParam(),
		Output:  t.out,
		Body:    t.body,
		Errors:  t.Errors(),
		Elapsed: t.elapsed,
	}
}

// String returns the result as YAML.
func (r Result) String() string {
	b, err := yaml.Marshal(r)
	if err != nil {
		return err.Error()
	}

	return string(b)
}
