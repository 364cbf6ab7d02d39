package tpl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/value"
)

// DefaultMaxBifs is the block ceiling used when the schema does not set a
// valid config.infinite_loop_max_bifs.
const DefaultMaxBifs = 555000

// state is the render context of one pass. It is created by
// [Template.Render] and handed to every parser and block of the pass.
type state struct {
	schema *value.Value
	scopes scopes
	logger log.Logger
	cached bool

	lang       string
	comments   string
	showErrors bool

	count   uint64
	ceiling uint64

	flags    string
	exit     bool
	hasError bool

	status      string
	statusText  string
	statusParam string
	redirectJS  string
}

func newState(schema *value.Value, logger log.Logger, cached bool) *state {
	ceiling, err := strconv.ParseUint(
		schema.Text("config->infinite_loop_max_bifs"), 10, 64,
	)
	if err != nil {
		ceiling = DefaultMaxBifs
	}

	return &state{
		schema:     schema,
		logger:     logger,
		cached:     cached,
		lang:       schema.Text("inherit->locale->current"),
		comments:   schema.Text("config->comments"),
		showErrors: schema.IsTruthy("config->error->show"),
		ceiling:    ceiling,
		status:     "200",
		statusText: StatusText("200"),
	}
}

// data returns the global data region.
func (st *state) data() *value.Value { return st.schema.Field(keyData) }

// setData binds a flat (unsplit) name in the global data region.
func (st *state) setData(name string, v *value.Value) {
	st.schema.SetPath(keyData).Set(name, v)
}

func (st *state) setStatus(code, param string) {
	st.status = code
	st.statusText = StatusText(code)
	st.statusParam = param
}

// recordError appends line to the pass error list.
func (st *state) recordError(ctx context.Context, line string) {
	line = flatten(line)

	errs := st.schema.Field(keyError)
	if errs.Kind() != value.KindArray {
		errs = value.Array()
		st.schema.Set(keyError, errs)
	}

	errs.Append(value.String(line))
	st.hasError = true

	if st.showErrors {
		st.logger.WarnContext(ctx, line)
	}
}

// unmatched handles a delimiter error found while parsing any block body.
func (st *state) unmatched(ctx context.Context, err error) {
	st.logger.TraceContext(ctx, "unmatched delimiter", slog.String("error", err.Error()))
	st.setStatus("500", err.Error())
	st.recordError(ctx, err.Error())
}

// abort stops the pass with an internal error.
func (st *state) abort(ctx context.Context, msg string) {
	st.logger.TraceContext(ctx, "render aborted", slog.String("reason", msg))
	st.setStatus("500", msg)
	st.recordError(ctx, msg)
	st.exit = true
}

// tick counts one more block and raises the loop guard past the ceiling.
func (st *state) tick() {
	st.count++

	if st.count > st.ceiling {
		panic(loopGuard{msg: fmt.Sprintf(
			"Infinite loop? %d bifs of %d max have been created.",
			st.ceiling, st.count,
		)})
	}
}

// applyWorkingDir changes the process working directory when the schema asks
// for it and publishes the effective directory as data.CONTEXT.working_dir.
func (st *state) applyWorkingDir(ctx context.Context) {
	dir := st.schema.Text("config->working_dir")

	if dir != "" {
		if err := os.Chdir(dir); err != nil {
			st.recordError(ctx, "The working directory cannot be set: "+err.Error())
		}
	} else if wd, err := os.Getwd(); err == nil {
		dir = wd
	}

	st.schema.SetPath(keyData, "CONTEXT").Set("working_dir", value.String(dir))
}

// parser evaluates one block body. Every nested body gets its own parser
// with a copy of the enclosing frame one level deeper.
type parser struct {
	st *state
	fr frame
}

func newParser(st *state, parent frame) *parser {
	fr := parent.clone()
	fr.depth++

	return &parser{st: st, fr: fr}
}

// parse expands every top-level block of src and returns the trimmed text.
func (p *parser) parse(ctx context.Context, src string) string {
	spans, err := extract(src, p.st.cached)
	if err != nil {
		p.st.unmatched(ctx, err)

		return ""
	}

	var (
		b       strings.Builder
		prevEnd int
	)

	b.Grow(len(src))

	for _, s := range spans {
		if p.st.exit {
			return b.String()
		}

		if err := ctx.Err(); err != nil {
			p.st.abort(ctx, "Render canceled: "+context.Cause(ctx).Error())

			return b.String()
		}

		b.WriteString(src[prevEnd:s.Start])

		short := p.fr.coalesced && p.fr.alias == "coalesce"

		if !short && !s.IsComment(src) {
			b.WriteString(newBif(p.st, &p.fr, s.In(src)).eval(ctx))
		}

		prevEnd = s.End
	}

	b.WriteString(src[prevEnd:])

	return strings.TrimSpace(b.String())
}

// release empties the arena entry owned by this parser's frame.
func (p *parser) release() { p.fr.release(&p.st.scopes) }
