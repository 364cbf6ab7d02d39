package tpl

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/neutral/value"
)

// modifier is a set of block modifiers.
type modifier uint8

const (
	modFilter modifier = 1 << iota
	modNegate
	modUpline
	modScope
)

// handler evaluates one block kind.
type handler struct {
	run func(ctx context.Context, b *bif) error
	// illegal lists the modifiers the block rejects with code.
	illegal modifier
	code    int
}

var handlers map[string]handler

func init() {
	all := modFilter | modNegate | modScope

	handlers = map[string]handler{
		"":         {evalVar, all, 102},
		"allow":    {evalAllow, modFilter | modScope, 104},
		"array":    {evalPredicate((*value.Value).IsArray), modFilter, 106},
		"bool":     {evalPredicate((*value.Value).IsTruthy), modFilter, 107},
		"coalesce": {evalCoalesce, modFilter | modNegate, 108},
		"code":     {evalCode, modFilter | modNegate, 109},
		"count":    {evalCount, all, 110},
		"data":     {evalData, modFilter | modScope, 113},
		"date":     {evalDate, all, 117},
		"declare":  {evalDeclare, all, 118},
		"defined":  {evalPredicate((*value.Value).IsDefined), modFilter, 120},
		"each":     {evalEach, all, 121},
		"else":     {evalElse, modFilter, 125},
		"eval":     {evalEval, modFilter, 126},
		"exit":     {evalExit, modFilter | modScope, 127},
		"filled":   {evalPredicate(isFilled), modFilter, 128},
		"flg":      {evalFlg, all | modUpline, 129},
		"for":      {evalFor, all, 130},
		"hash":     {evalHash, all, 136},
		"include":  {evalInclude, modFilter | modScope, 137},
		"lang":     {evalLang, all, 140},
		"locale":   {evalLocale, modFilter | modScope, 141},
		"moveto":   {evalMoveTo, all, 146},
		"neutral":  {evalNeutral, all, 147},
		"param":    {evalParam, all, 148},
		"rand":     {evalRand, all, 150},
		"redirect": {evalRedirect, all, 156},
		"replace":  {evalReplace, all, 166},
		"snippet":  {evalSnippet, all, 170},
		"trans":    {evalTrans, modFilter | modScope, 172},
	}
}

// Names returns the names of the known block kinds in sorted order. The
// unnamed variable block is omitted.
func Names() []string {
	names := make([]string, 0, len(handlers))

	for name := range handlers {
		if name != "" {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// bif is one block being evaluated.
type bif struct {
	st *state
	fr *frame // frame of the parser that found the block

	raw    string
	name   string
	alias  string
	src    string
	params string
	code   string
	flags  string
	mods   modifier

	// file and dir override the current file and directory of child
	// parsers, once a file block has resolved its target.
	file string
	dir  string

	out string
}

func newBif(st *state, fr *frame, raw string) *bif {
	st.tick()

	return &bif{st: st, fr: fr, raw: raw}
}

func (b *bif) has(m modifier) bool { return b.mods&m != 0 }

// eval splits the block into its parts, runs its handler, and returns the
// trimmed output.
func (b *bif) eval(ctx context.Context) string {
	inner := b.raw
	if strings.HasPrefix(inner, BifOpen) && strings.HasSuffix(inner, BifClose) &&
		len(inner) >= len(BifOpen)+len(BifClose) {
		inner = inner[len(BifOpen) : len(inner)-len(BifClose)]
	}

	name, src, ok := strings.Cut(inner, BifName)
	if !ok {
		b.st.recordError(ctx, "The delimiter was not found: "+b.raw)

		return ""
	}

	b.name = b.stripModifiers(name)
	b.alias = b.name

	if b.name == "neutral" {
		b.src = src
	} else {
		b.src = strings.TrimSpace(src)
	}

	h, known := handlers[b.name]
	if !known {
		h = handler{run: evalUnknown}
	}

	var err error
	if b.mods&h.illegal != 0 {
		err = fail(h.code, "modifier not allowed")
	} else {
		err = h.run(ctx, b)
	}

	if err != nil {
		b.report(ctx, err)
		b.out = ""
	}

	b.fr.lastOut = b.out != ""
	b.fr.coalesced = b.fr.lastOut

	if b.has(modUpline) {
		b.out = Backspace + b.out
	}

	return strings.TrimSpace(b.out)
}

// stripModifiers records the leading modifier characters of name and
// returns the rest.
func (b *bif) stripModifiers(name string) string {
	for i := range len(name) {
		switch name[i] {
		case BifModFilter:
			b.mods |= modFilter
		case BifModNegate:
			b.mods |= modNegate
		case BifModUpline:
			b.mods |= modUpline
		case BifModScope:
			b.mods |= modScope
		default:
			return name[i:]
		}
	}

	return ""
}

func (b *bif) report(ctx context.Context, err error) {
	code, src := 0, b.raw

	var be *bifError
	if errors.As(err, &be) {
		code = be.code

		if be.src != "" {
			src = be.src
		}
	}

	b.st.recordError(ctx,
		"Error "+strconv.Itoa(code)+" ("+b.alias+") "+err.Error()+"  src: "+src,
	)
}

// parseChild evaluates src in a nested parser. With scope set, the nested
// parser's scope entry replaces this block's own afterwards, so definitions
// made inside become visible to the following sibling blocks.
func (b *bif) parseChild(ctx context.Context, src string, scope bool) string {
	child := b.fr.clone()
	child.alias = b.alias

	if b.file != "" {
		child.file = b.file
	}

	if b.dir != "" {
		child.dir = b.dir
	}

	if scope {
		b.fr.ensureScope(&b.st.scopes)
	}

	p := newParser(b.st, child)
	out := p.parse(ctx, src)

	if scope {
		b.st.scopes.copy(b.fr.scope, p.fr.scope)
	}

	p.release()

	return out
}

// parseIf evaluates src in a nested parser only when it contains a block.
func (b *bif) parseIf(ctx context.Context, src string, scope bool) string {
	if !strings.Contains(src, BifOpen) {
		return src
	}

	return b.parseChild(ctx, src, scope)
}

// extract splits src into params and code at the first top-level ">>".
// Without a separator everything is code. With parse set, params holding
// blocks are evaluated and the flags they set are captured. It reports
// whether a separator was found.
func (b *bif) extract(ctx context.Context, parse bool) bool {
	pos := codePosition(b.src)
	if pos >= 0 {
		b.params = strings.TrimSpace(b.src[:pos])
		b.code = strings.TrimSpace(b.src[pos+len(BifCode):])
	} else {
		b.params = ""
		b.code = strings.TrimSpace(b.src)
	}

	if parse && strings.Contains(b.params, BifOpen) {
		b.st.flags = ""
		b.params = b.parseChild(ctx, b.params, false)
		b.flags = b.st.flags
	}

	return pos >= 0
}

func (b *bif) flag(name string) bool { return hasFlag(b.flags, name) }

// scope returns the arena entry the block reads from.
func (b *bif) scope() *value.Value { return b.st.scopes.get(b.fr.scope) }

// ownScope claims the frame's own arena entry and returns it for writing.
func (b *bif) ownScope() *value.Value {
	return b.st.scopes.entry(b.fr.ensureScope(&b.st.scopes))
}

// getData reads name from global data, or from scope-local data when name
// has the local prefix.
func (b *bif) getData(name string) string {
	if local, ok := strings.CutPrefix(name, LocalPrefix); ok {
		return b.scope().Field(keyData).Text(local)
	}

	return b.st.data().Text(name)
}

// getTrans looks text up in the active language of the scope locale.
func (b *bif) getTrans(text string) string {
	return b.scope().At(keyLocale, keyTrans, b.st.lang).Text(text)
}

// containsAllow reports whether src may be evaluated to produce a name. A
// lone block is refused unless it is guarded by allow.
func containsAllow(src string) bool {
	if strings.Contains(src, allowMarker) || strings.Contains(src, allowNegateMarker) {
		return true
	}

	src = RemoveComments(src)

	return !strings.HasPrefix(src, BifOpen) || !strings.HasSuffix(src, BifClose)
}
