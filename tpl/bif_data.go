package tpl

import (
	"context"
	"strconv"
	"strings"

	"github.com/ardnew/neutral/value"
)

// {:;name:} prints a data value; {:;:} prints nothing on purpose.
func evalVar(ctx context.Context, b *bif) error {
	if b.src == "" {
		b.alias = "unprintable"
		b.out = Unprintable

		return nil
	}

	b.alias = "var"

	name := b.src
	if strings.Contains(name, BifOpen) {
		if !containsAllow(name) {
			return failSrc(103, "insecure varname", b.src)
		}

		name = b.parseChild(ctx, name, b.has(modScope))
	}

	b.out = b.getData(name)

	return nil
}

// {:allow; {:flg; partial casein replace noerror :} list >> text :} prints
// text when it matches a word of the declared list.
func evalAllow(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	words := strings.Fields(b.scope().Field(keyDeclare).Text(b.params))
	if len(words) == 0 {
		if b.flag("noerror") {
			return nil
		}

		return fail(105, b.params+" declared is empty")
	}

	b.code = b.parseChild(ctx, b.code, b.has(modScope))

	var (
		found    string
		wrap     = b.flag("partial") || b.flag("replace")
		casein   = b.flag("casein")
		haystack = b.code
	)

	if casein {
		haystack = strings.ToLower(haystack)
	}

	for _, word := range words {
		pattern := word
		if wrap {
			pattern = "*" + pattern + "*"
		}

		if casein {
			pattern = strings.ToLower(pattern)
		}

		if Match(haystack, pattern) {
			found = word

			break
		}
	}

	if (found != "") == b.has(modNegate) {
		return nil
	}

	if b.flag("replace") {
		b.out = strings.NewReplacer("~", "", "*", "", "?", "", ".", "").Replace(found)
	} else {
		b.out = b.code
	}

	return nil
}

func isFilled(v *value.Value, key string) bool { return !v.IsEmpty(key) }

// evalPredicate builds the array, bool, defined, and filled blocks: the
// code is printed when test holds for the data key in params.
func evalPredicate(
	test func(*value.Value, string) bool,
) func(context.Context, *bif) error {
	return func(ctx context.Context, b *bif) error {
		b.extract(ctx, true)

		if test(b.st.data(), b.params) != b.has(modNegate) {
			b.out = b.parseIf(ctx, b.code, b.has(modScope))
		}

		return nil
	}
}

// {:count; name >> 10 :} sets a counter; {:count; name :} prints it and
// increments it.
func evalCount(ctx context.Context, b *bif) error {
	set := b.extract(ctx, true)
	b.code = b.parseIf(ctx, b.code, false)

	if set {
		n, err := strconv.ParseInt(b.code, 10, 32)
		if err != nil {
			return fail(111, "argument is not a number")
		}

		b.st.setData(b.params, value.String(strconv.FormatInt(n, 10)))

		return nil
	}

	n, err := strconv.ParseInt(b.getData(b.code), 10, 32)
	if err != nil {
		return fail(112, "argument is not a number")
	}

	b.st.setData(b.code, value.String(strconv.FormatInt(n+1, 10)))
	b.out = strconv.FormatInt(n, 10)

	return nil
}

// binding saves a flat data name so it can be restored after a loop.
type binding struct {
	name string
	prev *value.Value
}

func (st *state) save(names ...string) []binding {
	saved := make([]binding, len(names))
	for i, name := range names {
		saved[i] = binding{name: name, prev: st.data().Field(name)}
	}

	return saved
}

func (st *state) restore(saved []binding) {
	for i := len(saved) - 1; i >= 0; i-- {
		if saved[i].prev == nil {
			st.data().Delete(saved[i].name)
		} else {
			st.setData(saved[i].name, saved[i].prev)
		}
	}
}

// {:each; list key val >> body :} evaluates body once per entry of list
// with key and val bound in data.
func evalEach(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	args := strings.Fields(b.params)

	switch len(args) {
	case 0:
		return fail(122, "arguments not found")
	case 1:
		return fail(123, "arguments 'key' not found")
	case 2:
		return fail(124, "arguments 'value' not found")
	}

	list, keyName, valName := args[0], args[1], args[2]

	store := b.st.data()
	if local, ok := strings.CutPrefix(list, LocalPrefix); ok {
		list = local
		store = b.scope().Field(keyData)
	}

	node, ok := store.Lookup(list)
	if !ok || (node.Kind() != value.KindObject && node.Kind() != value.KindArray) {
		return nil
	}

	// The body may rebind names inside the iterated tree.
	node = node.Clone()
	saved := b.st.save(keyName, valName)

	var out strings.Builder

	for k, v := range node.Entries() {
		b.st.setData(keyName, value.String(k))
		b.st.setData(valName, v.Clone())
		out.WriteString(b.parseChild(ctx, b.code, false))
	}

	b.st.restore(saved)
	b.out = out.String()

	return nil
}

// {:eval; expr >> body :} evaluates body with __eval__ bound to expr when
// expr is not empty.
func evalEval(ctx context.Context, b *bif) error {
	b.extract(ctx, false)
	b.params = b.parseIf(ctx, b.params, b.has(modScope))

	if (b.params != "") == b.has(modNegate) {
		return nil
	}

	if strings.Contains(b.code, BifOpen) {
		saved := b.st.save(evalBinding)
		b.st.setData(evalBinding, value.String(b.params))
		b.code = b.parseChild(ctx, b.code, b.has(modScope))
		b.st.restore(saved)
	}

	b.out = b.code

	return nil
}

// {:for; name 1..10 >> body :} evaluates body once per integer of the
// inclusive range, counting down when from is greater than to.
func evalFor(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	args := strings.Fields(strings.ReplaceAll(b.params, "..", " "))
	if len(args) == 0 {
		return fail(131, "arguments not found")
	}

	if len(args) == 1 {
		return fail(133, "arguments 'from' and 'to' not found")
	}

	from, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fail(132, "argument is not a number")
	}

	if len(args) == 2 {
		return fail(135, "arguments 'to' not found")
	}

	to, err := strconv.ParseInt(args[2], 10, 32)
	if err != nil {
		return fail(134, "argument is not a number")
	}

	step := int64(1)
	if from > to {
		step = -1
	}

	name := args[0]
	saved := b.st.save(name)

	var out strings.Builder

	for i := from; ; i += step {
		b.st.setData(name, value.String(strconv.FormatInt(i, 10)))
		out.WriteString(b.parseChild(ctx, b.code, b.has(modScope)))

		if i == to || ctx.Err() != nil {
			break
		}
	}

	b.st.restore(saved)
	b.out = out.String()

	return nil
}

// {:trans; text :} translates text to the active language.
func evalTrans(ctx context.Context, b *bif) error {
	b.src = b.parseIf(ctx, b.src, b.has(modScope))

	if t := b.getTrans(b.src); t != "" {
		b.out = t
	} else if !b.has(modNegate) {
		b.out = b.src
	}

	return nil
}

// {:lang; :} prints the active language.
func evalLang(_ context.Context, b *bif) error {
	b.out = b.st.lang

	return nil
}
