package tpl

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/neutral/value"
)

func evalUnknown(_ context.Context, b *bif) error {
	b.alias = "unknown"

	return fail(101, "unknown bif")
}

// {:coalesce; a b c :} prints the output of the first inner block that
// produces any.
func evalCoalesce(ctx context.Context, b *bif) error {
	b.fr.coalesced = false
	b.out = b.parseChild(ctx, b.src, b.has(modScope))

	return nil
}

// {:else; body :} prints body when the previous sibling printed nothing.
func evalElse(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	if b.fr.lastOut != b.has(modNegate) {
		return nil
	}

	b.out = b.parseIf(ctx, b.code, b.has(modScope))

	return nil
}

// {:code; {:flg; safe noparse encode_tags encode_tags_after encode_bifs :}
// >> body :} prints body, optionally escaped or left unevaluated.
func evalCode(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	if b.flag("safe") {
		b.code = sanitizeBifs(encodeSafe(b.code))
	} else {
		if b.flag("encode_tags") {
			b.code = encodeSafe(b.code)
		}

		if b.flag("encode_bifs") {
			b.code = sanitizeBifs(b.code)
		}

		if !b.flag("noparse") {
			b.code = b.parseIf(ctx, b.code, b.has(modScope))
		}
	}

	if b.flag("encode_tags_after") {
		b.code = encodeSafe(b.code)
	}

	b.out = b.code

	return nil
}

// {:flg; a b :} sets the flags read by the enclosing block.
func evalFlg(ctx context.Context, b *bif) error {
	b.extract(ctx, true)
	b.code = b.parseIf(ctx, b.code, false)
	b.st.flags = makeFlags(b.code)

	return nil
}

// {:exit; 404 :} or {:exit; 301 >> /url :} ends the pass with a status.
// The negated form only records the status.
func evalExit(ctx context.Context, b *bif) error {
	hasParams := b.extract(ctx, true)
	b.code = b.parseIf(ctx, b.code, false)

	code, param := "200", ""

	if hasParams {
		if b.params != "" {
			code = b.params
		}

		param = b.code
	} else if b.code != "" {
		code = b.code
	}

	b.st.setStatus(code, param)
	b.st.exit = !b.has(modNegate)

	return nil
}

// {:redirect; 301 >> /url :} or {:redirect; js:reload:top :} ends the pass
// with an HTTP or client-side redirect.
func evalRedirect(ctx context.Context, b *bif) error {
	hasParams := b.extract(ctx, true)
	b.code = b.parseIf(ctx, b.code, false)

	code := "200"

	if hasParams {
		switch b.params {
		case "301", "302", "303", "307", "308":
			if b.code == "" {
				return fail(redirectURLCode[b.params], "this redirection requires URL")
			}

			code = b.params

		case RedirectReloadTop:
			b.st.redirectJS = jsReloadTop

		case RedirectReloadSelf:
			b.st.redirectJS = jsReloadSelf

		case RedirectRedirectTop, RedirectRedirectSelf:
			if b.code == "" {
				return fail(redirectURLCode[b.params], "this redirection requires URL")
			}

			script := jsRedirectTop
			if b.params == RedirectRedirectSelf {
				script = jsRedirectSelf
			}

			b.st.redirectJS = jsRedirect(script, b.code)

		default:
			return fail(164, "status code not allowed")
		}
	} else {
		switch b.code {
		case RedirectReloadTop:
			b.st.redirectJS = jsReloadTop
		case RedirectReloadSelf:
			b.st.redirectJS = jsReloadSelf
		default:
			return fail(165, "redirect type not allowed")
		}
	}

	b.st.setStatus(code, b.code)
	b.st.exit = true

	return nil
}

var redirectURLCode = map[string]int{
	"301":                157,
	"302":                158,
	"303":                159,
	"307":                160,
	"308":                161,
	RedirectRedirectTop:  162,
	RedirectRedirectSelf: 163,
}

// {:moveto; <tag >> text :} moves text next to the first tag in the final
// output. The same text moves only once.
func evalMoveTo(ctx context.Context, b *bif) error {
	b.extract(ctx, true)
	b.code = b.parseIf(ctx, b.code, false)

	moves := b.st.schema.Field(keyMoveTo)
	if moves.Kind() != value.KindObject {
		moves = value.Object()
		b.st.schema.Set(keyMoveTo, moves)
	}

	moves.Set(md5Hex(b.code), value.Object().Set(b.params, value.String(b.code)))

	return nil
}

// {:neutral; text :} prints itself unevaluated.
func evalNeutral(_ context.Context, b *bif) error {
	b.out = BifOpen + b.name + BifName + b.src + BifClose

	return nil
}

// {:replace; /from/to/ >> text :} replaces every from in text with to. The
// first character of the arguments is the separator.
func evalReplace(ctx context.Context, b *bif) error {
	b.extract(ctx, false)

	sep, size := utf8.DecodeRuneInString(b.params)
	if size == 0 {
		return fail(167, "missing arguments")
	}

	parts := strings.Split(b.params, string(sep))
	if len(parts) < 2 {
		return fail(168, "arguments not found")
	}

	if len(parts) < 3 {
		return fail(169, "arguments not found")
	}

	from, to := parts[1], parts[2]
	to = b.parseIf(ctx, to, false)
	from = b.parseIf(ctx, from, false)
	b.code = b.parseIf(ctx, b.code, b.has(modScope))

	b.out = strings.ReplaceAll(b.code, from, to)

	return nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))

	return hex.EncodeToString(sum[:])
}
