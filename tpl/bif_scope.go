package tpl

import (
	"context"
	"strings"

	"github.com/ardnew/neutral/value"
)

// canDefine reports whether the block sits where snippets may be defined:
// in a snippet file or inside another snippet.
func (b *bif) canDefine() bool {
	return strings.Contains(b.fr.file, SnippetFileMarker) || b.fr.alias == "snippet"
}

// {:snippet; name >> body :} defines a snippet; {:snippet; name :} plays it.
// A static snippet is evaluated once, when defined.
func evalSnippet(ctx context.Context, b *bif) error {
	if b.extract(ctx, true) {
		if !b.canDefine() {
			return fail(171, "snippet cannot be set here")
		}

		if b.flag("static") {
			b.code = b.parseChild(ctx, b.code, b.has(modScope))
		}

		b.ownScope().SetPath(keySnippets).Set(b.params, value.String(b.code))

		return nil
	}

	name := b.parseIf(ctx, b.code, false)
	body := b.scope().Field(keySnippets).Text(name)

	// Snippets that define snippets keep those definitions for the
	// blocks that follow.
	b.out = b.parseIf(ctx, body, strings.Contains(body, "{:snippet;"))

	return nil
}

// {:declare; name >> words :} defines a word list for allow. Only snippet
// files may declare.
func evalDeclare(ctx context.Context, b *bif) error {
	b.extract(ctx, true)

	if !strings.Contains(b.fr.file, SnippetFileMarker) {
		return fail(119, "declare cannot be set here")
	}

	if strings.Contains(b.code, BifOpen) {
		b.code = strings.ReplaceAll(b.parseChild(ctx, b.code, false), Unprintable, "")
	}

	b.ownScope().SetPath(keyDeclare).Set(b.params, value.String(b.code))

	return nil
}

// {:param; name >> value :} sets a parameter inside a code block;
// {:param; name :} reads it.
func evalParam(ctx context.Context, b *bif) error {
	if b.extract(ctx, true) {
		if b.fr.alias != "code" {
			return fail(149, "param cannot be set here")
		}

		b.code = b.parseIf(ctx, b.code, b.has(modScope))
		b.ownScope().SetPath(keyParams).Set(b.params, value.String(b.code))

		return nil
	}

	b.code = b.parseIf(ctx, b.code, b.has(modScope))
	b.out = b.scope().Field(keyParams).Text(b.code)

	return nil
}
