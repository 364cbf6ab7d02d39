package tpl

import (
	"strings"
	"unicode"
)

var safeReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// encodeSafe escapes HTML special characters, including the quote and slash
// characters that can end an attribute or a tag.
func encodeSafe(s string) string { return safeReplacer.Replace(s) }

var bifSanitizer = strings.NewReplacer(
	BifOpen, BifSanitizeOpen,
	BifClose, BifSanitizeClose,
)

// sanitizeBifs replaces block delimiters so the text is never evaluated.
func sanitizeBifs(s string) string { return bifSanitizer.Replace(s) }

// stripBackspace removes every Backspace marker together with the
// whitespace immediately before it.
func stripBackspace(s string) string {
	if !strings.Contains(s, Backspace) {
		return s
	}

	parts := strings.Split(s, Backspace)

	var b strings.Builder

	b.Grow(len(s))

	for i, p := range parts {
		if i < len(parts)-1 {
			p = strings.TrimRightFunc(p, unicode.IsSpace)
		}

		b.WriteString(p)
	}

	return b.String()
}

// flatten replaces line breaks with spaces.
func flatten(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}

		return r
	}, s)
}

// hasFlag reports whether the shared flag string holds name.
func hasFlag(flags, name string) bool {
	return strings.Contains(flags, "|"+name+"|")
}

// makeFlags converts the body of a flg block to the shared flag string.
func makeFlags(code string) string {
	return strings.ReplaceAll(" "+code+" ", " ", "|")
}
