package tpl

// Match reports whether text matches pattern as a whole.
//
// Pattern syntax:
//
//	.   zero or one character
//	?   exactly one character
//	*   zero or more characters
//	~   end of text; the rest of the pattern is ignored
//	\X  the literal character X
//
// Every other character matches itself. An empty pattern matches only empty
// text. Matching is over runes, not bytes.
func Match(text, pattern string) bool {
	return match([]rune(text), []rune(pattern))
}

func match(text, pattern []rune) bool {
	if len(pattern) == 0 {
		return len(text) == 0
	}

	rest := pattern[1:]

	switch pattern[0] {
	case '\\':
		if len(rest) == 0 || len(text) == 0 {
			return false
		}

		return text[0] == rest[0] && match(text[1:], rest[1:])

	case '.':
		return match(text, rest) || (len(text) > 0 && match(text[1:], rest))

	case '?':
		return len(text) > 0 && match(text[1:], rest)

	case '*':
		return match(text, rest) || (len(text) > 0 && match(text[1:], pattern))

	case '~':
		return len(text) == 0

	default:
		return len(text) > 0 && text[0] == pattern[0] && match(text[1:], rest)
	}
}
