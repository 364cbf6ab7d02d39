package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/neutral/tpl"
	"github.com/ardnew/neutral/value"
)

const (
	blockOpen  = "{:"
	blockClose = ":}"
	modifiers  = "^!+&"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "schema", "errors", "result", "set", "lang", "load", "render",
	"edit", "clear", "quit",
}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. Hyphens and underscores are part of data keys (__test-nts), so
// neither is a boundary.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n',
		'{', '}', ':', ';',
		'>', '<', '^', '!', '+', '&',
		',', '(', ')', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. An empty word means the cursor sits on a
// boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the data key chain leading up to the word starting at
// wordStart. For "{:;a->b->c" with the word "c" it returns "a->b". Top-level
// words yield "".
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]

	var segs []string

	for strings.HasSuffix(prefix, value.ArrayToken) {
		prefix = strings.TrimSuffix(prefix, value.ArrayToken)

		seg, start, _ := wordBounds(prefix, len(prefix))
		if seg == "" {
			break
		}

		segs = append(segs, seg)
		prefix = prefix[:start]
	}

	slices.Reverse(segs)

	return strings.Join(segs, value.ArrayToken)
}

// blockContext reports where offset falls relative to the innermost open
// block of input. name is the block name typed so far when offset is inside
// a block; atName is true while the cursor is still in the name position
// (after the open delimiter and any modifiers, before the ';').
func blockContext(input string, offset int) (name string, inBlock, atName bool) {
	head := input[:offset]

	var open []int

	for i := 0; i+1 < len(head); i++ {
		switch head[i : i+2] {
		case blockOpen:
			open = append(open, i)
			i++

		case blockClose:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}

			i++
		}
	}

	if len(open) == 0 {
		return "", false, false
	}

	rest := head[open[len(open)-1]+len(blockOpen):]
	bare := strings.TrimLeft(rest, modifiers)

	before, _, found := strings.Cut(bare, ";")
	if !found {
		return bare, true, !strings.ContainsAny(bare, " \t\n")
	}

	return strings.TrimSpace(before), true, false
}

// dataCandidates returns the keys directly under parent in the schema's
// data object.
func dataCandidates(schema *value.Value, parent string) []string {
	node := schema.Field("data")

	if parent != "" {
		var ok bool
		if node, ok = node.Lookup(parent); !ok {
			return nil
		}
	}

	var keys []string

	for k := range node.Entries() {
		keys = append(keys, k)
	}

	return keys
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the word boundaries.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	var browse bool

	if m.mode == modeCtrl {
		// Only the command word completes.
		if word == "" || strings.TrimSpace(input[:wordStart]) != "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		_, inBlock, atName := blockContext(input, wordStart)

		switch {
		case !inBlock:
			return nil, nil, wordStart, wordEnd

		case atName:
			candidates = tpl.Names()
			browse = true

		default:
			parent := parentPath(input, wordStart)
			candidates = dataCandidates(m.tp.Schema(), parent)
			browse = parent != ""
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if !browse {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within the given terminal width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
