package tpl

import "strings"

// Span locates one top-level block in a source: Start is the offset of its
// opening delimiter and End the offset just past its closing delimiter.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the length of the block in bytes.
func (s Span) Len() int { return s.End - s.Start }

// In returns the block text from src.
func (s Span) In(src string) string { return src[s.Start:s.End] }

// IsComment reports whether the block in src is a comment.
func (s Span) IsComment(src string) bool {
	return strings.HasPrefix(src[s.Start:], BifCommentOpen)
}

// byteAt returns src[i], or zero when i is out of range.
func byteAt(src string, i int) byte {
	if i < 0 || i >= len(src) {
		return 0
	}

	return src[i]
}

// indexFrom returns the offset of the first sub in src at or after start, or
// -1.
func indexFrom(src, sub string, start int) int {
	if start < 0 || start >= len(src) {
		return -1
	}

	i := strings.Index(src[start:], sub)
	if i < 0 {
		return -1
	}

	return start + i
}

// commentEnd scans forward from pos, just past a comment opener, and returns
// the offset just past the matching comment closer. When no closer is found
// it returns the offset where scanning stopped. depth carries nesting across
// calls.
func commentEnd(src string, pos int, depth *int) (int, bool) {
	for {
		i := indexFrom(src, ":", pos)
		if i < 0 {
			return pos, false
		}

		pos = i

		prev, next := byteAt(src, pos-1), byteAt(src, pos+1)

		switch {
		case prev == '{' && next == '*':
			*depth++
			pos++

		case *depth > 0 && next == '}' && prev == '*':
			*depth--
			pos++

		case next == '}' && prev == '*':
			return pos + len(BifClose), true

		default:
			pos++
		}
	}
}

// Extract returns the top-level blocks of src in order.
//
// Comments are scanned first so anything inside them is ignored, and they
// nest independently of ordinary blocks. Any closing delimiter left outside
// every block is an error, reported as an *UnmatchedError carrying its
// offset. An opening delimiter that is never closed is not an error by
// itself; its text is treated as literal.
func Extract(src string) ([]Span, error) {
	var (
		spans   []Span
		curr    int
		nested  int
		comment int
	)

	for {
		open := indexFrom(src, BifOpen, curr)
		if open < 0 {
			break
		}

		curr = open + len(BifOpen)

		if byteAt(src, curr) == '*' {
			end, ok := commentEnd(src, curr, &comment)
			if ok {
				spans = append(spans, Span{Start: open, End: end})
			}

			curr = end

			continue
		}

		for {
			pos := indexFrom(src, ":", curr)
			if pos < 0 {
				break
			}

			curr = pos

			prev, next := byteAt(src, pos-1), byteAt(src, pos+1)

			if prev == '{' {
				nested++
				curr++

				continue
			}

			if nested > 0 && next == '}' {
				nested--
				curr++

				continue
			}

			if next == '}' {
				curr += len(BifClose)
				spans = append(spans, Span{Start: open, End: curr})

				break
			}

			curr++
		}
	}

	prevEnd := 0
	for _, s := range spans {
		if i := strings.Index(src[prevEnd:s.Start], BifClose); i >= 0 {
			return nil, &UnmatchedError{Offset: prevEnd + i}
		}

		prevEnd = s.End
	}

	rest := max(curr-1, 0)
	if i := indexFrom(src, BifClose, rest); i >= 0 {
		return nil, &UnmatchedError{Offset: i}
	}

	return spans, nil
}

// codePosition returns the offset of the first ">>" not nested inside a
// block, or -1.
func codePosition(src string) int {
	level := 0

	for i := 0; i+1 < len(src); i++ {
		switch src[i : i+2] {
		case BifOpen:
			level++
		case BifClose:
			level--
		case BifCode:
			if level == 0 {
				return i
			}
		}
	}

	return -1
}

// RemoveComments returns src with every top-level comment block removed.
func RemoveComments(src string) string {
	if !strings.Contains(src, BifCommentOpen) {
		return src
	}

	var (
		b       strings.Builder
		curr    int
		prevEnd int
		depth   int
	)

	b.Grow(len(src))

	for {
		open := indexFrom(src, BifCommentOpen, curr)
		if open < 0 {
			break
		}

		end, ok := commentEnd(src, open+len(BifOpen), &depth)
		if !ok {
			break
		}

		b.WriteString(src[prevEnd:open])
		prevEnd, curr = end, end
	}

	b.WriteString(src[prevEnd:])

	return b.String()
}
