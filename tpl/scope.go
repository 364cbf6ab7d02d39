package tpl

import (
	"slices"

	"github.com/ardnew/neutral/value"
)

// scopes is the per-pass arena of inherit snapshots. Entry ids are frame
// depths; id 0 is never populated, so a frame that has not yet claimed an
// entry of its own reads its parent's.
//
// Each entry has the shape of the schema's inherit region (locale, snippets,
// declare, params) plus the local data loaded by the data block.
type scopes struct {
	entries []*value.Value
}

// reset drops every entry and seeds id 1 with root.
func (s *scopes) reset(root *value.Value) {
	clear(s.entries)
	s.entries = s.entries[:0]
	s.set(1, root)
}

// get returns entry id, or nil when it does not exist.
func (s *scopes) get(id int) *value.Value {
	if id < 0 || id >= len(s.entries) {
		return nil
	}

	return s.entries[id]
}

// entry returns entry id for writing, creating an empty object if needed.
func (s *scopes) entry(id int) *value.Value {
	v := s.get(id)
	if v == nil {
		v = value.Object()
		s.set(id, v)
	}

	return v
}

func (s *scopes) set(id int, v *value.Value) {
	if id >= len(s.entries) {
		s.entries = slices.Grow(s.entries, id+1-len(s.entries))
		s.entries = s.entries[:id+1]
	}

	s.entries[id] = v
}

// copy replaces entry dst with a deep copy of entry src.
func (s *scopes) copy(dst, src int) {
	s.set(dst, s.get(src).Clone())
}

// release empties entry id if it holds anything.
func (s *scopes) release(id int) {
	if v := s.get(id); v != nil && !v.IsNull() {
		s.set(id, value.Object())
	}
}

// frame is the state a parser hands down to nested parsers. Children get a
// copy, so nothing a child does to its frame is visible to the parent except
// through the scope arena.
type frame struct {
	scope     int    // arena entry this frame reads from
	lastOut   bool   // previous sibling block produced output
	coalesced bool   // a block inside the enclosing coalesce produced output
	depth     int    // nesting depth; the arena id this frame may own
	alias     string // alias of the block whose body this frame parses
	file      string
	dir       string
	includes  *visited
	locales   *visited
	datas     *visited
}

// clone returns the frame for a nested parser. The visited lists are
// immutable, so the copy is constant time at any depth.
func (f frame) clone() frame { return f }

// visited is an immutable list of canonical file paths, newest first. A
// frame extends its own list without affecting the lists its parent and
// earlier siblings hold. The nil list is empty.
type visited struct {
	path string
	next *visited
}

// add returns the list with path in front.
func (v *visited) add(path string) *visited {
	return &visited{path: path, next: v}
}

// has reports whether path is in the list.
func (v *visited) has(path string) bool {
	for ; v != nil; v = v.next {
		if v.path == path {
			return true
		}
	}

	return false
}

// ensureScope makes the frame read from, and write to, the arena entry it
// owns, copying the entry it read from until now. It is idempotent.
func (f *frame) ensureScope(s *scopes) int {
	id := max(f.depth, 1)
	if f.scope != id {
		s.copy(id, f.scope)
	}

	f.scope = id

	return id
}

// release empties the entry this frame owns, if it claimed one.
func (f *frame) release(s *scopes) {
	if f.scope == f.depth {
		s.release(f.scope)
	}
}
