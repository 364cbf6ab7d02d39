package tpl

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// spanCache memoises [Extract] results keyed by the xxh3 hash of the source.
// Templates re-parse the same block bodies many times per pass (loops,
// snippets, includes), and across passes when a Template is rendered again.
var spanCache sync.Map

// spanCacheLen counts the entries stored in spanCache since it was last
// cleared.
var spanCacheLen atomic.Int64

// MaxCachedSources bounds the span cache. Storing one more distinct source
// empties it first, so long-running watch and REPL sessions do not grow it
// without limit.
const MaxCachedSources = 4096

// extraction is the cached outcome for one source text.
type extraction struct {
	once  sync.Once
	src   string
	spans []Span
	err   error
}

// extract returns the top-level spans of src, consulting the process-wide
// cache when cached is true. The returned slice is owned by the caller.
func extract(src string, cached bool) ([]Span, error) {
	if !cached {
		return Extract(src)
	}

	key := xxh3.HashString128(src)

	v, ok := spanCache.Load(key)
	if !ok {
		if spanCacheLen.Add(1) > MaxCachedSources {
			ClearCache()
			spanCacheLen.Store(1)
		}

		var loaded bool
		if v, loaded = spanCache.LoadOrStore(key, &extraction{src: src}); loaded {
			spanCacheLen.Add(-1)
		}
	}

	e, ok := v.(*extraction)
	if !ok || e.src != src {
		// Hash collision or foreign entry: compute without caching.
		return Extract(src)
	}

	e.once.Do(func() {
		e.spans, e.err = Extract(src)
	})

	return slices.Clone(e.spans), e.err
}

// ClearCache removes every memoised extraction result.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	spanCache.Clear()
	spanCacheLen.Store(0)
}
