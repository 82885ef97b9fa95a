package manifest

import (
	"bytes"
	"slices"

	"fortio.org/safecast"

	"bridgeir/internal/source"
)

// locator recovers spans for decoded strings. Neither decoder reports
// positions, so values are found again in the raw content: declarations
// appear in file order, a declaration only searches its own text (from its
// start up to the next declaration's start), and inside one declaration every
// occurrence is consumed at most once so repeated values (two "u8" fields)
// map to distinct spans. Values spelled with escapes are not found and get no
// span.
type locator struct {
	file     *source.File
	starts   []int // start offset of each declaration; nil when unknown
	regionLo int   // first byte the current declaration may use
	regionHi int   // first byte past the current declaration
	lo, hi   int   // extent of what the current declaration consumed
	used     map[int]struct{}
}

// newLocator returns a locator for decls declarations starting at starts.
// Offsets that do not line up with the declarations are ignored and every
// declaration may then search to the end of the file.
func newLocator(f *source.File, starts []int, decls int) *locator {
	if len(starts) != decls || !slices.IsSorted(starts) {
		starts = nil
	}
	return &locator{file: f, starts: starts, used: make(map[int]struct{})}
}

// beginRegion starts declaration i after everything consumed so far.
func (l *locator) beginRegion(i int) {
	if l.hi > l.regionLo {
		l.regionLo = l.hi
	}
	l.regionHi = len(l.file.Content)
	if i < len(l.starts) {
		l.regionLo = max(l.regionLo, l.starts[i])
		if i+1 < len(l.starts) {
			l.regionHi = l.starts[i+1]
		}
	}
	l.regionHi = max(l.regionHi, l.regionLo)
	l.lo, l.hi = -1, l.regionLo
	clear(l.used)
}

// region is the span covering everything the current declaration consumed.
func (l *locator) region() source.Span {
	if l.lo < 0 {
		return source.Span{}
	}
	return l.span(l.lo, l.hi)
}

// findString returns the span of s's text inside the first unused quoted
// occurrence ("s" or 's') in the current region.
func (l *locator) findString(s string) source.Span {
	if s == "" || l.file == nil {
		return source.Span{}
	}
	best := -1
	for _, q := range []byte{'"', '\''} {
		needle := make([]byte, 0, len(s)+2)
		needle = append(needle, q)
		needle = append(needle, s...)
		needle = append(needle, q)
		if at := l.indexUnused(needle); at >= 0 && (best < 0 || at < best) {
			best = at
		}
	}
	if best < 0 {
		return source.Span{}
	}
	l.used[best] = struct{}{}
	start, end := best+1, best+1+len(s)
	if l.lo < 0 || best < l.lo {
		l.lo = best
	}
	if end+1 > l.hi {
		l.hi = end + 1
	}
	return l.span(start, end)
}

func (l *locator) indexUnused(needle []byte) int {
	content := l.file.Content[:l.regionHi]
	from := l.regionLo
	for from <= len(content) {
		i := bytes.Index(content[from:], needle)
		if i < 0 {
			return -1
		}
		at := from + i
		if _, taken := l.used[at]; !taken {
			return at
		}
		from = at + 1
	}
	return -1
}

func (l *locator) span(start, end int) source.Span {
	s, err1 := safecast.Conv[uint32](start)
	e, err2 := safecast.Conv[uint32](end)
	if err1 != nil || err2 != nil {
		return source.Span{}
	}
	return source.Span{File: l.file.ID, Start: s, End: e}
}
