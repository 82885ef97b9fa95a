package diag

import (
	"sort"

	"fortio.org/safecast"
)

// Bag is an append-only, capacity-limited diagnostic collector.
type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag returns a bag accepting at most max diagnostics.
// Values outside the uint16 range are clamped.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		if max < 0 {
			limit = 0
		} else {
			limit = ^uint16(0)
		}
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(limit), 64)),
		max:   limit,
	}
}

// Add appends d unless the limit was reached.
// It returns false when the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether at least one diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether at least one diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the diagnostics in insertion order.
// The slice aliases the bag's storage; do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends every diagnostic of other, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	total := len(b.items) + len(other.items)
	if total > int(b.max) {
		if n, err := safecast.Conv[uint16](total); err == nil {
			b.max = n
		} else {
			b.max = ^uint16(0)
		}
	}
	for _, d := range other.items {
		if !b.Add(d) {
			return
		}
	}
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	out := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			out = append(out, d)
		}
	}
	b.items = out
}

// Transform replaces every diagnostic with fn(d).
func (b *Bag) Transform(fn func(Diagnostic) Diagnostic) {
	for i := range b.items {
		b.items[i] = fn(b.items[i])
	}
}

// Sort orders diagnostics by file, start, end, severity (desc), code (asc).
// The driver never sorts: insertion order is declaration order, and callers
// that need positional order opt in.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
