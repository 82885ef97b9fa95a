// Package testkit holds checks shared by tests of packages that produce
// spans.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"bridgeir/internal/bridge"
	"bridgeir/internal/source"
)

// CheckDeclSpans verifies the span invariants of declarations loaded from sf:
// 1) every non-zero span points into sf and lies within its content
// 2) ident, field and annotation spans lie inside their declaration's span
// 3) declaration spans appear in file order and do not overlap
// Zero spans mark values that could not be located and are skipped.
func CheckDeclSpans(decls []bridge.Declaration, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}

	var prevEnd uint32
	for i := range decls {
		d := &decls[i]
		if err := checkSpan(d.Span, sf.ID, size); err != nil {
			return fmt.Errorf("%s: declaration: %w", d.Ident, err)
		}
		inner := []located{{"ident", d.IdentSpan}}
		for j, f := range d.Fields {
			inner = append(inner, located{fmt.Sprintf("field #%d", j+1), f.Span})
		}
		for _, group := range d.Annotations {
			for _, p := range group {
				inner = append(inner, located{"key " + p.Key, p.KeySpan}, located{"literal of " + p.Key, p.Value.Span})
			}
		}
		for _, in := range inner {
			if err := checkSpan(in.sp, sf.ID, size); err != nil {
				return fmt.Errorf("%s: %s: %w", d.Ident, in.what, err)
			}
			if in.sp.IsZero() || d.Span.IsZero() {
				continue
			}
			if in.sp.Start < d.Span.Start || in.sp.End > d.Span.End {
				return fmt.Errorf("%s: %s span %v outside declaration span %v", d.Ident, in.what, in.sp, d.Span)
			}
		}

		if d.Span.IsZero() {
			continue
		}
		if d.Span.Start < prevEnd {
			return fmt.Errorf("%s: declaration span %v overlaps the previous one", d.Ident, d.Span)
		}
		prevEnd = d.Span.End
	}
	return nil
}

type located struct {
	what string
	sp   source.Span
}

func checkSpan(sp source.Span, file source.FileID, size uint32) error {
	if sp.IsZero() {
		return nil
	}
	if sp.File != file {
		return fmt.Errorf("span %v points to file %d, want %d", sp, sp.File, file)
	}
	if sp.End < sp.Start {
		return fmt.Errorf("inverted span %v", sp)
	}
	if sp.End > size {
		return fmt.Errorf("span %v ends beyond content (%d bytes)", sp, size)
	}
	return nil
}
