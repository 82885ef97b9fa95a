package bridge

import (
	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
)

// Resolve builds the IR node for decl. Diagnostics go to r in the order they
// are found: annotation findings first, then at most one representation
// finding. Resolving the same declaration twice yields equal output and
// equal diagnostics.
func Resolve(decl *Declaration, r diag.Reporter) ir.ResolvedStruct {
	if r == nil {
		r = diag.NopReporter{}
	}
	settings := Accumulate(decl, r)
	repr, _ := decideRepresentation(&reprInput{decl: decl, settings: &settings}, r)

	out := ir.ResolvedStruct{
		Ident:  decl.Ident,
		Repr:   repr,
		Fields: copyFields(decl.Fields),
		Shape:  decl.Shape,
	}
	if settings.ExposedName != nil {
		name := settings.ExposedName.Value
		out.ExposedName = &name
	}
	return out
}

func copyFields(raw []RawField) []ir.Field {
	out := make([]ir.Field, len(raw))
	for i, f := range raw {
		out[i].Type = f.Type
		if f.Name != nil {
			name := *f.Name
			out[i].Name = &name
		}
	}
	return out
}
