// Package bridge resolves struct declarations into IR.
//
// Resolution never fails: every Declaration produces exactly one
// ir.ResolvedStruct, and every rule violation is handed to a diag.Reporter
// while a well-defined default is substituted. Declarations are independent
// of each other, so callers may resolve them concurrently as long as each
// goroutine reports into its own sink.
package bridge

import (
	"bridgeir/internal/annot"
	"bridgeir/internal/ir"
	"bridgeir/internal/source"
)

// RawField is a field as handed over by the syntax parser.
type RawField struct {
	Name *string
	Type string
	Span source.Span
}

// Declaration is the input description of one struct.
type Declaration struct {
	Ident     string
	IdentSpan source.Span
	Fields    []RawField
	// Shape is the syntax-level field kind and is not derived from Fields.
	Shape       ir.FieldsShape
	Annotations [][]annot.Pair
	Span        source.Span
}

// primarySpan is where diagnostics about the whole declaration point.
func (d *Declaration) primarySpan() source.Span {
	if !d.IdentSpan.IsZero() {
		return d.IdentSpan
	}
	return d.Span
}
