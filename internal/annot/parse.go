// Package annot parses the key/value annotations attached to bridged
// declarations.
//
// Parsing is tolerant: every pair produces exactly one Result, and a pair
// that cannot be understood yields an Invalid result carrying the offending
// text instead of aborting the group. The resolver decides what to report.
package annot

import (
	"fmt"

	"bridgeir/internal/ir"
	"bridgeir/internal/source"
)

// Literal is a string literal as written, after unquoting.
type Literal struct {
	Value string
	Span  source.Span
}

// Pair is one `key = "literal"` entry of an annotation group.
type Pair struct {
	Key     string
	KeySpan source.Span
	Value   Literal
}

// Span covers the whole pair.
func (p Pair) Span() source.Span {
	if p.KeySpan.IsZero() {
		return p.Value.Span
	}
	return p.KeySpan.Cover(p.Value.Span)
}

// Result is the outcome of parsing one pair. It is a closed set:
// Representation, ExposedName or Invalid.
type Result interface {
	result()
}

// Representation is a recognised `representation` setting.
type Representation struct {
	Repr    ir.Representation
	Literal Literal
}

// ExposedName is a recognised `exposedName` setting.
type ExposedName struct {
	Literal Literal
}

// Invalid is a placeholder for a pair that could not be understood.
type Invalid struct {
	Err ParseError
}

func (Representation) result() {}
func (ExposedName) result()    {}
func (Invalid) result()        {}

// ParseError is the closed set of reasons a pair is Invalid:
// *InvalidRepresentation or *UnknownKey.
type ParseError interface {
	error
	Span() source.Span
	parseError()
}

// InvalidRepresentation means the `representation` literal is neither
// "class" nor "struct".
type InvalidRepresentation struct {
	Literal Literal
}

func (e *InvalidRepresentation) Error() string {
	return fmt.Sprintf("invalid representation %q, expected \"class\" or \"struct\"", e.Literal.Value)
}

func (e *InvalidRepresentation) Span() source.Span { return e.Literal.Span }
func (*InvalidRepresentation) parseError()         {}

// UnknownKey means the key is outside the recognised set.
type UnknownKey struct {
	Key     string
	KeySpan source.Span
	Literal Literal
}

func (e *UnknownKey) Error() string {
	return fmt.Sprintf("unknown annotation key %q", e.Key)
}

func (e *UnknownKey) Span() source.Span { return e.KeySpan }
func (*UnknownKey) parseError()         {}

// Parse turns one pair into a Result. It looks at nothing but the pair.
func Parse(p Pair) Result {
	spec, ok := LookupKey(p.Key)
	if !ok {
		return Invalid{Err: &UnknownKey{Key: p.Key, KeySpan: p.KeySpan, Literal: p.Value}}
	}
	switch spec.Name {
	case KeyRepresentation:
		var repr ir.Representation
		if !spec.Accepts(p.Value.Value) || repr.UnmarshalText([]byte(p.Value.Value)) != nil {
			return Invalid{Err: &InvalidRepresentation{Literal: p.Value}}
		}
		return Representation{Repr: repr, Literal: p.Value}
	case KeyExposedName:
		return ExposedName{Literal: p.Value}
	}
	// registered but not handled above
	return Invalid{Err: &UnknownKey{Key: p.Key, KeySpan: p.KeySpan, Literal: p.Value}}
}

// ParseGroup parses every pair of a group, preserving order.
func ParseGroup(pairs []Pair) []Result {
	out := make([]Result, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Parse(p))
	}
	return out
}
