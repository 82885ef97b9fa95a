package bridge

import (
	"fmt"

	"bridgeir/internal/annot"
	"bridgeir/internal/diag"
	"bridgeir/internal/source"
)

// ReprSetting is the `representation` entry of Settings. Err is set when the
// literal was rejected; Repr is meaningless in that case.
type ReprSetting struct {
	Result annot.Representation
	Err    *annot.InvalidRepresentation
}

// Valid reports whether the setting carries a usable representation.
func (s *ReprSetting) Valid() bool {
	return s != nil && s.Err == nil
}

// Literal returns the literal that produced the setting.
func (s *ReprSetting) Literal() annot.Literal {
	if s.Err != nil {
		return s.Err.Literal
	}
	return s.Result.Literal
}

// Settings is the accumulated annotation state of one declaration.
type Settings struct {
	Repr        *ReprSetting
	ExposedName *annot.Literal
}

// Accumulate parses every annotation pair of decl in source order and folds
// the results into Settings. Repeated recognised keys keep the last value and
// are reported as warnings. Unknown keys and rejected representation literals
// are reported as errors, one per pair.
func Accumulate(decl *Declaration, r diag.Reporter) Settings {
	var s Settings
	for _, group := range decl.Annotations {
		for i, res := range annot.ParseGroup(group) {
			p := group[i]
			switch res := res.(type) {
			case annot.Representation:
				if s.Repr != nil {
					reportDuplicate(r, decl, p, s.Repr.Literal())
				}
				s.Repr = &ReprSetting{Result: res}
			case annot.ExposedName:
				if s.ExposedName != nil {
					reportDuplicate(r, decl, p, *s.ExposedName)
				}
				lit := res.Literal
				s.ExposedName = &lit
			case annot.Invalid:
				switch err := res.Err.(type) {
				case *annot.InvalidRepresentation:
					reportInvalidRepresentation(r, decl, err.Literal)
					if s.Repr != nil {
						reportDuplicate(r, decl, p, s.Repr.Literal())
					}
					s.Repr = &ReprSetting{Err: err}
				case *annot.UnknownKey:
					reportUnknownKey(r, decl, err)
				}
			}
		}
	}
	return s
}

func reportInvalidRepresentation(r diag.Reporter, decl *Declaration, lit annot.Literal) {
	span := lit.Span
	if span.IsZero() {
		span = decl.primarySpan()
	}
	diag.ReportError(r, diag.BrgInvalidRepresentation, span,
		fmt.Sprintf("invalid representation %q on struct %s; expected \"class\" or \"struct\"", lit.Value, decl.Ident)).
		WithDecl(decl.Ident).
		WithValue(lit.Value).
		Emit()
}

func reportUnknownKey(r diag.Reporter, decl *Declaration, err *annot.UnknownKey) {
	span := err.KeySpan
	if span.IsZero() {
		span = decl.primarySpan()
	}
	diag.ReportError(r, diag.BrgUnknownAnnotationKey, span,
		fmt.Sprintf("unknown annotation key %q on struct %s", err.Key, decl.Ident)).
		WithDecl(decl.Ident).
		WithValue(err.Key).
		WithNote(source.Span{}, "expected one of "+annot.KeyList()).
		Emit()
}

func reportDuplicate(r diag.Reporter, decl *Declaration, p annot.Pair, previous annot.Literal) {
	span := p.Span()
	if span.IsZero() {
		span = decl.primarySpan()
	}
	b := diag.ReportWarning(r, diag.BrgDuplicateAnnotationKey, span,
		fmt.Sprintf("annotation %q is set more than once on struct %s; the last value %q wins", p.Key, decl.Ident, p.Value.Value)).
		WithDecl(decl.Ident).
		WithValue(p.Key)
	if !previous.Span.IsZero() {
		b.WithNote(previous.Span, fmt.Sprintf("previous value %q", previous.Value))
	}
	b.Emit()
}
