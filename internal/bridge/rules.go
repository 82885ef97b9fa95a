package bridge

import (
	"fmt"

	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
)

// reprInput is what the representation rules look at.
type reprInput struct {
	decl     *Declaration
	settings *Settings
}

// reprRule decides the representation when it applies. The first rule that
// applies wins; later rules are not consulted.
type reprRule struct {
	name    string
	applies func(in *reprInput) bool
	decide  func(in *reprInput, r diag.Reporter) ir.Representation
}

// reprRules is evaluated top to bottom. Field emptiness sits above the
// explicit setting so that an empty struct never becomes a class.
var reprRules = []reprRule{
	{
		name: "invalid-representation",
		applies: func(in *reprInput) bool {
			return in.settings.Repr != nil && !in.settings.Repr.Valid()
		},
		// Accumulate already reported the rejected literal.
		decide: func(*reprInput, diag.Reporter) ir.Representation {
			return ir.ReprValueStruct
		},
	},
	{
		name: "empty-is-value-struct",
		applies: func(in *reprInput) bool {
			return len(in.decl.Fields) == 0
		},
		decide: func(in *reprInput, r diag.Reporter) ir.Representation {
			repr := in.settings.Repr
			if repr.Valid() && repr.Result.Repr == ir.ReprClass {
				lit := repr.Literal()
				span := lit.Span
				if span.IsZero() {
					span = in.decl.primarySpan()
				}
				diag.ReportError(r, diag.BrgEmptyDeclarationRequestsClass, span,
					fmt.Sprintf("struct %s has no fields and cannot use the class representation", in.decl.Ident)).
					WithDecl(in.decl.Ident).
					WithValue(lit.Value).
					WithNote(in.decl.primarySpan(), "structs without fields are always bridged as value structs").
					Emit()
			}
			return ir.ReprValueStruct
		},
	},
	{
		name: "explicit-representation",
		applies: func(in *reprInput) bool {
			return in.settings.Repr.Valid()
		},
		decide: func(in *reprInput, _ diag.Reporter) ir.Representation {
			return in.settings.Repr.Result.Repr
		},
	},
	{
		name:    "missing-representation",
		applies: func(*reprInput) bool { return true },
		decide: func(in *reprInput, r diag.Reporter) ir.Representation {
			diag.ReportError(r, diag.BrgMissingRepresentation, in.decl.primarySpan(),
				fmt.Sprintf("struct %s has fields but no representation; add representation = \"struct\" or \"class\"", in.decl.Ident)).
				WithDecl(in.decl.Ident).
				Emit()
			return ir.ReprValueStruct
		},
	},
}

// decideRepresentation runs reprRules and returns the chosen representation
// together with the name of the rule that fired.
func decideRepresentation(in *reprInput, r diag.Reporter) (ir.Representation, string) {
	for _, rule := range reprRules {
		if rule.applies(in) {
			return rule.decide(in, r), rule.name
		}
	}
	// the last rule always applies
	panic("bridge: no representation rule applied")
}
