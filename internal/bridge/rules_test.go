package bridge

import (
	"testing"

	"bridgeir/internal/annot"
	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
)

func TestDecideRepresentation_Precedence(t *testing.T) {
	valid := func(r ir.Representation, lit string) *ReprSetting {
		return &ReprSetting{Result: annot.Representation{Repr: r, Literal: annot.Literal{Value: lit}}}
	}
	invalid := &ReprSetting{Err: &annot.InvalidRepresentation{Literal: annot.Literal{Value: "bogus"}}}
	oneField := []RawField{{Type: "u8"}}

	tests := []struct {
		name     string
		fields   []RawField
		repr     *ReprSetting
		wantRule string
		want     ir.Representation
		wantCode diag.Code
	}{
		{name: "invalid beats empty", repr: invalid, wantRule: "invalid-representation", want: ir.ReprValueStruct},
		{name: "invalid with fields", fields: oneField, repr: invalid, wantRule: "invalid-representation", want: ir.ReprValueStruct},
		{name: "empty beats explicit class", repr: valid(ir.ReprClass, "class"), wantRule: "empty-is-value-struct", want: ir.ReprValueStruct, wantCode: diag.BrgEmptyDeclarationRequestsClass},
		{name: "empty with explicit struct", repr: valid(ir.ReprValueStruct, "struct"), wantRule: "empty-is-value-struct", want: ir.ReprValueStruct},
		{name: "empty without setting", wantRule: "empty-is-value-struct", want: ir.ReprValueStruct},
		{name: "explicit class", fields: oneField, repr: valid(ir.ReprClass, "class"), wantRule: "explicit-representation", want: ir.ReprClass},
		{name: "explicit struct", fields: oneField, repr: valid(ir.ReprValueStruct, "struct"), wantRule: "explicit-representation", want: ir.ReprValueStruct},
		{name: "missing", fields: oneField, wantRule: "missing-representation", want: ir.ReprValueStruct, wantCode: diag.BrgMissingRepresentation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag(4)
			in := &reprInput{
				decl:     &Declaration{Ident: "T", Fields: tt.fields},
				settings: &Settings{Repr: tt.repr},
			}
			got, rule := decideRepresentation(in, diag.BagReporter{Bag: bag})
			if rule != tt.wantRule {
				t.Fatalf("rule: got %q, want %q", rule, tt.wantRule)
			}
			if got != tt.want {
				t.Fatalf("representation: got %s, want %s", got, tt.want)
			}
			if tt.wantCode == diag.UnknownCode {
				if bag.Len() != 0 {
					t.Fatalf("expected no diagnostics, got %+v", bag.Items())
				}
				return
			}
			if bag.Len() != 1 || bag.Items()[0].Code != tt.wantCode {
				t.Fatalf("expected one %s, got %+v", tt.wantCode.ID(), bag.Items())
			}
		})
	}
}

func TestReprRules_LastRuleAlwaysApplies(t *testing.T) {
	last := reprRules[len(reprRules)-1]
	if !last.applies(&reprInput{decl: &Declaration{}, settings: &Settings{}}) {
		t.Fatalf("the final rule must be a catch-all")
	}
}
