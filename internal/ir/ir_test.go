package ir

import "testing"

func TestRepresentationText(t *testing.T) {
	for _, r := range []Representation{ReprValueStruct, ReprClass} {
		b, err := r.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", r, err)
		}
		var back Representation
		if err := back.UnmarshalText(b); err != nil || back != r {
			t.Fatalf("round trip of %q gave %v, %v", b, back, err)
		}
	}
	if _, err := Representation(7).MarshalText(); err == nil {
		t.Fatalf("expected error for unknown representation")
	}
	var r Representation
	if err := r.UnmarshalText([]byte("Class")); err == nil {
		t.Fatalf("representation text is case-sensitive")
	}
}

func TestFieldsShapeText(t *testing.T) {
	tests := map[string]FieldsShape{"named": ShapeNamed, "unnamed": ShapeUnnamed, "unit": ShapeUnit}
	for text, want := range tests {
		var got FieldsShape
		if err := got.UnmarshalText([]byte(text)); err != nil || got != want {
			t.Errorf("UnmarshalText(%q) = %v, %v", text, got, err)
		}
		if got.String() != text {
			t.Errorf("String() = %q, want %q", got.String(), text)
		}
	}
	var s FieldsShape
	if err := s.UnmarshalText([]byte("tuple")); err == nil {
		t.Fatalf("expected error for unknown shape")
	}
}

func TestTargetName(t *testing.T) {
	exposed := "FfiFoo"
	s := ResolvedStruct{Ident: "Foo"}
	if s.TargetName() != "Foo" {
		t.Fatalf("without exposedName the ident is used")
	}
	s.ExposedName = &exposed
	if s.TargetName() != "FfiFoo" {
		t.Fatalf("exposedName overrides the ident")
	}
}
