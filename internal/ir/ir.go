// Package ir holds the resolved representation of bridged declarations that
// is handed to the code generator. Values are immutable once built; nothing
// here aliases the declarations they were resolved from.
package ir

import "fmt"

// Representation is the physical strategy a struct receives across the
// language boundary.
type Representation uint8

const (
	// ReprValueStruct is a copied value type.
	ReprValueStruct Representation = iota
	// ReprClass is an identity-bearing reference type.
	ReprClass
)

func (r Representation) String() string {
	switch r {
	case ReprValueStruct:
		return "struct"
	case ReprClass:
		return "class"
	}
	return fmt.Sprintf("Representation(%d)", uint8(r))
}

func (r Representation) MarshalText() ([]byte, error) {
	switch r {
	case ReprValueStruct, ReprClass:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("unknown representation %d", uint8(r))
}

func (r *Representation) UnmarshalText(b []byte) error {
	switch string(b) {
	case "struct":
		*r = ReprValueStruct
	case "class":
		*r = ReprClass
	default:
		return fmt.Errorf("unknown representation %q", b)
	}
	return nil
}

// FieldsShape tells the renderer how field access is spelled.
type FieldsShape uint8

const (
	ShapeNamed FieldsShape = iota
	ShapeUnnamed
	ShapeUnit
)

func (s FieldsShape) String() string {
	switch s {
	case ShapeNamed:
		return "named"
	case ShapeUnnamed:
		return "unnamed"
	case ShapeUnit:
		return "unit"
	}
	return fmt.Sprintf("FieldsShape(%d)", uint8(s))
}

func (s FieldsShape) MarshalText() ([]byte, error) {
	switch s {
	case ShapeNamed, ShapeUnnamed, ShapeUnit:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown fields shape %d", uint8(s))
}

func (s *FieldsShape) UnmarshalText(b []byte) error {
	switch string(b) {
	case "named":
		*s = ShapeNamed
	case "unnamed":
		*s = ShapeUnnamed
	case "unit":
		*s = ShapeUnit
	default:
		return fmt.Errorf("unknown fields shape %q", b)
	}
	return nil
}

// Field is one resolved field. Name is nil for unnamed and unit shapes.
type Field struct {
	Name *string `json:"name,omitempty" msgpack:"name,omitempty"`
	Type string  `json:"type" msgpack:"type"`
}

// ResolvedStruct is the unit of output of the resolver.
type ResolvedStruct struct {
	Ident       string         `json:"ident" msgpack:"ident"`
	Repr        Representation `json:"representation" msgpack:"repr"`
	ExposedName *string        `json:"exposed_name,omitempty" msgpack:"exposed_name,omitempty"`
	Fields      []Field        `json:"fields" msgpack:"fields"`
	Shape       FieldsShape    `json:"shape" msgpack:"shape"`
}

// TargetName is the name the type carries on the other side of the bridge.
func (s *ResolvedStruct) TargetName() string {
	if s.ExposedName != nil {
		return *s.ExposedName
	}
	return s.Ident
}
