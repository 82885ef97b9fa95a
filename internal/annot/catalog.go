package annot

import (
	"slices"
	"strings"
)

const (
	// KeyRepresentation selects the physical representation: "class" or "struct".
	KeyRepresentation = "representation"
	// KeyExposedName overrides the name used on the far side of the bridge.
	KeyExposedName = "exposedName"
)

// KeySpec describes a recognised annotation key.
type KeySpec struct {
	Name string
	// Values lists the accepted literal values; empty means any string.
	Values []string
}

// Accepts reports whether v is an allowed literal for the key.
func (spec KeySpec) Accepts(v string) bool {
	return len(spec.Values) == 0 || slices.Contains(spec.Values, v)
}

var keyRegistry = map[string]KeySpec{
	KeyRepresentation: {
		Name:   KeyRepresentation,
		Values: []string{"class", "struct"},
	},
	KeyExposedName: {
		Name: KeyExposedName,
	},
}

// LookupKey returns metadata for an annotation key. Keys are case-sensitive.
func LookupKey(name string) (KeySpec, bool) {
	spec, ok := keyRegistry[name]
	return spec, ok
}

// Keys returns all recognised keys sorted by name.
func Keys() []KeySpec {
	names := make([]string, 0, len(keyRegistry))
	for name := range keyRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]KeySpec, 0, len(names))
	for _, name := range names {
		out = append(out, keyRegistry[name])
	}
	return out
}

// KeyList renders the recognised key names for diagnostics, e.g.
// "exposedName, representation".
func KeyList() string {
	keys := Keys()
	names := make([]string, len(keys))
	for i, spec := range keys {
		names[i] = spec.Name
	}
	return strings.Join(names, ", ")
}
