// Package manifest loads bridge declarations from the files the syntax
// parser hands over. Two encodings are accepted: TOML (*.bridge.toml) and
// JSON with comments (*.bridge.json, *.jsonc).
//
// Loading is the structural boundary of the tool: a malformed file fails as a
// whole and none of its declarations reach the resolver. Everything inside a
// well-formed file, including bad annotation values, is left to the resolver.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"bridgeir/internal/annot"
	"bridgeir/internal/bridge"
	"bridgeir/internal/ir"
	"bridgeir/internal/source"
)

// File is one loaded input.
type File struct {
	Path   string
	FileID source.FileID
	Decls  []bridge.Declaration
}

var (
	// ErrUnknownFormat is returned for files that are neither TOML nor JSON.
	ErrUnknownFormat = errors.New("unknown bridge file format")
	// ErrShapeConflict is returned when the declared shape disagrees with the fields.
	ErrShapeConflict = errors.New("fields do not match shape")
)

// rawStruct is the encoding-independent form of one declaration.
type rawStruct struct {
	Name        string     `toml:"name" json:"name"`
	Shape       string     `toml:"shape" json:"shape"`
	Annotations []string   `toml:"annotations" json:"annotations"`
	Fields      []rawField `toml:"field" json:"fields"`
}

type rawField struct {
	Name *string `toml:"name" json:"name"`
	Type string  `toml:"type" json:"type"`
}

// IsBridgeFile reports whether path looks like a bridge input.
func IsBridgeFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, ".bridge.toml") ||
		strings.HasSuffix(base, ".bridge.json") ||
		strings.HasSuffix(base, ".bridge.jsonc")
}

// Parse decodes the declarations of a file already present in fs.
func Parse(fs *source.FileSet, id source.FileID) (*File, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, fmt.Errorf("file %d is not in the file set", id)
	}

	var (
		raws   []rawStruct
		starts []int
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(f.Path)); ext {
	case ".toml":
		raws, starts, err = decodeTOML(f.Content)
	case ".json", ".jsonc":
		raws, starts, err = decodeJSON(f.Content)
	default:
		return nil, fmt.Errorf("%s: %w %q", f.Path, ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}

	loc := newLocator(f, starts, len(raws))
	out := &File{Path: f.Path, FileID: id, Decls: make([]bridge.Declaration, 0, len(raws))}
	for i := range raws {
		loc.beginRegion(i)
		decl, err := buildDecl(&raws[i], loc)
		if err != nil {
			return nil, fmt.Errorf("%s: struct #%d: %w", f.Path, i+1, err)
		}
		out.Decls = append(out.Decls, decl)
	}
	return out, nil
}

func buildDecl(raw *rawStruct, loc *locator) (bridge.Declaration, error) {
	name := norm.NFC.String(strings.TrimSpace(raw.Name))
	if name == "" {
		return bridge.Declaration{}, errors.New("missing name")
	}

	decl := bridge.Declaration{
		Ident:     name,
		IdentSpan: loc.findString(raw.Name),
	}

	for _, text := range raw.Annotations {
		pairs, err := annot.SplitGroup(text, loc.findString(text))
		if err != nil {
			return bridge.Declaration{}, fmt.Errorf("%s: %w", name, err)
		}
		decl.Annotations = append(decl.Annotations, pairs)
	}

	named := 0
	for i, rf := range raw.Fields {
		if strings.TrimSpace(rf.Type) == "" {
			return bridge.Declaration{}, fmt.Errorf("%s: field #%d: missing type", name, i+1)
		}
		field := bridge.RawField{Type: rf.Type}
		if rf.Name != nil {
			fieldName := norm.NFC.String(*rf.Name)
			field.Name = &fieldName
			field.Span = loc.findString(*rf.Name)
			named++
		}
		typeSpan := loc.findString(rf.Type)
		if field.Span.IsZero() {
			field.Span = typeSpan
		} else if !typeSpan.IsZero() {
			field.Span = field.Span.Cover(typeSpan)
		}
		decl.Fields = append(decl.Fields, field)
	}

	shape, err := resolveShape(raw.Shape, len(raw.Fields), named)
	if err != nil {
		return bridge.Declaration{}, fmt.Errorf("%s: %w", name, err)
	}
	decl.Shape = shape
	decl.Span = loc.region()
	return decl, nil
}

// resolveShape validates an explicit shape or infers one from the fields.
func resolveShape(explicit string, fields, named int) (ir.FieldsShape, error) {
	if explicit == "" {
		switch {
		case fields == 0:
			return ir.ShapeUnit, nil
		case named == fields:
			return ir.ShapeNamed, nil
		case named == 0:
			return ir.ShapeUnnamed, nil
		}
		return 0, fmt.Errorf("%w: %d of %d fields are named", ErrShapeConflict, named, fields)
	}

	var shape ir.FieldsShape
	if err := shape.UnmarshalText([]byte(explicit)); err != nil {
		return 0, err
	}
	switch shape {
	case ir.ShapeUnit:
		if fields != 0 {
			return 0, fmt.Errorf("%w: unit struct has %d fields", ErrShapeConflict, fields)
		}
	case ir.ShapeNamed:
		if named != fields {
			return 0, fmt.Errorf("%w: named struct has %d unnamed fields", ErrShapeConflict, fields-named)
		}
	case ir.ShapeUnnamed:
		if named != 0 {
			return 0, fmt.Errorf("%w: unnamed struct has %d named fields", ErrShapeConflict, named)
		}
	}
	return shape, nil
}
