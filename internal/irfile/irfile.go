// Package irfile is the on-disk form of a resolved batch handed to the code
// generator: the resolved structs plus the diagnostics with their locations
// already rendered, encoded with msgpack.
package irfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
	"bridgeir/internal/source"
)

// SchemaVersion is bumped whenever Payload changes incompatibly.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned by Read for payloads of another schema.
var ErrSchemaMismatch = errors.New("irfile: schema version mismatch")

// Location is a resolved source position.
type Location struct {
	File string `msgpack:"file"`
	Line uint32 `msgpack:"line"`
	Col  uint32 `msgpack:"col"`
}

// Diagnostic is a diag.Diagnostic detached from the FileSet.
type Diagnostic struct {
	Severity string    `msgpack:"severity"`
	Code     string    `msgpack:"code"`
	Message  string    `msgpack:"message"`
	Decl     string    `msgpack:"decl,omitempty"`
	Value    string    `msgpack:"value,omitempty"`
	Location *Location `msgpack:"location,omitempty"`
}

// Payload is the whole file.
type Payload struct {
	Schema      uint16              `msgpack:"schema"`
	Package     string              `msgpack:"package,omitempty"`
	Structs     []ir.ResolvedStruct `msgpack:"structs"`
	Diagnostics []Diagnostic        `msgpack:"diagnostics"`
}

// Build assembles a payload from a resolved batch.
func Build(pkg string, structs []ir.ResolvedStruct, diags []diag.Diagnostic, fs *source.FileSet) *Payload {
	p := &Payload{
		Schema:      SchemaVersion,
		Package:     pkg,
		Structs:     structs,
		Diagnostics: make([]Diagnostic, 0, len(diags)),
	}
	if p.Structs == nil {
		p.Structs = []ir.ResolvedStruct{}
	}
	for _, d := range diags {
		p.Diagnostics = append(p.Diagnostics, Diagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Decl:     d.Decl,
			Value:    d.Value,
			Location: locate(fs, d.Primary),
		})
	}
	return p
}

func locate(fs *source.FileSet, span source.Span) *Location {
	if fs == nil || span.IsZero() {
		return nil
	}
	start, _, ok := fs.Resolve(span)
	if !ok {
		return nil
	}
	return &Location{
		File: fs.Get(span.File).FormatPath("relative", fs.BaseDir()),
		Line: start.Line,
		Col:  start.Col,
	}
}

// Write encodes p to w.
func Write(w io.Writer, p *Payload) error {
	if p.Schema == 0 {
		p.Schema = SchemaVersion
	}
	if err := msgpack.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("irfile: encode: %w", err)
	}
	return nil
}

// Read decodes a payload written by Write.
func Read(r io.Reader) (*Payload, error) {
	var p Payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("irfile: decode: %w", err)
	}
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, p.Schema, SchemaVersion)
	}
	return &p, nil
}
