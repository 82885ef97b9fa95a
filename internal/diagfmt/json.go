package diagfmt

import (
	"encoding/json"
	"io"

	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
	"bridgeir/internal/source"
)

// LocationJSON is a position in a file.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is an auxiliary message.
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticJSON is one diagnostic.
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Decl     string        `json:"decl,omitempty"`
	Value    string        `json:"value,omitempty"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Structs     []ir.ResolvedStruct `json:"structs,omitempty"`
	Diagnostics []DiagnosticJSON    `json:"diagnostics"`
	Count       int                 `json:"count"`
}

// makeLocation returns nil for spans that carry no location.
func makeLocation(span source.Span, fs *source.FileSet, mode PathMode, includePositions bool) *LocationJSON {
	if fs == nil || span.IsZero() {
		return nil
	}
	f := fs.Get(span.File)
	if f == nil {
		return nil
	}
	loc := &LocationJSON{
		File:      formatPath(fs, f, mode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		start, end, _ := fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

// BuildDiagnosticsOutput assembles the JSON document without serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, structs []ir.ResolvedStruct, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}

	out := DiagnosticsOutput{
		Structs:     structs,
		Diagnostics: make([]DiagnosticJSON, 0, n),
	}
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Decl:     d.Decl,
			Value:    d.Value,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the resolved structs and diagnostics as one indented document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, structs []ir.ResolvedStruct, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, structs, opts))
}

// Short writes one line per diagnostic.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	s := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if s == "" {
		return nil
	}
	_, err := io.WriteString(w, s+"\n")
	return err
}
