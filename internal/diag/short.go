package diag

import (
	"fmt"
	"path/filepath"
	"strings"

	"bridgeir/internal/source"
)

// FormatShortDiagnostics renders diagnostics one per line in insertion order:
//
//	<severity> <code> <path>:<line>:<col> <decl>: <message>
//
// The location is replaced by "-" when the span cannot be resolved and the
// declaration prefix is omitted when Decl is empty. Notes follow their
// diagnostic when includeNotes is set.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, shortLine(severityLabel(d.Severity), d.Code.ID(), locate(fs, d.Primary), d.Decl, d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, shortLine("note", d.Code.ID(), locate(fs, n.Span), "", n.Msg))
		}
	}
	return strings.Join(lines, "\n")
}

func shortLine(sev, code, loc, decl, msg string) string {
	msg = sanitizeMessage(msg)
	if decl != "" {
		msg = decl + ": " + msg
	}
	return fmt.Sprintf("%s %s %s %s", sev, code, loc, msg)
}

func locate(fs *source.FileSet, span source.Span) string {
	if fs == nil || span.IsZero() {
		return "-"
	}
	start, _, ok := fs.Resolve(span)
	if !ok {
		return "-"
	}
	f := fs.Get(span.File)
	path := filepath.ToSlash(f.FormatPath("relative", fs.BaseDir()))
	path = strings.TrimPrefix(path, "./")
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
