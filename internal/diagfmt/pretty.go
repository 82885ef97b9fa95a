package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bridgeir/internal/diag"
	"bridgeir/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	note, loc       *color.Color
	gutter, caret   *color.Color
}

func newPalette(on bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		loc:    mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty renders diagnostics for humans, in bag order:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <decl>: <message>
//	   3 | name = "Foo"
//	     |         ^~~
//	  note: <path>:<line>:<col>: <message>
//
// The source preview and notes are controlled by opts.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		msg := d.Message
		if d.Decl != "" {
			msg = d.Decl + ": " + msg
		}
		sev := p.severity(d.Severity)
		fmt.Fprintf(w, "%s%s %s: %s\n",
			locPrefix(fs, d.Primary, opts.PathMode, p),
			sev.Sprint(d.Severity.String()),
			sev.Sprint(d.Code.ID()),
			msg)
		if opts.ShowPreview {
			writePreview(w, fs, d.Primary, p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("note:"), locPrefix(fs, n.Span, opts.PathMode, p), n.Msg)
		}
	}
}

// locPrefix is "path:line:col: " or "" for spans without a location.
func locPrefix(fs *source.FileSet, span source.Span, mode PathMode, p palette) string {
	if fs == nil || span.IsZero() {
		return ""
	}
	start, _, ok := fs.Resolve(span)
	if !ok {
		return ""
	}
	path := formatPath(fs, fs.Get(span.File), mode)
	return p.loc.Sprintf("%s:%d:%d:", path, start.Line, start.Col) + " "
}

func writePreview(w io.Writer, fs *source.FileSet, span source.Span, p palette) {
	if fs == nil || span.IsZero() {
		return
	}
	start, end, ok := fs.Resolve(span)
	if !ok {
		return
	}
	line := fs.Get(span.File).GetLine(start.Line)
	if line == "" {
		return
	}

	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}

	lead := runewidth.StringWidth(expandTabs(line[:from]))
	width := max(runewidth.StringWidth(expandTabs(line[from:to])), 1)

	num := strconv.FormatUint(uint64(start.Line), 10)
	pad := strings.Repeat(" ", len(num))
	fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), expandTabs(line))
	fmt.Fprintf(w, " %s %s %s%s\n", pad, p.gutter.Sprint("|"),
		strings.Repeat(" ", lead),
		p.caret.Sprint("^"+strings.Repeat("~", width-1)))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
