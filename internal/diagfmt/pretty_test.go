package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"bridgeir/internal/diag"
	"bridgeir/internal/source"
)

const looseSrc = "[[struct]]\nname = \"Loose\"\n"

func looseBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/project/ffi/types.bridge.toml", []byte(looseSrc))
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	d := diag.NewError(diag.BrgMissingRepresentation, source.Span{File: id, Start: 19, End: 24},
		"struct has fields but no representation").
		WithNote(source.Span{File: id, Start: 0, End: 10}, "declared here")
	d.Decl = "Loose"
	bag.Add(d)
	return bag, fs
}

func TestPretty_PathModes(t *testing.T) {
	bag, fs := looseBag(t)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "absolute", mode: PathModeAbsolute, contains: "/home/user/project/ffi/types.bridge.toml:2:9:"},
		{name: "relative", mode: PathModeRelative, contains: "ffi/types.bridge.toml:2:9:"},
		{name: "auto", mode: PathModeAuto, contains: "ffi/types.bridge.toml:2:9:"},
		{name: "basename", mode: PathModeBasename, contains: "types.bridge.toml:2:9:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			out := buf.String()
			if !strings.HasPrefix(out, tt.contains) {
				t.Fatalf("expected output to start with %q, got:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "ERROR BRG3002: Loose: struct has fields but no representation") {
				t.Fatalf("missing header, got:\n%s", out)
			}
		})
	}
}

func TestPretty_PreviewAndNotes(t *testing.T) {
	bag, fs := looseBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative, ShowPreview: true, ShowNotes: true})

	want := "ffi/types.bridge.toml:2:9: ERROR BRG3002: Loose: struct has fields but no representation\n" +
		" 2 | name = \"Loose\"\n" +
		"   |         ^~~~~\n" +
		"  note: ffi/types.bridge.toml:1:1: declared here\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPretty_CaretUsesDisplayWidth(t *testing.T) {
	fs := source.NewFileSet()
	src := "name = \"日本\"\n"
	id := fs.AddVirtual("wide.bridge.toml", []byte(src))
	start := uint32(strings.Index(src, "日"))
	end := start + uint32(len("日本"))

	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.BrgInvalidRepresentation, source.Span{File: id, Start: start, End: end}, "bad"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowPreview: true})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 || lines[2] != "   |         ^~~~" {
		t.Fatalf("unexpected caret line %q in:\n%s", lines[2], buf.String())
	}
}

func TestPretty_NoLocationAndNoColor(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.IOLoadFileError, Message: "failed to load file: boom"})

	var buf bytes.Buffer
	Pretty(&buf, bag, nil, PrettyOpts{ShowPreview: true, ShowNotes: true})
	if got := buf.String(); got != "ERROR IO4001: failed to load file: boom\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("color escapes in uncolored output")
	}
}

func TestPretty_ColorEnabled(t *testing.T) {
	bag, fs := looseBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{
		"":         PathModeAuto,
		"auto":     PathModeAuto,
		"absolute": PathModeAbsolute,
		"relative": PathModeRelative,
		"basename": PathModeBasename,
	} {
		got, err := ParsePathMode(in)
		if err != nil || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePathMode("short"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}
