package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSet_ResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("ffi.bridge.toml", []byte("[[struct]]\nname = \"Foo\"\n"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{name: "start of file", off: 0, want: LineCol{Line: 1, Col: 1}},
		{name: "newline belongs to first line", off: 10, want: LineCol{Line: 1, Col: 11}},
		{name: "start of second line", off: 11, want: LineCol{Line: 2, Col: 1}},
		{name: "inside second line", off: 18, want: LineCol{Line: 2, Col: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _, ok := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if !ok {
				t.Fatalf("span did not resolve")
			}
			if start != tt.want {
				t.Fatalf("got %+v, want %+v", start, tt.want)
			}
		})
	}
}

func TestFileSet_ResolveUnknownFile(t *testing.T) {
	fs := NewFileSet()
	if _, _, ok := fs.Resolve(Span{File: 3}); ok {
		t.Fatalf("expected unknown file to fail resolution")
	}
	if fs.Get(3) != nil {
		t.Fatalf("expected nil for unknown file id")
	}
}

func TestFile_GetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x", []byte("one\ntwo\nthree")))

	cases := map[uint32]string{0: "", 1: "one", 2: "two", 3: "three", 4: ""}
	for line, want := range cases {
		if got := f.GetLine(line); got != want {
			t.Errorf("line %d: got %q, want %q", line, got, want)
		}
	}
}

func TestFileSet_LoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bridge.toml")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got := f.FormatPath("relative", dir); got != "in.bridge.toml" {
		t.Fatalf("relative path: got %q", got)
	}
	if got, ok := fs.GetByPath(path); !ok || got.ID != id {
		t.Fatalf("GetByPath did not return the loaded file")
	}
}

func TestSpan_Cover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("unexpected cover %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("spans from different files must not merge, got %v", got)
	}
	if got := a.Sub(1, 3); got != (Span{File: 1, Start: 5, End: 7}) {
		t.Fatalf("unexpected sub span %v", got)
	}
}
