package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"bridgeir/internal/diag"
	"bridgeir/internal/driver"
	"bridgeir/internal/ir"
	"bridgeir/internal/source"
)

const goodTOML = `[[struct]]
name = "Foo"
annotations = ['representation = "class"']

  [[struct.field]]
  name = "bar"
  type = "u8"

[[struct]]
name = "Loose"

  [[struct.field]]
  type = "u8"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func codes(items []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(items))
	for i, d := range items {
		out[i] = d.Code
	}
	return out
}

func TestResolveFiles_BadInputsBecomeDiagnostics(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.bridge.toml", goodTOML)
	broken := writeFile(t, dir, "b.bridge.toml", "[[struct]\n")
	missing := filepath.Join(dir, "c.bridge.toml")

	res, err := driver.ResolveFiles(context.Background(), source.NewFileSetWithBase(dir),
		[]string{good, broken, missing}, driver.Options{Jobs: 2})
	if err != nil {
		t.Fatalf("ResolveFiles: %v", err)
	}

	if len(res.Structs) != 2 {
		t.Fatalf("expected 2 structs, got %d", len(res.Structs))
	}
	if res.Structs[0].Repr != ir.ReprClass || res.Structs[1].Repr != ir.ReprValueStruct {
		t.Fatalf("unexpected representations: %s, %s", res.Structs[0].Repr, res.Structs[1].Repr)
	}

	want := []diag.Code{diag.BrgMissingRepresentation, diag.ProjManifestInvalid, diag.IOLoadFileError}
	if got := codes(res.Bag.Items()); !reflect.DeepEqual(got, want) {
		t.Fatalf("codes: got %v, want %v", got, want)
	}

	missingDiag := res.Bag.Items()[0]
	start, _, ok := res.FileSet.Resolve(missingDiag.Primary)
	if !ok || start.Line != 10 {
		t.Fatalf("missing-representation diagnostic should point at line 10, got %+v (ok=%v)", start, ok)
	}
	if len(res.Files) != 3 || len(res.Files[1].Structs) != 0 {
		t.Fatalf("unexpected per-file results: %+v", res.Files)
	}
}

func TestResolveFiles_DiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "types.bridge.toml", goodTOML)
	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := driver.Options{Cache: cache}

	first, err := driver.ResolveFiles(context.Background(), nil, []string{input}, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Files[0].Cached {
		t.Fatalf("first run cannot be a cache hit")
	}

	// a different file set shifts the FileID; cached spans must follow it
	fs := source.NewFileSet()
	fs.AddVirtual("padding.bridge.toml", nil)
	second, err := driver.ResolveFiles(context.Background(), fs, []string{input}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Files[0].Cached {
		t.Fatalf("second run should hit the cache")
	}
	if !reflect.DeepEqual(first.Structs, second.Structs) {
		t.Fatalf("cached structs differ:\n got %+v\nwant %+v", second.Structs, first.Structs)
	}
	d := second.Bag.Items()[0]
	if d.Primary.File != second.Files[0].FileID {
		t.Fatalf("cached span not rebound: file %d, want %d", d.Primary.File, second.Files[0].FileID)
	}
	if d.Message != first.Bag.Items()[0].Message {
		t.Fatalf("cached message differs: %q", d.Message)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	third, err := driver.ResolveFiles(context.Background(), nil, []string{input}, opts)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Files[0].Cached {
		t.Fatalf("DropAll should empty the cache")
	}
}

func TestDiskCache_MissAndKeys(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	var out driver.CachePayload
	hit, err := cache.Get(driver.CacheKey([]byte("x"), 0), &out)
	if err != nil || hit {
		t.Fatalf("expected clean miss, got hit=%v err=%v", hit, err)
	}

	if driver.CacheKey([]byte("x"), 10) == driver.CacheKey([]byte("x"), 20) {
		t.Fatalf("diagnostic limit must be part of the key")
	}
	if driver.CacheKey([]byte("x"), 10) != driver.CacheKey([]byte("x"), 10) {
		t.Fatalf("key must be deterministic")
	}

	var nilCache *driver.DiskCache
	if hit, err := nilCache.Get(driver.Digest{}, &out); hit || err != nil {
		t.Fatalf("nil cache must always miss")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "sub/b.bridge.json", `{"structs": []}`)
	a := writeFile(t, dir, "a.bridge.toml", "")
	writeFile(t, dir, "notes.txt", "")
	explicit := writeFile(t, t.TempDir(), "types.toml", "")

	got, err := driver.ExpandInputs([]string{dir, explicit})
	if err != nil {
		t.Fatalf("ExpandInputs: %v", err)
	}
	want := []string{a, b, explicit}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := driver.ExpandInputs([]string{filepath.Join(dir, "nope")}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordingSink) OnEvent(ev driver.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func TestResolveFiles_ReportsProgress(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.bridge.toml", "[[struct]]\nname = \"Unit\"\n")
	bad := writeFile(t, dir, "b.bridge.toml", goodTOML)

	sink := &recordingSink{}
	_, err := driver.ResolveFiles(context.Background(), nil, []string{good, bad}, driver.Options{Progress: sink})
	if err != nil {
		t.Fatalf("ResolveFiles: %v", err)
	}

	final := map[string]driver.Status{}
	for _, ev := range sink.events {
		if ev.File != "" && ev.Stage == driver.StageResolve && ev.Status != driver.StatusWorking {
			final[ev.File] = ev.Status
		}
	}
	if final[good] != driver.StatusDone || final[bad] != driver.StatusError {
		t.Fatalf("unexpected final statuses: %v", final)
	}
	if sink.events[0].Status != driver.StatusQueued {
		t.Fatalf("first event should be queued, got %+v", sink.events[0])
	}
	last := sink.events[len(sink.events)-1]
	if last.File != "" || last.Status != driver.StatusDone {
		t.Fatalf("last event should close the run, got %+v", last)
	}
}

func TestResolveFiles_NoInputs(t *testing.T) {
	res, err := driver.ResolveFiles(context.Background(), nil, nil, driver.Options{})
	if err != nil {
		t.Fatalf("ResolveFiles: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ProjInfo || items[0].Severity != diag.SevInfo || res.Bag.HasErrors() {
		t.Fatalf("expected a single info diagnostic, got %+v", items)
	}
}
