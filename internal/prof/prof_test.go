package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSession_WritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.pprof"),
		Mem:   filepath.Join(dir, "mem.pprof"),
		Trace: filepath.Join(dir, "run.trace"),
	}
	if !opts.Enabled() || (Options{}).Enabled() {
		t.Fatalf("Enabled reports the wrong state")
	}

	s, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	for _, p := range []string{opts.CPU, opts.Mem, opts.Trace} {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Errorf("profile %s missing or empty (err=%v)", filepath.Base(p), err)
		}
	}
}

func TestStart_BadPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "cpu.pprof")
	if _, err := Start(Options{CPU: missing}); err == nil {
		t.Fatalf("expected error for unwritable path")
	}
}
