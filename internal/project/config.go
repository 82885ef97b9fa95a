package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	ErrPackageSectionMissing = errors.New("missing [package]")
	ErrPackageNameMissing    = errors.New("missing [package].name")
	ErrOutsideRoot           = errors.New("path escapes the project root")
)

// Config mirrors bridgeir.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Resolve ResolveConfig `toml:"resolve"`
	Output  OutputConfig  `toml:"output"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type ResolveConfig struct {
	// Inputs are files or directories relative to the project root.
	Inputs           []string `toml:"inputs"`
	Jobs             int      `toml:"jobs"`
	MaxDiagnostics   int      `toml:"max_diagnostics"`
	WarningsAsErrors bool     `toml:"warnings_as_errors"`
}

type OutputConfig struct {
	// IR is where `resolve` writes the msgpack IR file; empty disables it.
	IR string `toml:"ir"`
}

// Manifest is a loaded bridgeir.toml with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// DefaultMaxDiagnostics applies when neither the config nor a flag sets one.
const DefaultMaxDiagnostics = 200

// Load finds bridgeir.toml from startDir upward and decodes it.
// ok is false when there is no config file.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates one config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if cfg.Resolve.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [resolve].jobs must not be negative", path)
	}
	if cfg.Resolve.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [resolve].max_diagnostics must not be negative", path)
	}
	if !meta.IsDefined("resolve", "inputs") {
		cfg.Resolve.Inputs = []string{"."}
	}
	if !meta.IsDefined("resolve", "max_diagnostics") {
		cfg.Resolve.MaxDiagnostics = DefaultMaxDiagnostics
	}
	return cfg, nil
}

// InputPaths resolves [resolve].inputs against the project root.
func (m *Manifest) InputPaths() ([]string, error) {
	out := make([]string, 0, len(m.Config.Resolve.Inputs))
	for _, in := range m.Config.Resolve.Inputs {
		p, err := m.within(in)
		if err != nil {
			return nil, fmt.Errorf("%s: [resolve].inputs: %w", m.Path, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// IRPath resolves [output].ir, or returns "" when unset.
func (m *Manifest) IRPath() (string, error) {
	if strings.TrimSpace(m.Config.Output.IR) == "" {
		return "", nil
	}
	p, err := m.within(m.Config.Output.IR)
	if err != nil {
		return "", fmt.Errorf("%s: [output].ir: %w", m.Path, err)
	}
	return p, nil
}

func (m *Manifest) within(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%q: must be relative", rel)
	}
	p := filepath.Join(m.Root, filepath.FromSlash(rel))
	r, err := filepath.Rel(m.Root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", rel, ErrOutsideRoot)
	}
	return p, nil
}

// DefaultConfig is what `bridgeir init` writes.
func DefaultConfig(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = %q\n\n", name)
	b.WriteString("[resolve]\n")
	b.WriteString("inputs = [\"bridge\"]\n")
	fmt.Fprintf(&b, "max_diagnostics = %d\n", DefaultMaxDiagnostics)
	b.WriteString("warnings_as_errors = false\n\n")
	b.WriteString("[output]\n")
	b.WriteString("ir = \"build/bridge.ir\"\n")
	return b.String()
}
