package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bridgeir/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Create a bridgeir.toml and an example bridge file",
	Long: `Initialize a bridgeir project by writing bridgeir.toml and
bridge/example.bridge.toml. Without an argument the current directory is used;
a non-existing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const exampleBridgeFile = `# Declarations handed over by the bridge macro parser.
[[struct]]
name = "Point"
annotations = ['representation = "struct"']

  [[struct.field]]
  name = "x"
  type = "f64"

  [[struct.field]]
  name = "y"
  type = "f64"

[[struct]]
name = "Session"
annotations = ['representation = "class", exposedName = "FfiSession"']

  [[struct.field]]
  name = "id"
  type = "u64"
`

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "bridge-package"
	}

	configPath := filepath.Join(target, project.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", configPath)
	}
	if err := os.WriteFile(configPath, []byte(project.DefaultConfig(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", project.ConfigFileName, err)
	}

	examplePath := filepath.Join(target, "bridge", "example.bridge.toml")
	createdExample := false
	if _, err := os.Stat(examplePath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(examplePath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(examplePath, []byte(exampleBridgeFile), 0o600); err != nil {
			return fmt.Errorf("failed to write example: %w", err)
		}
		createdExample = true
	}

	out := cmd.OutOrStdout()
	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(wd, target); err == nil {
			rel = r
		}
	}
	fmt.Fprintf(out, "Initialized bridgeir project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", project.ConfigFileName)
	if createdExample {
		fmt.Fprintf(out, "  - bridge/example.bridge.toml\n")
	} else {
		fmt.Fprintf(out, "  - bridge/example.bridge.toml (existing)\n")
	}
	return nil
}
