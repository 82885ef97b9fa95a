package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bridgeir/internal/prof"
	"bridgeir/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bridgeir",
	Short: "Resolve bridged struct declarations into IR",
	Long: `bridgeir reads the struct declarations handed over by the bridge macro
parser, decides how each struct crosses the language boundary, and reports
every annotation problem it finds.`,
	PersistentPreRunE: startProfiling,
}

var profiling *prof.Session

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to keep (values <= 0 use bridgeir.toml or the default)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("trace", "", "write a runtime execution trace to this file")

	err := rootCmd.Execute()
	if profiling != nil {
		if perr := profiling.Stop(); perr != nil {
			fmt.Fprintf(os.Stderr, "warning: profiling: %v\n", perr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func startProfiling(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return err
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return err
	}
	if opts.Trace, err = flags.GetString("trace"); err != nil {
		return err
	}
	if !opts.Enabled() {
		return nil
	}
	profiling, err = prof.Start(opts)
	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	}
	return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
}

// useColor resolves the mode against the terminal state of out.
func useColor(mode colorMode, out *os.File) bool {
	return enabledFor(mode, out)
}

// shouldUseTUI decides whether the interactive progress view runs.
func shouldUseTUI(mode colorMode, out *os.File) bool {
	return enabledFor(mode, out)
}

func enabledFor(mode colorMode, out *os.File) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	}
	return out != nil && isTerminal(out)
}
