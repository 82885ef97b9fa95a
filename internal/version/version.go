package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the bridgeir CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component in its own color.
// Honors color.NoColor like the rest of the CLI output.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Describe is the one-line build description printed by `bridgeir version`.
func Describe() string {
	s := Colored()
	if GitCommit != "" {
		s += fmt.Sprintf(" (%s)", GitCommit)
	}
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}
