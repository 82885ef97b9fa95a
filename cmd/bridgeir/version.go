package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bridgeir/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var (
	versionFormat string
	versionFull   bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include commit and build date")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show bridgeir build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), versionFull)
		case "pretty":
			mode, err := colorFlag(cmd)
			if err != nil {
				return err
			}
			prev := color.NoColor
			color.NoColor = !useColor(mode, stdoutFile(cmd))
			defer func() { color.NoColor = prev }()
			renderVersionPretty(cmd.OutOrStdout(), versionFull)
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func renderVersionPretty(out io.Writer, full bool) {
	if full {
		fmt.Fprintf(out, "bridgeir %s\n", version.Describe())
		return
	}
	fmt.Fprintf(out, "bridgeir %s\n", version.Colored())
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{Tool: "bridgeir", Version: strings.TrimSpace(version.Version)}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
