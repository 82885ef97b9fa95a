package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bridgeir/internal/diag"
	"bridgeir/internal/diagfmt"
	"bridgeir/internal/driver"
	"bridgeir/internal/irfile"
	"bridgeir/internal/observ"
	"bridgeir/internal/project"
	"bridgeir/internal/source"
	"bridgeir/internal/ui"
)

// errDiagnostics ends a run whose diagnostics were already printed.
var errDiagnostics = errors.New("resolution reported errors")

var resolveCmd = &cobra.Command{
	Use:   "resolve [files|dirs...]",
	Short: "Resolve bridge files and report diagnostics",
	Long: `Resolve every declaration in the given bridge files (directories are
searched for *.bridge.toml, *.bridge.json and *.bridge.jsonc). Without
arguments the inputs listed in bridgeir.toml are used.`,
	RunE: runResolve,
}

func init() {
	addResolveFlags(resolveCmd)
}

// addResolveFlags registers the flags shared by resolve and watch.
func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=GOMAXPROCS)")
	cmd.Flags().String("emit-ir", "", "write the msgpack IR file to this path")
	cmd.Flags().Bool("summary", false, "print a table of resolved structs")
	cmd.Flags().Bool("no-warnings", false, "drop warnings")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("with-notes", true, "include notes")
	cmd.Flags().Bool("preview", true, "show the offending source line (pretty format)")
	cmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	cmd.Flags().Bool("disk-cache", false, "reuse results of unchanged files from the on-disk cache")
	cmd.Flags().Bool("clear-cache", false, "empty the on-disk cache before resolving")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("timings", false, "print how long each phase took")
	cmd.Flags().Bool("sort", false, "order diagnostics by source position instead of declaration order")
}

type resolveSettings struct {
	inputs           []string
	baseDir          string
	pkg              string
	format           string
	jobs             int
	maxDiagnostics   int
	noWarnings       bool
	warningsAsErrors bool
	emitIR           string
	summary          bool
	withNotes        bool
	preview          bool
	pathMode         diagfmt.PathMode
	color            bool
	quiet            bool
	timings          bool
	sortByPosition   bool
	tui              bool
	cache            *driver.DiskCache
}

func runResolve(cmd *cobra.Command, args []string) error {
	s, err := loadResolveSettings(cmd, args)
	if err != nil {
		return err
	}
	hasErrors, err := runResolveOnce(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if hasErrors {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errDiagnostics
	}
	return nil
}

func colorFlag(cmd *cobra.Command) (colorMode, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return "", err
	}
	return readColorMode(value)
}

func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}

// loadResolveSettings merges bridgeir.toml with the flags; flags win when set.
func loadResolveSettings(cmd *cobra.Command, args []string) (*resolveSettings, error) {
	flags := cmd.Flags()
	s := &resolveSettings{}

	var err error
	if s.format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	s.format = strings.ToLower(s.format)
	switch s.format {
	case "pretty", "json", "short":
	default:
		return nil, fmt.Errorf("unknown format: %s", s.format)
	}

	manifest, ok, err := project.Load(".")
	if err != nil {
		return nil, err
	}
	if ok {
		cfg := manifest.Config
		s.baseDir = manifest.Root
		s.pkg = cfg.Package.Name
		s.jobs = cfg.Resolve.Jobs
		s.maxDiagnostics = cfg.Resolve.MaxDiagnostics
		s.warningsAsErrors = cfg.Resolve.WarningsAsErrors
		if s.emitIR, err = manifest.IRPath(); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			if s.inputs, err = manifest.InputPaths(); err != nil {
				return nil, err
			}
		}
	} else {
		s.maxDiagnostics = project.DefaultMaxDiagnostics
	}
	if len(args) > 0 {
		s.inputs = args
	}
	if len(s.inputs) == 0 {
		return nil, errors.New("no inputs: pass bridge files or create bridgeir.toml (see `bridgeir init`)")
	}
	if s.baseDir == "" {
		if s.baseDir, err = os.Getwd(); err != nil {
			return nil, err
		}
	}

	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, err
		}
	}
	if s.maxDiagnostics, err = diagnosticLimit(cmd, s.maxDiagnostics); err != nil {
		return nil, err
	}
	if flags.Changed("warnings-as-errors") {
		if s.warningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("emit-ir") {
		if s.emitIR, err = flags.GetString("emit-ir"); err != nil {
			return nil, err
		}
	}
	if s.noWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return nil, err
	}
	if s.summary, err = flags.GetBool("summary"); err != nil {
		return nil, err
	}
	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return nil, err
	}
	if s.preview, err = flags.GetBool("preview"); err != nil {
		return nil, err
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.sortByPosition, err = flags.GetBool("sort"); err != nil {
		return nil, err
	}

	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return nil, err
	}
	if s.pathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return nil, err
	}

	mode, err := colorFlag(cmd)
	if err != nil {
		return nil, err
	}
	s.color = useColor(mode, stdoutFile(cmd))

	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	uiSetting, err := readColorMode(uiFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", uiFlag)
	}
	s.tui = s.format == "pretty" && !s.quiet && shouldUseTUI(uiSetting, stdoutFile(cmd))

	if err := openCache(cmd, s); err != nil {
		return nil, err
	}
	return s, nil
}

// diagnosticLimit returns --max-diagnostics when it was set to a positive
// value and configured otherwise.
func diagnosticLimit(cmd *cobra.Command, configured int) (int, error) {
	if !cmd.Flags().Changed("max-diagnostics") {
		return configured, nil
	}
	limit, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		return configured, nil
	}
	return limit, nil
}

func openCache(cmd *cobra.Command, s *resolveSettings) error {
	enabled, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return err
	}
	drop, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return err
	}
	if !enabled && !drop {
		return nil
	}
	cache, err := driver.OpenDiskCache("bridgeir")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache unavailable: %v\n", err)
		return nil
	}
	if drop {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if enabled {
		s.cache = cache
	}
	return nil
}

// runResolveOnce performs one full resolution and prints the results.
// hasErrors reports whether error diagnostics remain after the warning policy.
func runResolveOnce(ctx context.Context, s *resolveSettings, stdout, stderr io.Writer) (hasErrors bool, err error) {
	timer := observ.NewTimer()
	if s.timings {
		defer func() {
			if err == nil {
				fmt.Fprint(stderr, timer.Summary())
			}
		}()
	}

	end := timer.Begin("inputs")
	paths, err := driver.ExpandInputs(s.inputs)
	if err != nil {
		return false, fmt.Errorf("failed to collect inputs: %w", err)
	}
	end(fmt.Sprintf("%d files", len(paths)))

	fs := source.NewFileSetWithBase(s.baseDir)
	opts := driver.Options{
		Jobs:           s.jobs,
		MaxDiagnostics: s.maxDiagnostics,
		Cache:          s.cache,
	}

	end = timer.Begin("resolve")
	var res *driver.FilesResult
	if s.tui && len(paths) > 0 {
		res, err = resolveWithUI(ctx, stdout, fs, paths, opts)
	} else {
		res, err = driver.ResolveFiles(ctx, fs, paths, opts)
	}
	if err != nil {
		return false, fmt.Errorf("resolution failed: %w", err)
	}

	end(fmt.Sprintf("%d structs", len(res.Structs)))
	applyWarningPolicy(res.Bag, s.noWarnings, s.warningsAsErrors)
	if s.sortByPosition {
		res.Bag.Sort()
	}

	end = timer.Begin("render")
	switch s.format {
	case "pretty":
		diagfmt.Pretty(stdout, res.Bag, fs, diagfmt.PrettyOpts{
			Color:       s.color,
			PathMode:    s.pathMode,
			ShowNotes:   s.withNotes,
			ShowPreview: s.preview,
		})
	case "short":
		if err := diagfmt.Short(stdout, res.Bag, fs, s.withNotes); err != nil {
			return false, err
		}
	case "json":
		err := diagfmt.JSON(stdout, res.Bag, fs, res.Structs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.pathMode,
			IncludeNotes:     s.withNotes,
		})
		if err != nil {
			return false, fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if s.summary && s.format != "json" {
		fmt.Fprint(stdout, ui.RenderSummary(res.Structs, res.Bag, ui.SummaryOpts{MaxNameWidth: 40}))
	}
	end("")

	if s.emitIR != "" {
		end = timer.Begin("emit-ir")
		if err := writeIR(s.emitIR, irfile.Build(s.pkg, res.Structs, res.Bag.Items(), fs)); err != nil {
			return false, err
		}
		end("")
	}

	if !s.quiet && s.format != "json" {
		fmt.Fprintf(stderr, "resolved %d structs from %d files\n", len(res.Structs), len(paths))
	}
	return res.Bag.HasErrors(), nil
}

func applyWarningPolicy(bag *diag.Bag, noWarnings, warningsAsErrors bool) {
	switch {
	case warningsAsErrors:
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	case noWarnings:
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	}
}

func writeIR(path string, payload *irfile.Payload) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create IR directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create IR file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return irfile.Write(f, payload)
}

type resolveOutcome struct {
	res *driver.FilesResult
	err error
}

func resolveWithUI(ctx context.Context, out io.Writer, fs *source.FileSet, paths []string, opts driver.Options) (*driver.FilesResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan resolveOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.ResolveFiles(ctx, fs, paths, opts)
		outcomeCh <- resolveOutcome{res: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("resolving bridge files", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// the resolver may still be sending if the UI quit early
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.res, uiErr
	}
	return outcome.res, outcome.err
}
