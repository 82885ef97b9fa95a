package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
	"bridgeir/internal/manifest"
	"bridgeir/internal/source"
)

// FileResult is the outcome for one input file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Structs []ir.ResolvedStruct
	Bag     *diag.Bag
	Cached  bool
}

// FilesResult combines every input in the order the paths were given.
type FilesResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	Structs []ir.ResolvedStruct
	Bag     *diag.Bag
}

// ListInputs returns every bridge file under dir, sorted.
func ListInputs(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && manifest.IsBridgeFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExpandInputs replaces directories in paths with the bridge files they
// contain. Files are kept as given.
func ExpandInputs(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := ListInputs(p)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// ResolveFiles loads and resolves every path. A file that cannot be read or
// decoded becomes a diagnostic in its own result and the others proceed.
// The returned error is reserved for cancellation.
func ResolveFiles(ctx context.Context, fset *source.FileSet, paths []string, opts Options) (*FilesResult, error) {
	if fset == nil {
		fset = source.NewFileSet()
	}
	limit := opts.maxDiagnostics()
	res := &FilesResult{
		FileSet: fset,
		Files:   make([]FileResult, len(paths)),
		Bag:     diag.NewBag(limit),
	}
	if len(paths) == 0 {
		diag.ReportInfo(diag.BagReporter{Bag: res.Bag}, diag.ProjInfo, source.Span{}, "no bridge files found in the inputs").Emit()
		return res, nil
	}

	started := time.Now()
	for _, path := range paths {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// preload so FileIDs follow the argument order
	fileIDs := make([]source.FileID, len(paths))
	loadErrs := make([]error, len(paths))
	for i, path := range paths {
		fileIDs[i], loadErrs[i] = fset.Load(path)
	}

	parsed := make([]*manifest.File, len(paths))
	parseErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), len(paths)))
	for i := range paths {
		if loadErrs[i] != nil {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			emit(opts.Progress, Event{File: paths[i], Stage: StageLoad, Status: StatusWorking})
			parsed[i], parseErrs[i] = manifest.Parse(fset, fileIDs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, path := range paths {
		fr := &res.Files[i]
		fr.Path = path
		switch {
		case loadErrs[i] != nil:
			fr.Bag = diag.NewBag(limit)
			fr.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  fmt.Sprintf("failed to load file: %v", loadErrs[i]),
			})
		case parseErrs[i] != nil:
			fr.FileID = fileIDs[i]
			fr.Bag = diag.NewBag(limit)
			fr.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.ProjManifestInvalid,
				Message:  parseErrs[i].Error(),
			})
		default:
			fr.FileID = fileIDs[i]
			emit(opts.Progress, Event{File: path, Stage: StageResolve, Status: StatusWorking})
			if err := resolveFile(ctx, fset, parsed[i], fr, opts); err != nil {
				return nil, err
			}
		}
		res.Structs = append(res.Structs, fr.Structs...)
		appendLimited(res.Bag, fr.Bag)

		status := StatusDone
		if fr.Bag.HasErrors() {
			status = StatusError
		}
		emit(opts.Progress, Event{File: path, Stage: StageResolve, Status: status, Cached: fr.Cached, Err: firstErr(loadErrs[i], parseErrs[i])})
	}
	emit(opts.Progress, Event{Stage: StageResolve, Status: StatusDone, Elapsed: time.Since(started)})
	return res, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func resolveFile(ctx context.Context, fset *source.FileSet, mf *manifest.File, fr *FileResult, opts Options) error {
	var key Digest
	if opts.Cache != nil {
		key = CacheKey(fset.Get(mf.FileID).Content, opts.MaxDiagnostics)
		var payload CachePayload
		hit, err := opts.Cache.Get(key, &payload)
		if err == nil && hit {
			payload.rebind(mf.FileID)
			fr.Structs = payload.Structs
			fr.Bag = diag.NewBag(opts.maxDiagnostics())
			for _, d := range payload.Diagnostics {
				fr.Bag.Add(d)
			}
			fr.Cached = true
			return nil
		}
		// an unreadable entry is rewritten below
	}

	batch, err := ResolveBatch(ctx, mf.Decls, opts)
	if err != nil {
		return err
	}
	fr.Structs = batch.Structs
	fr.Bag = batch.Bag

	if opts.Cache != nil {
		err := opts.Cache.Put(key, &CachePayload{
			Structs:     batch.Structs,
			Diagnostics: batch.Bag.Items(),
		})
		if err != nil {
			fr.Bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.ProjCacheUnavailable,
				Message:  fmt.Sprintf("failed to write cache entry: %v", err),
			})
		}
	}
	return nil
}
