// Package driver runs the resolver over batches of declarations and over
// whole input files, in parallel, with an optional on-disk cache.
package driver

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"bridgeir/internal/bridge"
	"bridgeir/internal/diag"
	"bridgeir/internal/ir"
)

// Options tunes batch resolution.
type Options struct {
	// Jobs bounds the number of goroutines; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the combined bag; <= 0 means no cap.
	MaxDiagnostics int
	// Cache, when set, is consulted per input file by ResolveFiles.
	Cache *DiskCache
	// Progress receives per-file events from ResolveFiles.
	Progress ProgressSink
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Jobs
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return math.MaxUint16
	}
	return o.MaxDiagnostics
}

// BatchResult holds one resolved struct per declaration, in input order.
type BatchResult struct {
	Structs []ir.ResolvedStruct
	Bag     *diag.Bag
}

// ResolveBatch resolves decls in parallel. Each declaration reports into its
// own bag and the bags are combined in declaration order, so the result is
// identical to resolving the declarations one after another.
func ResolveBatch(ctx context.Context, decls []bridge.Declaration, opts Options) (*BatchResult, error) {
	limit := opts.maxDiagnostics()
	out := &BatchResult{
		Structs: make([]ir.ResolvedStruct, len(decls)),
		Bag:     diag.NewBag(limit),
	}
	if len(decls) == 0 {
		return out, nil
	}

	// indices are unique per goroutine, no mutex needed
	bags := make([]*diag.Bag, len(decls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), len(decls)))
	for i := range decls {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			bag := diag.NewBag(limit)
			out.Structs[i] = bridge.Resolve(&decls[i], diag.BagReporter{Bag: bag})
			bags[i] = bag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	appendLimited(out.Bag, bags...)
	return out, nil
}

// appendLimited copies diagnostics into dst in order until dst is full.
func appendLimited(dst *diag.Bag, srcs ...*diag.Bag) {
	for _, src := range srcs {
		if src == nil {
			continue
		}
		for _, d := range src.Items() {
			if !dst.Add(d) {
				return
			}
		}
	}
}
