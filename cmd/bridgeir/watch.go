package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/syncthing/notify"

	"bridgeir/internal/manifest"
	"bridgeir/internal/project"
)

const watchDebounce = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-resolve whenever a bridge file under dir changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	addResolveFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	s, err := loadResolveSettings(cmd, []string{dir})
	if err != nil {
		return err
	}
	s.tui = false

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	run := func() {
		if _, err := runResolveOnce(ctx, s, out, errOut); err != nil && ctx.Err() == nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}

	// Buffered so notify does not drop events while a run is in progress.
	events := make(chan notify.EventInfo, 16)
	if err := notify.Watch(filepath.Join(dir, "..."), events, notify.All); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer notify.Stop(events)

	if !s.quiet {
		fmt.Fprintf(errOut, "watching %s for changes...\n", dir)
	}
	run()
	debounceLoop(ctx, events, watchDebounce, relevantChange, run)
	return nil
}

func relevantChange(path string) bool {
	return manifest.IsBridgeFile(path) || filepath.Base(path) == project.ConfigFileName
}

// debounceLoop calls onChange once no relevant event arrived for delay.
// It returns when ctx is done or events is closed.
func debounceLoop(ctx context.Context, events <-chan notify.EventInfo, delay time.Duration, relevant func(string) bool, onChange func()) {
	var timer *time.Timer
	timeout := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil // blocks forever
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !relevant(ev.Path()) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(delay)
		case <-timeout():
			timer = nil
			onChange()
		}
	}
}
