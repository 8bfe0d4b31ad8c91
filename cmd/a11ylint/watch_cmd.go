package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"a11ylint/internal/report"
	"a11ylint/internal/watch"
)

// watchCmd re-audits HTML files as they change.
var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-audit HTML files on change",
	Long: `Watches the given directories (default: the workspace) and re-audits
any .html file that is written or created. Stop with Ctrl+C.`,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Batch window for change bursts")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Watch mode runs until interrupted; the global timeout does not apply.
	ctx, cancel := signalContextNoTimeout()
	defer cancel()

	dirs := args
	if len(dirs) == 0 {
		dirs = []string{resolveWorkspace()}
	}

	auditor := newAuditor()
	onChange := func(paths []string) {
		results, err := auditor.RunFiles(ctx, paths)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("re-audit failed", zap.Error(err))
			}
			return
		}
		rep := report.New(time.Now(), results)
		if err := writeReport(rep); err != nil {
			logger.Warn("failed to write report", zap.Error(err))
		}
	}

	w, err := watch.New(dirs, watchDebounce, onChange)
	if err != nil {
		return err
	}

	fmt.Printf("watching %v for .html changes (Ctrl+C to stop)\n", dirs)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
