package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/logifact/config"
	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/generate"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/watch"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch [inputs...]",
	Short: "Regenerate facts whenever the model changes",
	Long: `Generate facts once, then watch the inputs and regenerate after each
settled burst of changes. Model documents are watched individually; for the
go host the whole package tree under --dir is watched, excluding the output
root. Failed runs are reported and watching continues.

Examples:
  logifact watch model.yaml
  logifact watch --host go --dir . ./...`,
	RunE: runWatch,
}

func init() {
	addGenerateFlags(WatchCmd)
	WatchCmd.Flags().Int("debounce", 0, "Milliseconds to wait for changes to settle (default: watch.debounce_ms)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, opts, err := resolveOptions(cmd, args)
	if err != nil {
		return err
	}
	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	if cmd.Flags().Changed("debounce") {
		ms, _ := cmd.Flags().GetInt("debounce")
		debounce = time.Duration(ms) * time.Millisecond
	}

	log := logger.Logger.Named("watch")
	verbose := verbosity(cmd)
	run := func(ctx context.Context) error {
		summary, err := generate.Run(ctx, opts, log)
		if summary != nil {
			printSummary(summary, verbose)
		}
		return err
	}

	w, err := watch.New(run, debounce, log)
	if err != nil {
		return err
	}
	defer w.Close()

	switch opts.Host {
	case config.HostGo:
		if err := w.AddTree(opts.Dir, watch.GoSource, opts.Root); err != nil {
			return err
		}
	default:
		for _, path := range opts.Inputs {
			if err := w.AddFile(path); err != nil {
				return err
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		pterm.Warning.Printf("Initial generation failed: %v\n", err)
	}
	pterm.Info.Println("Watching for changes (Ctrl+C to stop)...")

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	pterm.Success.Println("Stopped watching")
	return nil
}
