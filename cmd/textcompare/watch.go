package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/watch"
)

var (
	watchDebounce time.Duration
	watchReport   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <file-a> <file-b>",
	Short: "Re-compare two files whenever either changes",
	Long: `Watch compares the two files once, then again after every settled
change to either of them. Save bursts within the debounce window
collapse into a single comparison. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet window after a change (default from config)")
	watchCmd.Flags().BoolVar(&watchReport, "report", false, "print the full character report on every change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	debounceWindow := cfg.Watch.Debounce.Duration
	if watchDebounce > 0 {
		debounceWindow = watchDebounce
	}

	handler := func(ctx context.Context, a, b string, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			return
		}
		comp, rep := eng.CompareAndReport(ctx, a, b)
		if ctx.Err() != nil {
			// Superseded mid-computation, drop the stale result.
			return
		}
		stamp := time.Now().Format("15:04:05")
		switch {
		case watchReport:
			fmt.Printf("[%s]\n%s\n", stamp, rep.Text)
		case !quiet:
			fmt.Printf("[%s] %s\n", stamp, eng.StatusLine(comp))
		}
	}

	w, err := watch.New(watch.Config{Debounce: debounceWindow}, args[0], args[1], handler, logger.FromExisting(cliLog))
	if err != nil {
		return err
	}
	w.Start()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	return w.Close()
}
