package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/loaders"
	"github.com/custodia-labs/ragdex/internal/watcher"
)

var (
	syncRefresh bool
	syncWatch   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the corpus with its sources",
	Long: `Loads every registered source, re-chunks and re-embeds whatever
changed, and persists the updated corpus. With --refresh every file is
re-evaluated even when its content hash is unchanged. With --watch the
command keeps running and re-syncs when local source files change.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncRefresh, "refresh", false, "re-evaluate unchanged files too")
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "keep running and re-sync on file changes")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	report, err := ragService.Sync(cmd.Context(), syncOptions(cmd, syncRefresh))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	printSyncReport(cmd, report)

	if syncWatch {
		return runWatchLoop(cmd)
	}
	return nil
}

// syncOptions builds the interactive sync options. Progress lines and
// the continue-on-load-errors prompt are only offered on a terminal;
// non-interactive runs stay quiet and abort on load errors.
func syncOptions(cmd *cobra.Command, refresh bool) domain.SyncOptions {
	opts := domain.SyncOptions{Refresh: refresh}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return opts
	}
	opts.Progress = func(line string) {
		cmd.Printf("%s\n", line)
	}
	opts.OnLoadErrors = func(errs []error) bool {
		return confirmLoadErrors(cmd, errs)
	}
	return opts
}

// confirmLoadErrors lists the failed sources and asks whether to index
// the rest anyway.
func confirmLoadErrors(cmd *cobra.Command, errs []error) bool {
	cmd.Printf("%d source(s) failed to load:\n", len(errs))
	for _, err := range errs {
		cmd.Printf("  %v\n", err)
	}
	cmd.Print("Continue with the sources that loaded? [y/N]: ")

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printSyncReport summarises a finished run.
func printSyncReport(cmd *cobra.Command, report *domain.SyncReport) {
	cmd.Printf("Sync complete: %d added, %d deleted, %d unchanged (%d chunks, %s)\n",
		report.Added, report.Deleted, report.Unchanged, report.Chunks,
		report.Duration.Round(time.Millisecond))
}

// runWatchLoop blocks watching the local sources until interrupted.
func runWatchLoop(cmd *cobra.Command) error {
	ctx := cmd.Context()

	sources, err := ragService.Sources(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	roots := loaders.LocalRoots(sources, loaderCommands)
	if len(roots) == 0 {
		return errors.New("no local sources to watch")
	}

	w, err := watcher.New(ragService, watcher.Options{
		Roots: roots,
		OnReport: func(report *domain.SyncReport, err error) {
			if err != nil {
				cmd.PrintErrf("watch sync failed: %v\n", err)
				return
			}
			printSyncReport(cmd, report)
		},
	})
	if err != nil {
		return err
	}

	cmd.Printf("Watching %d local source root(s). Press Ctrl+C to stop.\n", len(roots))
	return w.Run(ctx)
}
