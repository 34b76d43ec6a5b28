package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch local sources and re-sync on change",
	Long: `Runs an initial sync, then watches the local filesystem sources and
re-syncs whenever their files change. URL, github and command-loaded
sources are not watched. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	// An empty corpus is fine here: the watcher picks files up as they
	// appear under the registered sources.
	report, err := ragService.Sync(cmd.Context(), syncOptions(cmd, false))
	if err != nil && !errors.Is(err, domain.ErrNoDocuments) {
		return fmt.Errorf("sync failed: %w", err)
	}
	if report != nil {
		printSyncReport(cmd, report)
	}

	return runWatchLoop(cmd)
}
