package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-evaluate every source from scratch",
	Long: `Runs a sync with the refresh flag set: every file is reloaded and
re-hashed. Files whose content is unchanged keep their stored
embeddings, everything else is re-embedded and both indices are
rebuilt. Equivalent to "sync --refresh".`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	report, err := ragService.Sync(cmd.Context(), syncOptions(cmd, true))
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	printSyncReport(cmd, report)
	return nil
}
