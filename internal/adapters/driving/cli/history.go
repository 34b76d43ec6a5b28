package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	entries, err := ragService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No searches recorded yet.")
		return nil
	}
	for _, entry := range entries {
		cmd.Printf("  %s  %s %s\n",
			mutedStyle.Render(entry.CreatedAt.Format("2006-01-02 15:04")),
			entry.Query,
			mutedStyle.Render(fmt.Sprintf("(%d results)", entry.Results)))
	}
	return nil
}
