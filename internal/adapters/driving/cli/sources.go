package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage document sources",
	Long:  `Lists, registers and removes the sources the corpus is built from.`,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources",
	Args:  cobra.NoArgs,
	RunE:  runSourcesList,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add [source]",
	Short: "Register a source and sync it in",
	Long: `Registers a document source and immediately syncs it into the corpus.
Sources may be local paths or globs (docs/**/*.md), URLs, recursive
URLs (https://site/docs/**) or github:owner/repo[@ref][#glob] specs.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [source]",
	Short: "Deregister a source and drop its files",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	sources, err := ragService.Sources(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources registered. Add one with: ragdex sources add <path>")
		return nil
	}
	for _, source := range sources {
		cmd.Printf("  %s\n", source)
	}
	return nil
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	report, err := ragService.AddSource(cmd.Context(), args[0], syncOptions(cmd, false))
	if err != nil {
		return fmt.Errorf("add source: %w", err)
	}

	cmd.Printf("Added %s\n", args[0])
	printSyncReport(cmd, report)
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	report, err := ragService.RemoveSource(cmd.Context(), args[0], syncOptions(cmd, false))
	if err != nil {
		return fmt.Errorf("remove source: %w", err)
	}

	cmd.Printf("Removed %s\n", args[0])
	printSyncReport(cmd, report)
	return nil
}
