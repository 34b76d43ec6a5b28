package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Adjust corpus settings",
	Long: `Shows and adjusts the retrieval settings stored with the corpus.
Chunking and the embedding model are fixed once a corpus is built;
change those in the config file and run rebuild.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsTopKCmd = &cobra.Command{
	Use:   "top-k [count]",
	Short: "Set the default number of search results",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsTopK,
}

var settingsRerankerCmd = &cobra.Command{
	Use:   "reranker [model]",
	Short: "Set the reranker model; no argument reverts to rank fusion",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsReranker,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsTopKCmd)
	settingsCmd.AddCommand(settingsRerankerCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	info, err := ragService.Info(cmd.Context())
	if err != nil {
		return fmt.Errorf("corpus info: %w", err)
	}

	reranker := info.Settings.RerankerModel
	if reranker == "" {
		reranker = "rank fusion"
	}

	printField(cmd, "Embedding model", info.Settings.EmbeddingModel)
	printField(cmd, "Chunk size", strconv.Itoa(info.Settings.ChunkSize))
	printField(cmd, "Chunk overlap", strconv.Itoa(info.Settings.ChunkOverlap))
	printField(cmd, "Top K", strconv.Itoa(info.Settings.TopK))
	printField(cmd, "Reranker", reranker)
	return nil
}

func runSettingsTopK(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	topK, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("parse top-k: %w", err)
	}

	if err := ragService.SetTopK(cmd.Context(), topK); err != nil {
		return fmt.Errorf("set top-k: %w", err)
	}
	cmd.Printf("Top K set to %d\n", topK)
	return nil
}

func runSettingsReranker(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	model := ""
	if len(args) == 1 {
		model = args[0]
	}

	if err := ragService.SetRerankerModel(cmd.Context(), model); err != nil {
		return fmt.Errorf("set reranker: %w", err)
	}
	if model == "" {
		cmd.Println("Reranker cleared, rank fusion active")
	} else {
		cmd.Printf("Reranker set to %s\n", model)
	}
	return nil
}
