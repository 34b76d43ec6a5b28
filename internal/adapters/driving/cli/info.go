package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show corpus statistics and settings",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
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
	batch := "model default"
	if info.Settings.BatchSize > 0 {
		batch = strconv.Itoa(info.Settings.BatchSize)
	}

	cmd.Println(titleStyle.Render("Corpus"))
	printField(cmd, "Store", info.StorePath)
	printField(cmd, "Embedding model", info.Settings.EmbeddingModel)
	printField(cmd, "Chunk size", strconv.Itoa(info.Settings.ChunkSize))
	printField(cmd, "Chunk overlap", strconv.Itoa(info.Settings.ChunkOverlap))
	printField(cmd, "Top K", strconv.Itoa(info.Settings.TopK))
	printField(cmd, "Reranker", reranker)
	printField(cmd, "Batch size", batch)
	printField(cmd, "Files", strconv.Itoa(info.Files))
	printField(cmd, "Chunks", strconv.Itoa(info.Chunks))
	printField(cmd, "Vectors", strconv.Itoa(info.Vectors))

	if len(info.Sources) > 0 {
		cmd.Println()
		cmd.Println(titleStyle.Render("Sources"))
		for _, source := range info.Sources {
			cmd.Printf("  %s\n", source)
		}
	}
	return nil
}

func printField(cmd *cobra.Command, label, value string) {
	cmd.Printf("%s %s\n", labelStyle.Render(label+":"), value)
}
