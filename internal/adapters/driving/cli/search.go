package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

var (
	searchLimit  int
	searchRerank string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed corpus",
	Long: `Runs a hybrid query over the corpus. Keyword (BM25) and semantic
(vector) searches execute in parallel and their rankings are fused,
or reranked when a rerank model is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = corpus default)")
	searchCmd.Flags().StringVar(&searchRerank, "rerank", "", "rerank model override for this query")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	opts := domain.SearchOptions{
		TopK:        searchLimit,
		RerankModel: searchRerank,
	}

	output, err := ragService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, output)
	}
	return outputSearchText(cmd, output)
}

func outputSearchJSON(cmd *cobra.Command, output *domain.SearchOutput) error {
	data, err := json.MarshalIndent(output.Results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, output *domain.SearchOutput) error {
	if len(output.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(titleStyle.Render("Results:"))
	cmd.Println()
	for i := range output.Results {
		res := &output.Results[i]
		cmd.Printf("  [%d] %s %s\n",
			i+1, pathStyle.Render(res.Path), mutedStyle.Render(fmt.Sprintf("(%.3f)", res.Score)))
		cmd.Printf("      %s\n", mutedStyle.Render(snippet(res.Text, 160)))
		cmd.Println()
	}
	cmd.Printf("Sources: %s\n", strings.Join(output.Sources, ", "))
	return nil
}

// snippet flattens chunk text into a single preview line, dropping the
// document metadata header.
func snippet(text string, maxLen int) string {
	const headerEnd = "</document_metadata>\n\n"
	if idx := strings.Index(text, headerEnd); idx >= 0 {
		text = text[idx+len(headerEnd):]
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}
