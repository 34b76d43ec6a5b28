// Package cli implements the ragdex command line interface as a driving
// adapter: every command talks to the core through the RagService port.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdex/internal/core/ports/driving"
	"github.com/custodia-labs/ragdex/internal/logger"
)

// version is stamped by the release build via ldflags.
var version = "dev"

var verbose bool

// ragService is the driving port every command talks to. Production
// runs build it lazily in the persistent pre-run; tests inject a mock.
var ragService driving.RagService

// serviceCleanup releases whatever initServices opened.
var serviceCleanup func()

// loaderCommands mirrors the document_loaders config table. Watch mode
// needs it to tell local sources from command-loaded ones.
var loaderCommands map[string]string

var rootCmd = &cobra.Command{
	Use:   "ragdex",
	Short: "Local-first retrieval augmented generation engine",
	Long: `Ragdex indexes local files, crawled sites and GitHub repositories into
a hybrid keyword (BM25) and semantic (vector) corpus, and serves ranked
context for language models via the CLI, an interactive TUI and MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if ragService != nil || !needsServices(cmd) {
			return nil
		}
		return initServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// needsServices reports whether the command touches the corpus.
// Version, help and completion must work without any configuration.
func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion":
			return false
		}
	}
	return true
}

// Execute runs the root command and tears down whatever it wired up.
func Execute(ctx context.Context) error {
	defer func() {
		if serviceCleanup != nil {
			serviceCleanup()
			serviceCleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
