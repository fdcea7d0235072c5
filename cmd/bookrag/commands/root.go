// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for the bookrag documentation RAG pipeline
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗  ██████╗  ██████╗ ██╗  ██╗██████╗  █████╗  ██████╗
██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝██╔══██╗██╔══██╗██╔════╝
██████╔╝██║   ██║██║   ██║█████╔╝ ██████╔╝███████║██║  ███╗
██╔══██╗██║   ██║██║   ██║██╔═██╗ ██╔══██╗██╔══██║██║   ██║
██████╔╝╚██████╔╝╚██████╔╝██║  ██╗██║  ██║██║  ██║╚██████╔╝
╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookrag",
		Short: "Documentation RAG pipeline: crawl, embed, store, retrieve",
		Long: banner + `
bookrag ingests a documentation site into a vector store and answers
questions over it. Ingestion is idempotent: re-running over unchanged
content stores nothing new. Retrieval quality can be checked with the
built-in validation, performance, and consistency harnesses.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewPerftestCmd())
	cmd.AddCommand(NewConsistencyCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
