// ABOUTME: CLI command for semantic search over ingested documentation
// ABOUTME: Prints ranked chunks as a table or JSON
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookrag/bookrag/internal/config"
)

var queryTopK int

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search the ingested documentation",
		Long: `Search the ingested documentation by semantic similarity and print
the most relevant chunks with scores and source URLs.

Examples:
  bookrag query "What is physical AI?"
  bookrag query --top-k 10 "humanoid robot control systems"
  bookrag query --format json "neural networks in robotics"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().IntVar(&queryTopK, "top-k", 5, "Number of results to return")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	s, closeStore, err := newVectorStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	client, err := newLLMClient(cfg)
	if err != nil {
		return fmt.Errorf("initializing embedding client: %w", err)
	}

	chunks, err := newRetriever(s, client)(cmd.Context(), args[0], queryTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if len(chunks) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No relevant results found for query: %s\n", args[0])
		}
		return nil
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tTITLE\tURL\tPREVIEW\n")
	fmt.Fprintf(w, "-----\t-----\t---\t-------\n")
	for _, c := range chunks {
		title := c.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			c.Score,
			truncate(title, 30),
			truncate(c.URL, 40),
			truncate(c.Content, 60))
	}
	return w.Flush()
}
