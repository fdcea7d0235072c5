// ABOUTME: CLI command for question answering grounded in ingested content
// ABOUTME: Retrieves context and asks the chat model, printing sources
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookrag/bookrag/internal/agent"
	"github.com/bookrag/bookrag/internal/config"
)

var askTopK int

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from the documentation",
		Long: `Ask a natural-language question. The answer is generated by the chat
model using the most relevant ingested chunks as context, and the
contributing sources are listed with it.

Examples:
  bookrag ask "What is physical AI?"
  bookrag ask --top-k 10 "How do humanoid robots balance?"
  bookrag ask --format json "What sensors do robots use?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().IntVar(&askTopK, "top-k", 5, "Number of context chunks to retrieve")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("initializing client: %w", err)
	}

	a := agent.New(newRetriever(s, client), client, askTopK)
	resp, err := a.Ask(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", resp.Answer)
	if !quiet && len(resp.Sources) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSources:\n")
		for _, src := range resp.Sources {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%.3f] %s\n", src.Score, src.URL)
		}
	}
	return nil
}
