// ABOUTME: CLI command running the repeated-query consistency harness
// ABOUTME: Repeats one query and scores top-result agreement
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookrag/bookrag/internal/config"
	"github.com/bookrag/bookrag/internal/harness"
)

var (
	consistencyTopK int
	consistencyRuns int
)

// NewConsistencyCmd creates the consistency command
func NewConsistencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consistency <query>",
		Short: "Check result consistency for a repeated query",
		Long: `Run the same query several times and report how often the runs agree
on the top-ranked result, along with latency statistics.

Examples:
  bookrag consistency "What is physical AI?"
  bookrag consistency --runs 10 "robot control"
  bookrag consistency --format json "neural networks"`,
		Args: cobra.ExactArgs(1),
		RunE: runConsistency,
	}

	cmd.Flags().IntVar(&consistencyTopK, "top-k", 5, "Number of results to retrieve per run")
	cmd.Flags().IntVar(&consistencyRuns, "runs", harness.DefaultConsistencyRuns, "Number of repetitions")

	return cmd
}

func runConsistency(cmd *cobra.Command, args []string) error {
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

	report := harness.RunConsistency(cmd.Context(), newRetriever(s, client), args[0], consistencyTopK, consistencyRuns)

	if outputFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", report.Format())
	return nil
}
