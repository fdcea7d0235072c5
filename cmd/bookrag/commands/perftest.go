// ABOUTME: CLI command running the retrieval performance harness
// ABOUTME: Measures query latency and reports sub-second compliance
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookrag/bookrag/internal/config"
	"github.com/bookrag/bookrag/internal/harness"
)

var perftestTopK int

// NewPerftestCmd creates the perftest command
func NewPerftestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perftest [query ...]",
		Short: "Run retrieval performance tests",
		Long: `Run a batch of queries through retrieval, measuring wall-clock latency
per query. The suite is compliant when at least 95% of queries finish
under one second. With no arguments the built-in query mix is used.

Exits non-zero if the suite is not compliant.

Examples:
  bookrag perftest
  bookrag perftest "What is physical AI?" "robot control"
  bookrag perftest --format json`,
		RunE: runPerftest,
	}

	cmd.Flags().IntVar(&perftestTopK, "top-k", 5, "Number of results to retrieve per query")

	return cmd
}

func runPerftest(cmd *cobra.Command, args []string) error {
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

	queries := args
	if len(queries) == 0 {
		queries = harness.DefaultPerformanceQueries()
	}

	report := harness.RunPerformance(cmd.Context(), newRetriever(s, client), queries, perftestTopK)

	if outputFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", report.Format())
	}

	if !report.Compliant() {
		return fmt.Errorf("performance not compliant: %.1f%% under threshold, need %.1f%%",
			report.ThresholdPercentage, harness.ComplianceTarget)
	}
	return nil
}
