// ABOUTME: CLI command running the retrieval validation harness
// ABOUTME: Scores known query/answer pairs and reports pass/fail
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookrag/bookrag/internal/config"
	"github.com/bookrag/bookrag/internal/harness"
)

var validateTopK int

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run retrieval validation against known query/answer pairs",
		Long: `Run the built-in validation set through retrieval and score each
result set by word overlap with the expected answer, capped by the
similarity score. A case passes at an accuracy of 0.85 or better.

Exits non-zero if any case fails.

Examples:
  bookrag validate
  bookrag validate --top-k 3
  bookrag validate --format json`,
		RunE: runValidate,
	}

	cmd.Flags().IntVar(&validateTopK, "top-k", 5, "Number of results to retrieve per case")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	report := harness.RunValidation(cmd.Context(), newRetriever(s, client), harness.DefaultValidationSet(), validateTopK)

	if outputFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	} else {
		for _, c := range report.Cases {
			status := "FAIL"
			if c.Passed {
				status = "PASS"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %q accuracy=%.3f retrieved=%d\n",
				status, c.Query, c.AccuracyScore, c.RetrievedCount)
			if c.Error != "" && !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "       error: %s\n", c.Error)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d passed, %d failed\n", report.Passed, report.Failed)
	}

	if !report.AllPass {
		return fmt.Errorf("validation failed: %d of %d cases below threshold", report.Failed, len(report.Cases))
	}
	return nil
}
