// ABOUTME: CLI command to crawl and ingest a documentation site
// ABOUTME: Runs the crawl, chunk, embed, store pipeline and prints metrics
package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookrag/bookrag/internal/config"
)

var ingestURL string

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Crawl a documentation site and store its embedded chunks",
		Long: `Crawl a documentation site, split the pages into overlapping chunks,
embed them, and store the result in the vector store.

Ingestion is idempotent: pages whose content has not changed since the
last run are skipped, and unchanged chunks overwrite themselves.

Examples:
  bookrag ingest
  bookrag ingest --url https://docs.example.com
  bookrag ingest --format json`,
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestURL, "url", "", "Site root URL (default: SITE_URL from environment)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	url := ingestURL
	if url == "" {
		url = cfg.SiteURL
	}
	if err := config.ValidateURL(url); err != nil {
		return err
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

	ingestor, err := newIngestor(cfg, s, client)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Ingesting %s ...\n", url)
	}

	metrics, err := ingestor.Run(cmd.Context(), url)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Pages crawled:  %d\n", metrics.PagesCrawled)
		fmt.Fprintf(cmd.OutOrStdout(), "Pages skipped:  %d (unchanged)\n", metrics.PagesSkipped)
		fmt.Fprintf(cmd.OutOrStdout(), "Chunks created: %d\n", metrics.ChunksCreated)
		fmt.Fprintf(cmd.OutOrStdout(), "Points stored:  %d\n", metrics.PointsStored)
		fmt.Fprintf(cmd.OutOrStdout(), "Total time:     %v\n", metrics.TotalDuration.Round(time.Millisecond))
	}
	return nil
}
