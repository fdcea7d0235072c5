// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to ingest and query documentation via stdio
package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bookrag/bookrag/internal/agent"
	"github.com/bookrag/bookrag/internal/config"
	"github.com/bookrag/bookrag/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs bookrag as an MCP (Model Context Protocol) server over stdio,
exposing ingest_site, query_docs, ask_docs, and check_freshness tools.`,
		RunE: runMCPServe,
		Example: `  # Start MCP server (typically called by an MCP client)
  bookrag mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "bookrag": {
  #       "command": "bookrag",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - embedding and chat features will not work")
	}

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

	ingestor, err := newIngestor(cfg, s, client)
	if err != nil {
		return err
	}
	retrieve := newRetriever(s, client)
	a := agent.New(retrieve, client, cfg.TopK)

	server := mcpserver.NewMCPServer(
		"bookrag",
		"0.1.0",
	)
	mcp.RegisterTools(server, ingestor, retrieve, a, cfg.TopK)

	log.Println("bookrag MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
