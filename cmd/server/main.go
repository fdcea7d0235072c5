// ABOUTME: Standalone MCP server entry point with stdio transport
// ABOUTME: Wires the store, pipeline, and agent and registers all tools
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bookrag/bookrag/internal/agent"
	"github.com/bookrag/bookrag/internal/config"
	"github.com/bookrag/bookrag/internal/core"
	"github.com/bookrag/bookrag/internal/crawler"
	"github.com/bookrag/bookrag/internal/llm"
	"github.com/bookrag/bookrag/internal/mcp"
	"github.com/bookrag/bookrag/internal/pipeline"
	"github.com/bookrag/bookrag/internal/retrieval"
	"github.com/bookrag/bookrag/internal/store"
	"github.com/bookrag/bookrag/internal/store/qdrant"
	"github.com/bookrag/bookrag/internal/store/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - embedding and chat features will not work")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Qdrant when configured, local SQLite otherwise
	var vs store.VectorStore
	if cfg.QdrantURL != "" {
		vs = qdrant.New(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.CollectionName,
			Timeout:    cfg.Timeout,
		})
	} else {
		s, err := sqlite.Open(sqlite.DefaultDBPath(), cfg.CollectionName)
		if err != nil {
			log.Fatalf("Failed to open local store: %v", err)
		}
		defer func() { _ = s.Close() }()
		vs = s
	}

	client, err := llm.NewClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		log.Fatalf("Failed to initialize client: %v", err)
	}

	chunker, err := core.NewChunker(cfg.ChunkSize, cfg.OverlapSize)
	if err != nil {
		log.Fatalf("Failed to build chunker: %v", err)
	}
	ingestor := pipeline.NewIngestor(crawler.New(cfg.MaxPages), chunker, client, vs, cfg.VectorDimension)
	retrieve := retrieval.New(client, vs).Retrieve
	a := agent.New(retrieve, client, cfg.TopK)

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"bookrag",
		"0.1.0",
	)
	mcp.RegisterTools(server, ingestor, retrieve, a, cfg.TopK)

	// Start server with stdio transport
	log.Println("bookrag MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
