// ABOUTME: Shared wiring helpers for CLI commands
// ABOUTME: Builds the store, embedder, and retriever from configuration
package commands

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bookrag/bookrag/internal/config"
	"github.com/bookrag/bookrag/internal/core"
	"github.com/bookrag/bookrag/internal/crawler"
	"github.com/bookrag/bookrag/internal/llm"
	"github.com/bookrag/bookrag/internal/pipeline"
	"github.com/bookrag/bookrag/internal/retrieval"
	"github.com/bookrag/bookrag/internal/store"
	"github.com/bookrag/bookrag/internal/store/qdrant"
	"github.com/bookrag/bookrag/internal/store/sqlite"
)

// closer is returned alongside stores that hold resources.
type closer func() error

func noopCloser() error { return nil }

// newVectorStore selects Qdrant when QDRANT_URL is set, falling back to the
// local SQLite store otherwise.
func newVectorStore(cfg *config.Config) (store.VectorStore, closer, error) {
	if cfg.QdrantURL != "" {
		s := qdrant.New(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.CollectionName,
			Timeout:    cfg.Timeout,
		})
		return s, noopCloser, nil
	}

	s, err := sqlite.Open(sqlite.DefaultDBPath(), cfg.CollectionName)
	if err != nil {
		return nil, nil, fmt.Errorf("opening local store: %w", err)
	}
	return s, s.Close, nil
}

// newLLMClient builds the embedding/chat client from configuration.
func newLLMClient(cfg *config.Config) (*llm.Client, error) {
	return llm.NewClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
}

// newIngestor wires the full ingestion pipeline.
func newIngestor(cfg *config.Config, s store.VectorStore, client *llm.Client) (*pipeline.Ingestor, error) {
	chunker, err := core.NewChunker(cfg.ChunkSize, cfg.OverlapSize)
	if err != nil {
		return nil, err
	}
	return pipeline.NewIngestor(crawler.New(cfg.MaxPages), chunker, client, s, cfg.VectorDimension), nil
}

// newRetriever wires the retrieval entry point.
func newRetriever(s store.VectorStore, client *llm.Client) retrieval.Func {
	return retrieval.New(client, s).Retrieve
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
