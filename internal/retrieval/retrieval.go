// ABOUTME: Query-time retrieval over the vector store
// ABOUTME: Validates queries, embeds them, and returns ranked chunks
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/store"
)

const (
	// MinQueryLength is the shortest accepted query after trimming, in runes.
	MinQueryLength = 3
	// MaxQueryLength caps query size to keep embedding requests bounded.
	MaxQueryLength = 10000

	// MinTopK and MaxTopK bound how many results a caller may request.
	MinTopK = 1
	MaxTopK = 100
)

// ErrBadInput marks rejected queries, as opposed to backend failures.
var ErrBadInput = errors.New("invalid query")

// Embedder turns a query into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Func is the retrieval entry point shared by the agent, the harness, and
// the CLI.
type Func func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error)

// ValidateQueryText rejects empty, too-short, too-long, or malformed queries.
func ValidateQueryText(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return fmt.Errorf("%w: query must not be empty", ErrBadInput)
	}
	if !utf8.ValidString(query) {
		return fmt.Errorf("%w: query is not valid UTF-8", ErrBadInput)
	}
	if n := utf8.RuneCountInString(trimmed); n < MinQueryLength {
		return fmt.Errorf("%w: query must be at least %d characters, got %d", ErrBadInput, MinQueryLength, n)
	}
	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return fmt.Errorf("%w: query must be at most %d characters, got %d", ErrBadInput, MaxQueryLength, n)
	}
	return nil
}

// ValidateTopK rejects result counts outside [MinTopK, MaxTopK].
func ValidateTopK(topK int) error {
	if topK < MinTopK || topK > MaxTopK {
		return fmt.Errorf("%w: top_k must be %d-%d, got %d", ErrBadInput, MinTopK, MaxTopK, topK)
	}
	return nil
}

// Retriever answers queries against the vector store.
type Retriever struct {
	embedder Embedder
	store    store.VectorStore
}

// New returns a Retriever over the given embedder and store.
func New(e Embedder, s store.VectorStore) *Retriever {
	return &Retriever{embedder: e, store: s}
}

// Retrieve validates the query, embeds it, and returns the topK most similar
// chunks, best first. Validation failures wrap ErrBadInput; backend failures
// wrap store.ErrUnavailable.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	if err := ValidateQueryText(query); err != nil {
		return nil, err
	}
	if err := ValidateTopK(topK); err != nil {
		return nil, err
	}

	vector, err := r.embedder.Embed(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	scored, err := r.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(scored))
	for _, sp := range scored {
		chunks = append(chunks, models.RetrievedChunk{
			ID:       sp.ID,
			Content:  sp.Payload.Content,
			URL:      sp.Payload.URL,
			Title:    sp.Payload.Title,
			Headings: sp.Payload.Headings,
			Score:    sp.Score,
			Metadata: sp.Payload.Metadata,
		})
	}
	return chunks, nil
}
