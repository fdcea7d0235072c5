// ABOUTME: VectorStore is the persistence contract for embedded chunks
// ABOUTME: Implemented by the qdrant, sqlite, and in-memory backends
package store

import (
	"context"
	"errors"

	"github.com/bookrag/bookrag/internal/models"
)

// Payload field keys accepted by ScrollByField.
const (
	FieldURL         = "url"
	FieldContentHash = "metadata.content_hash"
)

// ErrUnavailable marks transport or backend failures so callers can
// distinguish a broken service from an empty result.
var ErrUnavailable = errors.New("vector store unavailable")

// VectorStore persists and searches embedded chunks. Upsert is keyed by the
// deterministic point ID, so repeating a call with identical inputs leaves
// the store unchanged.
type VectorStore interface {
	// EnsureCollection creates the collection and its payload indexes if
	// they do not exist yet. Safe to call repeatedly.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert writes points, replacing any existing point with the same ID.
	Upsert(ctx context.Context, points []models.Point) error

	// Search returns up to limit points ranked by cosine similarity to the
	// query vector, best first.
	Search(ctx context.Context, vector []float64, limit int) ([]models.ScoredPoint, error)

	// ScrollByField returns up to limit points whose payload field equals
	// value. Supported fields are FieldURL and FieldContentHash.
	ScrollByField(ctx context.Context, field, value string, limit int) ([]models.Point, error)
}
