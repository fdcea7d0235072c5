// ABOUTME: In-memory VectorStore with brute-force cosine similarity search
// ABOUTME: Used by tests and offline runs; mirrors the persistent backends
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/store"
)

// Store keeps points in a map keyed by point ID. All operations are
// safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	points    map[string]models.Point
	order     []string
	dimension int
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{points: make(map[string]models.Point)}
}

// EnsureCollection records the expected vector dimension.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

// Upsert inserts or replaces points by ID. Insertion order is preserved for
// scroll results so repeated runs stay deterministic.
func (s *Store) Upsert(ctx context.Context, points []models.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if s.dimension > 0 && len(p.Vector) != s.dimension {
			return fmt.Errorf("point %s: vector dimension %d, want %d", p.ID, len(p.Vector), s.dimension)
		}
		if _, exists := s.points[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.points[p.ID] = p
	}
	return nil
}

// Search ranks all stored points by cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float64, limit int) ([]models.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.ScoredPoint, 0, len(s.points))
	for _, id := range s.order {
		p := s.points[id]
		results = append(results, models.ScoredPoint{
			Point: p,
			Score: cosineSimilarity(vector, p.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ScrollByField filters points on a payload field.
func (s *Store) ScrollByField(ctx context.Context, field, value string, limit int) ([]models.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Point
	for _, id := range s.order {
		p := s.points[id]
		var got string
		switch field {
		case store.FieldURL:
			got = p.Payload.URL
		case store.FieldContentHash:
			got = p.Payload.Metadata.ContentHash
		default:
			return nil, fmt.Errorf("unsupported scroll field %q", field)
		}
		if got == value {
			matches = append(matches, p)
			if limit > 0 && len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

// Len reports the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0
// when the vectors differ in length or either has zero magnitude.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
