// ABOUTME: SQLite-backed VectorStore for fully local ingestion and retrieval
// ABOUTME: Upserts by point ID and ranks by cosine similarity computed in Go
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/store"
)

// Store implements store.VectorStore on top of a local SQLite file.
type Store struct {
	conn       *sql.DB
	path       string
	collection string
}

// Open opens or creates the database at path.
func Open(path, collection string) (*Store, error) {
	conn, err := openConn(path)
	if err != nil {
		return nil, err
	}
	return &Store{conn: conn, path: path, collection: collection}, nil
}

// OpenInMemory creates an in-memory store (for testing).
func OpenInMemory(collection string) (*Store, error) {
	return Open(":memory:", collection)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureCollection records the vector dimension and rejects a mismatch with
// an existing collection.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}

	var existing int
	err := s.conn.QueryRowContext(ctx,
		`SELECT dimension FROM collection_meta WHERE name = ?`, s.collection).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.conn.ExecContext(ctx,
			`INSERT INTO collection_meta (name, dimension) VALUES (?, ?)`, s.collection, dimension)
		if err != nil {
			return fmt.Errorf("failed to record collection: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	case existing != dimension:
		return fmt.Errorf("collection %s has dimension %d, want %d", s.collection, existing, dimension)
	}
	return nil
}

// Upsert inserts or replaces points by ID inside a single transaction.
func (s *Store) Upsert(ctx context.Context, points []models.Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (id, url, content_hash, vector, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			content_hash = excluded.content_hash,
			vector = excluded.vector,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range points {
		vecJSON, err := json.Marshal(p.Vector)
		if err != nil {
			return fmt.Errorf("failed to encode vector for %s: %w", p.ID, err)
		}
		payloadJSON, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload for %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Payload.URL, p.Payload.Metadata.ContentHash, vecJSON, payloadJSON); err != nil {
			return fmt.Errorf("failed to upsert point %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Search scans all points and ranks them by cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float64, limit int) ([]models.ScoredPoint, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, vector, payload FROM points`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.ScoredPoint
	for rows.Next() {
		p, vec, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		p.Vector = vec
		results = append(results, models.ScoredPoint{
			Point: p,
			Score: cosineSimilarity(vector, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ScrollByField filters points on the indexed url or content hash columns.
func (s *Store) ScrollByField(ctx context.Context, field, value string, limit int) ([]models.Point, error) {
	var column string
	switch field {
	case store.FieldURL:
		column = "url"
	case store.FieldContentHash:
		column = "content_hash"
	default:
		return nil, fmt.Errorf("unsupported scroll field %q", field)
	}

	query := fmt.Sprintf(`SELECT id, vector, payload FROM points WHERE %s = ? ORDER BY id LIMIT ?`, column)
	rows, err := s.conn.QueryContext(ctx, query, value, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var points []models.Point
	for rows.Next() {
		p, vec, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		p.Vector = vec
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return points, nil
}

// scanPoint decodes one row's JSON columns into a point.
func scanPoint(rows *sql.Rows) (models.Point, []float64, error) {
	var (
		p           models.Point
		vecJSON     []byte
		payloadJSON []byte
	)
	if err := rows.Scan(&p.ID, &vecJSON, &payloadJSON); err != nil {
		return p, nil, fmt.Errorf("failed to scan point: %w", err)
	}

	var vec []float64
	if err := json.Unmarshal(vecJSON, &vec); err != nil {
		return p, nil, fmt.Errorf("failed to decode vector for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(payloadJSON, &p.Payload); err != nil {
		return p, nil, fmt.Errorf("failed to decode payload for %s: %w", p.ID, err)
	}
	return p, vec, nil
}

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
