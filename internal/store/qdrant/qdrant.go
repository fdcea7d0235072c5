// ABOUTME: Qdrant-backed VectorStore speaking the REST API over net/http
// ABOUTME: Handles collection setup, keyword indexes, upsert, search, and scroll
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/store"
)

const defaultTimeout = 30 * time.Second

// Store is a minimal REST client to a Qdrant instance. It assumes cosine
// distance and creates the collection on first use.
type Store struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

// Config carries the connection parameters for a Qdrant instance.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New returns a Store for the given instance. No network calls happen until
// EnsureCollection.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Store{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection with cosine distance if it does not
// exist, then ensures keyword indexes on the payload fields used for
// duplicate and freshness checks. Index creation conflicts are ignored.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}

	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		if err := s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection), body, nil); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
		}
		log.Printf("created qdrant collection %s (dimension %d)", s.collection, dimension)
	}

	for _, field := range []string{store.FieldContentHash, store.FieldURL} {
		body := map[string]any{
			"field_name":   field,
			"field_schema": "keyword",
		}
		url := fmt.Sprintf("%s/collections/%s/index?wait=true", s.baseURL, s.collection)
		if err := s.putJSON(ctx, url, body, nil); err != nil {
			// An existing index returns a conflict; either way scrolls still
			// work, just slower, so this is not fatal.
			log.Printf("payload index on %s not created: %v", field, err)
		}
	}
	return nil
}

// Upsert writes points with wait=true so a following read sees them.
func (s *Store) Upsert(ctx context.Context, points []models.Point) error {
	if len(points) == 0 {
		return nil
	}

	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, s.collection)
	if err := s.putJSON(ctx, url, body, nil); err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search runs a cosine similarity search and returns scored points with
// their payloads.
func (s *Store) Search(ctx context.Context, vector []float64, limit int) ([]models.ScoredPoint, error) {
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload models.Payload `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.collection)
	if err := s.postJSON(ctx, url, req, &resp); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]models.ScoredPoint, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, models.ScoredPoint{
			Point: models.Point{
				ID:      fmt.Sprintf("%v", r.ID),
				Payload: r.Payload,
			},
			Score: r.Score,
		})
	}
	return results, nil
}

// ScrollByField filters points on a payload field via the scroll API.
func (s *Store) ScrollByField(ctx context.Context, field, value string, limit int) ([]models.Point, error) {
	req := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   field,
					"match": map[string]any{"value": value},
				},
			},
		},
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result struct {
			Points []struct {
				ID      any            `json:"id"`
				Payload models.Payload `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/scroll", s.baseURL, s.collection)
	if err := s.postJSON(ctx, url, req, &resp); err != nil {
		return nil, fmt.Errorf("scroll on %s failed: %w", field, err)
	}

	points := make([]models.Point, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		points = append(points, models.Point{
			ID:      fmt.Sprintf("%v", p.ID),
			Payload: p.Payload,
		})
	}
	return points, nil
}

// collectionExists probes the collection endpoint; 404 means missing.
func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	url := fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, fmt.Errorf("%w: GET %s returned %s", store.ErrUnavailable, url, resp.Status)
	}
	return true, nil
}

func (s *Store) putJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, out)
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %s: %s", store.ErrUnavailable, method, url, resp.Status, bytes.TrimSpace(detail))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}
