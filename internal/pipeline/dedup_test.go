// ABOUTME: Tests for duplicate detection and freshness checks
// ABOUTME: Verifies fail-open/fail-closed behavior on store errors

package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/bookrag/bookrag/internal/core"
	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/store"
	"github.com/bookrag/bookrag/internal/store/memory"
)

// failingStore wraps the in-memory store and fails every scroll.
type failingStore struct {
	*memory.Store
}

func (f *failingStore) ScrollByField(ctx context.Context, field, value string, limit int) ([]models.Point, error) {
	return nil, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}

func storedPoint(id, url, hash string) models.Point {
	return models.Point{
		ID:     id,
		Vector: []float64{1},
		Payload: models.Payload{
			URL: url,
			Metadata: models.PayloadMetadata{
				ContentHash: hash,
				SourceURL:   url,
				ChunkID:     id,
			},
		},
	}
}

func TestIsDuplicate(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	if err := s.Upsert(ctx, []models.Point{storedPoint("p1", "https://example.com/a", "hash-a")}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	d := NewDeduplicator(s)
	if !d.IsDuplicate(ctx, "hash-a") {
		t.Error("stored hash not reported as duplicate")
	}
	if d.IsDuplicate(ctx, "hash-unknown") {
		t.Error("unknown hash reported as duplicate")
	}
}

func TestIsDuplicate_FailsOpen(t *testing.T) {
	d := NewDeduplicator(&failingStore{memory.New()})
	// A broken check must not drop documents, so errors read as "not stored".
	if d.IsDuplicate(context.Background(), "hash-a") {
		t.Error("store error should fail open to not-a-duplicate")
	}
}

func TestHasChanged(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	url := "https://example.com/page"
	if err := s.Upsert(ctx, []models.Point{
		storedPoint("p1", url, "hash-old"),
		storedPoint("p2", url, "hash-old"),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	d := NewDeduplicator(s)

	changed, stale := d.HasChanged(ctx, url, "hash-old")
	if changed {
		t.Error("same hash reported as changed")
	}
	if len(stale) != 0 {
		t.Errorf("got %d stale points for unchanged content", len(stale))
	}

	changed, stale = d.HasChanged(ctx, url, "hash-new")
	if !changed {
		t.Error("new hash not reported as changed")
	}
	if len(stale) != 2 {
		t.Errorf("got %d stale points, want 2", len(stale))
	}

	changed, stale = d.HasChanged(ctx, "https://example.com/never-seen", "hash-x")
	if !changed {
		t.Error("unseen URL should count as changed")
	}
	if len(stale) != 0 {
		t.Errorf("unseen URL returned %d stale points", len(stale))
	}
}

func TestHasChanged_FailsClosed(t *testing.T) {
	d := NewDeduplicator(&failingStore{memory.New()})
	// A broken check must not hide updates, so errors read as "changed".
	changed, stale := d.HasChanged(context.Background(), "https://example.com", "hash-a")
	if !changed {
		t.Error("store error should fail closed to changed")
	}
	if stale != nil {
		t.Errorf("store error returned stale IDs: %v", stale)
	}
}

func TestFilterNew(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	if err := s.Upsert(ctx, []models.Point{storedPoint("p1", "https://example.com/a", "hash-a")}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	docs := []models.Document{
		{URL: "https://example.com/a", Content: "a", ContentHash: "hash-a"},
		{URL: "https://example.com/b", Content: "b", ContentHash: "hash-b"},
	}
	fresh := NewDeduplicator(s).FilterNew(ctx, docs)
	if len(fresh) != 1 {
		t.Fatalf("got %d fresh documents, want 1", len(fresh))
	}
	if fresh[0].URL != "https://example.com/b" {
		t.Errorf("kept %s, want the unseen document", fresh[0].URL)
	}
}

func TestBuildPoints(t *testing.T) {
	hash := core.HashContent("page text")
	chunks := []models.Chunk{
		{
			ID:          hash[:16] + "_0_1000",
			URL:         "https://example.com/a",
			Title:       "Page A",
			Content:     "first chunk",
			ContentHash: hash,
			StartIdx:    0,
			EndIdx:      1000,
			Size:        11,
			TotalLength: 1900,
		},
		{
			ID:          hash[:16] + "_900_1900",
			URL:         "https://example.com/a",
			Content:     "second chunk",
			ContentHash: hash,
			StartIdx:    900,
			EndIdx:      1900,
			Size:        12,
			TotalLength: 1900,
		},
	}
	vectors := [][]float64{{0.1, 0.2}, {0.3, 0.4}}

	points, err := BuildPoints(chunks, vectors)
	if err != nil {
		t.Fatalf("BuildPoints failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}

	for i, p := range points {
		want := core.PointID(hash, chunks[i].ID)
		if p.ID != want {
			t.Errorf("point[%d].ID = %s, want %s", i, p.ID, want)
		}
		if p.Payload.Metadata.ChunkID != chunks[i].ID {
			t.Errorf("point[%d] chunk ID = %s, want %s", i, p.Payload.Metadata.ChunkID, chunks[i].ID)
		}
		if p.Payload.Content != chunks[i].Content {
			t.Errorf("point[%d] content = %q", i, p.Payload.Content)
		}
	}

	// Same input always derives the same IDs.
	again, err := BuildPoints(chunks, vectors)
	if err != nil {
		t.Fatalf("BuildPoints failed: %v", err)
	}
	for i := range points {
		if points[i].ID != again[i].ID {
			t.Errorf("point IDs not deterministic at index %d", i)
		}
	}
}

func TestBuildPoints_LengthMismatch(t *testing.T) {
	_, err := BuildPoints([]models.Chunk{{ID: "a"}}, [][]float64{{1}, {2}})
	if err == nil {
		t.Error("expected error for chunk/vector length mismatch")
	}
}
