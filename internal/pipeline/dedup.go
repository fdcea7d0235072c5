// ABOUTME: Duplicate and freshness checks over the vector store
// ABOUTME: Skips unchanged documents and detects re-ingested content
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/bookrag/bookrag/internal/core"
	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/store"
)

// scrollProbeLimit is enough to answer existence questions without paging.
const scrollProbeLimit = 100

// Deduplicator answers "have we stored this before" questions against the
// vector store. Check failures lean in the direction that avoids data loss:
// a broken duplicate check ingests again, a broken change check re-embeds.
type Deduplicator struct {
	store store.VectorStore
}

// NewDeduplicator returns a Deduplicator over the given store.
func NewDeduplicator(s store.VectorStore) *Deduplicator {
	return &Deduplicator{store: s}
}

// IsDuplicate reports whether any stored point carries this content hash.
// On store errors it fails open: the content is treated as new, so a broken
// check costs a redundant upsert instead of silently dropping a document.
func (d *Deduplicator) IsDuplicate(ctx context.Context, contentHash string) bool {
	points, err := d.store.ScrollByField(ctx, store.FieldContentHash, contentHash, 1)
	if err != nil {
		log.Printf("duplicate check for %s failed, treating as new: %v", contentHash, err)
		return false
	}
	return len(points) > 0
}

// HasChanged reports whether the stored content for url differs from
// contentHash, along with the stale point IDs to replace. A URL never seen
// before counts as changed with no stale points. On store errors it fails
// closed: the document is re-ingested, which idempotent upserts make safe.
func (d *Deduplicator) HasChanged(ctx context.Context, url, contentHash string) (bool, []string) {
	points, err := d.store.ScrollByField(ctx, store.FieldURL, url, scrollProbeLimit)
	if err != nil {
		log.Printf("change check for %s failed, treating as changed: %v", url, err)
		return true, nil
	}
	if len(points) == 0 {
		return true, nil
	}

	var stale []string
	changed := false
	for _, p := range points {
		if p.Payload.Metadata.ContentHash != contentHash {
			changed = true
			stale = append(stale, p.ID)
		}
	}
	return changed, stale
}

// FilterNew drops documents whose content hash is already stored.
func (d *Deduplicator) FilterNew(ctx context.Context, docs []models.Document) []models.Document {
	fresh := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		if d.IsDuplicate(ctx, doc.ContentHash) {
			log.Printf("skipping unchanged document %s", doc.URL)
			continue
		}
		fresh = append(fresh, doc)
	}
	return fresh
}

// BuildPoints pairs chunks with their vectors and derives the deterministic
// point IDs, so re-storing identical content overwrites in place.
func BuildPoints(chunks []models.Chunk, vectors [][]float64) ([]models.Point, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("got %d chunks and %d vectors", len(chunks), len(vectors))
	}

	points := make([]models.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = models.Point{
			ID:     core.PointID(chunk.ContentHash, chunk.ID),
			Vector: vectors[i],
			Payload: models.Payload{
				URL:      chunk.URL,
				Title:    chunk.Title,
				Headings: chunk.Headings,
				Content:  chunk.Content,
				Metadata: models.PayloadMetadata{
					ContentHash: chunk.ContentHash,
					SourceURL:   chunk.URL,
					ChunkID:     chunk.ID,
					StartIdx:    chunk.StartIdx,
					EndIdx:      chunk.EndIdx,
					ChunkSize:   chunk.Size,
					TotalLength: chunk.TotalLength,
					IsSubChunk:  chunk.IsSubChunk,
				},
			},
		}
	}
	return points, nil
}
