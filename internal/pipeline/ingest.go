// ABOUTME: Ingestion pipeline wiring crawl, chunk, embed, and store stages
// ABOUTME: Tracks per-stage metrics and keeps re-runs idempotent
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bookrag/bookrag/internal/core"
	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/store"
)

// Crawler fetches documents from a site.
type Crawler interface {
	Crawl(ctx context.Context, startURL string) ([]models.Document, error)
}

// Embedder turns texts into embedding vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Metrics records what one ingestion run did and how long each stage took.
type Metrics struct {
	PagesCrawled  int           `json:"pages_crawled"`
	PagesSkipped  int           `json:"pages_skipped"`
	ChunksCreated int           `json:"chunks_created"`
	PointsStored  int           `json:"points_stored"`
	CrawlDuration time.Duration `json:"crawl_duration"`
	ChunkDuration time.Duration `json:"chunk_duration"`
	EmbedDuration time.Duration `json:"embed_duration"`
	StoreDuration time.Duration `json:"store_duration"`
	TotalDuration time.Duration `json:"total_duration"`
}

// Ingestor runs the full pipeline: crawl a site, segment the pages, embed
// the chunks, and upsert the points.
type Ingestor struct {
	crawler  Crawler
	chunker  *core.Chunker
	embedder Embedder
	store    store.VectorStore
	dedup    *Deduplicator
	dim      int
}

// NewIngestor wires the pipeline stages together.
func NewIngestor(c Crawler, chunker *core.Chunker, e Embedder, s store.VectorStore, dimension int) *Ingestor {
	return &Ingestor{
		crawler:  c,
		chunker:  chunker,
		embedder: e,
		store:    s,
		dedup:    NewDeduplicator(s),
		dim:      dimension,
	}
}

// Run ingests the site at startURL. Unchanged documents are skipped; changed
// and new ones are chunked, embedded, and stored. Running twice over the
// same site leaves the store unchanged the second time.
func (in *Ingestor) Run(ctx context.Context, startURL string) (*Metrics, error) {
	started := time.Now()
	metrics := &Metrics{}

	if err := in.store.EnsureCollection(ctx, in.dim); err != nil {
		return nil, fmt.Errorf("failed to prepare collection: %w", err)
	}

	crawlStart := time.Now()
	docs, err := in.crawler.Crawl(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}
	metrics.CrawlDuration = time.Since(crawlStart)
	metrics.PagesCrawled = len(docs)

	fresh := in.dedup.FilterNew(ctx, docs)
	metrics.PagesSkipped = len(docs) - len(fresh)

	chunkStart := time.Now()
	var chunks []models.Chunk
	for _, doc := range fresh {
		chunks = append(chunks, in.chunker.Segment(doc)...)
	}
	metrics.ChunkDuration = time.Since(chunkStart)
	metrics.ChunksCreated = len(chunks)

	if len(chunks) == 0 {
		metrics.TotalDuration = time.Since(started)
		log.Printf("ingest of %s: nothing new to store", startURL)
		return metrics, nil
	}

	embedStart := time.Now()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := in.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	metrics.EmbedDuration = time.Since(embedStart)

	storeStart := time.Now()
	points, err := BuildPoints(chunks, vectors)
	if err != nil {
		return nil, err
	}
	if err := in.store.Upsert(ctx, points); err != nil {
		return nil, fmt.Errorf("store failed: %w", err)
	}
	metrics.StoreDuration = time.Since(storeStart)
	metrics.PointsStored = len(points)
	metrics.TotalDuration = time.Since(started)

	log.Printf("ingest of %s: %d pages (%d skipped), %d chunks, %d points in %v",
		startURL, metrics.PagesCrawled, metrics.PagesSkipped, metrics.ChunksCreated,
		metrics.PointsStored, metrics.TotalDuration.Round(time.Millisecond))
	return metrics, nil
}

// CheckFreshness reports per-URL whether stored content is stale relative to
// the live site, without writing anything.
func (in *Ingestor) CheckFreshness(ctx context.Context, startURL string) (map[string]bool, error) {
	docs, err := in.crawler.Crawl(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}

	stale := make(map[string]bool, len(docs))
	for _, doc := range docs {
		changed, _ := in.dedup.HasChanged(ctx, doc.URL, doc.ContentHash)
		stale[doc.URL] = changed
	}
	return stale, nil
}
