// ABOUTME: Point is the persisted unit in the vector store
// ABOUTME: Payload carries chunk content and metadata for filtering and display
package models

// PayloadMetadata is the chunk-level metadata stored with each point.
type PayloadMetadata struct {
	ContentHash string `json:"content_hash"`
	SourceURL   string `json:"source_url"`
	ChunkID     string `json:"chunk_id"`
	StartIdx    int    `json:"start_idx"`
	EndIdx      int    `json:"end_idx"`
	ChunkSize   int    `json:"chunk_size"`
	TotalLength int    `json:"total_content_length"`
	IsSubChunk  bool   `json:"is_sub_chunk,omitempty"`
}

// Payload is the structured map stored alongside each vector.
type Payload struct {
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Headings []string        `json:"headings"`
	Content  string          `json:"content"`
	Metadata PayloadMetadata `json:"metadata"`
}

// Point is one stored vector. The ID is deterministic for a given
// (content hash, chunk ID) pair, which makes repeated upserts no-ops.
type Point struct {
	ID      string    `json:"id"`
	Vector  []float64 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// ScoredPoint is a point returned by similarity search.
type ScoredPoint struct {
	Point
	Score float64 `json:"score"`
}
