// ABOUTME: Chunk is a bounded contiguous slice of a document's text
// ABOUTME: EmbeddedChunk pairs a chunk with its dense embedding vector
package models

// Chunk is a contiguous substring of a document plus inherited metadata.
// Offsets are rune offsets into the (possibly truncated) document text.
// The ID is derived from the document content hash and the offsets, so it is
// reproducible for the same input text and configuration.
type Chunk struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Headings    []string `json:"headings"`
	Content     string   `json:"content"`
	ContentHash string   `json:"content_hash"`

	StartIdx    int  `json:"start_idx"`
	EndIdx      int  `json:"end_idx"`
	Size        int  `json:"chunk_size"`
	TotalLength int  `json:"total_content_length"`
	IsSubChunk  bool `json:"is_sub_chunk,omitempty"`
}

// EmbeddedChunk is a chunk plus its embedding vector of the configured
// fixed dimensionality.
type EmbeddedChunk struct {
	Chunk
	Embedding []float64 `json:"embedding"`
}
