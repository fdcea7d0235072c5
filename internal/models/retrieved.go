// ABOUTME: RetrievedChunk is the read-side projection of a stored point
// ABOUTME: Returned by the retrieval entry point with its similarity score
package models

// RetrievedChunk is a search hit formatted for consumers: the stored chunk
// content and display metadata plus the similarity score.
type RetrievedChunk struct {
	ID       string          `json:"id"`
	Content  string          `json:"content"`
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Headings []string        `json:"headings"`
	Score    float64         `json:"score"`
	Metadata PayloadMetadata `json:"metadata"`
}
