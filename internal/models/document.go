// ABOUTME: Document represents one crawled page with extracted text
// ABOUTME: Produced once per crawl, immutable afterwards; only chunks are persisted
package models

// Document is a single crawled page. The content hash is computed over the
// extracted text at crawl time and acts as the document's version key.
type Document struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Headings    []string `json:"headings"`
	Content     string   `json:"content"`
	ContentHash string   `json:"content_hash"`
}
