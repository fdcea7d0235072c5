// ABOUTME: Chunker splits document text into bounded, overlapping chunks
// ABOUTME: Sliding window with sentence-boundary snapping and recursive resplit
package core

import (
	"fmt"
	"log"
	"strings"

	"github.com/bookrag/bookrag/internal/models"
)

const (
	// MaxContentLength is the safety ceiling on document text, in runes.
	// Longer documents are truncated before segmentation. This is lossy and
	// exists to protect the embedding provider's input limits.
	MaxContentLength = 30000

	// MaxChunkLength is the hard per-chunk ceiling, in runes. Chunks still
	// exceeding it after boundary snapping are re-split into sub-chunks.
	MaxChunkLength = 20000
)

// Chunker segments document text with a sliding window of chunkSize runes
// and overlapSize runes of overlap between adjacent chunks. Cuts prefer the
// last sentence boundary in the second half of the window; when no such
// boundary exists the full window is taken even if that splits a sentence,
// favoring predictable chunk sizes over perfect sentence alignment.
type Chunker struct {
	chunkSize   int
	overlapSize int
}

// NewChunker validates the window parameters and returns a Chunker.
func NewChunker(chunkSize, overlapSize int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlapSize < 0 {
		return nil, fmt.Errorf("overlap size must be non-negative, got %d", overlapSize)
	}
	return &Chunker{chunkSize: chunkSize, overlapSize: overlapSize}, nil
}

// Segment splits a document's text into ordered chunks. Empty text yields no
// chunks. Chunk IDs embed the first 16 hex characters of the document's
// content hash plus the rune offsets, so identical input text and
// configuration always reproduce the same IDs.
func (c *Chunker) Segment(doc models.Document) []models.Chunk {
	if doc.Content == "" {
		return nil
	}

	content := []rune(doc.Content)
	if len(content) > MaxContentLength {
		log.Printf("content for %s is %d runes, truncating to %d", doc.URL, len(content), MaxContentLength)
		content = content[:MaxContentLength]
	}
	total := len(content)

	var chunks []models.Chunk
	start := 0
	for start < total {
		end := start + c.chunkSize
		if end >= total {
			end = total
		} else {
			window := content[start:end]
			// Only snap when the boundary falls in the second half of the
			// window; an early boundary would produce a runt chunk.
			if b := lastSentenceBoundary(window); b > len(window)/2 {
				end = start + b + 1
			} else {
				end = start + c.chunkSize
				if end > total {
					end = total
				}
			}
		}

		text := strings.TrimSpace(string(content[start:end]))
		if text != "" {
			if size := len([]rune(text)); size > MaxChunkLength {
				log.Printf("chunk of %d runes exceeds %d, splitting further", size, MaxChunkLength)
				for i, sub := range splitOversized([]rune(text), MaxChunkLength) {
					chunks = append(chunks, buildChunk(doc, sub, start, end, total, i, true))
				}
			} else {
				chunks = append(chunks, buildChunk(doc, text, start, end, total, 0, false))
			}
		}

		// The final chunk runs to the text end; overlap must not re-open it.
		if end >= total {
			break
		}

		// Advance with overlap, forcing forward progress: overlap larger than
		// the effective step, a next start at or before zero, or a disabled
		// overlap all fall back to a clean continuation at end.
		next := end - c.overlapSize
		if next >= total || c.overlapSize <= 0 {
			next = end
		}
		if next <= 0 || next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// buildChunk assembles a chunk record carrying the document's metadata.
func buildChunk(doc models.Document, text string, start, end, total, subIdx int, isSub bool) models.Chunk {
	prefix := doc.ContentHash
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	id := fmt.Sprintf("%s_%d_%d", prefix, start, end)
	if isSub {
		id = fmt.Sprintf("%s_%d", id, subIdx)
	}

	return models.Chunk{
		ID:          id,
		URL:         doc.URL,
		Title:       doc.Title,
		Headings:    doc.Headings,
		Content:     text,
		ContentHash: doc.ContentHash,
		StartIdx:    start,
		EndIdx:      end,
		Size:        len([]rune(text)),
		TotalLength: total,
		IsSubChunk:  isSub,
	}
}

// lastSentenceBoundary returns the largest index in window at which a
// sentence-terminal marker begins, or -1 when none is present. Markers are
// ". ", "! ", "? ", "\n", ".\n", "!" and "?"; because "!" and "?" match on
// their own, the two-rune forms only matter for ".".
func lastSentenceBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '\n', '!', '?':
			return i
		case '.':
			if i+1 < len(window) && (window[i+1] == ' ' || window[i+1] == '\n') {
				return i
			}
		}
	}
	return -1
}

// splitOversized re-splits an oversized chunk with the same boundary-seeking
// rule, cutting at max runes when no boundary lands in the second half.
// Sub-chunks keep the parent's offsets and gain a sub-index in their ID.
func splitOversized(text []rune, max int) []string {
	var subs []string
	start := 0
	for start < len(text) {
		end := start + max
		if end >= len(text) {
			subs = append(subs, string(text[start:]))
			break
		}

		window := text[start:end]
		if b := lastSentenceBoundary(window); b > len(window)/2 {
			subs = append(subs, string(text[start:start+b+1]))
			start = start + b + 1
		} else {
			subs = append(subs, string(text[start:end]))
			start = end
		}
	}
	return subs
}
