// ABOUTME: Content hashing for documents, chunks, and stored point IDs
// ABOUTME: SHA-256 over UTF-8 text; deterministic identity and version keys
package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the SHA-256 hex digest of the UTF-8 encoding of text.
// No normalization is applied beyond what the caller already did, so the
// same text always maps to the same digest.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// PointID derives the stored-point identifier for a chunk: SHA-256 over
// "<contentHash>_<chunkID>", truncated to 16 hex characters. The ID is
// deterministic for a given (content hash, chunk ID) pair, which is what
// makes re-ingesting unchanged content a no-op upsert.
func PointID(contentHash, chunkID string) string {
	sum := sha256.Sum256([]byte(contentHash + "_" + chunkID))
	return hex.EncodeToString(sum[:])[:16]
}
