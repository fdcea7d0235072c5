// ABOUTME: Centralized configuration for the documentation RAG pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Config holds all configuration for crawling, embedding, storage, and retrieval
type Config struct {
	// Crawl settings
	SiteURL  string
	MaxPages int

	// Qdrant settings; an empty QdrantURL selects the local SQLite store
	QdrantURL      string
	QdrantAPIKey   string
	CollectionName string

	// OpenAI-compatible embedding and chat settings
	OpenAIKey      string
	OpenAIBaseURL  string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Chunking and retrieval settings
	VectorDimension int
	ChunkSize       int
	OverlapSize     int
	TopK            int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		SiteURL:         getEnv("SITE_URL", "https://thebook.dev"),
		MaxPages:        getEnvInt("MAX_PAGES", 100),
		QdrantURL:       os.Getenv("QDRANT_URL"),
		QdrantAPIKey:    os.Getenv("QDRANT_API_KEY"),
		CollectionName:  getEnv("QDRANT_COLLECTION", "book_embeddings"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		ChatModel:       getEnv("BOOKRAG_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:  getEnv("BOOKRAG_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:         getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:      getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension: getEnvInt("VECTOR_DIMENSION", 1024),
		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		OverlapSize:     getEnvInt("OVERLAP_SIZE", 100),
		TopK:            getEnvInt("TOP_K", 5),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.OverlapSize < 0 {
		return fmt.Errorf("OVERLAP_SIZE must be non-negative, got %d", c.OverlapSize)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("TOP_K must be 1-100, got %d", c.TopK)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("MAX_PAGES must be positive, got %d", c.MaxPages)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

var urlPattern = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)

// ValidateURL checks that a crawl root looks like a well-formed HTTP(S) URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL must not be empty")
	}
	if !urlPattern.MatchString(raw) {
		return fmt.Errorf("invalid URL: %s", raw)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
