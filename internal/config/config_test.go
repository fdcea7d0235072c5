// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers defaults, environment overrides, and rejection of bad values

package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SITE_URL", "MAX_PAGES", "QDRANT_URL", "QDRANT_COLLECTION",
		"VECTOR_DIMENSION", "CHUNK_SIZE", "OVERLAP_SIZE", "TOP_K",
		"OPENAI_MAX_RETRIES", "OPENAI_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CollectionName != "book_embeddings" {
		t.Errorf("CollectionName = %s, want book_embeddings", cfg.CollectionName)
	}
	if cfg.VectorDimension != 1024 {
		t.Errorf("VectorDimension = %d, want 1024", cfg.VectorDimension)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", cfg.ChunkSize)
	}
	if cfg.OverlapSize != 100 {
		t.Errorf("OverlapSize = %d, want 100", cfg.OverlapSize)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.MaxPages != 100 {
		t.Errorf("MaxPages = %d, want 100", cfg.MaxPages)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://localhost:6333")
	t.Setenv("QDRANT_COLLECTION", "docs")
	t.Setenv("VECTOR_DIMENSION", "1536")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("OVERLAP_SIZE", "50")
	t.Setenv("TOP_K", "10")
	t.Setenv("OPENAI_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.QdrantURL != "http://localhost:6333" {
		t.Errorf("QdrantURL = %s", cfg.QdrantURL)
	}
	if cfg.CollectionName != "docs" {
		t.Errorf("CollectionName = %s, want docs", cfg.CollectionName)
	}
	if cfg.VectorDimension != 1536 || cfg.ChunkSize != 500 || cfg.OverlapSize != 50 || cfg.TopK != 10 {
		t.Errorf("numeric overrides not applied: %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
}

func TestLoad_MalformedIntFallsBackToDefault(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want default 1000", cfg.ChunkSize)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			MaxPages:        100,
			VectorDimension: 1024,
			ChunkSize:       1000,
			OverlapSize:     100,
			TopK:            5,
			MaxRetries:      3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"negative overlap", func(c *Config) { c.OverlapSize = -1 }, true},
		{"zero overlap ok", func(c *Config) { c.OverlapSize = 0 }, false},
		{"zero dimension", func(c *Config) { c.VectorDimension = 0 }, true},
		{"top_k too small", func(c *Config) { c.TopK = 0 }, true},
		{"top_k too large", func(c *Config) { c.TopK = 101 }, true},
		{"top_k at bound", func(c *Config) { c.TopK = 100 }, false},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, true},
		{"retries too large", func(c *Config) { c.MaxRetries = 11 }, true},
		{"zero retries ok", func(c *Config) { c.MaxRetries = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://thebook.dev", false},
		{"http://localhost:8080/docs", false},
		{"https://example.com/path?q=1", false},
		{"", true},
		{"not a url", true},
		{"ftp://example.com", true},
		{"https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
