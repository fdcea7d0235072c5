// ABOUTME: Validation harness scoring retrieval results against known answers
// ABOUTME: Word-overlap accuracy capped by similarity score, pass at 0.85
package harness

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/retrieval"
)

// PassThreshold is the minimum accuracy score for a validation case to pass.
const PassThreshold = 0.85

// ValidationCase pairs a query with the content its results should contain.
type ValidationCase struct {
	Query    string `json:"query"`
	Expected string `json:"expected"`
}

// ValidationResult holds one case's outcome.
type ValidationResult struct {
	Query          string  `json:"query"`
	Expected       string  `json:"expected"`
	RetrievedCount int     `json:"retrieved_count"`
	AccuracyScore  float64 `json:"accuracy_score"`
	Passed         bool    `json:"passed"`
	Error          string  `json:"error,omitempty"`
}

// ValidationReport aggregates a validation run.
type ValidationReport struct {
	RunID   string             `json:"run_id"`
	Cases   []ValidationResult `json:"cases"`
	Passed  int                `json:"passed"`
	Failed  int                `json:"failed"`
	AllPass bool               `json:"all_pass"`
}

// DefaultValidationSet returns the built-in query/answer pairs.
func DefaultValidationSet() []ValidationCase {
	return []ValidationCase{
		{
			Query:    "What is physical AI?",
			Expected: "Physical AI combines artificial intelligence with physical systems",
		},
		{
			Query:    "humanoid robot control",
			Expected: "Humanoid robots require sophisticated control systems",
		},
		{
			Query:    "neural networks robotics",
			Expected: "Neural networks enable adaptive behavior in robotics",
		},
	}
}

// AccuracyScore scores retrieved chunks against expected content. Each chunk
// sharing at least one word with the expectation contributes the minimum of
// its word-overlap ratio and its similarity score; the result is the mean
// over contributing chunks. No results, or no overlapping chunks, scores 0.
func AccuracyScore(chunks []models.RetrievedChunk, expected string) float64 {
	if len(chunks) == 0 {
		return 0.0
	}

	expectedWords := wordSet(strings.ToLower(expected))
	if len(expectedWords) == 0 {
		return 0.0
	}

	total := 0.0
	validChunks := 0
	for _, chunk := range chunks {
		chunkWords := wordSet(strings.ToLower(chunk.Content))
		common := 0
		for w := range expectedWords {
			if chunkWords[w] {
				common++
			}
		}
		if common == 0 {
			continue
		}

		overlap := float64(common) / float64(len(expectedWords))
		// The overlap only counts as far as the store's own confidence in
		// the chunk.
		score := overlap
		if chunk.Score < score {
			score = chunk.Score
		}
		total += score
		validChunks++
	}

	if validChunks == 0 {
		return 0.0
	}
	return total / float64(validChunks)
}

// RunValidation evaluates each case against the retrieval function. Case
// failures are recorded and scored zero rather than aborting the run.
func RunValidation(ctx context.Context, retrieve retrieval.Func, cases []ValidationCase, topK int) *ValidationReport {
	report := &ValidationReport{RunID: uuid.New().String()}

	for _, c := range cases {
		result := ValidationResult{Query: c.Query, Expected: c.Expected}

		chunks, err := retrieve(ctx, c.Query, topK)
		if err != nil {
			log.Printf("validation query %q failed: %v", c.Query, err)
			result.Error = err.Error()
		} else {
			result.RetrievedCount = len(chunks)
			result.AccuracyScore = AccuracyScore(chunks, c.Expected)
			result.Passed = result.AccuracyScore >= PassThreshold
		}

		report.Cases = append(report.Cases, result)
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	report.AllPass = report.Failed == 0 && len(report.Cases) > 0
	return report
}

// wordSet splits on whitespace into a membership set.
func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
