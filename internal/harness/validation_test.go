// ABOUTME: Tests for validation accuracy scoring and the validation driver
// ABOUTME: Covers overlap capping, pass thresholds, and per-case failures

package harness

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/bookrag/bookrag/internal/models"
)

func chunk(id, content string, score float64) models.RetrievedChunk {
	return models.RetrievedChunk{ID: id, Content: content, Score: score}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAccuracyScore_FullOverlapCappedByScore(t *testing.T) {
	expected := "Physical AI combines artificial intelligence with physical systems"
	chunks := []models.RetrievedChunk{
		chunk("c1", "Physical AI combines artificial intelligence with physical systems in embodied robots.", 0.9),
	}

	// All expected words present, so overlap is 1.0 but the similarity
	// score of 0.9 caps the contribution.
	got := AccuracyScore(chunks, expected)
	if !almostEqual(got, 0.9) {
		t.Errorf("AccuracyScore = %f, want 0.9", got)
	}
	if got < PassThreshold {
		t.Errorf("score %f should pass the %.2f threshold", got, PassThreshold)
	}
}

func TestAccuracyScore_PartialOverlap(t *testing.T) {
	// Expected has 4 unique lowercased words; the chunk shares 2 of them.
	expected := "neural networks enable robotics"
	chunks := []models.RetrievedChunk{
		chunk("c1", "robotics applications use networks", 0.95),
	}

	got := AccuracyScore(chunks, expected)
	if !almostEqual(got, 0.5) {
		t.Errorf("AccuracyScore = %f, want 0.5 (2/4 overlap under 0.95 score)", got)
	}
}

func TestAccuracyScore_OverlapBelowScoreWins(t *testing.T) {
	expected := "alpha beta gamma delta"
	chunks := []models.RetrievedChunk{
		chunk("c1", "alpha beta gamma delta", 0.3),
	}

	// Overlap is 1.0 but the low similarity score wins the minimum.
	if got := AccuracyScore(chunks, expected); !almostEqual(got, 0.3) {
		t.Errorf("AccuracyScore = %f, want 0.3", got)
	}
}

func TestAccuracyScore_AveragesOverContributingChunks(t *testing.T) {
	expected := "alpha beta"
	chunks := []models.RetrievedChunk{
		chunk("c1", "alpha beta", 1.0),            // min(1.0, 1.0) = 1.0
		chunk("c2", "alpha something", 1.0),       // min(0.5, 1.0) = 0.5
		chunk("c3", "completely unrelated", 0.99), // no common words, excluded
	}

	if got := AccuracyScore(chunks, expected); !almostEqual(got, 0.75) {
		t.Errorf("AccuracyScore = %f, want 0.75", got)
	}
}

func TestAccuracyScore_ZeroCases(t *testing.T) {
	if got := AccuracyScore(nil, "expected text"); got != 0.0 {
		t.Errorf("no results should score 0, got %f", got)
	}
	chunks := []models.RetrievedChunk{chunk("c1", "unrelated words entirely", 0.9)}
	if got := AccuracyScore(chunks, "expected text"); got != 0.0 {
		t.Errorf("no overlapping chunks should score 0, got %f", got)
	}
}

func TestAccuracyScore_CaseInsensitive(t *testing.T) {
	chunks := []models.RetrievedChunk{chunk("c1", "PHYSICAL ai SYSTEMS", 1.0)}
	if got := AccuracyScore(chunks, "physical AI systems"); !almostEqual(got, 1.0) {
		t.Errorf("AccuracyScore = %f, want 1.0 regardless of case", got)
	}
}

func TestRunValidation(t *testing.T) {
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		switch query {
		case "What is physical AI?":
			return []models.RetrievedChunk{
				chunk("c1", "Physical AI combines artificial intelligence with physical systems", 0.9),
			}, nil
		case "failing query":
			return nil, fmt.Errorf("service down")
		default:
			return nil, nil
		}
	}

	cases := []ValidationCase{
		{Query: "What is physical AI?", Expected: "Physical AI combines artificial intelligence with physical systems"},
		{Query: "failing query", Expected: "anything"},
		{Query: "no results query", Expected: "anything"},
	}

	report := RunValidation(context.Background(), retrieve, cases, 5)

	if report.RunID == "" {
		t.Error("report has no run ID")
	}
	if len(report.Cases) != 3 {
		t.Fatalf("got %d case results, want 3", len(report.Cases))
	}

	first := report.Cases[0]
	if !first.Passed || !almostEqual(first.AccuracyScore, 0.9) {
		t.Errorf("known-good case: passed=%v score=%f, want passed with 0.9", first.Passed, first.AccuracyScore)
	}

	failed := report.Cases[1]
	if failed.Passed || failed.Error == "" || failed.AccuracyScore != 0.0 {
		t.Errorf("erroring case: %+v, want recorded failure with zero score", failed)
	}

	empty := report.Cases[2]
	if empty.Passed || empty.AccuracyScore != 0.0 {
		t.Errorf("empty-result case: %+v, want zero score", empty)
	}

	if report.Passed != 1 || report.Failed != 2 || report.AllPass {
		t.Errorf("totals passed=%d failed=%d allPass=%v, want 1/2/false", report.Passed, report.Failed, report.AllPass)
	}
}

func TestRunValidation_AllPass(t *testing.T) {
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		return []models.RetrievedChunk{chunk("c1", "alpha beta", 1.0)}, nil
	}
	report := RunValidation(context.Background(), retrieve, []ValidationCase{{Query: "q1", Expected: "alpha beta"}}, 5)
	if !report.AllPass {
		t.Error("single passing case should yield AllPass")
	}
}

func TestDefaultValidationSet(t *testing.T) {
	set := DefaultValidationSet()
	if len(set) != 3 {
		t.Fatalf("got %d cases, want 3", len(set))
	}
	if set[0].Query != "What is physical AI?" {
		t.Errorf("first query = %q", set[0].Query)
	}
	for _, c := range set {
		if c.Query == "" || c.Expected == "" {
			t.Errorf("incomplete case: %+v", c)
		}
	}
}
