// ABOUTME: Tests for the repeated-query consistency harness
// ABOUTME: Covers modal top-result scoring, variance, and failed runs

package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bookrag/bookrag/internal/models"
)

func topResult(id string) []models.RetrievedChunk {
	return []models.RetrievedChunk{{ID: id, Content: "text", Score: 0.9}}
}

func TestRunConsistency_StableResults(t *testing.T) {
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		return topResult("stable-id"), nil
	}

	report := RunConsistency(context.Background(), retrieve, "What is physical AI?", 5, 5)

	if report.SuccessfulRuns != 5 || report.FailedRuns != 0 {
		t.Errorf("runs = %d/%d, want 5/0", report.SuccessfulRuns, report.FailedRuns)
	}
	if report.ConsistencyScore != 1.0 {
		t.Errorf("ConsistencyScore = %f, want 1.0", report.ConsistencyScore)
	}
	if report.ResultsVaried {
		t.Error("identical top results must not report variation")
	}
	if len(report.Runs) != 5 {
		t.Errorf("got %d run details, want 5", len(report.Runs))
	}
}

func TestRunConsistency_FourOfFiveAgree(t *testing.T) {
	call := 0
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		call++
		if call == 3 {
			return topResult("outlier-id"), nil
		}
		return topResult("modal-id"), nil
	}

	report := RunConsistency(context.Background(), retrieve, "What is physical AI?", 5, 5)

	if report.ConsistencyScore != 0.8 {
		t.Errorf("ConsistencyScore = %f, want 0.8 (4 of 5 agree)", report.ConsistencyScore)
	}
	if !report.ResultsVaried {
		t.Error("differing top results must report variation")
	}
}

func TestRunConsistency_FailedRunsExcludedFromScore(t *testing.T) {
	call := 0
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		call++
		if call <= 2 {
			return nil, fmt.Errorf("service down")
		}
		return topResult("stable-id"), nil
	}

	report := RunConsistency(context.Background(), retrieve, "query", 5, 5)

	if report.SuccessfulRuns != 3 || report.FailedRuns != 2 {
		t.Errorf("runs = %d/%d, want 3/2", report.SuccessfulRuns, report.FailedRuns)
	}
	// Score covers only the successful runs, all of which agree.
	if report.ConsistencyScore != 1.0 {
		t.Errorf("ConsistencyScore = %f, want 1.0 over successful runs", report.ConsistencyScore)
	}
	if report.AvgLatency <= 0 {
		t.Errorf("AvgLatency = %v, want positive over successful runs", report.AvgLatency)
	}
}

func TestRunConsistency_DefaultsRunCount(t *testing.T) {
	calls := 0
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		calls++
		return topResult("id"), nil
	}

	report := RunConsistency(context.Background(), retrieve, "query", 5, 0)

	if calls != DefaultConsistencyRuns {
		t.Errorf("ran %d times, want default %d", calls, DefaultConsistencyRuns)
	}
	if report.NumRuns != DefaultConsistencyRuns {
		t.Errorf("NumRuns = %d, want %d", report.NumRuns, DefaultConsistencyRuns)
	}
}

func TestRunConsistency_EmptyResultsScoreZero(t *testing.T) {
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		return nil, nil
	}

	report := RunConsistency(context.Background(), retrieve, "query", 5, 3)

	if report.ConsistencyScore != 0.0 {
		t.Errorf("ConsistencyScore = %f, want 0.0 with no results", report.ConsistencyScore)
	}
	if report.ResultsVaried {
		t.Error("no results should not count as varied")
	}
}

func TestRunConsistency_VarianceComputedOverLatencies(t *testing.T) {
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		return topResult("id"), nil
	}

	report := RunConsistency(context.Background(), retrieve, "query", 5, 5)

	// Stub latencies are tiny and near-identical; variance must be finite
	// and non-negative.
	if report.LatencyVariance < 0 {
		t.Errorf("LatencyVariance = %f, want non-negative", report.LatencyVariance)
	}
}

func TestConsistencyReport_Format(t *testing.T) {
	retrieve := func(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
		return topResult("id"), nil
	}
	report := RunConsistency(context.Background(), retrieve, "What is physical AI?", 5, 5)

	out := report.Format()
	for _, want := range []string{"Consistency Test Report", "Number of Runs: 5", "Consistency Score: 1.00", "Results Varied: No"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}
