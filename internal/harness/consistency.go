// ABOUTME: Consistency harness repeating one query and comparing top results
// ABOUTME: Scores agreement on the top-ranked result across runs
package harness

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookrag/bookrag/internal/retrieval"
)

// DefaultConsistencyRuns is how many times the query is repeated.
const DefaultConsistencyRuns = 5

// RunDetail holds one repetition's measurement.
type RunDetail struct {
	Run           int           `json:"run"`
	Latency       time.Duration `json:"latency"`
	ResultCount   int           `json:"result_count"`
	FirstResultID string        `json:"first_result_id"`
}

// ConsistencyReport aggregates repeated runs of one query. ConsistencyScore
// is the fraction of successful runs agreeing with the most frequent
// top-result ID; LatencyVariance is the population variance in seconds².
type ConsistencyReport struct {
	RunID            string        `json:"run_id"`
	Query            string        `json:"query"`
	NumRuns          int           `json:"num_runs"`
	SuccessfulRuns   int           `json:"successful_runs"`
	FailedRuns       int           `json:"failed_runs"`
	ConsistencyScore float64       `json:"consistency_score"`
	AvgLatency       time.Duration `json:"avg_latency"`
	LatencyVariance  float64       `json:"latency_variance"`
	ResultsVaried    bool          `json:"results_varied"`
	Runs             []RunDetail   `json:"runs"`
}

// RunConsistency repeats one query numRuns times. Run failures are counted
// and logged; the score is computed over the successful runs.
func RunConsistency(ctx context.Context, retrieve retrieval.Func, query string, topK, numRuns int) *ConsistencyReport {
	if numRuns <= 0 {
		numRuns = DefaultConsistencyRuns
	}

	report := &ConsistencyReport{
		RunID:   uuid.New().String(),
		Query:   query,
		NumRuns: numRuns,
	}

	var latencies []time.Duration
	var firstIDs []string
	for i := 0; i < numRuns; i++ {
		started := time.Now()
		chunks, err := retrieve(ctx, query, topK)
		elapsed := time.Since(started)

		if err != nil {
			report.FailedRuns++
			log.Printf("consistency run %d failed: %v", i+1, err)
			continue
		}

		report.SuccessfulRuns++
		latencies = append(latencies, elapsed)

		detail := RunDetail{
			Run:         i + 1,
			Latency:     elapsed,
			ResultCount: len(chunks),
		}
		if len(chunks) > 0 {
			detail.FirstResultID = chunks[0].ID
			firstIDs = append(firstIDs, chunks[0].ID)
		}
		report.Runs = append(report.Runs, detail)
	}

	if len(latencies) > 0 {
		var total time.Duration
		for _, l := range latencies {
			total += l
		}
		report.AvgLatency = total / time.Duration(len(latencies))

		if len(latencies) > 1 {
			mean := report.AvgLatency.Seconds()
			var variance float64
			for _, l := range latencies {
				d := l.Seconds() - mean
				variance += d * d
			}
			report.LatencyVariance = variance / float64(len(latencies))
		}
	}

	if len(firstIDs) > 0 {
		counts := map[string]int{}
		for _, id := range firstIDs {
			counts[id]++
		}
		modal := 0
		for _, n := range counts {
			if n > modal {
				modal = n
			}
		}
		report.ConsistencyScore = float64(modal) / float64(len(firstIDs))
		report.ResultsVaried = len(counts) > 1
	}

	return report
}

// Format renders the report for terminal output.
func (r *ConsistencyReport) Format() string {
	var sb strings.Builder
	sb.WriteString("Consistency Test Report\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&sb, "Query: %q\n", r.Query)
	fmt.Fprintf(&sb, "Number of Runs: %d\n", r.NumRuns)
	fmt.Fprintf(&sb, "Successful Runs: %d\n", r.SuccessfulRuns)
	fmt.Fprintf(&sb, "Failed Runs: %d\n\n", r.FailedRuns)
	sb.WriteString("Consistency Metrics:\n")
	fmt.Fprintf(&sb, "  Consistency Score: %.2f\n", r.ConsistencyScore)
	fmt.Fprintf(&sb, "  Average Response Time: %.3fs\n", r.AvgLatency.Seconds())
	fmt.Fprintf(&sb, "  Response Time Variance: %.6f\n", r.LatencyVariance)
	varied := "No"
	if r.ResultsVaried {
		varied = "Yes"
	}
	fmt.Fprintf(&sb, "  Results Varied: %s\n\n", varied)
	sb.WriteString("Run Details:\n")
	for _, d := range r.Runs {
		fmt.Fprintf(&sb, "  Run %d: %.3fs, %d results\n", d.Run, d.Latency.Seconds(), d.ResultCount)
	}
	return sb.String()
}
