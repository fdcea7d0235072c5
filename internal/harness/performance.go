// ABOUTME: Performance harness measuring retrieval latency over query batches
// ABOUTME: Reports latency stats, throughput, and sub-second compliance
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

const (
	// LatencyThreshold is the per-query wall-clock budget.
	LatencyThreshold = time.Second
	// ComplianceTarget is the fraction of queries, in percent, that must
	// finish under LatencyThreshold for the suite to be compliant.
	ComplianceTarget = 95.0
)

// QueryPerformance holds one query's measurement.
type QueryPerformance struct {
	Query          string        `json:"query"`
	Latency        time.Duration `json:"latency"`
	ResultCount    int           `json:"result_count"`
	UnderThreshold bool          `json:"under_threshold"`
}

// PerformanceReport aggregates a performance run. Latency statistics cover
// only successful queries; threshold percentage is measured against the full
// query count, so failures count against compliance.
type PerformanceReport struct {
	RunID               string             `json:"run_id"`
	TotalQueries        int                `json:"total_queries"`
	SuccessfulQueries   int                `json:"successful_queries"`
	FailedQueries       int                `json:"failed_queries"`
	TotalTime           time.Duration      `json:"total_time"`
	AvgTime             time.Duration      `json:"avg_time"`
	MinTime             time.Duration      `json:"min_time"`
	MaxTime             time.Duration      `json:"max_time"`
	Throughput          float64            `json:"throughput"`
	ThresholdMet        int                `json:"threshold_met"`
	ThresholdPercentage float64            `json:"threshold_percentage"`
	Queries             []QueryPerformance `json:"queries"`
}

// Compliant reports whether enough queries finished under the threshold.
func (r *PerformanceReport) Compliant() bool {
	return r.ThresholdPercentage >= ComplianceTarget
}

// DefaultPerformanceQueries returns the built-in performance query mix.
func DefaultPerformanceQueries() []string {
	return []string{
		"What is physical AI?",
		"humanoid robot control",
		"neural networks robotics",
		"machine learning applications",
		"AI in robotics",
	}
}

// RunPerformance measures retrieval latency for each query. Query failures
// are counted and logged without aborting the batch.
func RunPerformance(ctx context.Context, retrieve retrieval.Func, queries []string, topK int) *PerformanceReport {
	report := &PerformanceReport{
		RunID:        uuid.New().String(),
		TotalQueries: len(queries),
	}

	var successTimes []time.Duration
	for _, query := range queries {
		started := time.Now()
		chunks, err := retrieve(ctx, query, topK)
		elapsed := time.Since(started)

		if err != nil {
			report.FailedQueries++
			log.Printf("performance query %q failed: %v", query, err)
			continue
		}

		report.SuccessfulQueries++
		successTimes = append(successTimes, elapsed)

		under := elapsed < LatencyThreshold
		if under {
			report.ThresholdMet++
		}
		report.Queries = append(report.Queries, QueryPerformance{
			Query:          query,
			Latency:        elapsed,
			ResultCount:    len(chunks),
			UnderThreshold: under,
		})
	}

	if len(successTimes) > 0 {
		report.MinTime = successTimes[0]
		for _, t := range successTimes {
			report.TotalTime += t
			if t < report.MinTime {
				report.MinTime = t
			}
			if t > report.MaxTime {
				report.MaxTime = t
			}
		}
		report.AvgTime = report.TotalTime / time.Duration(len(successTimes))
		if report.TotalTime > 0 {
			report.Throughput = float64(len(successTimes)) / report.TotalTime.Seconds()
		}
		report.ThresholdPercentage = float64(report.ThresholdMet) / float64(report.TotalQueries) * 100
	}

	return report
}

// Format renders the report for terminal output.
func (r *PerformanceReport) Format() string {
	var sb strings.Builder
	sb.WriteString("Performance Test Report\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&sb, "Total Queries: %d\n", r.TotalQueries)
	fmt.Fprintf(&sb, "Successful Queries: %d\n", r.SuccessfulQueries)
	fmt.Fprintf(&sb, "Failed Queries: %d\n\n", r.FailedQueries)
	sb.WriteString("Response Time Metrics:\n")
	fmt.Fprintf(&sb, "  Average Time: %.3fs\n", r.AvgTime.Seconds())
	fmt.Fprintf(&sb, "  Min Time: %.3fs\n", r.MinTime.Seconds())
	fmt.Fprintf(&sb, "  Max Time: %.3fs\n", r.MaxTime.Seconds())
	fmt.Fprintf(&sb, "  Total Time: %.3fs\n\n", r.TotalTime.Seconds())
	sb.WriteString("Performance Metrics:\n")
	fmt.Fprintf(&sb, "  Throughput: %.2f queries/second\n", r.Throughput)
	fmt.Fprintf(&sb, "  Threshold Compliance: %.1f%% (<1s)\n", r.ThresholdPercentage)
	fmt.Fprintf(&sb, "  Threshold Met: %d/%d queries\n", r.ThresholdMet, r.TotalQueries)
	fmt.Fprintf(&sb, "  Compliant: %v\n\n", r.Compliant())
	sb.WriteString("Query Performance Details:\n")
	for _, q := range r.Queries {
		status := "X"
		if q.UnderThreshold {
			status = "OK"
		}
		fmt.Fprintf(&sb, "  [%s] %q: %.3fs, %d results\n", status, q.Query, q.Latency.Seconds(), q.ResultCount)
	}
	return sb.String()
}
