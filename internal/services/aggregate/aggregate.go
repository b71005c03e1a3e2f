// Package aggregate reduces prediction rows into decision-ready summary
// statistics. It is pure and re-runnable over any row subset: completed-job
// summaries and ad-hoc direct-analysis results both go through here.
package aggregate

import (
	"math"
	"sort"

	"tax-classifier-backend/internal/models"
)

// RiskThreshold is the confidence floor below which a row counts as risky.
const RiskThreshold = 60.0

// BucketRanges are the five fixed confidence buckets. Boundaries are
// right-open except the closed top bucket [80,100].
var BucketRanges = []string{"0-20%", "20-40%", "40-60%", "60-80%", "80-100%"}

// LabelCount is one entry of the label distribution.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Bucket is one confidence histogram bar.
type Bucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Summary is the aggregate over a row set. All percentages are 0 for an
// empty input rather than failing on division by zero.
type Summary struct {
	TotalRows     int          `json:"total_rows"`
	Distribution  []LabelCount `json:"distribution"`
	Buckets       []Bucket     `json:"confidence_buckets"`
	AvgConfidence float64      `json:"avg_confidence"`
	RiskPercent   float64      `json:"risk_percent"`
}

// Compute aggregates a prediction row set.
func Compute(rows []models.PredictionRow) Summary {
	summary := Summary{
		Distribution: []LabelCount{},
		Buckets:      make([]Bucket, len(BucketRanges)),
	}
	for i, r := range BucketRanges {
		summary.Buckets[i] = Bucket{Range: r}
	}

	if len(rows) == 0 {
		return summary
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	confidenceSum := 0.0
	risky := 0

	for _, row := range rows {
		if _, ok := counts[row.PredictedLabel]; !ok {
			firstSeen[row.PredictedLabel] = len(firstSeen)
		}
		counts[row.PredictedLabel]++

		confidenceSum += row.ConfidencePercent
		if row.ConfidencePercent < RiskThreshold {
			risky++
		}
		summary.Buckets[bucketIndex(row.ConfidencePercent)].Count++
	}

	for label, count := range counts {
		summary.Distribution = append(summary.Distribution, LabelCount{Label: label, Count: count})
	}
	// Stable display order: count descending, ties by first-seen label.
	sort.SliceStable(summary.Distribution, func(i, j int) bool {
		a, b := summary.Distribution[i], summary.Distribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return firstSeen[a.Label] < firstSeen[b.Label]
	})

	n := float64(len(rows))
	summary.TotalRows = len(rows)
	summary.AvgConfidence = round1(confidenceSum / n)
	summary.RiskPercent = round1(float64(risky) / n * 100)
	return summary
}

// TopN returns the n most frequent labels from a summary.
func (s Summary) TopN(n int) []LabelCount {
	if n > len(s.Distribution) {
		n = len(s.Distribution)
	}
	return s.Distribution[:n]
}

// bucketIndex maps a confidence percentage to its histogram bucket. Exact
// boundary values (20/40/60/80) fall into the higher bucket.
func bucketIndex(confidence float64) int {
	switch {
	case confidence < 20:
		return 0
	case confidence < 40:
		return 1
	case confidence < 60:
		return 2
	case confidence < 80:
		return 3
	default:
		return 4
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
