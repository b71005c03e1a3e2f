package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tax-classifier-backend/internal/models"
)

func rowsWith(confidences map[string][]float64) []models.PredictionRow {
	var rows []models.PredictionRow
	for label, confs := range confidences {
		for _, c := range confs {
			rows = append(rows, models.PredictionRow{PredictedLabel: label, ConfidencePercent: c})
		}
	}
	return rows
}

func TestCompute_Empty(t *testing.T) {
	summary := Compute(nil)

	assert.Equal(t, 0, summary.TotalRows)
	assert.Empty(t, summary.Distribution)
	assert.Equal(t, 0.0, summary.AvgConfidence)
	assert.Equal(t, 0.0, summary.RiskPercent)
	require.Len(t, summary.Buckets, 5)
	for _, b := range summary.Buckets {
		assert.Equal(t, 0, b.Count)
	}
}

func TestCompute_DistributionTotals(t *testing.T) {
	rows := rowsWith(map[string][]float64{
		"PPh21":      {90, 85, 70},
		"PPh23_Sewa": {50, 65},
		"Non_Object": {30},
	})

	summary := Compute(rows)

	total := 0
	for _, lc := range summary.Distribution {
		total += lc.Count
	}
	assert.Equal(t, len(rows), total)
	assert.Equal(t, len(rows), summary.TotalRows)

	bucketTotal := 0
	for _, b := range summary.Buckets {
		bucketTotal += b.Count
	}
	assert.Equal(t, len(rows), bucketTotal)
}

func TestCompute_DistributionOrder(t *testing.T) {
	rows := []models.PredictionRow{
		{PredictedLabel: "PPh23_Sewa", ConfidencePercent: 80},
		{PredictedLabel: "PPh21", ConfidencePercent: 80},
		{PredictedLabel: "PPh21", ConfidencePercent: 80},
		{PredictedLabel: "PPN", ConfidencePercent: 80},
	}

	summary := Compute(rows)

	require.Len(t, summary.Distribution, 3)
	assert.Equal(t, LabelCount{Label: "PPh21", Count: 2}, summary.Distribution[0])
	// Tie between PPh23_Sewa and PPN broken by first-seen order.
	assert.Equal(t, "PPh23_Sewa", summary.Distribution[1].Label)
	assert.Equal(t, "PPN", summary.Distribution[2].Label)
}

func TestCompute_BucketBoundaries(t *testing.T) {
	tests := []struct {
		confidence float64
		bucket     int
	}{
		{0, 0}, {19.9, 0},
		{20, 1}, {39.9, 1},
		{40, 2}, {59.9, 2},
		{60, 3}, {79.9, 3},
		{80, 4}, {100, 4},
	}

	for _, tt := range tests {
		summary := Compute([]models.PredictionRow{{PredictedLabel: "PPh21", ConfidencePercent: tt.confidence}})
		assert.Equal(t, 1, summary.Buckets[tt.bucket].Count, "confidence %.1f", tt.confidence)
	}
}

func TestCompute_RiskPercent(t *testing.T) {
	rows := rowsWith(map[string][]float64{
		"PPh21": {90, 59.9, 30, 85},
	})

	summary := Compute(rows)
	// 2 of 4 rows below the 60% threshold.
	assert.Equal(t, 50.0, summary.RiskPercent)
	assert.InDelta(t, 66.2, summary.AvgConfidence, 0.1)
}

func TestTopN(t *testing.T) {
	rows := rowsWith(map[string][]float64{
		"PPh21":      {90, 85, 80},
		"PPh23_Sewa": {70, 75},
		"PPN":        {60},
	})

	summary := Compute(rows)

	top2 := summary.TopN(2)
	require.Len(t, top2, 2)
	assert.Equal(t, "PPh21", top2[0].Label)
	assert.Equal(t, "PPh23_Sewa", top2[1].Label)

	assert.Len(t, summary.TopN(10), 3)
}
