package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreConfidence(t *testing.T) {
	confident := map[string]float64{"PPh21": 0.9, "PPh23_Jasa": 0.05, "Non_Object": 0.05}
	uncertain := map[string]float64{"PPh21": 0.35, "PPh23_Jasa": 0.33, "Non_Object": 0.32}

	high := scoreConfidence(confident, "Pembayaran gaji karyawan tetap")
	low := scoreConfidence(uncertain, "Pembayaran gaji karyawan tetap")

	assert.Greater(t, high, low)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 100.0)
}

func TestScoreConfidence_Penalties(t *testing.T) {
	dist := map[string]float64{"PPh21": 0.9, "Non_Object": 0.1}
	base := scoreConfidence(dist, "Pembayaran gaji karyawan")

	tests := []struct {
		name string
		text string
	}{
		{name: "short text", text: "ab"},
		{name: "vague text", text: "Biaya lain-lain umum"},
		{name: "mostly symbols", text: "1234-5678/90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Less(t, scoreConfidence(dist, tt.text), base)
		})
	}
}

func TestScoreConfidence_EmptyDistribution(t *testing.T) {
	score := scoreConfidence(map[string]float64{}, "anything")
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}
