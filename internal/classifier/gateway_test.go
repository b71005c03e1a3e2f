package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelServer(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGateway(srv.URL, 5*time.Second)
}

func TestClassify_OrderPreserved(t *testing.T) {
	gw := modelServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req modelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := modelResponse{}
		labels := []string{"PPh21", "PPh23_Sewa", "PPh23_Bunga"}
		for i := range req.Texts {
			resp.Predictions = append(resp.Predictions, modelItem{
				Label:      labels[i],
				Confidence: 0.9,
			})
		}
		json.NewEncoder(w).Encode(resp)
	})

	texts := []string{"Pembayaran gaji karyawan", "Sewa gedung kantor", "Bunga deposito bank"}
	preds, err := gw.Classify(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, preds, 3)
	for i, p := range preds {
		assert.Equal(t, texts[i], p.AccountName)
	}
	assert.Equal(t, "PPh21", preds[0].PredictedLabel)
	assert.Equal(t, "PPh23_Sewa", preds[1].PredictedLabel)
	assert.Equal(t, "PPh23_Bunga", preds[2].PredictedLabel)
}

func TestClassify_ConfidenceNormalizedToPercent(t *testing.T) {
	gw := modelServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelResponse{Predictions: []modelItem{
			{Label: "PPh21", Confidence: 0.87},
		}})
	})

	preds, err := gw.Classify(context.Background(), []string{"Gaji Karyawan"})
	require.NoError(t, err)
	assert.InDelta(t, 87.0, preds[0].ConfidencePercent, 0.001)
}

func TestClassify_ProbabilitiesScored(t *testing.T) {
	gw := modelServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelResponse{Predictions: []modelItem{
			{Probabilities: map[string]float64{"PPh21": 0.85, "PPh23_Jasa": 0.10, "Non_Object": 0.05}},
		}})
	})

	preds, err := gw.Classify(context.Background(), []string{"Pembayaran gaji karyawan"})
	require.NoError(t, err)

	assert.Equal(t, "PPh21", preds[0].PredictedLabel)
	assert.Greater(t, preds[0].ConfidencePercent, 60.0)
	assert.LessOrEqual(t, preds[0].ConfidencePercent, 100.0)
}

func TestClassify_LengthMismatchIsContractViolation(t *testing.T) {
	gw := modelServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelResponse{Predictions: []modelItem{
			{Label: "PPh21", Confidence: 0.9},
		}})
	})

	_, err := gw.Classify(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestClassify_UnknownLabel(t *testing.T) {
	gw := modelServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelResponse{Predictions: []modelItem{
			{Label: "NotATaxObject", Confidence: 0.9},
		}})
	})

	_, err := gw.Classify(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestClassify_ServerError(t *testing.T) {
	gw := modelServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := gw.Classify(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestClassify_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	gw := NewGateway(srv.URL, 20*time.Millisecond)
	_, err := gw.Classify(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClassify_Explanations(t *testing.T) {
	gw := modelServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelResponse{Predictions: []modelItem{
			{Label: "PPh21", Confidence: 0.9, TopTerms: []string{"gaji", "karyawan", "upah", "tunjangan"}},
			{Label: "PPN", Confidence: 0.8},
		}})
	})

	preds, err := gw.Classify(context.Background(), []string{"Gaji Karyawan", "Pembelian"})
	require.NoError(t, err)

	assert.Equal(t, "Based on terms: gaji, karyawan, upah", preds[0].Explanation)
	assert.Equal(t, "Classified as PPN based on text analysis", preds[1].Explanation)
}

func TestClassify_EmptyBatch(t *testing.T) {
	gw := NewGateway("http://localhost:0", time.Second)
	preds, err := gw.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}
