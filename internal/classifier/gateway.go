// Package classifier calls the external tax-object model service and turns
// its raw output into predictions with percentage confidences. The gateway is
// stateless per call and never retries; retry policy lives with the job
// processor.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tax-classifier-backend/internal/taxonomy"
)

var (
	// ErrModelUnavailable covers transport failures and contract violations
	// from the model service.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrTimeout is returned when the model call exceeds the policy timeout.
	ErrTimeout = errors.New("model call timed out")
)

// Prediction is one classified input string. ConfidencePercent is always on
// the [0,100] scale.
type Prediction struct {
	AccountName       string             `json:"account_name"`
	PredictedLabel    string             `json:"predicted_label"`
	ConfidencePercent float64            `json:"confidence"`
	Explanation       string             `json:"explanation"`
	Probabilities     map[string]float64 `json:"-"`
}

// Classifier is the classification capability consumed by the job processor
// and the direct-analysis endpoint. Output length and order always match the
// input batch.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Prediction, error)
}

// Gateway is the HTTP implementation talking to the model service.
type Gateway struct {
	baseURL string
	client  *http.Client
}

// NewGateway builds a gateway for the model service at baseURL. The timeout
// bounds each Classify call end to end.
func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type modelRequest struct {
	Texts []string `json:"texts"`
}

type modelItem struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	TopTerms      []string           `json:"top_terms"`
}

type modelResponse struct {
	Predictions []modelItem `json:"predictions"`
}

// Classify sends one batch to the model service. A response whose length or
// order cannot be trusted is treated as ErrModelUnavailable.
func (g *Gateway) Classify(ctx context.Context, texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return []Prediction{}, nil
	}

	body, err := json.Marshal(modelRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: model service returned %d", ErrModelUnavailable, resp.StatusCode)
	}

	var parsed modelResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if len(parsed.Predictions) != len(texts) {
		return nil, fmt.Errorf("%w: got %d predictions for %d inputs",
			ErrModelUnavailable, len(parsed.Predictions), len(texts))
	}

	out := make([]Prediction, len(texts))
	for i, item := range parsed.Predictions {
		pred, err := buildPrediction(texts[i], item)
		if err != nil {
			return nil, err
		}
		out[i] = pred
	}
	return out, nil
}

func buildPrediction(text string, item modelItem) (Prediction, error) {
	label := item.Label
	if label == "" {
		label = argmax(item.Probabilities)
	}
	if !taxonomy.IsValidLabel(label) {
		return Prediction{}, fmt.Errorf("%w: unknown label %q", ErrModelUnavailable, label)
	}

	var confidence float64
	if len(item.Probabilities) > 0 {
		confidence = scoreConfidence(item.Probabilities, text)
	} else {
		confidence = item.Confidence
		// Models reporting probabilities instead of percentages get scaled.
		if confidence <= 1.0 {
			confidence *= 100
		}
		confidence = clamp(confidence, 0, 100)
	}

	return Prediction{
		AccountName:       text,
		PredictedLabel:    label,
		ConfidencePercent: confidence,
		Explanation:       explain(label, item.TopTerms),
		Probabilities:     item.Probabilities,
	}, nil
}

func explain(label string, topTerms []string) string {
	if len(topTerms) > 0 {
		if len(topTerms) > 3 {
			topTerms = topTerms[:3]
		}
		return "Based on terms: " + strings.Join(topTerms, ", ")
	}
	return fmt.Sprintf("Classified as %s based on text analysis", label)
}

func argmax(dist map[string]float64) string {
	best, bestP := "", -1.0
	for label, p := range dist {
		if p > bestP {
			best, bestP = label, p
		}
	}
	return best
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
