package classifier

import (
	"math"
	"strings"
)

// Confidence scoring weights and penalties. The raw score blends the top
// probability with the margin over the runner-up, then text-quality penalties
// shave it down before conversion to a percentage.
const (
	pMaxWeight         = 0.65
	marginWeight       = 0.35
	shortTextPenalty   = 0.75
	vagueTextPenalty   = 0.85
	symbolTextPenalty  = 0.75
	shortTextThreshold = 3
)

var vagueKeywords = []string{
	"unknown", "misc", "miscellaneous", "other", "others",
	"lain", "lainnya", "umum", "berbagai",
}

// scoreConfidence converts a probability distribution plus the source text
// into a confidence percentage in [0,100], rounded to one decimal.
func scoreConfidence(dist map[string]float64, text string) float64 {
	pMax, pSecond := 0.0, 0.0
	for _, p := range dist {
		if p > pMax {
			pSecond = pMax
			pMax = p
		} else if p > pSecond {
			pSecond = p
		}
	}

	margin := pMax - pSecond
	raw := pMaxWeight*pMax + marginWeight*sigmoid(10*margin)

	if len(strings.TrimSpace(text)) < shortTextThreshold {
		raw *= shortTextPenalty
	}
	if isVagueText(text) {
		raw *= vagueTextPenalty
	}
	if isMostlySymbols(text) {
		raw *= symbolTextPenalty
	}

	raw = clamp(raw, 0, 1)
	return math.Round(raw*1000) / 10
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isVagueText(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range vagueKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isMostlySymbols reports whether under 30% of the non-space characters are
// alphabetic.
func isMostlySymbols(text string) bool {
	alpha, total := 0, 0
	for _, r := range text {
		if r == ' ' {
			continue
		}
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	if total == 0 {
		return true
	}
	return float64(alpha)/float64(total) < 0.3
}
