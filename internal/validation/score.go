package validation

import (
	"math"
	"strings"
)

// CosineSimilarity computes the cosine similarity of two vectors, clamped to
// [0,1]. Mismatched lengths compare over the shorter prefix; a zero-magnitude
// vector (e.g. the embedding of an empty string) yields 0.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	for i := n; i < len(a); i++ {
		magA += a[i] * a[i]
	}
	for i := n; i < len(b); i++ {
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0.0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	return math.Max(0.0, math.Min(1.0, sim))
}

// KeywordCoverage scores how much of a keyword vocabulary appears in text.
// Covering roughly 30% of the vocabulary already scores 1.0 — responses are
// short relative to the keyword lists, so full coverage is never expected.
// An empty vocabulary scores 0.8 (unknown domain, benefit of the doubt).
func KeywordCoverage(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.8
	}

	lower := strings.ToLower(text)
	present := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			present++
		}
	}

	return math.Min(1.0, float64(present)/math.Max(1, float64(len(keywords))*0.3))
}

// LengthScore rates response length appropriateness as a step function of
// character count: [100,800] is ideal, the bands widen outward from there.
func LengthScore(response string) float64 {
	length := len(response)

	switch {
	case length >= 100 && length <= 800:
		return 1.0
	case (length >= 50 && length < 100) || (length > 800 && length <= 1500):
		return 0.8
	case (length >= 20 && length < 50) || (length > 1500 && length <= 3000):
		return 0.6
	default:
		return 0.3
	}
}
