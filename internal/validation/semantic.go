package validation

import (
	"context"
	"fmt"
	"time"
)

// SemanticValidator scores how semantically related a response is to the
// query by comparing their embeddings.
type SemanticValidator struct {
	embedder Embedder
	passAt   float64
}

// NewSemanticValidator creates a semantic relevance validator. passThreshold
// is the minimum similarity for the result to count as passed.
func NewSemanticValidator(embedder Embedder, passThreshold float64) *SemanticValidator {
	return &SemanticValidator{embedder: embedder, passAt: passThreshold}
}

func (v *SemanticValidator) Name() string { return "semantic" }

// Validate embeds query and response independently and scores their cosine
// similarity.
func (v *SemanticValidator) Validate(ctx context.Context, in Input) Result {
	start := time.Now()

	queryVec, err := v.embedder.Embed(ctx, in.Query)
	if err != nil {
		return failedResult(v.Name(), err, "Check embedding model configuration")
	}
	responseVec, err := v.embedder.Embed(ctx, in.Response)
	if err != nil {
		return failedResult(v.Name(), err, "Check embedding model configuration")
	}

	score := CosineSimilarity(queryVec, responseVec)
	confidence := ConfidenceFromScore(score)
	elapsed := time.Since(start)

	return Result{
		Validator:   v.Name(),
		Valid:       score >= v.passAt,
		Score:       score,
		Confidence:  confidence,
		Reasons:     []string{semanticReason(score, confidence)},
		Suggestions: semanticSuggestions(score),
		Metadata: map[string]any{
			"similarity_score": score,
			"duration_seconds": elapsed.Seconds(),
		},
		Elapsed: elapsed,
	}
}

func semanticReason(score float64, confidence Confidence) string {
	var band string
	switch confidence {
	case ConfidenceHigh:
		band = "High"
	case ConfidenceMedium:
		band = "Moderate"
	case ConfidenceLow:
		band = "Low"
	default:
		band = "Very low"
	}
	return fmt.Sprintf("[SEMANTIC] %s semantic similarity between query and response (score: %.3f)", band, score)
}

func semanticSuggestions(score float64) []string {
	switch {
	case score < 0.55:
		return []string{
			"Ensure response directly addresses the user's query",
			"Include key terms from the original question",
			"Focus on the specific domain requested",
		}
	case score < 0.70:
		return []string{
			"Consider using more specific terminology from the query",
			"Ensure response covers all aspects of the question",
		}
	default:
		return nil
	}
}
