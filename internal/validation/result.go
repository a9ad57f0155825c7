// Package validation scores LLM-generated learning recommendations along
// independent quality dimensions and combines the scores into a single
// accept-or-regenerate decision.
package validation

import (
	"context"
	"time"
)

// Confidence is a coarse quality bucket derived from a numeric score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceFailed Confidence = "failed"
)

// ConfidenceFromScore maps a score in [0,1] to a confidence bucket. The cut
// points are shared by every validator and by the aggregated result.
func ConfidenceFromScore(score float64) Confidence {
	switch {
	case score >= 0.85:
		return ConfidenceHigh
	case score >= 0.70:
		return ConfidenceMedium
	case score >= 0.55:
		return ConfidenceLow
	default:
		return ConfidenceFailed
	}
}

// Result is the outcome of a single validator run. Results are constructed
// once and never mutated afterwards.
type Result struct {
	Validator   string         `json:"validator"`
	Valid       bool           `json:"is_valid"`
	Score       float64        `json:"score"`
	Confidence  Confidence     `json:"confidence_level"`
	Reasons     []string       `json:"reasons"`
	Suggestions []string       `json:"suggestions"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	// Elapsed is the wall-clock duration of the validator run, used for
	// metrics accumulation. Human-readable timing is also mirrored into
	// Metadata under "duration_seconds".
	Elapsed time.Duration `json:"-"`
}

// failedResult builds the degraded outcome every validator returns when an
// internal step (embedding call, LLM call, retrieval) fails. Score is zero so
// the failure weighs fully against the aggregate.
func failedResult(name string, err error, suggestion string) Result {
	return Result{
		Validator:   name,
		Valid:       false,
		Score:       0.0,
		Confidence:  ConfidenceFailed,
		Reasons:     []string{name + " validation error: " + err.Error()},
		Suggestions: []string{suggestion},
		Metadata:    map[string]any{"error": err.Error()},
	}
}

// Input carries one (query, response) pair through a validation pass.
type Input struct {
	Query    string
	Response string
	// Domain selects the keyword vocabulary and prompt framing
	// ("courses", "skills", ...). Empty means "courses".
	Domain string
	// ContextDocs, when set, skips the retrieval step of the contextual
	// validator.
	ContextDocs []Document
}

// Validator scores a response along one quality dimension. Implementations
// must not return errors or panic across this boundary: any internal failure
// degrades to a Failed-tier, zero-score Result so the orchestrator can always
// combine well-formed outcomes.
type Validator interface {
	Name() string
	Validate(ctx context.Context, in Input) Result
}

// Embedder produces a fixed-dimension vector for arbitrary text. The
// dimension is whatever the backing model emits; nothing here depends on it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator performs a single-turn text completion. Replies may be prose or
// JSON-encoded; callers tolerate malformed output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Document is one retrieved context item.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// Retriever performs top-k similarity search over the course collection.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Document, error)
}
