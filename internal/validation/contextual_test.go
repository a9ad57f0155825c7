package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextualValidator(t *testing.T) {
	t.Parallel()

	t.Run("parses structured assessment", func(t *testing.T) {
		t.Parallel()
		gen := generatorFunc(func(context.Context, string) (string, error) {
			return `{"accuracy_score": 0.9, "factual_issues": [], "consistency_rating": 0.95}`, nil
		})
		v := NewContextualValidator(gen, staticRetriever(courseDocs()...), 0.60)
		r := v.Validate(context.Background(), Input{Query: "go courses", Response: "Take Go Fundamentals."})
		assert.True(t, r.Valid)
		assert.InDelta(t, 0.9, r.Score, 1e-9)
		assert.Equal(t, ConfidenceHigh, r.Confidence)
		assert.Equal(t, 3, r.Metadata["context_docs_count"])
	})

	t.Run("fenced reply is accepted", func(t *testing.T) {
		t.Parallel()
		gen := generatorFunc(func(context.Context, string) (string, error) {
			return "```json\n{\"accuracy_score\": 0.7, \"factual_issues\": [\"minor\"]}\n```", nil
		})
		v := NewContextualValidator(gen, staticRetriever(courseDocs()...), 0.60)
		r := v.Validate(context.Background(), Input{Query: "q", Response: "r"})
		assert.True(t, r.Valid)
		assert.InDelta(t, 0.7, r.Score, 1e-9)
		assert.Contains(t, r.Reasons[1], "minor")
	})

	t.Run("unparsable reply falls back to neutral", func(t *testing.T) {
		t.Parallel()
		gen := generatorFunc(func(context.Context, string) (string, error) {
			return "The response looks mostly accurate to me.", nil
		})
		v := NewContextualValidator(gen, staticRetriever(courseDocs()...), 0.60)
		r := v.Validate(context.Background(), Input{Query: "q", Response: "r"})
		assert.False(t, r.Valid)
		assert.InDelta(t, 0.5, r.Score, 1e-9)
		issues, _ := r.Metadata["factual_issues"].([]string)
		assert.Contains(t, issues, "Unable to parse validation response")
	})

	t.Run("supplied context skips retrieval", func(t *testing.T) {
		t.Parallel()
		searched := false
		ret := retrieverFunc(func(context.Context, string, int) ([]Document, error) {
			searched = true
			return nil, nil
		})
		gen := generatorFunc(func(context.Context, string) (string, error) {
			return `{"accuracy_score": 0.8}`, nil
		})
		v := NewContextualValidator(gen, ret, 0.60)
		r := v.Validate(context.Background(), Input{
			Query:       "q",
			Response:    "r",
			ContextDocs: courseDocs(),
		})
		assert.False(t, searched)
		assert.True(t, r.Valid)
	})

	t.Run("retrieval failure degrades to failed result", func(t *testing.T) {
		t.Parallel()
		ret := retrieverFunc(func(context.Context, string, int) ([]Document, error) {
			return nil, errors.New("vector store down")
		})
		v := NewContextualValidator(routingGenerator("", "", "", "", ""), ret, 0.60)
		r := v.Validate(context.Background(), Input{Query: "q", Response: "r"})
		assert.False(t, r.Valid)
		assert.Equal(t, 0.0, r.Score)
		assert.Contains(t, r.Reasons[0], "vector store down")
	})

	t.Run("generation failure degrades to failed result", func(t *testing.T) {
		t.Parallel()
		gen := generatorFunc(func(context.Context, string) (string, error) {
			return "", errors.New("llm timeout")
		})
		v := NewContextualValidator(gen, staticRetriever(courseDocs()...), 0.60)
		r := v.Validate(context.Background(), Input{Query: "q", Response: "r"})
		assert.Equal(t, ConfidenceFailed, r.Confidence)
		assert.Contains(t, r.Reasons[0], "llm timeout")
	})

	t.Run("prompt condenses to top three documents", func(t *testing.T) {
		t.Parallel()
		var captured string
		gen := generatorFunc(func(_ context.Context, prompt string) (string, error) {
			captured = prompt
			return `{"accuracy_score": 0.8}`, nil
		})
		docs := append(courseDocs(), Document{Content: "FOURTH-DOC-MARKER"})
		v := NewContextualValidator(gen, nil, 0.60)
		v.Validate(context.Background(), Input{Query: "q", Response: "r", ContextDocs: docs})
		assert.Contains(t, captured, "Source 3")
		assert.NotContains(t, captured, "FOURTH-DOC-MARKER")
	})
}
