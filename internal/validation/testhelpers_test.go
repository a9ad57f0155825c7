package validation

import (
	"context"
	"strings"
)

// embedderFunc adapts a function to the Embedder interface.
type embedderFunc func(ctx context.Context, text string) ([]float64, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float64, error) {
	return f(ctx, text)
}

// generatorFunc adapts a function to the Generator interface.
type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// retrieverFunc adapts a function to the Retriever interface.
type retrieverFunc func(ctx context.Context, query string, k int) ([]Document, error)

func (f retrieverFunc) Search(ctx context.Context, query string, k int) ([]Document, error) {
	return f(ctx, query, k)
}

// constEmbedder embeds every non-empty text to the same unit vector, and
// empty text to the zero vector (mirroring how an embedding of nothing
// behaves in the similarity computation).
func constEmbedder() Embedder {
	return embedderFunc(func(_ context.Context, text string) ([]float64, error) {
		if text == "" {
			return make([]float64, 4), nil
		}
		return []float64{0.5, 0.5, 0.5, 0.5}, nil
	})
}

// routingGenerator answers each validator's prompt with a fixed reply:
// the contextual JSON assessment, the domain rating, and the three quality
// sub-scores, keyed off distinctive prompt text.
func routingGenerator(accuracyJSON, domainScore, completeness, clarity, actionability string) Generator {
	return generatorFunc(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "accuracy_score"):
			return accuracyJSON, nil
		case strings.Contains(prompt, "appropriate for the"):
			return domainScore, nil
		case strings.Contains(prompt, "how completely"):
			return completeness, nil
		case strings.Contains(prompt, "clarity and readability"):
			return clarity, nil
		case strings.Contains(prompt, "how actionable"):
			return actionability, nil
		default:
			return "0.5", nil
		}
	})
}

// staticRetriever returns the same documents for every query.
func staticRetriever(docs ...Document) Retriever {
	return retrieverFunc(func(_ context.Context, _ string, _ int) ([]Document, error) {
		return docs, nil
	})
}

func courseDocs() []Document {
	return []Document{
		{Content: "Go Fundamentals: a course covering syntax, tooling and testing.", Score: 0.91},
		{Content: "Distributed Systems in Go: consensus, replication, load balancing.", Score: 0.85},
		{Content: "Backend Engineering curriculum: APIs, databases, deployment.", Score: 0.82},
	}
}
