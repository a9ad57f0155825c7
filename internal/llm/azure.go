package llm

import (
	"context"

	"github.com/tuanpa2295/filip-hackathon/pkg/azureopenai"
)

// AzureGenerator adapts an Azure OpenAI client to the Generator capability.
type AzureGenerator struct {
	client azureopenai.Client
}

// NewAzureGenerator wraps client for chat generation.
func NewAzureGenerator(client azureopenai.Client) *AzureGenerator {
	return &AzureGenerator{client: client}
}

func (g *AzureGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.client.Complete(ctx, prompt)
}

// AzureEmbedder adapts an Azure OpenAI client to the Embedder capability.
type AzureEmbedder struct {
	client azureopenai.Client
}

// NewAzureEmbedder wraps client for embeddings.
func NewAzureEmbedder(client azureopenai.Client) *AzureEmbedder {
	return &AzureEmbedder{client: client}
}

func (e *AzureEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.client.Embed(ctx, text)
}
