// Package llm wires concrete AI providers to the capability interfaces the
// validation and recommendation packages consume. Chat generation can come
// from Anthropic or Azure OpenAI; embeddings always come from Azure OpenAI.
package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/tuanpa2295/filip-hackathon/internal/resilience"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicGenerator produces chat completions via the Anthropic API.
type AnthropicGenerator struct {
	client    sdk.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// NewAnthropicGenerator creates a generator backed by the official SDK.
// An empty model selects the default.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	if model == "" {
		model = defaultAnthropicModel
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "generate")

	return &AnthropicGenerator{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 2048,
		retry:     retry,
	}
}

// Generate sends prompt as a single user turn and returns the concatenated
// text blocks of the reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := resilience.Do(ctx, g.retry, func(ctx context.Context) (*sdk.Message, error) {
		return g.client.Messages.New(ctx, sdk.MessageNewParams{
			Model:     sdk.Model(g.model),
			MaxTokens: g.maxTokens,
			Messages: []sdk.MessageParam{
				sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
			},
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic generate")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
