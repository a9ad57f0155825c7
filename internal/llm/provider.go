package llm

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tuanpa2295/filip-hackathon/internal/validation"
	"github.com/tuanpa2295/filip-hackathon/pkg/azureopenai"
)

// Settings selects and configures the AI providers.
type Settings struct {
	// Provider picks the chat generation backend: "azure" or "anthropic".
	Provider string

	AzureEndpoint        string
	AzureAPIKey          string
	AzureAPIVersion      string
	AzureChatDeployment  string
	AzureEmbedDeployment string

	AnthropicAPIKey string
	AnthropicModel  string
}

// Providers holds the resolved capability implementations.
type Providers struct {
	Generator validation.Generator
	Embedder  validation.Embedder
}

// New resolves Settings into concrete providers. Embeddings always come
// from Azure OpenAI since Anthropic does not offer an embeddings API.
func New(s Settings) (*Providers, error) {
	if s.AzureEndpoint == "" || s.AzureAPIKey == "" {
		return nil, eris.New("llm: azure endpoint and api key are required for embeddings")
	}

	azure := azureopenai.NewClient(
		s.AzureEndpoint,
		s.AzureAPIKey,
		s.AzureAPIVersion,
		s.AzureChatDeployment,
		s.AzureEmbedDeployment,
	)

	p := &Providers{Embedder: NewAzureEmbedder(azure)}

	switch s.Provider {
	case "", "azure":
		p.Generator = NewAzureGenerator(azure)
	case "anthropic":
		if s.AnthropicAPIKey == "" {
			return nil, eris.New("llm: anthropic api key is required when provider is anthropic")
		}
		p.Generator = NewAnthropicGenerator(s.AnthropicAPIKey, s.AnthropicModel)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", s.Provider)
	}

	zap.L().Info("llm providers resolved",
		zap.String("generation", s.Provider),
		zap.String("embeddings", "azure"),
	)
	return p, nil
}
