// Package azureopenai provides a client for the Azure OpenAI chat
// completions and embeddings endpoints.
package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/tuanpa2295/filip-hackathon/internal/resilience"
)

// Client defines the Azure OpenAI operations the engine uses.
type Client interface {
	// Complete sends a single-turn chat completion and returns the
	// assistant's text reply.
	Complete(ctx context.Context, prompt string) (string, error)
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage usage `json:"usage"`
}

type embeddingsRequest struct {
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage usage `json:"usage"`
}

type usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Option configures the Azure OpenAI client.
type Option func(*httpClient)

// WithBaseURL overrides the resource endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second across both endpoints.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithTemperature sets the sampling temperature for completions.
func WithTemperature(t float64) Option {
	return func(c *httpClient) {
		c.temperature = t
	}
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int) Option {
	return func(c *httpClient) {
		c.maxTokens = n
	}
}

type httpClient struct {
	apiKey          string
	baseURL         string
	apiVersion      string
	chatDeployment  string
	embedDeployment string
	temperature     float64
	maxTokens       int

	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewClient creates a client against an Azure OpenAI resource. The
// endpoint is the resource URL (https://<name>.openai.azure.com) and the
// deployments name the chat and embeddings models provisioned on it.
func NewClient(endpoint, apiKey, apiVersion, chatDeployment, embedDeployment string, opts ...Option) Client {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("azureopenai", "request")

	c := &httpClient{
		apiKey:          apiKey,
		baseURL:         endpoint,
		apiVersion:      apiVersion,
		chatDeployment:  chatDeployment,
		embedDeployment: embedDeployment,
		temperature:     0.3,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		retry:   retry,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			ShouldTrip: resilience.IsTransient,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	var result chatResponse
	if err := c.post(ctx, c.chatDeployment, "chat/completions", payload, &result); err != nil {
		return "", eris.Wrap(err, "azureopenai: chat completion")
	}

	if len(result.Choices) == 0 {
		return "", eris.New("azureopenai: completion returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

func (c *httpClient) Embed(ctx context.Context, text string) ([]float64, error) {
	payload := embeddingsRequest{Input: []string{text}}

	var result embeddingsResponse
	if err := c.post(ctx, c.embedDeployment, "embeddings", payload, &result); err != nil {
		return nil, eris.Wrap(err, "azureopenai: embeddings")
	}

	if len(result.Data) == 0 {
		return nil, eris.New("azureopenai: embeddings returned no data")
	}
	return result.Data[0].Embedding, nil
}

// post sends one JSON request to a deployment endpoint with rate limiting,
// circuit breaking, and transient-error retries, decoding the response
// into out.
func (c *httpClient) post(ctx context.Context, deployment, operation string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	reqURL := fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		c.baseURL, deployment, operation, c.apiVersion)

	raw, err := resilience.Do(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.breaker.Allow(); err != nil {
			return nil, err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		data, reqErr := c.doOnce(ctx, reqURL, body)
		c.breaker.Record(reqErr)
		return data, reqErr
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

func (c *httpClient) doOnce(ctx context.Context, reqURL string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(data)
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error.Message != "" {
			msg = ae.Error.Message
		}
		err := eris.Errorf("status %d: %s", resp.StatusCode, msg)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	return data, nil
}
