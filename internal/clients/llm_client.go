package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.7
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Chat sends a single-turn system+user conversation and returns the reply text
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAICompatibleClient talks to any API implementing the OpenAI chat completions protocol.
type OpenAICompatibleClient struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAICompatibleClient creates a new client for OpenAI-compatible APIs.
// An empty apiURL keeps the official OpenAI endpoint.
func NewOpenAICompatibleClient(apiURL, apiKey, model string, timeout time.Duration) *OpenAICompatibleClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAICompatibleClient{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
	}
}

// Model returns the configured model name.
func (c *OpenAICompatibleClient) Model() string {
	return c.model
}

// Chat opens a fresh conversation for every call, no history is shared between calls.
func (c *OpenAICompatibleClient) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("LLM API key is empty")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("LLM API returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
