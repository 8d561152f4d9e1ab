// Package llm talks to an OpenAI-compatible chat endpoint for question answering.
// The default configuration points at a local Ollama server.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	DefaultBaseURL   = "http://localhost:11434/v1"
	DefaultModel     = "llama3.2"
	DefaultMaxTokens = 800
)

var ErrNoResponse = errors.New("no response from model")

// ChatAPI is the completion call used by Client.
type ChatAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int64
}

// Client sends single-turn prompts to the configured model.
type Client struct {
	api       ChatAPI
	model     string
	maxTokens int64
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}

	c := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return newClient(&c.Chat.Completions, cfg)
}

func newClient(api ChatAPI, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{api: api, model: model, maxTokens: maxTokens}
}

// Chat sends prompt as a user message and returns the model's reply.
func (c *Client) Chat(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := c.api.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float64(temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrNoResponse
	}
	return content, nil
}
