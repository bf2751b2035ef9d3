package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"winposts-bot/internal/retry"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Completer produces a completion for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config holds the connection settings for the completion API.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	api   *openai.Client
	model string
	temp  float32
	max   int
}

// NewClient creates a client. An empty BaseURL points at OpenRouter.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model cannot be empty")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	if oc.BaseURL == "" {
		oc.BaseURL = DefaultBaseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		temp:  cfg.Temperature,
		max:   cfg.MaxTokens,
	}, nil
}

// Complete sends one chat completion request. An empty answer is reported as retry.ErrEmpty;
// authentication and request errors are marked permanent.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temp,
		MaxTokens:   c.max,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && isPermanentStatus(apiErr.HTTPStatusCode) {
			return "", retry.Permanent(fmt.Errorf("completion rejected: %w", err))
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", retry.ErrEmpty
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", retry.ErrEmpty
	}
	return text, nil
}

func isPermanentStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
