// Package llm talks to an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

// NoResponse is returned in place of an empty completion
const NoResponse = "No response from AI."

var ErrNoAPIKey = errors.New("no API key configured (set api_key or GEMINI_API_KEY)")

// Generator produces a reply for input in the given mode
type Generator interface {
	Generate(ctx context.Context, input string, mode Mode) (string, error)
}

// Settings configures a Client
type Settings struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is a Generator backed by go-openai
type Client struct {
	client  *go_openai.Client
	model   string
	timeout time.Duration
}

var _ Generator = (*Client)(nil)

// NewClient builds a client. An API key is required.
func NewClient(s Settings) (*Client, error) {
	if s.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	config := go_openai.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(s.BaseURL, "/")
	}

	return &Client{
		client:  go_openai.NewClientWithConfig(config),
		model:   s.Model,
		timeout: s.Timeout,
	}, nil
}

// Generate sends the FocusFlow prompt for input and returns the completion text
func (c *Client) Generate(ctx context.Context, input string, mode Mode) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := go_openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []go_openai.ChatCompletionMessage{
			{
				Role:    go_openai.ChatMessageRoleUser,
				Content: BuildPrompt(input, mode),
			},
		},
	}

	log.Debug().
		Str("model", c.model).
		Str("mode", string(mode)).
		Int("input_len", len(input)).
		Msg("sending completion request")

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("choices", len(resp.Choices)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("completion received")

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}
