// Package aiextract talks to an OpenAI-compatible chat completion API to
// turn statement text into transaction JSON.
package aiextract

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// Options configure a Client.
type Options struct {
	BaseURL  string
	APIKey   string
	Model    string
	JSONMode bool
}

// Client sends statement text with SystemPrompt and returns the model's reply.
type Client struct {
	api      *openai.Client
	model    string
	jsonMode bool
}

// New creates a Client. An empty BaseURL means the public OpenAI endpoint.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing API key")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:      openai.NewClientWithConfig(cfg),
		model:    model,
		jsonMode: opts.JSONMode,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// Extract implements pdfstmt.Extractor.
func (c *Client) Extract(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
