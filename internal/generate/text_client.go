package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// TextConfig configures a TextClient.
type TextConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	MaxRetries int
}

// TextClient generates devotional text through an OpenAI-compatible chat
// completions endpoint.
type TextClient struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewTextClient returns a TextClient. Empty fields take the package defaults.
func NewTextClient(cfg TextConfig, opts ...option.RequestOption) *TextClient {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	reqOpts = append(reqOpts, opts...)

	return &TextClient{
		client:    openai.NewClient(reqOpts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Model returns the configured model id.
func (c *TextClient) Model() string { return c.model }

// Generate sends p as a chat completion and returns the first choice.
func (c *TextClient) Generate(ctx context.Context, p Prompt) (Output, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}
	messages = append(messages, openai.UserMessage(p.User))

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  messages,
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Output{}, fmt.Errorf("chat completion status %d: %w", apiErr.StatusCode, err)
		}
		return Output{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Output{}, fmt.Errorf("chat completion returned no choices")
	}

	model := completion.Model
	if model == "" {
		model = c.model
	}
	return Output{Text: completion.Choices[0].Message.Content, Model: model}, nil
}

var _ Generator = (*TextClient)(nil)
