package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// defaultMaxTokens bounds the reply; four short fields fit comfortably.
const defaultMaxTokens = 512

// ErrEmptyReply is returned when the model reply has no text content.
var ErrEmptyReply = errors.New("llm reply has no text content")

// Completer sends a prompt to a generative text service and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMConfig configures the Anthropic completer.
type LLMConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string
	// MaxRetries is the SDK retry count. Zero disables SDK retries.
	MaxRetries int
}

// AnthropicCompleter calls the Anthropic Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter creates a completer. It does not contact the API.
func NewAnthropicCompleter(cfg LLMConfig) *AnthropicCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicCompleter{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete returns the first text block of the model reply.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", ErrEmptyReply
}

// PromptVersion identifies the BuildPrompt wording. Bump it when the wording changes.
const PromptVersion = "v1"

// BuildPrompt embeds the complaint text in the fixed classification instruction.
func BuildPrompt(text string) string {
	return fmt.Sprintf(`You are an AI assistant that classifies citizen complaints.
Return ONLY a JSON object with keys:
category, priority, summary, suggested_action
Complaint: "%s"`, text)
}
