package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model name is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicBackend calls the Anthropic Messages API.
type AnthropicBackend struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropicBackend(apiKey, model string, maxTokens int) (*AnthropicBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic backend requires ANTHROPIC_API_KEY")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &AnthropicBackend{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
	}, nil
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

// Generate sends the user messages as ordered text blocks of a single user
// turn.
func (b *AnthropicBackend) Generate(ctx context.Context, req Request) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.UserMessages))
	for _, m := range req.UserMessages {
		blocks = append(blocks, anthropic.NewTextBlock(m))
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   b.maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(0),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages call failed: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
