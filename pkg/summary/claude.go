package summary

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// ClaudeGenerator generates summaries through the Anthropic Messages API.
type ClaudeGenerator struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature float64
}

// ClaudeOption configures a ClaudeGenerator.
type ClaudeOption func(*ClaudeGenerator)

// WithModel overrides the model ID.
func WithModel(m string) ClaudeOption {
	return func(g *ClaudeGenerator) { g.model = m }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int64) ClaudeOption {
	return func(g *ClaudeGenerator) { g.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ClaudeOption {
	return func(g *ClaudeGenerator) { g.temperature = t }
}

// WithBaseURL points the SDK at an alternate endpoint. Test hook.
func WithBaseURL(u string) ClaudeOption {
	return func(g *ClaudeGenerator) {
		g.client = sdk.NewClient(option.WithAPIKey("test-key"), option.WithBaseURL(u), option.WithMaxRetries(0))
	}
}

// NewClaudeGenerator creates a generator backed by the official SDK.
func NewClaudeGenerator(apiKey string, opts ...ClaudeOption) *ClaudeGenerator {
	g := &ClaudeGenerator{
		client:      sdk.NewClient(option.WithAPIKey(apiKey)),
		model:       "claude-haiku-4-5-20251001",
		maxTokens:   1024,
		temperature: 0.4,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the prompt, calls the model, and returns the scrubbed
// plain-text summary.
func (g *ClaudeGenerator) Generate(ctx context.Context, subject model.SubjectProperty, features model.FeatureSet) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: g.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(buildPrompt(subject, features))),
		},
	}
	params.Temperature = sdk.Float(g.temperature)

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "summary: create message")
	}

	zap.L().Debug("summary generated",
		zap.String("model", g.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	cleaned, err := Clean(text)
	if err != nil {
		return "", eris.Wrap(err, "summary: clean response")
	}
	return cleaned, nil
}
