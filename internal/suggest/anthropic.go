package suggest

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// Anthropic generates rewrites through the Messages API. The SDK handles
// transport retries; the rate limiter here keeps bursts polite.
type Anthropic struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
}

// NewAnthropic builds a client for the given key and model.
func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		limiter: newDefaultLimiter(),
	}
}

// Generate sends the prompt and returns the first text block.
func (c *Anthropic) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(opts.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
