package pipeline

import (
	"context"
	"strings"

	"golang.org/x/time/rate"

	"github.com/sells-group/content-cli/internal/model"
	"github.com/sells-group/content-cli/pkg/anthropic"
)

// Completer is the narrow generation interface the steps depend on. It sends
// one system+user prompt pair and returns the reply text with token usage.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, model.TokenUsage, error)
}

// claudeCompleter backs Completer with the Anthropic client, rate limited so
// parallel steps stay inside the API quota.
type claudeCompleter struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	limiter     *rate.Limiter
}

// NewCompleter wraps an Anthropic client as a Completer. requestsPerSecond
// caps the call rate across all goroutines sharing the completer.
func NewCompleter(client anthropic.Client, modelID string, maxTokens int64, temperature, requestsPerSecond float64) Completer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &claudeCompleter{
		client:      client,
		model:       modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (c *claudeCompleter) Complete(ctx context.Context, system, user string) (string, model.TokenUsage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", model.TokenUsage{}, err
	}

	temp := c.temperature
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return "", model.TokenUsage{}, err
	}

	usage := model.TokenUsage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}
	return extractText(resp), usage, nil
}

// extractText concatenates text content blocks from a response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// cleanJSON strips markdown fences and extracts the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
