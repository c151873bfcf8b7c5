package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const DefaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicAssistant struct {
	Model     string
	MaxTokens int

	client *anthropic.Client
	cache  *promptCache
}

func NewAnthropicAssistant(baseURL, apiKey, model string, maxTokens int) *AnthropicAssistant {
	var opts []anthropic.ClientOption
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &AnthropicAssistant{
		Model:     model,
		MaxTokens: maxTokens,
		client:    anthropic.NewClient(apiKey, opts...),
		cache:     newPromptCache(defaultCacheTTL),
	}
}

func (a *AnthropicAssistant) Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error) {
	key := cacheKey(a.Model, prompt, history)
	if v, ok := a.cache.get(key); ok {
		return v, nil
	}

	system, turns := splitSystem(history)
	msgs := make([]anthropic.Message, 0, len(turns)+1)
	for _, h := range turns {
		role := anthropic.RoleUser
		if h.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}
		msgs = append(msgs, anthropic.Message{Role: role, Content: []anthropic.MessageContent{
			anthropic.NewTextMessageContent(h.Content),
		}})
	}
	msgs = append(msgs, anthropic.Message{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
		anthropic.NewTextMessageContent(prompt),
	}})

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.Model),
		MaxTokens: a.MaxTokens,
		System:    system,
		Messages:  msgs,
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) && apiErr.IsRateLimitErr() {
			return "", RateLimitError{}
		}
		return "", fmt.Errorf("assistant request failed: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			parts = append(parts, *block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("empty assistant response")
	}
	answer := strings.TrimSpace(strings.Join(parts, ""))
	a.cache.set(key, answer)
	return answer, nil
}
