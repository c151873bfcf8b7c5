package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel = openai.GPT3Dot5Turbo
	DefaultMaxTokens   = 75
	defaultTemperature = 0.5
)

// OpenAICompatAssistant talks to any chat/completions endpoint that speaks
// the OpenAI protocol.
type OpenAICompatAssistant struct {
	Model     string
	MaxTokens int

	client *openai.Client
	cache  *promptCache
}

func NewOpenAICompatAssistant(baseURL, apiKey, model string, maxTokens int) *OpenAICompatAssistant {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultOpenAIModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &OpenAICompatAssistant{
		Model:     model,
		MaxTokens: maxTokens,
		client:    openai.NewClientWithConfig(cfg),
		cache:     newPromptCache(defaultCacheTTL),
	}
}

func (a *OpenAICompatAssistant) Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error) {
	key := cacheKey(a.Model, prompt, history)
	if v, ok := a.cache.get(key); ok {
		return v, nil
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, h := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: h.Role, Content: h.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.Model,
		MaxTokens:   a.MaxTokens,
		Temperature: defaultTemperature,
		Messages:    msgs,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", RateLimitError{}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", RateLimitError{}
		}
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty assistant response")
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.cache.set(key, answer)
	return answer, nil
}
