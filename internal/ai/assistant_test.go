package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/backend/internal/models"
)

func TestOpenAICompatAssistantAsk(t *testing.T) {
	var calls int32
	var got struct {
		Model     string        `json:"model"`
		MaxTokens int           `json:"max_tokens"`
		Messages  []ChatMessage `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" 3 devices. "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	a := NewOpenAICompatAssistant(srv.URL, "secret", "", 0)
	history := []ChatMessage{{Role: RoleSystem, Content: "data"}, {Role: RoleUser, Content: "hi"}}

	answer, err := a.Ask(context.Background(), "how many?", history)
	require.NoError(t, err)
	assert.Equal(t, "3 devices.", answer)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "how many?", got.Messages[2].Content)

	// identical prompt and history are served from the cache
	answer, err = a.Ask(context.Background(), "how many?", history)
	require.NoError(t, err)
	assert.Equal(t, "3 devices.", answer)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAICompatAssistantRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	a := NewOpenAICompatAssistant(srv.URL, "k", "gpt-test", 10)
	_, err := a.Ask(context.Background(), "q", nil)
	var rl RateLimitError
	assert.True(t, errors.As(err, &rl), "expected RateLimitError, got %v", err)
}

func TestAnthropicAssistantAsk(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		System   string `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude-test",` +
			`"content":[{"type":"text","text":"Jeddah"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":1}}`))
	}))
	defer srv.Close()

	a := NewAnthropicAssistant(srv.URL, "k", "claude-test", 0)
	history := []ChatMessage{
		{Role: RoleSystem, Content: "use the data"},
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "reply"},
	}
	answer, err := a.Ask(context.Background(), "where?", history)
	require.NoError(t, err)
	assert.Equal(t, "Jeddah", answer)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, "use the data", got.System)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestMockAssistantIsDeterministic(t *testing.T) {
	m := MockAssistant{ModelVersion: "mock-v1"}
	a1, err := m.Ask(context.Background(), "compare alsad and nadec", nil)
	require.NoError(t, err)
	a2, err := m.Ask(context.Background(), "compare alsad and nadec", nil)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Contains(t, a1, "mock-v1")
}

func TestSystemPromptEmbedsTables(t *testing.T) {
	prompt, err := SystemPrompt([]models.Salesman{{Name: "Ahmed", Company: "ALSAD"}}, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"name":"Ahmed"`)
	assert.Contains(t, prompt, `"repair_devices":[]`)
	assert.Contains(t, prompt, "company and branch mentioned last")
}

func TestSplitSystem(t *testing.T) {
	system, turns := splitSystem([]ChatMessage{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "b"},
		{Role: RoleSystem, Content: "c"},
	})
	assert.Equal(t, "a\n\nc", system)
	assert.Equal(t, []ChatMessage{{Role: RoleUser, Content: "b"}}, turns)
}
