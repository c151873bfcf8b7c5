// Package ai holds the optional language-model collaborator used for
// questions the rule engine cannot answer.
package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant answers prompt given the prior chat. A leading system message
// in history, if any, carries the instructions and data snapshot.
type Assistant interface {
	Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error)
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

const defaultCacheTTL = 60 * time.Second

// promptCache remembers answers for identical model, history and prompt.
type promptCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint64]cacheEntry
}

type cacheEntry struct {
	value string
	exp   time.Time
}

func newPromptCache(ttl time.Duration) *promptCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &promptCache{ttl: ttl, entries: map[uint64]cacheEntry{}}
}

func (c *promptCache) get(key uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if time.Now().Before(e.exp) {
			return e.value, true
		}
		delete(c.entries, key)
	}
	return "", false
}

func (c *promptCache) set(key uint64, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, exp: time.Now().Add(c.ttl)}
}

func cacheKey(model, prompt string, history []ChatMessage) uint64 {
	var b strings.Builder
	b.WriteString(model)
	for _, h := range history {
		b.WriteString("\x00" + h.Role + "\x00" + strconv.Itoa(len(h.Content)) + "\x00" + h.Content)
	}
	b.WriteString("\x00" + prompt)
	return hashString(b.String())
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// splitSystem separates leading system messages from the chat turns.
func splitSystem(history []ChatMessage) (string, []ChatMessage) {
	var system []string
	turns := make([]ChatMessage, 0, len(history))
	for _, h := range history {
		if h.Role == RoleSystem {
			system = append(system, h.Content)
			continue
		}
		turns = append(turns, h)
	}
	return strings.Join(system, "\n\n"), turns
}
