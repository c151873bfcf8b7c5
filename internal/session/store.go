// Package session stores per-session conversation context for the question
// engine, in memory or in redis.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fieldops/backend/internal/nlq"
)

const DefaultTTL = 30 * time.Minute

// GlobalSessionID is the single slot every caller shares under Global.
const GlobalSessionID = "global"

// MemoryStore keeps conversations in process memory. Entries are stored
// encoded, so callers never share slices with the store.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]memoryEntry
	now  func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, data: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*nlq.Conversation, error) {
	s.mu.Lock()
	e, ok := s.data[sessionID]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.data, sessionID)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nlq.ErrNoConversation
	}
	return decode(e.value)
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, c *nlq.Conversation) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = memoryEntry{value: b, expiresAt: s.now().Add(s.ttl)}
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.data)
}

func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for k, e := range s.data {
		if !now.Before(e.expiresAt) {
			delete(s.data, k)
		}
	}
}

func decode(b []byte) (*nlq.Conversation, error) {
	var c nlq.Conversation
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &c, nil
}

// globalStore ignores the session id and keeps one shared slot, the way
// the service behaved before contexts were scoped per session.
type globalStore struct {
	inner nlq.ContextStore
}

func Global(inner nlq.ContextStore) nlq.ContextStore {
	return globalStore{inner: inner}
}

func (g globalStore) Load(ctx context.Context, _ string) (*nlq.Conversation, error) {
	return g.inner.Load(ctx, GlobalSessionID)
}

func (g globalStore) Save(ctx context.Context, _ string, c *nlq.Conversation) error {
	return g.inner.Save(ctx, GlobalSessionID, c)
}

func (g globalStore) Reset(ctx context.Context, _ string) error {
	return g.inner.Reset(ctx, GlobalSessionID)
}
