package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/backend/internal/ai"
	"github.com/fieldops/backend/internal/models"
	"github.com/fieldops/backend/internal/nlq"
)

func sampleConversation() *nlq.Conversation {
	return &nlq.Conversation{
		EntityKind: nlq.KindDevices,
		Intent:     nlq.IntentCounting,
		Devices:    []models.RepairDevice{{SerialNumber: "SN1", Company: "ALSAD"}},
		Filters:    nlq.Filters{Company: "alsad"},
		History:    []ai.ChatMessage{{Role: ai.RoleUser, Content: "hi"}},
		UpdatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, nlq.ErrNoConversation)

	in := sampleConversation()
	require.NoError(t, s.Save(ctx, "a", in))
	in.Devices[0].SerialNumber = "mutated"

	out, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "SN1", out.Devices[0].SerialNumber)
	assert.Equal(t, nlq.Filters{Company: "alsad"}, out.Filters)
	assert.Equal(t, 1, out.ResultSize())

	_, err = s.Load(ctx, "b")
	assert.ErrorIs(t, err, nlq.ErrNoConversation)

	require.NoError(t, s.Reset(ctx, "a"))
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, nlq.ErrNoConversation)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "a", sampleConversation()))
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Minute)
	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, nlq.ErrNoConversation)
	assert.Equal(t, 0, s.Len())
}

func TestGlobalSharesOneSlot(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore(time.Minute)
	g := Global(inner)

	require.NoError(t, g.Save(ctx, "alice", sampleConversation()))
	out, err := g.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, nlq.KindDevices, out.EntityKind)

	_, err = inner.Load(ctx, GlobalSessionID)
	require.NoError(t, err)

	require.NoError(t, g.Reset(ctx, "carol"))
	_, err = g.Load(ctx, "alice")
	assert.ErrorIs(t, err, nlq.ErrNoConversation)
}

func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "fieldops:test:", TTL: time.Minute})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Reset(ctx, "it"))
	_, err = s.Load(ctx, "it")
	assert.ErrorIs(t, err, nlq.ErrNoConversation)

	require.NoError(t, s.Save(ctx, "it", sampleConversation()))
	out, err := s.Load(ctx, "it")
	require.NoError(t, err)
	assert.Equal(t, "SN1", out.Devices[0].SerialNumber)
	assert.Len(t, out.History, 1)

	require.NoError(t, s.Reset(ctx, "it"))
}
