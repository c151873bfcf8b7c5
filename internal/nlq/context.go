package nlq

import (
	"context"
	"errors"
	"time"

	"github.com/fieldops/backend/internal/ai"
	"github.com/fieldops/backend/internal/models"
)

// ErrNoConversation is returned by a ContextStore when a session has no
// stored turn.
var ErrNoConversation = errors.New("no conversation")

// MaxHistory is the number of assistant chat messages kept per session.
const MaxHistory = 8

// Conversation is the remembered result of a session's previous turn. Only
// one of Salesmen and Devices is populated, according to EntityKind.
type Conversation struct {
	EntityKind EntityKind            `json:"entity_kind,omitempty"`
	Intent     Intent                `json:"intent,omitempty"`
	Salesmen   []models.Salesman     `json:"salesmen,omitempty"`
	Devices    []models.RepairDevice `json:"devices,omitempty"`
	Filters    Filters               `json:"filters"`
	History    []ai.ChatMessage      `json:"history,omitempty"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// ResultSize is the size of the stored result set for the stored kind.
func (c *Conversation) ResultSize() int {
	if c == nil {
		return 0
	}
	switch c.EntityKind {
	case KindSalesmen:
		return len(c.Salesmen)
	case KindDevices:
		return len(c.Devices)
	}
	return 0
}

func (c *Conversation) appendHistory(msgs ...ai.ChatMessage) {
	c.History = append(c.History, msgs...)
	if n := len(c.History); n > MaxHistory {
		c.History = append([]ai.ChatMessage(nil), c.History[n-MaxHistory:]...)
	}
}

// ContextStore persists one Conversation per session id.
type ContextStore interface {
	Load(ctx context.Context, sessionID string) (*Conversation, error)
	Save(ctx context.Context, sessionID string, c *Conversation) error
	Reset(ctx context.Context, sessionID string) error
}
