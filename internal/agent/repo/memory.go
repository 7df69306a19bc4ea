package repo

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/model"
)

// MemoryConversationRepository keeps conversations in process memory.
// It is used when no Redis URL is configured.
type MemoryConversationRepository struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	convs     map[string]*memoryConversation
	lastSweep time.Time
}

type memoryConversation struct {
	messages  []*schema.Message
	expiresAt time.Time
}

func NewMemoryConversationRepository(ttl time.Duration) *MemoryConversationRepository {
	return &MemoryConversationRepository{
		ttl:   ttl,
		now:   time.Now,
		convs: make(map[string]*memoryConversation),
	}
}

// get returns the live conversation, dropping it if expired. Caller holds mu.
func (r *MemoryConversationRepository) get(conversationID string) *memoryConversation {
	c, ok := r.convs[conversationID]
	if !ok {
		return nil
	}
	if !c.expiresAt.IsZero() && !r.now().Before(c.expiresAt) {
		delete(r.convs, conversationID)
		return nil
	}
	return c
}

// sweep drops every expired conversation, at most once per TTL. Caller holds mu.
func (r *MemoryConversationRepository) sweep() {
	if r.ttl <= 0 {
		return
	}
	now := r.now()
	if now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, c := range r.convs {
		if !now.Before(c.expiresAt) {
			delete(r.convs, id)
		}
	}
}

func (r *MemoryConversationRepository) AddMessage(_ context.Context, conversationID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()
	c := r.get(conversationID)
	if c == nil {
		c = &memoryConversation{}
		r.convs[conversationID] = c
	}
	cp := *message
	c.messages = append(c.messages, &cp)
	if r.ttl > 0 {
		c.expiresAt = r.now().Add(r.ttl)
	}
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(_ context.Context, conversationID string) (*model.ConversationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := []*schema.Message{}
	if c := r.get(conversationID); c != nil {
		for _, m := range c.messages {
			cp := *m
			msgs = append(msgs, &cp)
		}
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *MemoryConversationRepository) ClearHistory(_ context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.convs, conversationID)
	return nil
}

func (r *MemoryConversationRepository) GetMessageCount(_ context.Context, conversationID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.get(conversationID); c != nil {
		return len(c.messages), nil
	}
	return 0, nil
}

func (r *MemoryConversationRepository) Ping(context.Context) error {
	return nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
