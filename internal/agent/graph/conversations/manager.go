package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/model"
)

const defaultMaxTurns = 10

type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	maxTurns := config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxTurns:         maxTurns,
	}
}

// BuildAgentContext stores the user query and returns the system prompt
// followed by the most recent conversation messages, ending with the query.
func (cm *MessagesManager) BuildAgentContext(ctx context.Context, conversationID, query, systemPrompt string) ([]*schema.Message, error) {
	if err := cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(query)); err != nil {
		return nil, err
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	recent := trimTail(history.Messages, cm.maxTurns)
	messages := make([]*schema.Message, 0, len(recent)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, msg := range recent {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.AssistantMessage(content, nil))
}

func (cm *MessagesManager) History(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	return cm.conversationRepo.LoadHistory(ctx, conversationID)
}

func (cm *MessagesManager) Clear(ctx context.Context, conversationID string) error {
	return cm.conversationRepo.ClearHistory(ctx, conversationID)
}

// ====================== Helper function ======================
// trimTail keeps the last maxTurns messages, never starting on an assistant
// reply so the model always sees the question it answered.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	start := 0
	if len(messages) > maxTurns {
		start = len(messages) - maxTurns
	}
	for start < len(messages)-1 && messages[start] != nil && messages[start].Role != schema.User {
		start++
	}
	result := make([]*schema.Message, len(messages)-start)
	copy(result, messages[start:])
	return result
}
