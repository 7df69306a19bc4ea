package graph

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplychain-optimizer/server/internal/agent/graph/nodes"
	"github.com/supplychain-optimizer/server/internal/agent/model"
	"github.com/supplychain-optimizer/server/internal/agent/repo"
	errx "github.com/supplychain-optimizer/server/internal/core/error"
)

// scriptedModel replays its responses in order and repeats the last one.
type scriptedModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	calls     int
	inputs    [][]*schema.Message
	bound     []*schema.ToolInfo
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, append([]*schema.Message(nil), input...))
	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++

	src := m.responses[idx]
	out := &schema.Message{
		Role:         src.Role,
		Content:      src.Content,
		ToolCalls:    append([]schema.ToolCall(nil), src.ToolCalls...),
		ResponseMeta: src.ResponseMeta,
	}
	return out, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	m.bound = tools
	return m, nil
}

type plannerModel struct{}

func (plannerModel) Generate(context.Context, []*schema.Message, ...einomodel.Option) (*schema.Message, error) {
	return schema.AssistantMessage("1. Find suppliers\n2. Check alternatives", nil), nil
}

func (plannerModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

// emptyGraph returns no rows for every statement.
type emptyGraph struct{}

func (emptyGraph) Read(context.Context, string, map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func toolCallMsg(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			Function: schema.FunctionCall{Name: name, Arguments: args},
		}},
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 100, CompletionTokens: 10, TotalTokens: 110}},
	}
}

func answerMsg(content string) *schema.Message {
	msg := schema.AssistantMessage(content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 200, CompletionTokens: 20, TotalTokens: 220}}
	return msg
}

func newRunner(t *testing.T, agent *scriptedModel, maxCalls int) (Runner, model.ConversationRepository) {
	t.Helper()
	conversations := repo.NewMemoryConversationRepository(0)
	cfg := Config{
		Conversation:     model.ConversationConfig{MaxTurns: 10},
		Tools:            model.ToolConfig{CypherMaxRows: 10, IncidentLimit: 5},
		ConversationRepo: conversations,
		Graph:            emptyGraph{},
		ChatModels: &nodes.ChatModels{
			Agent:            agent,
			Planner:          plannerModel{},
			AgentModelName:   "gemini-2.5-pro",
			PlannerModelName: "gemini-2.5-pro",
		},
	}
	cfg.Conversation.Tools.MaxCalls = maxCalls

	runner, err := BuildAgentGraph(context.Background(), cfg)
	require.NoError(t, err)
	return runner, conversations
}

func TestInvokeRunsToolLoop(t *testing.T) {
	agent := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("simulate_disruption", `{"location":" Shanghai ","delay_days":5}`),
		answerMsg("No suppliers are located in Shanghai."),
	}}
	runner, conversations := newRunner(t, agent, 3)

	res, err := runner.Invoke(context.Background(), model.QueryInput{
		Query: "Simulate the impact if Shanghai suppliers are delayed by 5 days.",
	})
	require.NoError(t, err)

	assert.Equal(t, "No suppliers are located in Shanghai.", res.Response)
	assert.NotEmpty(t, res.ConversationID)
	assert.Equal(t, []string{"simulate_disruption"}, res.ToolsUsed)
	assert.Equal(t, 2, res.Usage.ModelCalls)
	assert.Equal(t, 330, res.Usage.TotalTokens)
	assert.Len(t, agent.bound, 4)

	require.Len(t, agent.inputs, 2)
	first := agent.inputs[0]
	assert.Equal(t, schema.System, first[0].Role)
	assert.Contains(t, first[0].Content, "Supplier")

	second := agent.inputs[1]
	last := second[len(second)-1]
	assert.Equal(t, schema.Tool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, `unknown location`)

	n, err := conversations.GetMessageCount(context.Background(), res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "user question and final answer are persisted")
}

func TestInvokeKeepsConversationAcrossTurns(t *testing.T) {
	agent := &scriptedModel{responses: []*schema.Message{answerMsg("Hello.")}}
	runner, _ := newRunner(t, agent, 3)

	res, err := runner.Invoke(context.Background(), model.QueryInput{ConversationID: "c1", Query: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "c1", res.ConversationID)
	assert.Empty(t, res.ToolsUsed)

	_, err = runner.Invoke(context.Background(), model.QueryInput{ConversationID: "c1", Query: "again"})
	require.NoError(t, err)

	// system + hi + Hello. + again
	assert.Len(t, agent.inputs[1], 4)

	history, err := runner.History(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, history.Messages, 4)

	require.NoError(t, runner.Clear(context.Background(), "c1"))
	history, err = runner.History(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestInvokeStopsAtToolLimit(t *testing.T) {
	agent := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("incident_search", `{"query":"storm"}`),
		{
			Role:    schema.Assistant,
			Content: "Partial answer from the incidents found.",
			ToolCalls: []schema.ToolCall{{
				Function: schema.FunctionCall{Name: "cypher_query", Arguments: `{"query":"MATCH (n) RETURN n"}`},
			}},
		},
	}}
	runner, _ := newRunner(t, agent, 1)

	res, err := runner.Invoke(context.Background(), model.QueryInput{Query: "Any storms?"})
	require.NoError(t, err)

	assert.Equal(t, "Partial answer from the incidents found.", res.Response)
	assert.Equal(t, []string{"incident_search"}, res.ToolsUsed)
	require.Len(t, agent.inputs, 2)

	second := agent.inputs[1]
	notice := second[len(second)-1]
	assert.Equal(t, schema.System, notice.Role)
	assert.Contains(t, notice.Content, "maximum tool call limit (1)")
}

func TestInvokeHandlesUnknownTool(t *testing.T) {
	agent := &scriptedModel{responses: []*schema.Message{
		toolCallMsg("delete_everything", `{}`),
		answerMsg("I can only use the supply chain tools."),
	}}
	runner, _ := newRunner(t, agent, 3)

	res, err := runner.Invoke(context.Background(), model.QueryInput{Query: "wipe the db"})
	require.NoError(t, err)
	assert.Equal(t, "I can only use the supply chain tools.", res.Response)

	second := agent.inputs[1]
	last := second[len(second)-1]
	assert.Contains(t, last.Content, "unknown_tool")
	assert.Contains(t, last.Content, "cypher_query")
}

func TestInvokeFallsBackOnEmptyAnswer(t *testing.T) {
	agent := &scriptedModel{responses: []*schema.Message{answerMsg("  ")}}
	runner, _ := newRunner(t, agent, 3)

	res, err := runner.Invoke(context.Background(), model.QueryInput{Query: "?"})
	require.NoError(t, err)
	assert.Equal(t, FallbackResponse, res.Response)
}

func TestInvokeRejectsEmptyQuery(t *testing.T) {
	agent := &scriptedModel{responses: []*schema.Message{answerMsg("unused")}}
	runner, _ := newRunner(t, agent, 3)

	_, err := runner.Invoke(context.Background(), model.QueryInput{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
	assert.Zero(t, agent.calls)
}

func TestBuildAgentGraphValidatesDependencies(t *testing.T) {
	_, err := BuildAgentGraph(context.Background(), Config{Graph: emptyGraph{}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "conversation repo"))

	_, err = BuildAgentGraph(context.Background(), Config{ConversationRepo: repo.NewMemoryConversationRepository(0)})
	require.Error(t, err)

	_, err = BuildGraph(context.Background(), nil)
	require.Error(t, err)
}

func TestMaxRunSteps(t *testing.T) {
	assert.Equal(t, 20, maxRunSteps(1))
	assert.Equal(t, 30, maxRunSteps(10))
}
