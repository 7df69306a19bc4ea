package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/supplychain-optimizer/server/internal/agent/graph/conversations"
	"github.com/supplychain-optimizer/server/internal/agent/graph/nodes"
	"github.com/supplychain-optimizer/server/internal/agent/graph/observers"
	"github.com/supplychain-optimizer/server/internal/agent/graph/prompts"
	"github.com/supplychain-optimizer/server/internal/agent/graph/tools"
	"github.com/supplychain-optimizer/server/internal/agent/model"
	errx "github.com/supplychain-optimizer/server/internal/core/error"
	"github.com/supplychain-optimizer/server/internal/supplychain"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

// FallbackResponse is returned when the model ends a run without any text.
const FallbackResponse = "I could not produce an answer from the supply chain data. Please rephrase the question or narrow it down."

// Runner executes the compiled agent graph and exposes the conversation it keeps.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.QueryResult, error)
	History(ctx context.Context, conversationID string) (*model.ConversationHistory, error)
	Clear(ctx context.Context, conversationID string) error
}

// Config holds everything needed to compose the agent graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs ChatModels and MessagesManager.
type Config struct {
	Gemini       model.GeminiConfig
	Agent        model.AgentModelConfig
	Planner      model.PlannerModelConfig
	Conversation model.ConversationConfig
	Tools        model.ToolConfig

	ConversationRepo model.ConversationRepository
	Graph            supplychain.Reader

	// ChatModels skips Gemini client creation when set.
	ChatModels *nodes.ChatModels
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Graph           supplychain.Reader
	Tools           model.ToolConfig
	ToolMaxCalls    int
	SystemPrompt    string
}

// GraphBuilder handles the construction of the agent conversation graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
	mm       *conversations.MessagesManager
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.QueryResult, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, errx.Validation("query must not be empty")
	}
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	out, err := r.runnable.Invoke(ctx, model.QueryInput{
		ConversationID: conversationID,
		Query:          query,
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("Agent run failed")
		return nil, err
	}

	result := &model.QueryResult{
		Response:       FallbackResponse,
		ConversationID: conversationID,
		ToolsUsed:      []string{},
	}
	if out == nil {
		return result, nil
	}
	if content := strings.TrimSpace(out.Content); content != "" {
		result.Response = content
	}
	if usage, ok := out.Extra[model.ExtraUsage].(model.Usage); ok {
		result.Usage = usage
	}
	if used, ok := out.Extra[model.ExtraToolsUsed].([]string); ok && used != nil {
		result.ToolsUsed = slices.Clone(used)
	}

	logx.Info().
		Str("conversation_id", conversationID).
		Strs("tools_used", result.ToolsUsed).
		Int("total_tokens", result.Usage.TotalTokens).
		Float64("cost_usd", result.Usage.CostUSD).
		Msg("Agent run finished")
	return result, nil
}

func (r *graphRunner) History(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	return r.mm.History(ctx, conversationID)
}

func (r *graphRunner) Clear(ctx context.Context, conversationID string) error {
	return r.mm.Clear(ctx, conversationID)
}

// BuildAgentGraph composes ChatModels, MessagesManager, builds the graph, and returns a Runner.
func BuildAgentGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.Graph == nil {
		return nil, fmt.Errorf("graph reader is nil")
	}

	cms := cfg.ChatModels
	if cms == nil {
		var err error
		cms, err = nodes.NewChatModels(ctx, nodes.ChatModelConfig{
			Gemini:  cfg.Gemini,
			Agent:   &cfg.Agent,
			Planner: &cfg.Planner,
		})
		if err != nil {
			return nil, err
		}
	}

	maxCalls := cfg.Conversation.Tools.MaxCalls
	if maxCalls <= 0 {
		maxCalls = nodes.DefaultMaxToolCalls
	}

	systemPrompt, err := prompts.RenderAgentSystem(ctx, prompts.AgentPromptVars{
		Schema:         supplychain.DefaultSchema().Describe(),
		CypherTool:     tools.ToolCypherQuery,
		PlannerTool:    tools.ToolGeminiPlanner,
		IncidentTool:   tools.ToolIncidentSearch,
		DisruptionTool: tools.ToolSimulateDisruption,
		MaxToolCalls:   maxCalls,
		Extra:          cfg.Agent.SystemPromptExtra,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		Graph:           cfg.Graph,
		Tools:           cfg.Tools,
		ToolMaxCalls:    maxCalls,
		SystemPrompt:    systemPrompt,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Str("agent_model", cms.AgentModelName).Int("max_tool_calls", maxCalls).Msg("Agent graph built successfully")
	return &graphRunner{runnable: runnable, mm: mm}, nil
}

// BuildGraph constructs and returns the compiled agent graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Agent == nil || config.ChatModels.Planner == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if strings.TrimSpace(config.SystemPrompt) == "" {
		return nil, fmt.Errorf("system prompt is empty")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	agentModel, err := builder.setupTools(ctx)
	if err != nil {
		return nil, err
	}

	if err := builder.addNodes(agentModel); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools builds the tool node and returns the agent model with the tools bound.
func (b *GraphBuilder) setupTools(ctx context.Context) (einomodel.ToolCallingChatModel, error) {
	agentTools, err := tools.GetQueryTools(tools.Dependencies{
		Graph:   b.config.Graph,
		Planner: b.config.ChatModels.Planner,
		Config:  b.config.Tools,
	})
	if err != nil {
		return nil, err
	}

	toolInfos, err := tools.GetToolInfos(ctx, agentTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return nil, fmt.Errorf("failed to get tool infos: %w", err)
	}

	bound, err := b.config.ChatModels.BindTools(ctx, toolInfos)
	if err != nil {
		return nil, err
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               agentTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"available\":%q}", name, toolNames(toolInfos)), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			return tools.SanitizeArguments(name, arguments), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return nil, fmt.Errorf("failed to create tools node: %w", err)
	}

	if err := b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	); err != nil {
		return nil, fmt.Errorf("error adding tools node: %w", err)
	}

	return bound, nil
}

// addNodes adds the input converter and the agent model to the graph
func (b *GraphBuilder) addNodes(agentModel einomodel.ToolCallingChatModel) error {
	if err := b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(b.config.MessagesManager, b.config.SystemPrompt),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
	); err != nil {
		return fmt.Errorf("error adding input converter node: %w", err)
	}

	if err := b.graph.AddChatModelNode(nodes.NodeAgent,
		agentModel,
		compose.WithStatePreHandler(nodes.NewAgentPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewAgentPostHandler(b.config.MessagesManager, b.config.ChatModels.AgentModelName)),
	); err != nil {
		return fmt.Errorf("error adding agent node: %w", err)
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeAgent},
		{nodes.NodeToolExecutor, nodes.NodeAgent},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches adds the router after the agent node
func (b *GraphBuilder) addBranches() error {
	router := compose.NewGraphBranch(
		nodes.NewRouterCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeAgent, router); err != nil {
		logx.Error().Err(err).Msg("Error adding router branch")
		return fmt.Errorf("error adding router branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps(b.config.ToolMaxCalls)))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// maxRunSteps bounds a run: one agent and one tool step per allowed call,
// plus the input converter and the final wrap-up answer.
func maxRunSteps(maxToolCalls int) int {
	steps := 10 + maxToolCalls*2
	if steps < 20 {
		steps = 20
	}
	return steps
}

func toolNames(infos []*schema.ToolInfo) string {
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return strings.Join(names, ",")
}
