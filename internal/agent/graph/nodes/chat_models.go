package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/supplychain-optimizer/server/internal/agent/model"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

const thinkingBudget = 2048

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	Gemini  model.GeminiConfig
	Agent   *model.AgentModelConfig
	Planner *model.PlannerModelConfig
}

// ChatModels holds the agent (tool calling) and planner chat models
type ChatModels struct {
	Agent            einomodel.ToolCallingChatModel
	Planner          einomodel.BaseChatModel
	AgentModelName   string
	PlannerModelName string
}

// NewGenAIClient creates the shared Gemini client for either the Gemini API or Vertex AI.
func NewGenAIClient(ctx context.Context, cfg model.GeminiConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.UsesVertex() {
		clientCfg = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: cfg.Location,
		}
	} else if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Str("backend", cfg.Backend).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewChatModels creates both agent and planner chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.Agent == nil || config.Planner == nil {
		return nil, fmt.Errorf("chat model config is incomplete")
	}

	client, err := NewGenAIClient(ctx, config.Gemini)
	if err != nil {
		return nil, err
	}

	agentModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Agent.Model,
		Temperature: &config.Agent.Temperature,
		MaxTokens:   &config.Agent.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(thinkingBudget)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating agent model")
		return nil, fmt.Errorf("error creating agent model: %w", err)
	}

	plannerModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Planner.Model,
		Temperature: &config.Planner.Temperature,
		MaxTokens:   &config.Planner.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(thinkingBudget)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating planner model")
		return nil, fmt.Errorf("error creating planner model: %w", err)
	}

	return &ChatModels{
		Agent:            agentModel,
		Planner:          plannerModel,
		AgentModelName:   config.Agent.Model,
		PlannerModelName: config.Planner.Model,
	}, nil
}

// BindTools returns a copy of the agent model with tools attached.
func (cm *ChatModels) BindTools(ctx context.Context, tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	bound, err := cm.Agent.WithTools(tools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Int("tool_count", len(tools)).Msg("Successfully bound tools to agent model")
	return bound, nil
}
