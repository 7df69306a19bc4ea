package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/model"
	"github.com/supplychain-optimizer/server/internal/supplychain"
)

const (
	ToolCypherQuery        = "cypher_query"
	ToolGeminiPlanner      = "gemini_planner"
	ToolIncidentSearch     = "incident_search"
	ToolSimulateDisruption = "simulate_disruption"
)

const (
	defaultCypherMaxRows = 200
	defaultIncidentLimit = 10
	maxIncidentLimit     = 50
	maxDelayDays         = 365
)

// Dependencies are the backends the tools talk to.
type Dependencies struct {
	// Graph is queried by every database tool. When it also implements
	// supplychain.Writer and writes are allowed, cypher_query may mutate.
	Graph   supplychain.Reader
	Planner einomodel.BaseChatModel
	Config  model.ToolConfig
}

func (d Dependencies) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Config.Timeout <= 0 {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return context.WithTimeout(ctx, d.Config.Timeout)
}

// GetQueryTools returns every tool the agent may call.
func GetQueryTools(deps Dependencies) ([]tool.BaseTool, error) {
	if deps.Graph == nil {
		return nil, fmt.Errorf("tools: graph reader is nil")
	}
	if deps.Planner == nil {
		return nil, fmt.Errorf("tools: planner model is nil")
	}
	return []tool.BaseTool{
		createCypherQueryTool(deps),
		createPlannerTool(deps),
		createIncidentSearchTool(deps),
		createSimulateDisruptionTool(deps),
	}, nil
}

// GetToolInfos collects the schema of each tool for model binding.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SanitizeArguments trims string arguments and clamps numeric ones for the
// known tools. Arguments that are not a JSON object are returned unchanged.
func SanitizeArguments(name, arguments string) string {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil || m == nil {
		return arguments
	}

	switch name {
	case ToolCypherQuery, ToolGeminiPlanner:
		trimString(m, "query")
	case ToolIncidentSearch:
		trimString(m, "query")
		clampNumber(m, "limit", 0, maxIncidentLimit)
	case ToolSimulateDisruption:
		trimString(m, "location")
		clampNumber(m, "delay_days", 0, maxDelayDays)
	}

	b, err := json.Marshal(m)
	if err != nil {
		return arguments
	}
	return string(b)
}
