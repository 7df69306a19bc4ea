package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/agent_prompt.txt
var agentSystemPrompt string

// AgentPromptVars are the values substituted into the agent system prompt.
type AgentPromptVars struct {
	Schema         string
	CypherTool     string
	PlannerTool    string
	IncidentTool   string
	DisruptionTool string
	MaxToolCalls   int
	Extra          string
}

// RenderAgentSystem renders the agent system prompt and triggers prompt callbacks.
func RenderAgentSystem(ctx context.Context, vars AgentPromptVars) (string, error) {
	// Render via Eino prompt component (Go template) to both format and emit callbacks
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(agentSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Schema":         strings.TrimSpace(vars.Schema),
		"CypherTool":     vars.CypherTool,
		"PlannerTool":    vars.PlannerTool,
		"IncidentTool":   vars.IncidentTool,
		"DisruptionTool": vars.DisruptionTool,
		"MaxToolCalls":   vars.MaxToolCalls,
		"Extra":          strings.TrimSpace(vars.Extra),
	})
	if err != nil {
		return "", fmt.Errorf("agent prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("agent prompt render: empty result")
	}
	return msgs[0].Content, nil
}
