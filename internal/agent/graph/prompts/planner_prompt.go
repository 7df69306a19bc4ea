package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const plannerTemplate = `Create a step-by-step plan to address the following supply chain query.
The plan should include actions like data analysis, simulation, or Cypher queries.
Query: {query}
Plan:`

// RenderPlanner builds the planner model input for query.
func RenderPlanner(ctx context.Context, query string) ([]*schema.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("planner prompt: empty query")
	}
	tpl := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(plannerTemplate),
	)
	msgs, err := tpl.Format(ctx, map[string]any{"query": query})
	if err != nil {
		return nil, fmt.Errorf("planner prompt render: %w", err)
	}
	return msgs, nil
}
