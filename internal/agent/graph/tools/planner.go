package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/graph/prompts"
	"github.com/supplychain-optimizer/server/internal/agent/model"
	errx "github.com/supplychain-optimizer/server/internal/core/error"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

func createPlannerTool(deps Dependencies) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGeminiPlanner,
			Desc: "Generate a step-by-step plan to address a supply chain issue. The plan lists analysis steps, simulations and graph queries to run next.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "The supply chain question or problem to plan for.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *model.PlannerInput) (*model.PlannerResult, error) {
			msgs, err := prompts.RenderPlanner(ctx, in.Query)
			if err != nil {
				return &model.PlannerResult{Error: ErrEmptyQuery.Error()}, nil
			}

			ctx, cancel := deps.timeout(ctx)
			defer cancel()

			resp, err := deps.Planner.Generate(ctx, msgs)
			if err != nil {
				err = errx.WrapLLM(err)
				logx.Warn().Err(err).Str("tool_name", ToolGeminiPlanner).Msg("Planner model failed")
				return &model.PlannerResult{Error: err.Error()}, nil
			}
			if resp == nil || strings.TrimSpace(resp.Content) == "" {
				return &model.PlannerResult{Error: "planner returned an empty plan"}, nil
			}
			return &model.PlannerResult{Plan: strings.TrimSpace(resp.Content)}, nil
		},
	)
}
