package nodes

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/graph/conversations"
	"github.com/supplychain-optimizer/server/internal/agent/model"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

// NewInputConverterPreHandler creates the pre-handler for InputConverter node
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.ConversationID = in.ConversationID
		// Reset per-query bookkeeping
		s.History = nil
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.ToolsUsed = nil
		s.Usage = model.Usage{}
		return in, nil
	}
}

// NewInputConverterNode stores the query and builds the model input:
// the system prompt followed by recent conversation history.
func NewInputConverterNode(mm *conversations.MessagesManager, systemPrompt string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		messages, err := mm.BuildAgentContext(ctx, input.ConversationID, input.Query, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("error building conversation context: %w", err)
		}
		return messages, nil
	})
}

// NewAgentPreHandler merges the node input into the run history and, once
// the tool budget is spent, tells the model to answer with what it has.
func NewAgentPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	limit := normalizeMaxToolCalls(maxToolCalls)
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		fillMissingToolCallIDs(in, state.History)

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, limit) {
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Do not call any more tools. Answer the question using the information you've already gathered "+
						"and state clearly which parts could not be verified.",
					limit,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		logx.Debug().Str("conversation_id", state.ConversationID).Int("messages", len(state.History)).Msg("Agent thinking...")

		return state.History, nil
	}
}

// fillMissingToolCallIDs pairs tool results without an id with the calls of
// the most recent assistant message, by position.
func fillMissingToolCallIDs(in, history []*schema.Message) {
	var calls []schema.ToolCall
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg != nil && msg.Role == schema.Assistant && len(msg.ToolCalls) > 0 {
			calls = msg.ToolCalls
			break
		}
	}
	if len(calls) == 0 {
		return
	}
	idx := 0
	for _, msg := range in {
		if msg == nil || msg.Role != schema.Tool {
			continue
		}
		if strings.TrimSpace(msg.ToolCallID) == "" && idx < len(calls) {
			msg.ToolCallID = calls[idx].ID
		}
		idx++
	}
}

// NewAgentPostHandler records usage and cost, normalizes tool call ids and
// persists the final assistant answer.
func NewAgentPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("agent model returned no message")
		}
		if out.Extra == nil {
			out.Extra = map[string]any{}
		}

		var usage *schema.TokenUsage
		if out.ResponseMeta != nil {
			usage = out.ResponseMeta.Usage
		}
		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))
		state.Usage.Add(usage, totalC)
		if usage != nil {
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     usage.PromptTokens,
				"completion_tokens": usage.CompletionTokens,
				"total_tokens":      usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Str("node", NodeAgent).
				Str("model", modelName).
				Int("prompt_tokens", usage.PromptTokens).
				Int("completion_tokens", usage.CompletionTokens).
				Int("total_tokens", usage.TotalTokens).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")
		}
		// Running totals for the caller; the last agent message is the graph output.
		out.Extra["usage_cost_total_usd"] = state.Usage.CostUSD
		out.Extra[model.ExtraUsage] = state.Usage
		out.Extra[model.ExtraToolsUsed] = slices.Clone(state.ToolsUsed)

		// Some providers omit tool_call IDs.
		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				state.ToolCallIDSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 && !state.ToolCallLimitReached {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
			return out, nil
		}

		logx.Debug().Msg("AI response ready")
		if strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, state.ConversationID, out.Content); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Err(err).
					Msg("Error saving assistant response")
			}
		}
		return out, nil
	}
}

// NewRouterCondition sends tool calls to the tool node and everything else to END.
func NewRouterCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		_ = compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached - routing to end")
			return compose.END, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to tool node")
			return NodeToolExecutor, nil
		}

		logx.Debug().Msg("No tool calls - routing to end")
		return compose.END, nil
	}
}

// NewToolExecutorPreHandler counts tool calls and records which tools ran.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	limit := normalizeMaxToolCalls(maxToolCalls)
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		for _, tc := range in.ToolCalls {
			state.ToolsUsed = append(state.ToolsUsed, tc.Function.Name)
		}

		exceeded := addToolCallsAndCheck(state, limit, len(in.ToolCalls))

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("conversation_id", state.ConversationID).
			Msg("Tool execution attempt")

		if exceeded {
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", limit).
				Str("conversation_id", state.ConversationID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}
