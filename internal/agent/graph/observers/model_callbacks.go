package observers

import (
	"context"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel/attribute"

	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

// newModelHandler builds a typed ModelCallbackHandler that traces and logs model calls.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			var messages int
			if input != nil {
				messages = len(input.Messages)
			}
			ctx = startSpan(ctx, "chat_model", info, attribute.Int("llm.input_messages", messages))

			event := logx.Debug().Str("model", runName(info)).Int("messages", messages)
			if input != nil {
				if um := lastUserContent(input.Messages); um != "" {
					event = event.Str("user", truncate(um))
				}
			}
			event.Msg("Model call started")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			var attrs []attribute.KeyValue
			event := logx.Debug().Str("model", runName(info))
			if output != nil {
				if output.TokenUsage != nil {
					attrs = append(attrs,
						attribute.Int("llm.prompt_tokens", output.TokenUsage.PromptTokens),
						attribute.Int("llm.completion_tokens", output.TokenUsage.CompletionTokens),
					)
					event = event.Int("total_tokens", output.TokenUsage.TotalTokens)
				}
				if output.Message != nil {
					attrs = append(attrs, attribute.Int("llm.tool_calls", len(output.Message.ToolCalls)))
					event = event.Int("tool_calls", len(output.Message.ToolCalls))
					if content := strings.TrimSpace(output.Message.Content); content != "" {
						event = event.Str("assistant", truncate(content))
					}
				}
			}
			event.Msg("Model call finished")
			endSpan(ctx, nil, attrs...)
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("model", runName(info)).Msg("Model call failed")
			endSpan(ctx, err)
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
