package observers

import (
	"context"
	"errors"
	"io"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel/attribute"

	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

// newToolHandler builds a typed ToolCallbackHandler that traces and logs tool runs.
func newToolHandler() *callbackHelper.ToolCallbackHandler {
	return &callbackHelper.ToolCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *tool.CallbackInput) context.Context {
			var args string
			if input != nil {
				args = input.ArgumentsInJSON
			}
			ctx = startSpan(ctx, "tool", info, attribute.String("tool.name", runName(info)))
			logx.Debug().Str("tool_name", runName(info)).Str("arguments", truncate(args)).Msg("Tool started")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			var response string
			if output != nil {
				response = output.Response
			}
			logx.Debug().Str("tool_name", runName(info)).Int("bytes", len(response)).Str("output", truncate(response)).Msg("Tool finished")
			endSpan(ctx, nil, attribute.Int("tool.output_bytes", len(response)))
			return ctx
		},
		OnEndWithStreamOutput: func(ctx context.Context, info *einocb.RunInfo, output *schema.StreamReader[*tool.CallbackOutput]) context.Context {
			go func() {
				defer output.Close()
				var total int
				for {
					chunk, err := output.Recv()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						logx.Warn().Err(err).Str("tool_name", runName(info)).Msg("Tool stream failed")
						endSpan(ctx, err)
						return
					}
					if chunk != nil {
						total += len(chunk.Response)
					}
				}
				logx.Debug().Str("tool_name", runName(info)).Int("bytes", total).Msg("Tool stream finished")
				endSpan(ctx, nil, attribute.Int("tool.output_bytes", total))
			}()
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("tool_name", runName(info)).Msg("Tool execution failed")
			endSpan(ctx, err)
			return ctx
		},
	}
}

// NewToolCallbacks constructs a callbacks.Handler that logs tool lifecycle events.
// Attach it via compose.WithCallbacks(...) when invoking the graph.
func NewToolCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Tool(newToolHandler()).
		Handler()
}
