package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/supplychain-optimizer/server/pkg/tracing"
)

// maxLogged bounds message and tool payloads written to the log.
const maxLogged = 512

// NewAllCallbacks aggregates all observer handlers (prompt, model, tool) into one callbacks.Handler.
func NewAllCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Tool(newToolHandler()).
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()
}

// startSpan opens a span named after the component run.
func startSpan(ctx context.Context, kind string, info *einocb.RunInfo, attrs ...attribute.KeyValue) context.Context {
	name := kind
	if info != nil {
		name = kind + " " + info.Name
		attrs = append(attrs,
			attribute.String("eino.component", string(info.Component)),
			attribute.String("eino.type", info.Type),
		)
	}
	ctx, _ = tracing.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx
}

// endSpan closes the span started by startSpan, recording err when set.
func endSpan(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func runName(info *einocb.RunInfo) string {
	if info == nil {
		return ""
	}
	return info.Name
}

func truncate(s string) string {
	if len(s) <= maxLogged {
		return s
	}
	return s[:maxLogged] + "..."
}
