package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - For persistence use the MessagesManager, never this struct.
type AppState struct {
	ConversationID       string
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int               // tool calls executed during this query
	ToolCallLimitReached bool              // set when tool call limit is exceeded
	ToolCallIDSeq        int               // local sequence to synthesize tool_call_id when provider omits
	ToolsUsed            []string          // tool names in call order

	Usage Usage
}

// Usage accumulates token counts and USD cost across model invocations for a query.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
	ModelCalls       int     `json:"model_calls"`
}

// Add folds a single model response usage into u.
func (u *Usage) Add(usage *schema.TokenUsage, cost float64) {
	u.ModelCalls++
	u.CostUSD += cost
	if usage == nil {
		return
	}
	u.PromptTokens += usage.PromptTokens
	u.CompletionTokens += usage.CompletionTokens
	u.TotalTokens += usage.TotalTokens
}

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
}

// QueryResult is what a single agent run produces.
type QueryResult struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	ToolsUsed      []string `json:"tools_used"`
	Usage          Usage    `json:"usage"`
}

// Keys under which the final message Extra carries run metadata.
const (
	ExtraUsage     = "usage"
	ExtraToolsUsed = "tools_used"
)
