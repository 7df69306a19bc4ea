package nodes

import (
	"github.com/supplychain-optimizer/server/internal/agent/model"
)

// Graph node names.
const (
	NodeInputConverter = "input_converter"
	NodeAgent          = "agent"
	NodeToolExecutor   = "tool_node"
)

const DefaultMaxToolCalls = 8

// ===== Small helpers to keep handlers simple/readable =====
// normalizeMaxToolCalls returns a sane default when the provided value is invalid.
func normalizeMaxToolCalls(n int) int {
	if n <= 0 {
		return DefaultMaxToolCalls
	}
	return n
}

// checkAndMarkToolLimit evaluates whether another tool call would exceed the
// limit and, if so, marks the state accordingly. Returns true when marked now.
func checkAndMarkToolLimit(state *model.AppState, max int) bool {
	max = normalizeMaxToolCalls(max)
	if !state.ToolCallLimitReached && state.ToolCallCount >= max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// addToolCallsAndCheck adds n executed calls to the count and reports whether
// the limit is now exceeded. The limit flag itself is set by the agent
// pre-handler together with the wrap-up notice.
func addToolCallsAndCheck(state *model.AppState, max, n int) bool {
	max = normalizeMaxToolCalls(max)
	state.ToolCallCount += n
	return state.ToolCallCount > max
}
