package model

import "time"

// ================ Config ================
type GeminiConfig struct {
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`
	// Backend selects the Gemini Developer API ("gemini") or Vertex AI ("vertex").
	Backend  string `envconfig:"GEMINI_BACKEND" default:"gemini"`
	Project  string `envconfig:"GOOGLE_CLOUD_PROJECT"`
	Location string `envconfig:"GOOGLE_CLOUD_LOCATION" default:"us-central1"`
}

// UsesVertex reports whether requests go through Vertex AI.
func (c GeminiConfig) UsesVertex() bool {
	return c.Backend == "vertex"
}

type ConversationConfig struct {
	TTL      time.Duration `envconfig:"CONVERSATION_TTL" default:"30m"`
	MaxTurns int           `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
	Tools    struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"8"`
	}
}

type AgentModelConfig struct {
	Model       string  `envconfig:"AGENT_MODEL" default:"gemini-2.5-pro"`
	MaxTokens   int     `envconfig:"AGENT_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"AGENT_TEMPERATURE" default:"0.2"`
	// SystemPromptExtra is appended verbatim to the rendered system prompt.
	SystemPromptExtra string `envconfig:"AGENT_SYSTEM_PROMPT_EXTRA"`
}

type PlannerModelConfig struct {
	Model       string  `envconfig:"PLANNER_MODEL" default:"gemini-2.5-pro"`
	MaxTokens   int     `envconfig:"PLANNER_MAX_TOKENS" default:"2048"`
	Temperature float32 `envconfig:"PLANNER_TEMPERATURE" default:"0.3"`
}

type ToolConfig struct {
	CypherMaxRows    int           `envconfig:"TOOLS_CYPHER_MAX_ROWS" default:"200"`
	CypherAllowWrite bool          `envconfig:"TOOLS_CYPHER_ALLOW_WRITE" default:"false"`
	IncidentLimit    int           `envconfig:"TOOLS_INCIDENT_LIMIT" default:"10"`
	Timeout          time.Duration `envconfig:"TOOLS_TIMEOUT" default:"30s"`
}
