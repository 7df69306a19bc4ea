package api

// InvokeRequest is the body of POST /invoke.
type InvokeRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse reports liveness or readiness.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
