package model

type CypherQueryInput struct {
	Query string `json:"query"`
}

// CypherQueryResult carries at most the configured number of rows. RowCount
// is len(Rows); Truncated is set when the query matched more.
type CypherQueryResult struct {
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type PlannerInput struct {
	Query string `json:"query"`
}

type PlannerResult struct {
	Plan  string `json:"plan,omitempty"`
	Error string `json:"error,omitempty"`
}

type IncidentSearchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type IncidentHit struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Type        string  `json:"type,omitempty"`
	Severity    string  `json:"severity,omitempty"`
	OccurredAt  string  `json:"occurred_at,omitempty"`
	Location    string  `json:"location,omitempty"`
	Score       float64 `json:"score"`
}

type IncidentSearchResult struct {
	Incidents []IncidentHit `json:"incidents"`
	Total     int           `json:"total"`
	Error     string        `json:"error,omitempty"`
}

type DisruptionInput struct {
	Location  string `json:"location"`
	DelayDays int    `json:"delay_days,omitempty"`
}

type AffectedSupplier struct {
	Name        string   `json:"name"`
	FailureRate float64  `json:"failure_rate"`
	Products    []string `json:"products"`
	Warehouses  []string `json:"warehouses"`
}

type ProductImpact struct {
	Product      string   `json:"product"`
	Alternatives []string `json:"alternatives"`
	AtRisk       bool     `json:"at_risk"`
}

type DisruptionReport struct {
	Location        string             `json:"location"`
	DelayDays       int                `json:"delay_days"`
	Suppliers       []AffectedSupplier `json:"suppliers"`
	Products        []ProductImpact    `json:"products"`
	Warehouses      []string           `json:"warehouses"`
	Destinations    []string           `json:"destinations"`
	AtRiskProducts  int                `json:"at_risk_products"`
	RecentIncidents []string           `json:"recent_incidents,omitempty"`
	Error           string             `json:"error,omitempty"`
}
