package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplychain-optimizer/server/internal/agent/model"
)

type readCall struct {
	cypher string
	params map[string]any
}

// fakeGraph answers reads by the first registered cypher fragment found in the statement.
type fakeGraph struct {
	responses map[string][]map[string]any
	err       error
	reads     []readCall
	writes    []readCall
}

func (f *fakeGraph) Read(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.reads = append(f.reads, readCall{cypher: cypher, params: params})
	if f.err != nil {
		return nil, f.err
	}
	for fragment, rows := range f.responses {
		if strings.Contains(cypher, fragment) {
			return rows, nil
		}
	}
	return nil, nil
}

type writableGraph struct{ fakeGraph }

func (f *writableGraph) Write(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.writes = append(f.writes, readCall{cypher: cypher, params: params})
	return []map[string]any{{"ok": true}}, nil
}

type fakePlanner struct {
	reply string
	err   error
	got   []*schema.Message
}

func (f *fakePlanner) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.got = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakePlanner) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func findTool(t *testing.T, deps Dependencies, name string) tool.InvokableTool {
	t.Helper()
	all, err := GetQueryTools(deps)
	require.NoError(t, err)
	for _, bt := range all {
		info, err := bt.Info(context.Background())
		require.NoError(t, err)
		if info.Name == name {
			it, ok := bt.(tool.InvokableTool)
			require.True(t, ok)
			return it
		}
	}
	t.Fatalf("tool %s not registered", name)
	return nil
}

func run(t *testing.T, it tool.InvokableTool, args any, out any) {
	t.Helper()
	b, err := json.Marshal(args)
	require.NoError(t, err)
	res, err := it.InvokableRun(context.Background(), string(b))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(res), out))
}

func TestGetQueryToolsRegistersAllTools(t *testing.T) {
	all, err := GetQueryTools(Dependencies{Graph: &fakeGraph{}, Planner: &fakePlanner{}})
	require.NoError(t, err)

	infos, err := GetToolInfos(context.Background(), all)
	require.NoError(t, err)
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{ToolCypherQuery, ToolGeminiPlanner, ToolIncidentSearch, ToolSimulateDisruption}, names)

	_, err = GetQueryTools(Dependencies{Planner: &fakePlanner{}})
	assert.Error(t, err)
	_, err = GetQueryTools(Dependencies{Graph: &fakeGraph{}})
	assert.Error(t, err)
}

func TestIsWriteQuery(t *testing.T) {
	cases := map[string]bool{
		"MATCH (s:Supplier) RETURN s.name":                                    false,
		"MATCH (i:Incident) WHERE i.description CONTAINS 'set' RETURN i":      false,
		"MATCH (n) DETACH DELETE n":                                           true,
		"match (s:Supplier) set s.failure_rate = 0":                           true,
		"CREATE (:Supplier {name: 'x'})":                                      true,
		"MATCH (n) // delete later\nRETURN n":                                 false,
		"LOAD CSV FROM 'file:///x.csv' AS row RETURN row":                     true,
		"MATCH (s:Supplier) WHERE s.name = \"MERGE corp\" RETURN s.name AS n": false,
	}
	for q, want := range cases {
		assert.Equal(t, want, IsWriteQuery(q), q)
	}
}

func TestCypherQueryToolReturnsRows(t *testing.T) {
	graph := &fakeGraph{responses: map[string][]map[string]any{
		"MATCH (s:Supplier)": {{"supplier": "Supplier 1"}, {"supplier": "Supplier 2"}, {"supplier": "Supplier 3"}},
	}}
	it := findTool(t, Dependencies{Graph: graph, Planner: &fakePlanner{}, Config: model.ToolConfig{CypherMaxRows: 2}}, ToolCypherQuery)

	var out model.CypherQueryResult
	run(t, it, map[string]any{"query": "MATCH (s:Supplier) RETURN s.name AS supplier"}, &out)

	assert.Empty(t, out.Error)
	assert.Equal(t, 2, out.RowCount)
	assert.True(t, out.Truncated)
	assert.Len(t, out.Rows, 2)
}

// limitedGraph serves rows up to the limit it is asked for.
type limitedGraph struct {
	fakeGraph
	rows   []map[string]any
	limits []int
}

func (f *limitedGraph) ReadLimit(_ context.Context, _ string, _ map[string]any, limit int) ([]map[string]any, error) {
	f.limits = append(f.limits, limit)
	return f.rows[:min(limit, len(f.rows))], nil
}

func TestCypherQueryToolStopsReadingPastMaxRows(t *testing.T) {
	graph := &limitedGraph{}
	for i := range 1000 {
		graph.rows = append(graph.rows, map[string]any{"n": i})
	}
	it := findTool(t, Dependencies{Graph: graph, Planner: &fakePlanner{}, Config: model.ToolConfig{CypherMaxRows: 5}}, ToolCypherQuery)

	var out model.CypherQueryResult
	run(t, it, map[string]any{"query": "MATCH (n) RETURN n"}, &out)
	assert.Equal(t, []int{6}, graph.limits)
	assert.Empty(t, graph.reads)
	assert.Len(t, out.Rows, 5)
	assert.True(t, out.Truncated)

	graph.rows = graph.rows[:5]
	out = model.CypherQueryResult{}
	run(t, it, map[string]any{"query": "MATCH (n) RETURN n"}, &out)
	assert.Len(t, out.Rows, 5)
	assert.False(t, out.Truncated)
}

func TestCypherQueryToolRejectsWritesByDefault(t *testing.T) {
	graph := &writableGraph{}
	it := findTool(t, Dependencies{Graph: graph, Planner: &fakePlanner{}}, ToolCypherQuery)

	var out model.CypherQueryResult
	run(t, it, map[string]any{"query": "MATCH (n) DETACH DELETE n"}, &out)

	assert.Equal(t, ErrWriteRejected.Error(), out.Error)
	assert.Empty(t, graph.reads)
	assert.Empty(t, graph.writes)
}

func TestCypherQueryToolAllowsWritesWhenEnabled(t *testing.T) {
	graph := &writableGraph{}
	it := findTool(t, Dependencies{Graph: graph, Planner: &fakePlanner{}, Config: model.ToolConfig{CypherAllowWrite: true}}, ToolCypherQuery)

	var out model.CypherQueryResult
	run(t, it, map[string]any{"query": "MERGE (:Region {name: 'Antarctica'})"}, &out)

	assert.Empty(t, out.Error)
	assert.Len(t, graph.writes, 1)
}

func TestCypherQueryToolReportsErrors(t *testing.T) {
	graph := &fakeGraph{err: errors.New("Invalid input 'MATC'")}
	it := findTool(t, Dependencies{Graph: graph, Planner: &fakePlanner{}}, ToolCypherQuery)

	var out model.CypherQueryResult
	run(t, it, map[string]any{"query": "MATC (n) RETURN n"}, &out)
	assert.Contains(t, out.Error, "Error executing Cypher query")
	assert.Contains(t, out.Error, "Invalid input")

	run(t, it, map[string]any{"query": "  "}, &out)
	assert.Equal(t, ErrEmptyQuery.Error(), out.Error)
}

func TestPlannerTool(t *testing.T) {
	planner := &fakePlanner{reply: "1. Query suppliers in Shanghai\n2. Simulate a 5 day delay"}
	it := findTool(t, Dependencies{Graph: &fakeGraph{}, Planner: planner}, ToolGeminiPlanner)

	var out model.PlannerResult
	run(t, it, map[string]any{"query": "Shanghai delay"}, &out)

	assert.Empty(t, out.Error)
	assert.Contains(t, out.Plan, "Simulate a 5 day delay")
	require.Len(t, planner.got, 1)
	assert.Contains(t, planner.got[0].Content, "Query: Shanghai delay")
}

func TestPlannerToolModelError(t *testing.T) {
	it := findTool(t, Dependencies{Graph: &fakeGraph{}, Planner: &fakePlanner{err: errors.New("quota exceeded")}}, ToolGeminiPlanner)

	var out model.PlannerResult
	run(t, it, map[string]any{"query": "plan"}, &out)
	assert.Contains(t, out.Error, "quota exceeded")
	assert.Empty(t, out.Plan)
}

func incidentRows() []map[string]any {
	return []map[string]any{
		{"id": "INC-000", "description": "Incident 0: Port closure due to storm in Shanghai", "type": "port_closure", "severity": "high", "occurred_at": "2025-11-02T10:00:00Z", "location": "Shanghai", "country": "China"},
		{"id": "INC-001", "description": "Incident 1: Dock workers strike halts loading in Rotterdam", "type": "labor_strike", "severity": "medium", "occurred_at": "2025-12-01T10:00:00Z", "location": "Rotterdam", "country": "Netherlands"},
		{"id": "INC-002", "description": "Incident 2: Flooding blocks inland transport in Shenzhen", "type": "flood", "severity": "critical", "occurred_at": "2025-10-01T10:00:00Z", "location": "Shenzhen", "country": "China"},
		{"id": "INC-003", "description": "Incident 3: Customs inspection backlog in Hamburg", "type": "customs_delay", "severity": "low", "occurred_at": "2026-01-01T10:00:00Z", "location": "Hamburg", "country": nil},
	}
}

func TestRankIncidents(t *testing.T) {
	hits := RankIncidents(incidentRows(), "storm incidents in China")
	require.Len(t, hits, 2)
	assert.Equal(t, "INC-000", hits[0].ID)
	assert.Equal(t, 4.0, hits[0].Score)
	assert.Equal(t, "INC-002", hits[1].ID)

	all := RankIncidents(incidentRows(), "")
	require.Len(t, all, 4)
	assert.Equal(t, "INC-003", all[0].ID, "newest first")

	assert.Empty(t, RankIncidents(incidentRows(), "earthquake"))
}

func TestIncidentSearchToolLimits(t *testing.T) {
	graph := &fakeGraph{responses: map[string][]map[string]any{"MATCH (i:Incident)": incidentRows()}}
	it := findTool(t, Dependencies{Graph: graph, Planner: &fakePlanner{}, Config: model.ToolConfig{IncidentLimit: 3}}, ToolIncidentSearch)

	var out model.IncidentSearchResult
	run(t, it, map[string]any{"query": ""}, &out)
	assert.Equal(t, 4, out.Total)
	assert.Len(t, out.Incidents, 3)

	run(t, it, map[string]any{"query": "strike", "limit": 1}, &out)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Incidents, 1)
	assert.Equal(t, "Rotterdam", out.Incidents[0].Location)
}

func TestIncidentSearchZeroLimitUsesDefault(t *testing.T) {
	graph := &fakeGraph{responses: map[string][]map[string]any{"MATCH (i:Incident)": incidentRows()}}
	it := findTool(t, Dependencies{Graph: graph, Planner: &fakePlanner{}, Config: model.ToolConfig{IncidentLimit: 3}}, ToolIncidentSearch)

	for _, args := range []string{`{"query":"","limit":0}`, `{"query":"","limit":-2}`, `{"query":"","limit":"0"}`} {
		var out model.IncidentSearchResult
		run(t, it, json.RawMessage(SanitizeArguments(ToolIncidentSearch, args)), &out)
		assert.Len(t, out.Incidents, 3, args)
	}
}

func disruptionGraph() *fakeGraph {
	return &fakeGraph{responses: map[string][]map[string]any{
		"toLower(l.name)": {{"name": "Shanghai"}},
		"RETURN s.name AS supplier": {
			{"supplier": "Supplier 1", "failure_rate": 0.05, "products": []any{"Product 1", "Product 2"}, "warehouses": []any{"Warehouse 2"}},
			{"supplier": "Supplier 7", "failure_rate": 0.01, "products": []any{"Product 2"}, "warehouses": []any{"Warehouse 1", "Warehouse 2"}},
		},
		"UNWIND $products": {
			{"product": "Product 1", "alternatives": []any{"Supplier 4"}},
			{"product": "Product 2", "alternatives": []any{}},
		},
		"SHIPS_TO":                     {{"destinations": []any{"Rotterdam", "Los Angeles"}}},
		"i.description AS description": {{"description": "Incident 0: Port closure due to storm in Shanghai"}},
	}}
}

func TestSimulateDisruption(t *testing.T) {
	graph := disruptionGraph()
	report, err := SimulateDisruption(context.Background(), graph, " shanghai ", 5)
	require.NoError(t, err)

	assert.Equal(t, "Shanghai", report.Location)
	assert.Equal(t, 5, report.DelayDays)
	assert.Len(t, report.Suppliers, 2)
	assert.Equal(t, []string{"Warehouse 1", "Warehouse 2"}, report.Warehouses)
	assert.Equal(t, []string{"Los Angeles", "Rotterdam"}, report.Destinations)
	assert.Equal(t, 1, report.AtRiskProducts)
	assert.Equal(t, []model.ProductImpact{
		{Product: "Product 1", Alternatives: []string{"Supplier 4"}},
		{Product: "Product 2", Alternatives: []string{}, AtRisk: true},
	}, report.Products)
	assert.Len(t, report.RecentIncidents, 1)

	for _, call := range graph.reads[1:] {
		if loc, ok := call.params["location"]; ok {
			assert.Equal(t, "Shanghai", loc, "resolved name is used downstream")
		}
	}
}

func TestSimulateDisruptionUnknownLocation(t *testing.T) {
	it := findTool(t, Dependencies{Graph: &fakeGraph{}, Planner: &fakePlanner{}}, ToolSimulateDisruption)

	var out model.DisruptionReport
	run(t, it, map[string]any{"location": "Atlantis", "delay_days": 3}, &out)
	assert.Contains(t, out.Error, `unknown location "Atlantis"`)

	run(t, it, map[string]any{"location": ""}, &out)
	assert.Contains(t, out.Error, "location is required")
}

func TestSanitizeArguments(t *testing.T) {
	assert.JSONEq(t, `{"query":"MATCH (n) RETURN n"}`, SanitizeArguments(ToolCypherQuery, `{"query":"  MATCH (n) RETURN n  "}`))
	assert.JSONEq(t, `{"query":"storm","limit":50}`, SanitizeArguments(ToolIncidentSearch, `{"query":" storm ","limit":500}`))
	assert.JSONEq(t, `{"query":"storm","limit":3}`, SanitizeArguments(ToolIncidentSearch, `{"query":"storm","limit":"3"}`))
	assert.JSONEq(t, `{"query":"storm","limit":0}`, SanitizeArguments(ToolIncidentSearch, `{"query":"storm","limit":-1}`))
	assert.JSONEq(t, `{"location":"Shanghai","delay_days":0}`, SanitizeArguments(ToolSimulateDisruption, `{"location":"Shanghai ","delay_days":-4}`))
	assert.JSONEq(t, `{"location":"42"}`, SanitizeArguments(ToolSimulateDisruption, `{"location":42,"delay_days":"soon"}`))
	assert.Equal(t, "not json", SanitizeArguments(ToolCypherQuery, "not json"))
}
