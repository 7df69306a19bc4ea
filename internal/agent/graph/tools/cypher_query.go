package tools

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/model"
	"github.com/supplychain-optimizer/server/internal/supplychain"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

var (
	ErrEmptyQuery    = errors.New("query is required")
	ErrWriteRejected = errors.New("write clauses are not allowed; only read queries can be run")

	quotedText   = regexp.MustCompile("'(?:[^'\\\\]|\\\\.)*'|\"(?:[^\"\\\\]|\\\\.)*\"|`[^`]*`")
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	writeClauses = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP|FOREACH|LOAD\s+CSV)\b`)
)

// IsWriteQuery reports whether cypher contains a clause that mutates the
// graph. String literals, quoted identifiers and comments are ignored.
func IsWriteQuery(cypher string) bool {
	stripped := quotedText.ReplaceAllString(cypher, "''")
	stripped = lineComment.ReplaceAllString(stripped, "")
	return writeClauses.MatchString(stripped)
}

func createCypherQueryTool(deps Dependencies) tool.BaseTool {
	maxRows := deps.Config.CypherMaxRows
	if maxRows <= 0 {
		maxRows = defaultCypherMaxRows
	}
	writer, canWrite := deps.Graph.(supplychain.Writer)
	limited, canLimit := deps.Graph.(supplychain.LimitedReader)
	allowWrite := deps.Config.CypherAllowWrite && canWrite

	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCypherQuery,
			Desc: "Run a Cypher query on the Neo4j supply chain graph and return the resulting rows as JSON. Use the labels Supplier, Product, Warehouse, Location, Country, Region and Incident and the relationships described in the system prompt.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "A single Cypher statement, e.g. MATCH (s:Supplier)-[:LOCATED_IN]->(l:Location {name: 'Shanghai'}) RETURN s.name AS supplier LIMIT 25",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *model.CypherQueryInput) (*model.CypherQueryResult, error) {
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return &model.CypherQueryResult{Rows: []map[string]any{}, Error: ErrEmptyQuery.Error()}, nil
			}

			isWrite := IsWriteQuery(query)
			if isWrite && !allowWrite {
				logx.Warn().Str("tool_name", ToolCypherQuery).Str("query", query).Msg("Rejected write query")
				return &model.CypherQueryResult{Rows: []map[string]any{}, Error: ErrWriteRejected.Error()}, nil
			}

			ctx, cancel := deps.timeout(ctx)
			defer cancel()

			var (
				rows []map[string]any
				err  error
			)
			switch {
			case isWrite:
				rows, err = writer.Write(ctx, query, nil)
			case canLimit:
				// one extra row tells us the result was cut
				rows, err = limited.ReadLimit(ctx, query, nil, maxRows+1)
			default:
				rows, err = deps.Graph.Read(ctx, query, nil)
			}
			if err != nil {
				logx.Warn().Err(err).Str("tool_name", ToolCypherQuery).Str("query", query).Msg("Cypher query failed")
				return &model.CypherQueryResult{Rows: []map[string]any{}, Error: "Error executing Cypher query: " + err.Error()}, nil
			}

			out := &model.CypherQueryResult{Rows: rows}
			if out.Rows == nil {
				out.Rows = []map[string]any{}
			}
			if len(out.Rows) > maxRows {
				out.Rows = out.Rows[:maxRows]
				out.Truncated = true
			}
			out.RowCount = len(out.Rows)
			return out, nil
		},
	)
}
