package tools

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/model"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

// ===================================
// Incident Search Tool
// ===================================

const incidentsCypher = `MATCH (i:Incident)
OPTIONAL MATCH (i)-[:LOCATED_IN]->(l:Location)
OPTIONAL MATCH (l)-[:IN_COUNTRY]->(c:Country)
RETURN i.id AS id, i.description AS description, i.type AS type, i.severity AS severity,
       i.occurred_at AS occurred_at, l.name AS location, c.name AS country`

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "past": true, "any": true,
	"incident": true, "incidents": true, "were": true, "was": true, "there": true,
	"what": true, "which": true, "have": true, "has": true, "about": true, "near": true,
}

func createIncidentSearchTool(deps Dependencies) tool.BaseTool {
	defaultLimit := deps.Config.IncidentLimit
	if defaultLimit <= 0 {
		defaultLimit = defaultIncidentLimit
	}

	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolIncidentSearch,
			Desc: "Search past supply chain incidents (port closures, strikes, storms, quality recalls, cyber attacks) by keyword, incident type, city or country. Results are ranked by relevance, then by recency. An empty query lists the most recent incidents.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "Keywords such as a city (Shanghai), a country (Germany) or an incident type (strike, storm, port closure).",
					Required: true,
				},
				"limit": {
					Type: schema.Integer,
					Desc: "Maximum number of incidents to return (default 10, max 50)",
				},
			}),
		},
		func(ctx context.Context, in *model.IncidentSearchInput) (*model.IncidentSearchResult, error) {
			limit := in.Limit
			if limit <= 0 {
				limit = defaultLimit
			}
			limit = clampInt(limit, 1, maxIncidentLimit)

			ctx, cancel := deps.timeout(ctx)
			defer cancel()

			rows, err := deps.Graph.Read(ctx, incidentsCypher, nil)
			if err != nil {
				logx.Warn().Err(err).Str("tool_name", ToolIncidentSearch).Msg("Incident lookup failed")
				return &model.IncidentSearchResult{Incidents: []model.IncidentHit{}, Error: err.Error()}, nil
			}

			hits := RankIncidents(rows, in.Query)
			result := &model.IncidentSearchResult{Total: len(hits)}
			if len(hits) > limit {
				hits = hits[:limit]
			}
			result.Incidents = hits
			return result, nil
		},
	)
}

// RankIncidents scores incident rows against query. Location and country
// matches weigh most, then incident type, then description. With an empty
// query every incident is returned, newest first.
func RankIncidents(rows []map[string]any, query string) []model.IncidentHit {
	terms := searchTerms(query)
	hits := make([]model.IncidentHit, 0, len(rows))

	for _, row := range rows {
		hit := model.IncidentHit{
			ID:          asString(row["id"]),
			Description: asString(row["description"]),
			Type:        asString(row["type"]),
			Severity:    asString(row["severity"]),
			OccurredAt:  asString(row["occurred_at"]),
			Location:    asString(row["location"]),
		}
		if len(terms) > 0 {
			hit.Score = scoreIncident(terms, hit, asString(row["country"]))
			if hit.Score == 0 {
				continue
			}
		}
		hits = append(hits, hit)
	}

	slices.SortStableFunc(hits, func(a, b model.IncidentHit) int {
		switch {
		case a.Score != b.Score:
			if a.Score > b.Score {
				return -1
			}
			return 1
		case a.OccurredAt != b.OccurredAt:
			return strings.Compare(b.OccurredAt, a.OccurredAt)
		default:
			return strings.Compare(a.ID, b.ID)
		}
	})
	return hits
}

func scoreIncident(terms []string, hit model.IncidentHit, country string) float64 {
	place := strings.ToLower(hit.Location + " " + country)
	kind := strings.ToLower(strings.ReplaceAll(hit.Type, "_", " "))
	desc := strings.ToLower(hit.Description)

	var score float64
	for _, term := range terms {
		switch {
		case strings.Contains(place, term):
			score += 3
		case strings.Contains(kind, term):
			score += 2
		case strings.Contains(desc, term):
			score++
		}
	}
	return score
}

func searchTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] || slices.Contains(terms, f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
