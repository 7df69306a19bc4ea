package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/supplychain-optimizer/server/internal/agent/model"
	"github.com/supplychain-optimizer/server/internal/supplychain"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

const (
	resolveLocationCypher = `MATCH (l:Location) WHERE toLower(l.name) = toLower($location) RETURN l.name AS name LIMIT 1`

	affectedSuppliersCypher = `MATCH (s:Supplier)-[:LOCATED_IN]->(:Location {name: $location})
OPTIONAL MATCH (s)-[:SUPPLIES]->(p:Product)
OPTIONAL MATCH (s)-[:SUPPLIES_TO]->(w:Warehouse)
RETURN s.name AS supplier, s.failure_rate AS failure_rate,
       collect(DISTINCT p.name) AS products, collect(DISTINCT w.name) AS warehouses
ORDER BY supplier`

	alternativesCypher = `UNWIND $products AS product
MATCH (p:Product {name: product})
OPTIONAL MATCH (alt:Supplier)-[:SUPPLIES]->(p)
WHERE NOT EXISTS { (alt)-[:LOCATED_IN]->(:Location {name: $location}) }
RETURN p.name AS product, collect(DISTINCT alt.name) AS alternatives
ORDER BY product`

	destinationsCypher = `MATCH (w:Warehouse)-[:SHIPS_TO]->(d:Location)
WHERE w.name IN $warehouses
RETURN collect(DISTINCT d.name) AS destinations`

	locationIncidentsCypher = `MATCH (i:Incident)-[:LOCATED_IN]->(:Location {name: $location})
RETURN i.description AS description
ORDER BY i.occurred_at DESC
LIMIT 5`
)

func createSimulateDisruptionTool(deps Dependencies) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSimulateDisruption,
			Desc: "Simulate the impact of a disruption (e.g. delay, closure) of all suppliers located in a city. Returns the affected suppliers, the products they supply, the warehouses they deliver to, the destinations those warehouses ship to, and for every product the alternative suppliers outside the city. Products without an alternative are marked at_risk.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location": {
					Type:     schema.String,
					Desc:     "City name of the disrupted location, e.g. Shanghai",
					Required: true,
				},
				"delay_days": {
					Type: schema.Integer,
					Desc: "Expected delay in days (0-365)",
				},
			}),
		},
		func(ctx context.Context, in *model.DisruptionInput) (*model.DisruptionReport, error) {
			ctx, cancel := deps.timeout(ctx)
			defer cancel()

			report, err := SimulateDisruption(ctx, deps.Graph, in.Location, in.DelayDays)
			if err != nil {
				logx.Warn().Err(err).Str("tool_name", ToolSimulateDisruption).Str("location", in.Location).Msg("Disruption simulation failed")
				return &model.DisruptionReport{
					Location:  in.Location,
					DelayDays: in.DelayDays,
					Error:     err.Error(),
				}, nil
			}
			return report, nil
		},
	)
}

// SimulateDisruption computes the downstream impact of every supplier in
// location being delayed by delayDays.
func SimulateDisruption(ctx context.Context, db supplychain.Reader, location string, delayDays int) (*model.DisruptionReport, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	delayDays = clampInt(delayDays, 0, maxDelayDays)

	rows, err := db.Read(ctx, resolveLocationCypher, map[string]any{"location": location})
	if err != nil {
		return nil, fmt.Errorf("resolve location: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("unknown location %q", location)
	}
	location = asString(rows[0]["name"])

	report := &model.DisruptionReport{
		Location:     location,
		DelayDays:    delayDays,
		Suppliers:    []model.AffectedSupplier{},
		Products:     []model.ProductImpact{},
		Warehouses:   []string{},
		Destinations: []string{},
	}

	rows, err = db.Read(ctx, affectedSuppliersCypher, map[string]any{"location": location})
	if err != nil {
		return nil, fmt.Errorf("affected suppliers: %w", err)
	}
	var products []string
	for _, row := range rows {
		s := model.AffectedSupplier{
			Name:        asString(row["supplier"]),
			FailureRate: asFloat(row["failure_rate"]),
			Products:    asStrings(row["products"]),
			Warehouses:  asStrings(row["warehouses"]),
		}
		report.Suppliers = append(report.Suppliers, s)
		products = appendUnique(products, s.Products...)
		report.Warehouses = appendUnique(report.Warehouses, s.Warehouses...)
	}
	slices.Sort(report.Warehouses)

	if len(products) > 0 {
		rows, err = db.Read(ctx, alternativesCypher, map[string]any{"location": location, "products": products})
		if err != nil {
			return nil, fmt.Errorf("alternative suppliers: %w", err)
		}
		for _, row := range rows {
			alts := asStrings(row["alternatives"])
			impact := model.ProductImpact{
				Product:      asString(row["product"]),
				Alternatives: alts,
				AtRisk:       len(alts) == 0,
			}
			if impact.AtRisk {
				report.AtRiskProducts++
			}
			report.Products = append(report.Products, impact)
		}
	}

	if len(report.Warehouses) > 0 {
		rows, err = db.Read(ctx, destinationsCypher, map[string]any{"warehouses": report.Warehouses})
		if err != nil {
			return nil, fmt.Errorf("warehouse destinations: %w", err)
		}
		if len(rows) > 0 {
			report.Destinations = asStrings(rows[0]["destinations"])
			slices.Sort(report.Destinations)
		}
	}

	rows, err = db.Read(ctx, locationIncidentsCypher, map[string]any{"location": location})
	if err != nil {
		return nil, fmt.Errorf("location incidents: %w", err)
	}
	for _, row := range rows {
		if d := asString(row["description"]); d != "" {
			report.RecentIncidents = append(report.RecentIncidents, d)
		}
	}

	return report, nil
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}
