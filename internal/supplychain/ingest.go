package supplychain

import (
	"context"
	"fmt"
	"time"

	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

const (
	DefaultBatchSize = 500

	wipeCypher = "MATCH (n) DETACH DELETE n"
)

// IngestOptions tunes a single ingestion run.
type IngestOptions struct {
	// KeepExisting skips the initial wipe of the database.
	KeepExisting bool
	BatchSize    int
}

// IngestSummary reports what a run wrote.
type IngestSummary struct {
	Wiped         bool           `json:"wiped"`
	Constraints   int            `json:"constraints"`
	Nodes         map[string]int `json:"nodes"`
	Relationships map[string]int `json:"relationships"`
	Duration      time.Duration  `json:"duration"`
}

// Ingester writes datasets into the graph.
type Ingester struct {
	db     Writer
	schema Schema
}

func NewIngester(db Writer, schema Schema) *Ingester {
	return &Ingester{db: db, schema: schema}
}

type nodeRow struct {
	key   string
	props map[string]any
}

// Run wipes the graph (unless asked not to), ensures the uniqueness
// constraints and MERGEs every node and relationship of ds in batches.
func (in *Ingester) Run(ctx context.Context, ds *Dataset, opts IngestOptions) (*IngestSummary, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	start := time.Now()
	summary := &IngestSummary{
		Nodes:         make(map[string]int),
		Relationships: make(map[string]int),
	}

	if !opts.KeepExisting {
		logx.Info().Msg("Deleting all previous data")
		if _, err := in.db.Write(ctx, wipeCypher, nil); err != nil {
			return nil, fmt.Errorf("wipe graph: %w", err)
		}
		summary.Wiped = true
	}

	for _, stmt := range in.schema.Constraints() {
		if _, err := in.db.Write(ctx, stmt, nil); err != nil {
			return nil, fmt.Errorf("create constraint: %w", err)
		}
		summary.Constraints++
	}

	logx.Info().Int("nodes", ds.NodeCount()).Int("relationships", len(ds.Edges)).Msg("Ingesting new data")

	for label, rows := range nodeRows(ds) {
		n, err := in.writeNodes(ctx, label, rows, opts.BatchSize)
		if err != nil {
			return nil, err
		}
		summary.Nodes[label] = n
	}

	groups, err := in.groupEdges(ds.Edges)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		n, err := in.writeEdges(ctx, group.spec, group.edges, opts.BatchSize)
		if err != nil {
			return nil, err
		}
		summary.Relationships[group.spec.Type] += n
	}

	summary.Duration = time.Since(start)
	logx.Info().
		Interface("nodes", summary.Nodes).
		Interface("relationships", summary.Relationships).
		Dur("duration", summary.Duration).
		Msg("Data ingestion complete")
	return summary, nil
}

func (in *Ingester) writeNodes(ctx context.Context, label string, rows []nodeRow, batchSize int) (int, error) {
	spec, ok := in.schema.Node(label)
	if !ok {
		return 0, fmt.Errorf("label %q is not part of the schema", label)
	}
	cypher := fmt.Sprintf("UNWIND $rows AS row MERGE (n:%s {%s: row.key}) SET n += row.props RETURN count(n) AS written", spec.Label, spec.Key)

	written := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		batch := make([]map[string]any, 0, end-start)
		for _, r := range rows[start:end] {
			batch = append(batch, map[string]any{"key": r.key, "props": r.props})
		}
		res, err := in.db.Write(ctx, cypher, map[string]any{"rows": batch})
		if err != nil {
			return written, fmt.Errorf("write %s nodes: %w", label, err)
		}
		written += countWritten(res, len(batch))
	}
	return written, nil
}

type edgeGroup struct {
	spec  RelSpec
	edges []Edge
}

// groupEdges buckets edges by schema relationship, in schema order.
func (in *Ingester) groupEdges(edges []Edge) ([]edgeGroup, error) {
	groups := make([]edgeGroup, len(in.schema.Relationships))
	for i, spec := range in.schema.Relationships {
		groups[i].spec = spec
	}
	for _, e := range edges {
		matched := false
		for i := range groups {
			s := groups[i].spec
			if s.Type == e.Type && s.From == e.FromType && s.To == e.ToType {
				groups[i].edges = append(groups[i].edges, e)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("relationship (:%s)-[:%s]->(:%s) is not part of the schema", e.FromType, e.Type, e.ToType)
		}
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g.edges) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

func (in *Ingester) writeEdges(ctx context.Context, spec RelSpec, edges []Edge, batchSize int) (int, error) {
	from, _ := in.schema.Node(spec.From)
	to, _ := in.schema.Node(spec.To)
	cypher := fmt.Sprintf(
		"UNWIND $rows AS row MATCH (a:%s {%s: row.from}) MATCH (b:%s {%s: row.to}) MERGE (a)-[r:%s]->(b) RETURN count(r) AS written",
		from.Label, from.Key, to.Label, to.Key, spec.Type,
	)

	written := 0
	for start := 0; start < len(edges); start += batchSize {
		end := min(start+batchSize, len(edges))
		batch := make([]map[string]any, 0, end-start)
		for _, e := range edges[start:end] {
			batch = append(batch, map[string]any{"from": e.From, "to": e.To})
		}
		res, err := in.db.Write(ctx, cypher, map[string]any{"rows": batch})
		if err != nil {
			return written, fmt.Errorf("write %s relationships: %w", spec.Type, err)
		}
		written += countWritten(res, len(batch))
	}
	return written, nil
}

// countWritten reads the "written" column, falling back to the batch size
// when the statement returned nothing usable.
func countWritten(rows []map[string]any, fallback int) int {
	if len(rows) == 0 {
		return fallback
	}
	switch v := rows[0]["written"].(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func nodeRows(ds *Dataset) map[string][]nodeRow {
	rows := make(map[string][]nodeRow)
	for _, r := range ds.Regions {
		rows[LabelRegion] = append(rows[LabelRegion], nodeRow{key: r.Name, props: map[string]any{}})
	}
	for _, c := range ds.Countries {
		rows[LabelCountry] = append(rows[LabelCountry], nodeRow{key: c.Name, props: map[string]any{}})
	}
	for _, l := range ds.Locations {
		rows[LabelLocation] = append(rows[LabelLocation], nodeRow{key: l.Name, props: map[string]any{
			"latitude":  l.Latitude,
			"longitude": l.Longitude,
		}})
	}
	for _, p := range ds.Products {
		rows[LabelProduct] = append(rows[LabelProduct], nodeRow{key: p.Name, props: map[string]any{
			"category": p.Category,
		}})
	}
	for _, w := range ds.Warehouses {
		rows[LabelWarehouse] = append(rows[LabelWarehouse], nodeRow{key: w.Name, props: map[string]any{
			"capacity": w.Capacity,
		}})
	}
	for _, s := range ds.Suppliers {
		rows[LabelSupplier] = append(rows[LabelSupplier], nodeRow{key: s.Name, props: map[string]any{
			"failure_rate": s.FailureRate,
		}})
	}
	for _, i := range ds.Incidents {
		rows[LabelIncident] = append(rows[LabelIncident], nodeRow{key: i.ID, props: map[string]any{
			"description": i.Description,
			"type":        i.Type,
			"severity":    i.Severity,
			"occurred_at": i.OccurredAt,
		}})
	}
	return rows
}
