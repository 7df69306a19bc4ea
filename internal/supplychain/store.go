package supplychain

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	errx "github.com/supplychain-optimizer/server/internal/core/error"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

// Reader runs read-only Cypher and returns rows keyed by column name.
type Reader interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Writer runs Cypher inside a write transaction.
type Writer interface {
	Write(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// LimitedReader stops reading once limit rows have been streamed, leaving the
// rest of the result unconsumed.
type LimitedReader interface {
	ReadLimit(ctx context.Context, cypher string, params map[string]any, limit int) ([]map[string]any, error)
}

type ReadWriter interface {
	Reader
	Writer
}

// Store is the Neo4j-backed ReadWriter.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewStore(driver neo4j.DriverWithContext, database string) *Store {
	return &Store{driver: driver, database: database}
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Store) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return s.ReadLimit(ctx, cypher, params, 0)
}

// ReadLimit is Read returning at most limit rows. A limit <= 0 reads everything.
func (s *Store) ReadLimit(ctx context.Context, cypher string, params map[string]any, limit int) ([]map[string]any, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	rows, err := neo4j.ExecuteRead(ctx, session, collectRows(ctx, cypher, params, limit))
	if err != nil {
		logx.Debug().Err(err).Msg("neo4j read failed")
		return nil, errx.WrapNeo4j(err)
	}
	return rows, nil
}

func (s *Store) Write(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	rows, err := neo4j.ExecuteWrite(ctx, session, collectRows(ctx, cypher, params, 0))
	if err != nil {
		logx.Debug().Err(err).Msg("neo4j write failed")
		return nil, errx.WrapNeo4j(err)
	}
	return rows, nil
}

// Ping verifies that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return errx.WrapNeo4j(s.driver.VerifyConnectivity(ctx))
}

func collectRows(ctx context.Context, cypher string, params map[string]any, limit int) neo4j.ManagedTransactionWorkT[[]map[string]any] {
	return func(tx neo4j.ManagedTransaction) ([]map[string]any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return readRows(ctx, result, limit)
	}
}

// recordCursor is the part of neo4j.ResultWithContext used to stream records.
type recordCursor interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

func readRows(ctx context.Context, cur recordCursor, limit int) ([]map[string]any, error) {
	rows := []map[string]any{}
	for (limit <= 0 || len(rows) < limit) && cur.Next(ctx) {
		record := cur.Record()
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = Normalize(record.Values[i])
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Normalize converts driver values into plain JSON-friendly values.
func Normalize(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return map[string]any{
			"labels":     val.Labels,
			"properties": normalizeMap(val.Props),
		}
	case dbtype.Relationship:
		return map[string]any{
			"type":       val.Type,
			"properties": normalizeMap(val.Props),
		}
	case dbtype.Path:
		nodes := make([]any, 0, len(val.Nodes))
		for _, n := range val.Nodes {
			nodes = append(nodes, Normalize(n))
		}
		rels := make([]any, 0, len(val.Relationships))
		for _, r := range val.Relationships {
			rels = append(rels, Normalize(r))
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case time.Time:
		return val.Format(time.RFC3339)
	case dbtype.Date:
		return val.Time().Format(time.DateOnly)
	case dbtype.LocalDateTime:
		return val.Time().Format("2006-01-02T15:04:05")
	case dbtype.LocalTime:
		return val.Time().Format(time.TimeOnly)
	case dbtype.Time:
		return val.Time().Format("15:04:05Z07:00")
	case dbtype.Duration:
		return val.String()
	case dbtype.Point2D:
		return map[string]any{"srid": val.SpatialRefId, "x": val.X, "y": val.Y}
	case dbtype.Point3D:
		return map[string]any{"srid": val.SpatialRefId, "x": val.X, "y": val.Y, "z": val.Z}
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		return normalizeMap(val)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

var (
	_ ReadWriter    = (*Store)(nil)
	_ LimitedReader = (*Store)(nil)
)
