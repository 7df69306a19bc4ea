package supplychain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() GeneratorConfig {
	cfg := DefaultGeneratorConfig()
	cfg.Seed = 42
	cfg.Now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func TestGenerateDefaultSizes(t *testing.T) {
	ds, err := Generate(testConfig())
	require.NoError(t, err)

	assert.Len(t, ds.Suppliers, 100)
	assert.Len(t, ds.Products, 50)
	assert.Len(t, ds.Warehouses, 20)
	assert.Len(t, ds.Locations, 30)
	assert.Len(t, ds.Incidents, 10)
	assert.NotEmpty(t, ds.Countries)
	assert.NotEmpty(t, ds.Regions)

	for _, s := range ds.Suppliers {
		assert.GreaterOrEqual(t, s.FailureRate, 0.0)
		assert.Less(t, s.FailureRate, 0.1)
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	a, err := Generate(testConfig())
	require.NoError(t, err)
	b, err := Generate(testConfig())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerateEdgeInvariants(t *testing.T) {
	ds, err := Generate(testConfig())
	require.NoError(t, err)
	schema := DefaultSchema()

	names := map[string]map[string]bool{}
	mark := func(label, key string) {
		if names[label] == nil {
			names[label] = map[string]bool{}
		}
		names[label][key] = true
	}
	for _, s := range ds.Suppliers {
		mark(LabelSupplier, s.Name)
	}
	for _, p := range ds.Products {
		mark(LabelProduct, p.Name)
	}
	for _, w := range ds.Warehouses {
		mark(LabelWarehouse, w.Name)
	}
	for _, l := range ds.Locations {
		mark(LabelLocation, l.Name)
	}
	for _, c := range ds.Countries {
		mark(LabelCountry, c.Name)
	}
	for _, r := range ds.Regions {
		mark(LabelRegion, r.Name)
	}
	for _, i := range ds.Incidents {
		mark(LabelIncident, i.ID)
	}

	seen := map[Edge]bool{}
	perSupplier := map[string]map[string]int{}
	perWarehouseShips := map[string]int{}
	for _, e := range ds.Edges {
		assert.True(t, schema.Allows(e.Type, e.FromType, e.ToType), "edge %+v not allowed", e)
		assert.True(t, names[e.FromType][e.From], "missing source %+v", e)
		assert.True(t, names[e.ToType][e.To], "missing target %+v", e)
		assert.False(t, seen[e], "duplicate edge %+v", e)
		seen[e] = true

		if e.Type == RelConnectedTo {
			assert.NotEqual(t, e.From, e.To)
		}
		if e.FromType == LabelSupplier {
			if perSupplier[e.From] == nil {
				perSupplier[e.From] = map[string]int{}
			}
			perSupplier[e.From][e.Type]++
		}
		if e.Type == RelShipsTo {
			perWarehouseShips[e.From]++
		}
	}

	for _, s := range ds.Suppliers {
		counts := perSupplier[s.Name]
		assert.Equal(t, 1, counts[RelLocatedIn], s.Name)
		assert.GreaterOrEqual(t, counts[RelSupplies], 1, s.Name)
		assert.LessOrEqual(t, counts[RelSupplies], 5, s.Name)
		assert.GreaterOrEqual(t, counts[RelSuppliesTo], 1, s.Name)
		assert.LessOrEqual(t, counts[RelSuppliesTo], 3, s.Name)
	}
	for _, w := range ds.Warehouses {
		assert.GreaterOrEqual(t, perWarehouseShips[w.Name], 5, w.Name)
		assert.LessOrEqual(t, perWarehouseShips[w.Name], 15, w.Name)
	}
}

func TestGenerateIncidentsAnchoredBeforeNow(t *testing.T) {
	cfg := testConfig()
	ds, err := Generate(cfg)
	require.NoError(t, err)

	for _, inc := range ds.Incidents {
		assert.False(t, inc.OccurredAt.After(cfg.Now), inc.ID)
		assert.Contains(t, inc.Description, inc.Location)
	}
}

func TestGenerateConnectProbabilityBounds(t *testing.T) {
	cfg := testConfig()
	cfg.ConnectProbability = 0
	ds, err := Generate(cfg)
	require.NoError(t, err)
	assert.Zero(t, ds.EdgeCounts()[RelConnectedTo])

	cfg.ConnectProbability = 1
	ds, err = Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, 30*29, ds.EdgeCounts()[RelConnectedTo])
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	bad := []func(*GeneratorConfig){
		func(c *GeneratorConfig) { c.Suppliers = -1 },
		func(c *GeneratorConfig) { c.Locations = 0 },
		func(c *GeneratorConfig) { c.Locations = MaxLocations() + 1 },
		func(c *GeneratorConfig) { c.Products = 0 },
		func(c *GeneratorConfig) { c.ConnectProbability = 1.5 },
	}
	for i, mutate := range bad {
		cfg := testConfig()
		mutate(&cfg)
		_, err := Generate(cfg)
		assert.Error(t, err, "case %d", i)
	}
}

func TestGenerateWithoutWarehouses(t *testing.T) {
	cfg := testConfig()
	cfg.Warehouses = 0
	ds, err := Generate(cfg)
	require.NoError(t, err)
	assert.Zero(t, ds.EdgeCounts()[RelSuppliesTo])
	assert.Zero(t, ds.EdgeCounts()[RelShipsTo])
}
