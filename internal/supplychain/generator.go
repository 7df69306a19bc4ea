package supplychain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// GeneratorConfig controls the size and randomness of a generated dataset.
type GeneratorConfig struct {
	Suppliers  int
	Products   int
	Warehouses int
	// Locations is capped at the size of the city catalog.
	Locations int
	Incidents int
	// ConnectProbability is the chance of a CONNECTED_TO edge per ordered location pair.
	ConnectProbability float64
	// Seed makes generation reproducible; zero picks a time-based seed.
	Seed int64
	// Now anchors incident timestamps; zero means time.Now.
	Now time.Time
}

// DefaultGeneratorConfig mirrors the demo graph sizes.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Suppliers:          100,
		Products:           50,
		Warehouses:         20,
		Locations:          len(cityCatalog),
		Incidents:          10,
		ConnectProbability: 0.1,
	}
}

// MaxLocations is the number of cities available to the generator.
func MaxLocations() int {
	return len(cityCatalog)
}

func (c GeneratorConfig) validate() error {
	switch {
	case c.Suppliers < 0, c.Products < 0, c.Warehouses < 0, c.Incidents < 0:
		return fmt.Errorf("node counts must not be negative")
	case c.Locations < 1 || c.Locations > len(cityCatalog):
		return fmt.Errorf("locations must be between 1 and %d, got %d", len(cityCatalog), c.Locations)
	case c.Suppliers > 0 && c.Products == 0:
		return fmt.Errorf("suppliers need at least one product")
	case c.ConnectProbability < 0 || c.ConnectProbability > 1:
		return fmt.Errorf("connect probability must be within [0,1], got %v", c.ConnectProbability)
	}
	return nil
}

type generator struct {
	rng   *rand.Rand
	edges []Edge
	seen  map[Edge]struct{}
}

// Generate builds a random supply chain graph. Edge endpoints always refer to
// nodes of the dataset and no relationship is emitted twice.
func Generate(cfg GeneratorConfig) (*Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	g := &generator{
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		seen: make(map[Edge]struct{}),
	}
	ds := &Dataset{}

	ds.Locations = append(ds.Locations, cityCatalog[:cfg.Locations]...)
	countries := make(map[string]bool)
	regions := make(map[string]bool)
	for _, loc := range ds.Locations {
		if !countries[loc.Country] {
			countries[loc.Country] = true
			ds.Countries = append(ds.Countries, Country{Name: loc.Country, Region: countryRegions[loc.Country]})
		}
		g.add(RelInCountry, LabelLocation, loc.Name, LabelCountry, loc.Country)
	}
	for _, c := range ds.Countries {
		if !regions[c.Region] {
			regions[c.Region] = true
			ds.Regions = append(ds.Regions, Region{Name: c.Region})
		}
		g.add(RelInRegion, LabelCountry, c.Name, LabelRegion, c.Region)
	}

	for i := 1; i <= cfg.Products; i++ {
		p := Product{
			Name:     fmt.Sprintf("Product %d", i),
			Category: productCategories[g.rng.IntN(len(productCategories))],
		}
		ds.Products = append(ds.Products, p)
		g.add(RelProducedIn, LabelProduct, p.Name, LabelLocation, g.location(ds).Name)
	}

	for i := 1; i <= cfg.Warehouses; i++ {
		w := Warehouse{
			Name:     fmt.Sprintf("Warehouse %d", i),
			Capacity: 1000 * (5 + g.rng.IntN(46)),
		}
		ds.Warehouses = append(ds.Warehouses, w)
		g.add(RelLocatedIn, LabelWarehouse, w.Name, LabelLocation, g.location(ds).Name)
		for _, idx := range g.sample(len(ds.Locations), g.between(5, 15)) {
			g.add(RelShipsTo, LabelWarehouse, w.Name, LabelLocation, ds.Locations[idx].Name)
		}
	}

	for i := 1; i <= cfg.Suppliers; i++ {
		s := Supplier{
			Name:        fmt.Sprintf("Supplier %d", i),
			FailureRate: g.rng.Float64() * 0.1,
		}
		ds.Suppliers = append(ds.Suppliers, s)
		g.add(RelLocatedIn, LabelSupplier, s.Name, LabelLocation, g.location(ds).Name)
		for _, idx := range g.sample(len(ds.Products), g.between(1, 5)) {
			g.add(RelSupplies, LabelSupplier, s.Name, LabelProduct, ds.Products[idx].Name)
		}
		if len(ds.Warehouses) > 0 {
			for _, idx := range g.sample(len(ds.Warehouses), g.between(1, 3)) {
				g.add(RelSuppliesTo, LabelSupplier, s.Name, LabelWarehouse, ds.Warehouses[idx].Name)
			}
		}
	}

	for _, a := range ds.Locations {
		for _, b := range ds.Locations {
			if a.Name != b.Name && g.rng.Float64() < cfg.ConnectProbability {
				g.add(RelConnectedTo, LabelLocation, a.Name, LabelLocation, b.Name)
			}
		}
	}

	for i := 0; i < cfg.Incidents; i++ {
		kind := incidentKinds[g.rng.IntN(len(incidentKinds))]
		loc := g.location(ds)
		inc := Incident{
			ID:          fmt.Sprintf("INC-%03d", i),
			Description: fmt.Sprintf("Incident %d: %s in %s", i, kind.Description, loc.Name),
			Type:        kind.Type,
			Severity:    severities[g.rng.IntN(len(severities))],
			OccurredAt:  now.Add(-time.Duration(g.rng.IntN(365*24)) * time.Hour).Truncate(time.Hour),
			Location:    loc.Name,
		}
		ds.Incidents = append(ds.Incidents, inc)
		g.add(RelLocatedIn, LabelIncident, inc.ID, LabelLocation, loc.Name)
	}

	ds.Edges = g.edges
	return ds, nil
}

func (g *generator) add(relType, fromLabel, from, toLabel, to string) {
	e := Edge{Type: relType, FromType: fromLabel, From: from, ToType: toLabel, To: to}
	if _, dup := g.seen[e]; dup {
		return
	}
	g.seen[e] = struct{}{}
	g.edges = append(g.edges, e)
}

func (g *generator) location(ds *Dataset) Location {
	return ds.Locations[g.rng.IntN(len(ds.Locations))]
}

// between returns a uniform integer in [lo, hi].
func (g *generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// sample picks up to k distinct indexes in [0, n).
func (g *generator) sample(n, k int) []int {
	if k > n {
		k = n
	}
	return g.rng.Perm(n)[:k]
}
