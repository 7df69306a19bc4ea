package supplychain

import "time"

type Supplier struct {
	Name        string  `json:"name"`
	FailureRate float64 `json:"failure_rate"`
}

type Product struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type Warehouse struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Location is a city node.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Country struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

type Region struct {
	Name string `json:"name"`
}

type Incident struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	OccurredAt  time.Time `json:"occurred_at"`
	Location    string    `json:"location"`
}

// Edge is a relationship between two nodes identified by label and key value.
type Edge struct {
	Type     string `json:"type"`
	FromType string `json:"from_label"`
	From     string `json:"from"`
	ToType   string `json:"to_label"`
	To       string `json:"to"`
}

// Dataset is a complete generated graph ready for ingestion.
type Dataset struct {
	Suppliers  []Supplier  `json:"suppliers"`
	Products   []Product   `json:"products"`
	Warehouses []Warehouse `json:"warehouses"`
	Locations  []Location  `json:"locations"`
	Countries  []Country   `json:"countries"`
	Regions    []Region    `json:"regions"`
	Incidents  []Incident  `json:"incidents"`
	Edges      []Edge      `json:"edges"`
}

// NodeCount returns the number of nodes in the dataset.
func (d *Dataset) NodeCount() int {
	return len(d.Suppliers) + len(d.Products) + len(d.Warehouses) + len(d.Locations) +
		len(d.Countries) + len(d.Regions) + len(d.Incidents)
}

// EdgeCounts groups edges by relationship type.
func (d *Dataset) EdgeCounts() map[string]int {
	out := make(map[string]int)
	for _, e := range d.Edges {
		out[e.Type]++
	}
	return out
}
