package supplychain

import (
	"fmt"
	"strings"
)

// Node labels of the knowledge graph.
const (
	LabelSupplier  = "Supplier"
	LabelProduct   = "Product"
	LabelWarehouse = "Warehouse"
	LabelLocation  = "Location"
	LabelCountry   = "Country"
	LabelRegion    = "Region"
	LabelIncident  = "Incident"
)

// Relationship types of the knowledge graph.
const (
	RelSupplies    = "SUPPLIES"
	RelSuppliesTo  = "SUPPLIES_TO"
	RelLocatedIn   = "LOCATED_IN"
	RelShipsTo     = "SHIPS_TO"
	RelProducedIn  = "PRODUCED_IN"
	RelConnectedTo = "CONNECTED_TO"
	RelInCountry   = "IN_COUNTRY"
	RelInRegion    = "IN_REGION"
)

// NodeSpec describes a label and the property that identifies its nodes.
type NodeSpec struct {
	Label string
	Key   string
	// Properties lists the non-key properties, for prompt rendering.
	Properties []string
}

// RelSpec describes an allowed relationship between two labels.
type RelSpec struct {
	Type string
	From string
	To   string
}

// Schema is the fixed definition of the supply chain graph.
type Schema struct {
	Nodes         []NodeSpec
	Relationships []RelSpec
}

// DefaultSchema returns the graph schema produced by the ingestion command.
func DefaultSchema() Schema {
	return Schema{
		Nodes: []NodeSpec{
			{Label: LabelSupplier, Key: "name", Properties: []string{"failure_rate"}},
			{Label: LabelProduct, Key: "name", Properties: []string{"category"}},
			{Label: LabelWarehouse, Key: "name", Properties: []string{"capacity"}},
			{Label: LabelLocation, Key: "name", Properties: []string{"latitude", "longitude"}},
			{Label: LabelCountry, Key: "name"},
			{Label: LabelRegion, Key: "name"},
			{Label: LabelIncident, Key: "id", Properties: []string{"description", "type", "severity", "occurred_at"}},
		},
		Relationships: []RelSpec{
			{Type: RelSupplies, From: LabelSupplier, To: LabelProduct},
			{Type: RelSuppliesTo, From: LabelSupplier, To: LabelWarehouse},
			{Type: RelLocatedIn, From: LabelSupplier, To: LabelLocation},
			{Type: RelLocatedIn, From: LabelWarehouse, To: LabelLocation},
			{Type: RelLocatedIn, From: LabelIncident, To: LabelLocation},
			{Type: RelShipsTo, From: LabelWarehouse, To: LabelLocation},
			{Type: RelProducedIn, From: LabelProduct, To: LabelLocation},
			{Type: RelConnectedTo, From: LabelLocation, To: LabelLocation},
			{Type: RelInCountry, From: LabelLocation, To: LabelCountry},
			{Type: RelInRegion, From: LabelCountry, To: LabelRegion},
		},
	}
}

// Node returns the spec for label.
func (s Schema) Node(label string) (NodeSpec, bool) {
	for _, n := range s.Nodes {
		if n.Label == label {
			return n, true
		}
	}
	return NodeSpec{}, false
}

// Allows reports whether a relationship of relType may connect from -> to.
func (s Schema) Allows(relType, from, to string) bool {
	for _, r := range s.Relationships {
		if r.Type == relType && r.From == from && r.To == to {
			return true
		}
	}
	return false
}

// ConstraintName is the name given to the uniqueness constraint of a label.
func (n NodeSpec) ConstraintName() string {
	return strings.ToLower(n.Label) + "_" + n.Key + "_unique"
}

// Constraints returns one uniqueness constraint statement per label.
func (s Schema) Constraints() []string {
	out := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		out = append(out, fmt.Sprintf(
			"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			n.ConstraintName(), n.Label, n.Key,
		))
	}
	return out
}

// Describe renders the schema as compact text for the agent system prompt.
func (s Schema) Describe() string {
	var b strings.Builder
	b.WriteString("Nodes:\n")
	for _, n := range s.Nodes {
		props := append([]string{n.Key + " (unique)"}, n.Properties...)
		fmt.Fprintf(&b, "  (:%s {%s})\n", n.Label, strings.Join(props, ", "))
	}
	b.WriteString("Relationships:\n")
	for _, r := range s.Relationships {
		fmt.Fprintf(&b, "  (:%s)-[:%s]->(:%s)\n", r.From, r.Type, r.To)
	}
	return b.String()
}
