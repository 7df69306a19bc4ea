package supplychain

// cityCatalog is the fixed set of locations placed in the graph.
var cityCatalog = []Location{
	{Name: "Shanghai", Country: "China", Latitude: 31.2304, Longitude: 121.4737},
	{Name: "Shenzhen", Country: "China", Latitude: 22.5431, Longitude: 114.0579},
	{Name: "Ningbo", Country: "China", Latitude: 29.8683, Longitude: 121.5440},
	{Name: "Busan", Country: "South Korea", Latitude: 35.1796, Longitude: 129.0756},
	{Name: "Tokyo", Country: "Japan", Latitude: 35.6762, Longitude: 139.6503},
	{Name: "Osaka", Country: "Japan", Latitude: 34.6937, Longitude: 135.5023},
	{Name: "Singapore", Country: "Singapore", Latitude: 1.3521, Longitude: 103.8198},
	{Name: "Ho Chi Minh City", Country: "Vietnam", Latitude: 10.8231, Longitude: 106.6297},
	{Name: "Bangkok", Country: "Thailand", Latitude: 13.7563, Longitude: 100.5018},
	{Name: "Mumbai", Country: "India", Latitude: 19.0760, Longitude: 72.8777},
	{Name: "Chennai", Country: "India", Latitude: 13.0827, Longitude: 80.2707},
	{Name: "Dubai", Country: "United Arab Emirates", Latitude: 25.2048, Longitude: 55.2708},
	{Name: "Rotterdam", Country: "Netherlands", Latitude: 51.9244, Longitude: 4.4777},
	{Name: "Hamburg", Country: "Germany", Latitude: 53.5511, Longitude: 9.9937},
	{Name: "Munich", Country: "Germany", Latitude: 48.1351, Longitude: 11.5820},
	{Name: "Antwerp", Country: "Belgium", Latitude: 51.2194, Longitude: 4.4025},
	{Name: "Felixstowe", Country: "United Kingdom", Latitude: 51.9617, Longitude: 1.3513},
	{Name: "Milan", Country: "Italy", Latitude: 45.4642, Longitude: 9.1900},
	{Name: "Barcelona", Country: "Spain", Latitude: 41.3874, Longitude: 2.1686},
	{Name: "Gdansk", Country: "Poland", Latitude: 54.3520, Longitude: 18.6466},
	{Name: "Los Angeles", Country: "United States", Latitude: 34.0522, Longitude: -118.2437},
	{Name: "Long Beach", Country: "United States", Latitude: 33.7701, Longitude: -118.1937},
	{Name: "Chicago", Country: "United States", Latitude: 41.8781, Longitude: -87.6298},
	{Name: "Savannah", Country: "United States", Latitude: 32.0809, Longitude: -81.0912},
	{Name: "Vancouver", Country: "Canada", Latitude: 49.2827, Longitude: -123.1207},
	{Name: "Monterrey", Country: "Mexico", Latitude: 25.6866, Longitude: -100.3161},
	{Name: "Santos", Country: "Brazil", Latitude: -23.9608, Longitude: -46.3336},
	{Name: "Buenos Aires", Country: "Argentina", Latitude: -34.6037, Longitude: -58.3816},
	{Name: "Durban", Country: "South Africa", Latitude: -29.8587, Longitude: 31.0218},
	{Name: "Sydney", Country: "Australia", Latitude: -33.8688, Longitude: 151.2093},
}

var countryRegions = map[string]string{
	"China":                "Asia Pacific",
	"South Korea":          "Asia Pacific",
	"Japan":                "Asia Pacific",
	"Singapore":            "Asia Pacific",
	"Vietnam":              "Asia Pacific",
	"Thailand":             "Asia Pacific",
	"India":                "South Asia",
	"United Arab Emirates": "Middle East",
	"Netherlands":          "Europe",
	"Germany":              "Europe",
	"Belgium":              "Europe",
	"United Kingdom":       "Europe",
	"Italy":                "Europe",
	"Spain":                "Europe",
	"Poland":               "Europe",
	"United States":        "North America",
	"Canada":               "North America",
	"Mexico":               "North America",
	"Brazil":               "South America",
	"Argentina":            "South America",
	"South Africa":         "Africa",
	"Australia":            "Oceania",
}

var productCategories = []string{
	"electronics", "semiconductors", "textiles", "automotive parts", "chemicals",
	"packaging", "machinery", "pharmaceuticals", "furniture", "food ingredients",
}

// incidentKinds pairs an incident type with the description template used for it.
var incidentKinds = []struct {
	Type        string
	Description string
}{
	{Type: "port_closure", Description: "Port closure due to storm"},
	{Type: "labor_strike", Description: "Dock workers strike halts loading"},
	{Type: "customs_delay", Description: "Customs inspection backlog"},
	{Type: "factory_fire", Description: "Fire at a supplier factory"},
	{Type: "power_outage", Description: "Regional power outage stops production"},
	{Type: "flood", Description: "Flooding blocks inland transport"},
	{Type: "cyber_attack", Description: "Ransomware attack on logistics systems"},
	{Type: "quality_recall", Description: "Quality defect triggers product recall"},
}

var severities = []string{"low", "medium", "high", "critical"}
