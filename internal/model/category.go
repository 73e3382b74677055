// Package model holds the shared domain types for catalog audit runs.
package model

// Category labels one anomaly class an identifier can fall into.
type Category string

const (
	// CategoryNoDiscovery marks a listing whose discovery grid is empty.
	CategoryNoDiscovery Category = "no_discovery"
	// CategoryNoAsterisk marks a discovery entry missing its asterisk
	// linkage marker.
	CategoryNoAsterisk Category = "no_asterisk"
	// CategoryCancelled marks a cancelled or closed-out item with no
	// replacement on record.
	CategoryCancelled Category = "cancelled"
	// CategoryOnOrder marks an item with a positive on-order quantity.
	CategoryOnOrder Category = "on_order"
	// CategoryNoLocation marks an item with no shelf location.
	CategoryNoLocation Category = "no_location"
	// CategoryNotInCatalog marks an identifier the catalog search could
	// not resolve to a product detail view.
	CategoryNotInCatalog Category = "not_in_catalog"
	// CategoryNotInRSC marks an item the retail support center does not
	// carry.
	CategoryNotInRSC Category = "not_in_rsc"
)

// Categories lists every category in report column order.
var Categories = []Category{
	CategoryNoDiscovery,
	CategoryNoAsterisk,
	CategoryCancelled,
	CategoryOnOrder,
	CategoryNoLocation,
	CategoryNotInCatalog,
	CategoryNotInRSC,
}

// Header returns the spreadsheet column header for the category.
func (c Category) Header() string {
	switch c {
	case CategoryNoDiscovery:
		return "No Discovery"
	case CategoryNoAsterisk:
		return "No Asterisk(*)"
	case CategoryCancelled:
		return "Cancelled"
	case CategoryOnOrder:
		return "On Order"
	case CategoryNoLocation:
		return "No Location"
	case CategoryNotInCatalog:
		return "Not in AceNet"
	case CategoryNotInRSC:
		return "Not in RSC"
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Event is one classification outcome: an identifier landing in a
// category. An identifier may produce several events per run, or none.
type Event struct {
	Identifier string
	Category   Category
}
