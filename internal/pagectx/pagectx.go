// internal/pagectx/pagectx.go

// Package pagectx derives the logical page variant from the console's current
// location. Navigation inside the host application is client-side, so the
// context is recomputed on every reconciliation tick rather than cached.
package pagectx

import (
	"net/url"
	"strings"
)

// Context identifies which of the shipping console's pages is showing.
type Context int

const (
	Other Context = iota
	ShipmentsListing
	BatchesListing
	ImportSelection
	ShipmentDetail
)

func (c Context) String() string {
	switch c {
	case ShipmentsListing:
		return "shipments-listing"
	case BatchesListing:
		return "batches-listing"
	case ImportSelection:
		return "import-selection"
	case ShipmentDetail:
		return "shipment-detail"
	default:
		return "other"
	}
}

// Cooldown keys, one per auto-print context. These are the session storage keys
// holding the last-fired timestamps.
const (
	KeyShipments = "autoprint.shipments"
	KeyBatches   = "autoprint.batches"
)

// FromURL maps a location to its Context. Unparseable locations are Other,
// never an error; the caller simply has nothing to do on such a page.
func FromURL(location string) Context {
	u, err := url.Parse(location)
	if err != nil {
		return Other
	}
	path := strings.Trim(u.Path, "/")
	segs := strings.Split(path, "/")

	switch {
	case path == "":
		return Other
	case segs[0] == "shipments" && len(segs) == 1:
		return ShipmentsListing
	case segs[0] == "shipments" && len(segs) > 1:
		return ShipmentDetail
	case segs[0] == "batches":
		return BatchesListing
	case segs[0] == "import":
		return ImportSelection
	default:
		return Other
	}
}

// CooldownKey returns the ledger key for the context's auto-print action, or
// "" when the context has no automatic action.
func (c Context) CooldownKey() string {
	switch c {
	case ShipmentsListing:
		return KeyShipments
	case BatchesListing:
		return KeyBatches
	default:
		return ""
	}
}

// AutoPrints reports whether the context participates in the auto-print pipeline.
func (c Context) AutoPrints() bool {
	return c == ShipmentsListing || c == BatchesListing
}
