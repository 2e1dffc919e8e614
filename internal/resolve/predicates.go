// internal/resolve/predicates.go
package resolve

import (
	"strings"

	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

// MarkerClass is the structural marker the host application puts on its print
// action anchors. The coarse scan selects on this class; the contracts below
// narrow the survivors.
const MarkerClass = "js-print-label"

// TextMatches encodes the per-context text contract. Matching is
// case-insensitive substring; a missing text is simply a non-match.
func TextMatches(el dom.Element, ctx pagectx.Context) bool {
	text := strings.ToLower(el.Text())
	switch ctx {
	case pagectx.ShipmentsListing, pagectx.BatchesListing:
		return strings.Contains(text, "print")
	default:
		return false
	}
}

// HrefMatches encodes the per-context href contract.
func HrefMatches(el dom.Element, ctx pagectx.Context) bool {
	href := el.Attr("href")
	switch ctx {
	case pagectx.ShipmentsListing:
		return strings.HasSuffix(href, "/labels")
	case pagectx.BatchesListing:
		return strings.Contains(href, "/batch") && strings.HasSuffix(href, "/labels")
	default:
		return false
	}
}

// Dispatchable applies the pre-activation guards: a control that is already
// mid-print or attribute-flagged disabled must not be activated again.
func Dispatchable(el dom.Element) bool {
	if strings.Contains(strings.ToLower(el.Text()), "printing") {
		return false
	}
	if _, disabled := el.LookupAttr("disabled"); disabled {
		return false
	}
	if strings.EqualFold(el.Attr("aria-disabled"), "true") {
		return false
	}
	return true
}
