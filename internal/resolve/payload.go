// internal/resolve/payload.go
package resolve

import (
	"html"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/labelpilot/internal/dom"
)

// PayloadAttr carries the host's JSON selection payload on the print anchor.
const PayloadAttr = "data-params"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// printParams is the expected payload shape: {"ids": [identifiers...]}.
type printParams struct {
	IDs []jsoniter.RawMessage `json:"ids"`
}

// HasSelectedIDs reports whether the element's selection payload names at least
// one shipment. The host HTML-entity-escapes the attribute on some renders, so
// the value is unescaped before parsing. Anything malformed means "nothing
// selected" - a parse failure is a guard result, never an error.
func HasSelectedIDs(el dom.Element) bool {
	raw, ok := el.LookupAttr(PayloadAttr)
	if !ok {
		return false
	}
	return ParseSelectedIDs(raw) > 0
}

// ParseSelectedIDs returns the number of ids in a selection payload string,
// or 0 when the payload is missing, malformed, or empty.
func ParseSelectedIDs(raw string) int {
	raw = strings.TrimSpace(html.UnescapeString(raw))
	if raw == "" {
		return 0
	}
	var params printParams
	if err := json.UnmarshalFromString(raw, &params); err != nil {
		return 0
	}
	return len(params.IDs)
}
