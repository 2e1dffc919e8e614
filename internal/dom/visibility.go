// internal/dom/visibility.go
package dom

import (
	"strconv"
	"strings"
)

// Visible reports whether an element would render for the user. It encodes the
// rules a snapshot can answer without a layout pass: an explicit hidden flag,
// an inline style that suppresses rendering, or explicitly zeroed dimensions.
// Elements with none of those markers are assumed visible.
func Visible(e Element) bool {
	if e.node == nil {
		return false
	}
	if _, hidden := e.LookupAttr("hidden"); hidden {
		return false
	}
	if strings.EqualFold(e.Attr("aria-hidden"), "true") {
		return false
	}
	if e.Tag() == "input" && strings.EqualFold(e.Attr("type"), "hidden") {
		return false
	}

	style := parseInlineStyle(e.Attr("style"))
	if strings.EqualFold(style["display"], "none") {
		return false
	}
	if strings.EqualFold(style["visibility"], "hidden") || strings.EqualFold(style["visibility"], "collapse") {
		return false
	}
	if op, ok := style["opacity"]; ok {
		if f, err := strconv.ParseFloat(op, 64); err == nil && f == 0 {
			return false
		}
	}
	if zeroLength(style["width"]) || zeroLength(style["height"]) {
		return false
	}
	if zeroLength(e.Attr("width")) || zeroLength(e.Attr("height")) {
		return false
	}

	// A hidden ancestor hides the whole subtree.
	if parent, ok := e.Parent(); ok {
		return Visible(parent)
	}
	return true
}

// parseInlineStyle splits "a: b; c: d" into a lowercase-keyed property map.
// Malformed declarations are skipped, not errors.
func parseInlineStyle(style string) map[string]string {
	props := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		props[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return props
}

func zeroLength(v string) bool {
	if v == "" {
		return false
	}
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && f == 0
}
