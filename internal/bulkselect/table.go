// internal/bulkselect/table.go
package bulkselect

import (
	"strings"

	"github.com/xkilldash9x/labelpilot/internal/dom"
)

// Host markup contract for the import selection table.
const (
	// RowClass marks one selectable import row.
	RowClass = "import-row"
	// CheckboxName is the per-row selection checkbox.
	CheckboxName = "import-select"
	// MasterToggleName is the page-wide select-all checkbox.
	MasterToggleName = "select-page"
	// DeselectAllAction marks the host's own "deselect all" control.
	DeselectAllAction = "deselect-all"
	// CountryHeader is the header label locating the country column.
	CountryHeader = "Country"
	// CellLabelAttr is the per-cell fallback when the header row is absent
	// (the host's responsive rendering drops <thead> on narrow layouts).
	CellLabelAttr = "data-label"
)

// rowTarget is one import row relevant to a selection task.
type rowTarget struct {
	Checkbox dom.Element
	XPath    string
	Checked  bool
}

// targetRows returns, in document order, the selection checkboxes of every
// row whose country column equals the target value (case-insensitive).
func targetRows(snap *dom.Snapshot, country string) []rowTarget {
	var out []rowTarget
	for _, row := range importRows(snap) {
		if !strings.EqualFold(countryOf(row), country) {
			continue
		}
		cb, ok := rowCheckbox(row)
		if !ok {
			continue
		}
		out = append(out, rowTarget{
			Checkbox: cb,
			XPath:    cb.XPath(),
			Checked:  isChecked(cb),
		})
	}
	return out
}

func importRows(snap *dom.Snapshot) []dom.Element {
	return snap.FindAll(func(el dom.Element) bool {
		return el.Tag() == "tr" && el.HasClass(RowClass)
	})
}

func rowCheckbox(row dom.Element) (dom.Element, bool) {
	return row.First(func(el dom.Element) bool {
		return el.Tag() == "input" && el.Attr("name") == CheckboxName
	})
}

// countryOf resolves the row's country cell: by header column index first,
// then by the per-cell data-label fallback.
func countryOf(row dom.Element) string {
	if idx := countryColumnIndex(row); idx >= 0 {
		cells := row.FindAll(func(el dom.Element) bool { return el.Tag() == "td" })
		if idx < len(cells) {
			if v := strings.TrimSpace(cells[idx].Text()); v != "" {
				return v
			}
		}
	}
	if cell, ok := row.First(func(el dom.Element) bool {
		return el.Tag() == "td" && strings.EqualFold(el.Attr(CellLabelAttr), CountryHeader)
	}); ok {
		return strings.TrimSpace(cell.Text())
	}
	return ""
}

// countryColumnIndex finds the country column by exact, case-insensitive
// header text within the row's enclosing table. Returns -1 when no header
// matches.
func countryColumnIndex(row dom.Element) int {
	table, ok := row.Closest(func(el dom.Element) bool { return el.Tag() == "table" })
	if !ok {
		return -1
	}
	headers := table.FindAll(func(el dom.Element) bool { return el.Tag() == "th" })
	for i, th := range headers {
		if strings.EqualFold(strings.TrimSpace(th.Text()), CountryHeader) {
			return i
		}
	}
	return -1
}

// allSelectionBoxes returns every per-row selection checkbox on the page.
func allSelectionBoxes(snap *dom.Snapshot) []dom.Element {
	return snap.FindAll(func(el dom.Element) bool {
		return el.Tag() == "input" && el.Attr("name") == CheckboxName
	})
}

func masterToggle(snap *dom.Snapshot) (dom.Element, bool) {
	return snap.First(func(el dom.Element) bool {
		return el.Tag() == "input" && el.Attr("name") == MasterToggleName
	})
}

func deselectAllControl(snap *dom.Snapshot) (dom.Element, bool) {
	return snap.First(func(el dom.Element) bool {
		return el.Attr("data-action") == DeselectAllAction && dom.Visible(el)
	})
}

// isChecked reads the checkbox state from the snapshot. The live adapter
// materializes checkbox properties into attributes before serializing, so the
// attribute is authoritative here.
func isChecked(el dom.Element) bool {
	_, ok := el.LookupAttr("checked")
	return ok
}
