// internal/bulkselect/table_test.go
package bulkselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/labelpilot/internal/dom"
)

const headerTable = `<html><body><table>
	<thead><tr>
		<th><input type="checkbox" name="select-page"></th>
		<th>country</th>
		<th>Carrier</th>
	</tr></thead>
	<tbody>
		<tr class="import-row"><td><input type="checkbox" name="import-select"></td><td>US</td><td>fastship</td></tr>
		<tr class="import-row"><td><input type="checkbox" name="import-select" checked></td><td>DE</td><td>fastship</td></tr>
		<tr class="import-row"><td><input type="checkbox" name="import-select"></td><td>us</td><td>slowship</td></tr>
	</tbody>
</table></body></html>`

const labelledTable = `<html><body><table>
	<tr class="import-row">
		<td><input type="checkbox" name="import-select"></td>
		<td data-label="Country">US</td>
	</tr>
	<tr class="import-row">
		<td><input type="checkbox" name="import-select"></td>
		<td data-label="Country">FR</td>
	</tr>
</table></body></html>`

func parse(t *testing.T, markup string) *dom.Snapshot {
	t.Helper()
	snap, err := dom.ParseString(markup)
	require.NoError(t, err)
	return snap
}

func TestTargetRowsByHeaderLookup(t *testing.T) {
	snap := parse(t, headerTable)

	targets := targetRows(snap, "US")
	require.Len(t, targets, 2, "country match is case-insensitive")
	assert.False(t, targets[0].Checked)
	assert.False(t, targets[1].Checked)

	de := targetRows(snap, "DE")
	require.Len(t, de, 1)
	assert.True(t, de[0].Checked)
}

func TestTargetRowsByCellLabelFallback(t *testing.T) {
	snap := parse(t, labelledTable)

	targets := targetRows(snap, "US")
	require.Len(t, targets, 1)
	assert.Empty(t, targetRows(snap, "NL"))
}

func TestTargetRowsNoMatchingCountry(t *testing.T) {
	snap := parse(t, headerTable)
	assert.Empty(t, targetRows(snap, "JP"))
}

func TestAllSelectionBoxesAndMasterToggle(t *testing.T) {
	snap := parse(t, headerTable)

	assert.Len(t, allSelectionBoxes(snap), 3)
	toggle, ok := masterToggle(snap)
	require.True(t, ok)
	assert.Equal(t, MasterToggleName, toggle.Attr("name"))
}

func TestDeselectAllControlRequiresVisibility(t *testing.T) {
	snap := parse(t, `<html><body>
		<button data-action="deselect-all" hidden>Deselect all</button>
	</body></html>`)
	_, ok := deselectAllControl(snap)
	assert.False(t, ok)

	snap = parse(t, `<html><body>
		<button data-action="deselect-all">Deselect all</button>
	</body></html>`)
	_, ok = deselectAllControl(snap)
	assert.True(t, ok)
}
