// internal/dom/snapshot_test.go
package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingMarkup = `
<html><body>
  <div id="toolbar">
    <a class="btn js-print-label" href="/shipments/labels">Print labels</a>
    <a class="btn" href="/shipments/export">Export</a>
  </div>
  <table id="rows">
    <tr><td>one</td></tr>
    <tr><td>two</td></tr>
  </table>
</body></html>`

func TestParseAndWalkDocumentOrder(t *testing.T) {
	snap, err := ParseString(listingMarkup)
	require.NoError(t, err)

	var tags []string
	snap.Walk(func(el Element) bool {
		tags = append(tags, el.Tag())
		return true
	})
	// html/head/body come from the parser; the anchors must appear before the table.
	assert.Contains(t, tags, "a")
	aIdx, tableIdx := -1, -1
	for i, tag := range tags {
		if tag == "a" && aIdx == -1 {
			aIdx = i
		}
		if tag == "table" {
			tableIdx = i
		}
	}
	assert.Less(t, aIdx, tableIdx)
}

func TestFindAllAndFirst(t *testing.T) {
	snap, err := ParseString(listingMarkup)
	require.NoError(t, err)

	anchors := snap.FindAll(func(el Element) bool { return el.Tag() == "a" })
	require.Len(t, anchors, 2)
	assert.Equal(t, "Print labels", anchors[0].Text())
	assert.Equal(t, "/shipments/labels", anchors[0].Attr("href"))
	assert.True(t, anchors[0].HasClass("js-print-label"))
	assert.False(t, anchors[1].HasClass("js-print-label"))

	first, ok := snap.First(func(el Element) bool { return el.HasClass("btn") })
	require.True(t, ok)
	assert.Equal(t, "Print labels", first.Text())
}

func TestByIDAndHasID(t *testing.T) {
	snap, err := ParseString(listingMarkup)
	require.NoError(t, err)

	el, ok := snap.ByID("toolbar")
	require.True(t, ok)
	assert.Equal(t, "div", el.Tag())
	assert.True(t, snap.HasID("rows"))
	assert.False(t, snap.HasID("lp-delivery-summary"))
}

func TestMissingAttributesAreNotErrors(t *testing.T) {
	snap, err := ParseString(`<html><body><a>bare</a></body></html>`)
	require.NoError(t, err)

	el, ok := snap.First(func(el Element) bool { return el.Tag() == "a" })
	require.True(t, ok)
	assert.Equal(t, "", el.Attr("href"))
	_, present := el.LookupAttr("data-params")
	assert.False(t, present)
	assert.False(t, el.HasClass("anything"))
}

func TestTextCollapsesWhitespaceAcrossChildren(t *testing.T) {
	snap, err := ParseString(`<html><body><a href="#"><span>  Print  </span>
		<span>labels</span></a></body></html>`)
	require.NoError(t, err)

	el, _ := snap.First(func(el Element) bool { return el.Tag() == "a" })
	assert.Equal(t, "Print labels", el.Text())
}

func TestClosestAndDescendants(t *testing.T) {
	snap, err := ParseString(`
		<html><body><table><tr class="import-row">
		<td><input type="checkbox" name="import-select"></td>
		<td data-label="Country">US</td>
		</tr></table></body></html>`)
	require.NoError(t, err)

	box, ok := snap.First(func(el Element) bool { return el.Tag() == "input" })
	require.True(t, ok)

	row, ok := box.Closest(func(el Element) bool { return el.HasClass("import-row") })
	require.True(t, ok)
	assert.Equal(t, "tr", row.Tag())

	cell, ok := row.First(func(el Element) bool { return el.Attr("data-label") == "Country" })
	require.True(t, ok)
	assert.Equal(t, "US", cell.Text())
}

func TestXPathAnchorsOnNearestID(t *testing.T) {
	snap, err := ParseString(listingMarkup)
	require.NoError(t, err)

	anchors := snap.FindAll(func(el Element) bool { return el.Tag() == "a" })
	require.Len(t, anchors, 2)
	assert.Equal(t, `//*[@id='toolbar']/a[1]`, anchors[0].XPath())
	assert.Equal(t, `//*[@id='toolbar']/a[2]`, anchors[1].XPath())

	rows := snap.FindAll(func(el Element) bool { return el.Tag() == "tr" })
	require.Len(t, rows, 2)
	assert.Equal(t, `//*[@id='rows']/tbody[1]/tr[2]`, rows[1].XPath())
}
