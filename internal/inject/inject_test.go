// internal/inject/inject_test.go
package inject

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

// fakeMutator applies insertions to an in-memory document so a follow-up
// snapshot reflects them, mirroring how the live page behaves between ticks.
type fakeMutator struct {
	document string
	inserts  []string
}

func (f *fakeMutator) InsertAdjacentHTML(_ context.Context, selector, position, markup string) error {
	f.inserts = append(f.inserts, fmt.Sprintf("%s@%s", selector, position))
	// Crude but sufficient for tests: append the markup before </body>.
	f.document = strings.Replace(f.document, "</body>", markup+"</body>", 1)
	return nil
}

func (f *fakeMutator) snapshot(t *testing.T) *dom.Snapshot {
	t.Helper()
	snap, err := dom.ParseString(f.document)
	require.NoError(t, err)
	return snap
}

const detailPage = `<html><body>
	<time id="received-date" datetime="2026-08-03">Aug 3</time>
	<time id="delivered-date" datetime="2026-08-19">Aug 19</time>
	<input id="shipment-weight" type="number">
	<input id="dim-length" type="number">
	<input id="dim-width" type="number">
	<input id="dim-height" type="number">
</body></html>`

const importPage = `<html><body>
	<table>
		<tr><th><input type="checkbox" name="select-page"></th><th>Country</th></tr>
		<tr class="import-row"><td><input type="checkbox" name="import-select"></td><td>US</td></tr>
	</table>
</body></html>`

func applyTwice(t *testing.T, inj Injector, pc pagectx.Context, mut *fakeMutator) {
	t.Helper()
	require.NoError(t, inj.Apply(context.Background(), pc, mut.snapshot(t), mut))
	require.NoError(t, inj.Apply(context.Background(), pc, mut.snapshot(t), mut))
}

func countID(doc, id string) int {
	return strings.Count(doc, fmt.Sprintf(`id="%s"`, id))
}

func TestInjectorsAreIdempotent(t *testing.T) {
	tests := []struct {
		name        string
		injector    Injector
		pc          pagectx.Context
		document    string
		containerID string
	}{
		{"weight presets", NewWeightPresets(), pagectx.ShipmentDetail, detailPage, WeightPresetsID},
		{"dimension presets", NewDimensionPresets(), pagectx.ShipmentDetail, detailPage, DimensionPresetsID},
		{"delivery summary", NewDeliverySummary(zaptest.NewLogger(t)), pagectx.ShipmentDetail, detailPage, DeliverySummaryID},
		{"bulk select button", NewBulkSelectButton("US"), pagectx.ImportSelection, importPage, BulkSelectID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mut := &fakeMutator{document: tt.document}
			applyTwice(t, tt.injector, tt.pc, mut)
			assert.Equal(t, 1, countID(mut.document, tt.containerID),
				"exactly one injected container after two applications")
			assert.Len(t, mut.inserts, 1)
		})
	}
}

func TestInjectorsSkipForeignContexts(t *testing.T) {
	for _, inj := range Set(zaptest.NewLogger(t), "US") {
		mut := &fakeMutator{document: detailPage}
		require.NoError(t, inj.Apply(context.Background(), pagectx.Other, mut.snapshot(t), mut))
		assert.Empty(t, mut.inserts, inj.Name())
	}
}

func TestPresetsSkipWhenAnchorMissing(t *testing.T) {
	mut := &fakeMutator{document: `<html><body><p>sparse render</p></body></html>`}
	require.NoError(t, NewWeightPresets().Apply(context.Background(), pagectx.ShipmentDetail, mut.snapshot(t), mut))
	assert.Empty(t, mut.inserts)
}

func TestWeightPresetMarkup(t *testing.T) {
	mut := &fakeMutator{document: detailPage}
	require.NoError(t, NewWeightPresets().Apply(context.Background(), pagectx.ShipmentDetail, mut.snapshot(t), mut))

	snap := mut.snapshot(t)
	container, ok := snap.ByID(WeightPresetsID)
	require.True(t, ok)
	buttons := container.FindAll(func(el dom.Element) bool { return el.Tag() == "button" })
	require.Len(t, buttons, len(WeightPresets))
	assert.Equal(t, "250 g", buttons[0].Text())
	assert.Equal(t, "shipment-weight=0.25", buttons[0].Attr("data-lp-set"))
}

func TestDimensionPresetMarkupSetsAllFields(t *testing.T) {
	mut := &fakeMutator{document: detailPage}
	require.NoError(t, NewDimensionPresets().Apply(context.Background(), pagectx.ShipmentDetail, mut.snapshot(t), mut))

	snap := mut.snapshot(t)
	container, ok := snap.ByID(DimensionPresetsID)
	require.True(t, ok)
	buttons := container.FindAll(func(el dom.Element) bool { return el.Tag() == "button" })
	require.Len(t, buttons, len(DimensionPresets))
	assert.Equal(t, "dim-length=23;dim-width=17;dim-height=9", buttons[0].Attr("data-lp-set"))
}

func TestDeliverySummaryContent(t *testing.T) {
	mut := &fakeMutator{document: detailPage}
	require.NoError(t, NewDeliverySummary(zaptest.NewLogger(t)).
		Apply(context.Background(), pagectx.ShipmentDetail, mut.snapshot(t), mut))

	snap := mut.snapshot(t)
	summary, ok := snap.ByID(DeliverySummaryID)
	require.True(t, ok)
	assert.Contains(t, summary.Text(), "Delivered in 12 business days")

	copyBtn, ok := snap.ByID(CopyButtonID)
	require.True(t, ok)
	assert.Contains(t, copyBtn.Attr("data-lp-copy"), "12 business days")
}

func TestDeliverySummarySkipsInTransitShipments(t *testing.T) {
	inTransit := strings.Replace(detailPage,
		`<time id="delivered-date" datetime="2026-08-19">Aug 19</time>`, "", 1)
	mut := &fakeMutator{document: inTransit}
	require.NoError(t, NewDeliverySummary(zaptest.NewLogger(t)).
		Apply(context.Background(), pagectx.ShipmentDetail, mut.snapshot(t), mut))
	assert.Empty(t, mut.inserts)
}

func TestDeliverySummaryToleratesMalformedDates(t *testing.T) {
	broken := strings.Replace(detailPage, `datetime="2026-08-19"`, `datetime="soon"`, 1)
	mut := &fakeMutator{document: broken}
	require.NoError(t, NewDeliverySummary(zaptest.NewLogger(t)).
		Apply(context.Background(), pagectx.ShipmentDetail, mut.snapshot(t), mut))
	assert.Empty(t, mut.inserts)
}

func TestBulkButtonNeedsMasterToggle(t *testing.T) {
	mut := &fakeMutator{document: `<html><body><table></table></body></html>`}
	require.NoError(t, NewBulkSelectButton("US").
		Apply(context.Background(), pagectx.ImportSelection, mut.snapshot(t), mut))
	assert.Empty(t, mut.inserts)
}
