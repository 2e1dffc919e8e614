// internal/resolve/resolver_test.go
package resolve

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

func snapshot(t *testing.T, body string) *dom.Snapshot {
	t.Helper()
	snap, err := dom.ParseString(fmt.Sprintf("<html><body>%s</body></html>", body))
	require.NoError(t, err)
	return snap
}

const goodShipmentsAnchor = `<a class="js-print-label" href="/shipments/labels"
	data-params='{"ids":[42]}'>Print labels</a>`

func TestFindBestTargetNoMarkers(t *testing.T) {
	r := New(zap.NewNop())
	snap := snapshot(t, `<a href="/shipments/labels">Print labels</a><p>no markers here</p>`)

	_, ok := r.FindBestTarget(snap, pagectx.ShipmentsListing)
	assert.False(t, ok)
}

func TestFindBestTargetSingleMatch(t *testing.T) {
	r := New(zap.NewNop())
	snap := snapshot(t, goodShipmentsAnchor)

	target, ok := r.FindBestTarget(snap, pagectx.ShipmentsListing)
	require.True(t, ok)
	assert.Equal(t, "Print labels", target.Text)
	assert.Equal(t, "/shipments/labels", target.Href)
	assert.True(t, target.Visible)
	assert.NotEmpty(t, target.XPath)
}

func TestFindBestTargetIgnoresNonMatchingSiblings(t *testing.T) {
	r := New(zap.NewNop())

	// Wrong text, wrong href, and hidden variants must not displace the match.
	decoys := `
		<a class="js-print-label" href="/shipments/labels" data-params='{"ids":[1]}' hidden>Print labels</a>
		<a class="js-print-label" href="/shipments/export" data-params='{"ids":[1]}'>Print labels</a>
		<a class="js-print-label" href="/shipments/labels" data-params='{"ids":[1]}'>Export CSV</a>`

	withDecoysFirst := snapshot(t, decoys+goodShipmentsAnchor)
	target, ok := r.FindBestTarget(withDecoysFirst, pagectx.ShipmentsListing)
	require.True(t, ok)
	assert.Equal(t, "/shipments/labels", target.Href)
	assert.Equal(t, "Print labels", target.Text)
}

func TestFindBestTargetFirstInDocumentOrder(t *testing.T) {
	r := New(zap.NewNop())
	snap := snapshot(t, `
		<a id="one" class="js-print-label" href="/a/labels" data-params='{"ids":[1]}'>Print one</a>
		<a id="two" class="js-print-label" href="/b/labels" data-params='{"ids":[2]}'>Print two</a>`)

	target, ok := r.FindBestTarget(snap, pagectx.ShipmentsListing)
	require.True(t, ok)
	assert.Equal(t, "one", target.Element.Attr("id"))

	// Determinism: re-resolving the identical snapshot yields the same pick.
	again, ok := r.FindBestTarget(snap, pagectx.ShipmentsListing)
	require.True(t, ok)
	assert.Equal(t, target.XPath, again.XPath)
}

func TestShipmentsPayloadGuard(t *testing.T) {
	r := New(zap.NewNop())
	tests := []struct {
		name   string
		params string
		accept bool
	}{
		{"selected ids", `data-params='{"ids":[42]}'`, true},
		{"several ids", `data-params='{"ids":[1,2,3]}'`, true},
		{"entity escaped", `data-params='{&quot;ids&quot;:[7]}'`, true},
		{"empty ids", `data-params='{"ids":[]}'`, false},
		{"missing ids key", `data-params='{"page":1}'`, false},
		{"unparseable", `data-params='{{{not json'`, false},
		{"attribute absent", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot(t, fmt.Sprintf(
				`<a class="js-print-label" href="/shipments/labels" %s>Print labels</a>`, tt.params))
			_, ok := r.FindBestTarget(snap, pagectx.ShipmentsListing)
			assert.Equal(t, tt.accept, ok)
		})
	}
}

func TestBatchesContractSkipsPayloadGuard(t *testing.T) {
	r := New(zap.NewNop())
	snap := snapshot(t, `<a class="js-print-label" href="/batches/9/labels">Print batch</a>`)

	_, ok := r.FindBestTarget(snap, pagectx.ShipmentsListing)
	assert.False(t, ok, "shipments contract requires the shipments href")

	target, ok := r.FindBestTarget(snap, pagectx.BatchesListing)
	require.True(t, ok)
	assert.Equal(t, "/batches/9/labels", target.Href)
}

func TestNonPrintingContextsResolveNothing(t *testing.T) {
	r := New(zap.NewNop())
	snap := snapshot(t, goodShipmentsAnchor)

	for _, ctx := range []pagectx.Context{pagectx.ImportSelection, pagectx.ShipmentDetail, pagectx.Other} {
		_, ok := r.FindBestTarget(snap, ctx)
		assert.False(t, ok, ctx.String())
	}
}

func TestNoTargetEmitsDiagnosticSnapshot(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(zap.New(core))
	snap := snapshot(t, `<a class="js-print-label" href="/shipments/export">Export</a>`)

	_, ok := r.FindBestTarget(snap, pagectx.ShipmentsListing)
	require.False(t, ok)

	entries := logs.FilterMessage("No dispatchable print target found.").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["candidates"])
}

func TestDispatchable(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{"ready", `<a id="t" href="#">Print labels</a>`, true},
		{"already printing", `<a id="t" href="#">Printing...</a>`, false},
		{"disabled attr", `<a id="t" href="#" disabled>Print labels</a>`, false},
		{"aria-disabled", `<a id="t" href="#" aria-disabled="true">Print labels</a>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot(t, tt.markup)
			el, ok := snap.ByID("t")
			require.True(t, ok)
			assert.Equal(t, tt.want, Dispatchable(el))
		})
	}
}
