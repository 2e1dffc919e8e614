// internal/inject/inject.go

// Package inject owns the UI the tool adds to the console's pages: preset
// buttons, the delivery-time summary, and the bulk-selection helper. Every
// routine is idempotent against the reconciliation loop's arbitrarily many
// mutation notifications: each injected container carries a fixed element id
// and is only inserted when that id is absent from the current snapshot.
package inject

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

// Injected element ids, one per produced control.
const (
	DeliverySummaryID  = "lp-delivery-summary"
	CopyButtonID       = "lp-copy-button"
	WeightPresetsID    = "lp-weight-presets"
	DimensionPresetsID = "lp-dimension-presets"
	BulkSelectID       = "lp-bulk-select"
)

// Mutator inserts markup into the live page. The live implementation runs
// insertAdjacentHTML through the browser session; tests record the calls.
type Mutator interface {
	// InsertAdjacentHTML inserts markup relative to the first element matching
	// the CSS selector. Position follows the DOM API ("beforebegin",
	// "afterbegin", "beforeend", "afterend").
	InsertAdjacentHTML(ctx context.Context, selector, position, markup string) error
}

// Injector is one idempotent UI-injection routine.
type Injector interface {
	// Name identifies the routine in logs.
	Name() string
	// Apply inserts the routine's control if the context matches and the
	// control is not already present. Failures are logged by the caller and
	// retried on the next reconciliation tick.
	Apply(ctx context.Context, pc pagectx.Context, snap *dom.Snapshot, mut Mutator) error
}

// Set is the full collection of injection routines run on every tick. The
// country labels the bulk-selection button.
func Set(log *zap.Logger, country string) []Injector {
	return []Injector{
		NewWeightPresets(),
		NewDimensionPresets(),
		NewDeliverySummary(log),
		NewBulkSelectButton(country),
	}
}
