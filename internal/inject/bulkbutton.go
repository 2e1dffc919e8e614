// internal/inject/bulkbutton.go
package inject

import (
	"context"
	"fmt"
	"html"

	"github.com/xkilldash9x/labelpilot/internal/bulkselect"
	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

// bulkSelectButton injects the "select all rows for country X" helper on the
// import selection page. The button's click is routed back through a page
// binding into the convergence engine.
type bulkSelectButton struct {
	country string
}

// NewBulkSelectButton returns the bulk-selection helper routine, labelled for
// the configured country.
func NewBulkSelectButton(country string) Injector {
	return &bulkSelectButton{country: country}
}

func (b *bulkSelectButton) Name() string { return "bulk-select-button" }

func (b *bulkSelectButton) Apply(ctx context.Context, pc pagectx.Context, snap *dom.Snapshot, mut Mutator) error {
	if pc != pagectx.ImportSelection {
		return nil
	}
	if snap.HasID(BulkSelectID) {
		return nil
	}
	// Anchor next to the host's master toggle; without it there is no
	// selection table on this render.
	if _, ok := snap.First(func(el dom.Element) bool {
		return el.Tag() == "input" && el.Attr("name") == bulkselect.MasterToggleName
	}); !ok {
		return nil
	}

	markup := fmt.Sprintf(
		`<button type="button" id="%s" class="lp-bulk" data-lp-bulk="1">%s</button>`,
		BulkSelectID, html.EscapeString("Select "+b.country+" rows"))
	return mut.InsertAdjacentHTML(ctx, fmt.Sprintf(`input[name=%q]`, bulkselect.MasterToggleName), "afterend", markup)
}
