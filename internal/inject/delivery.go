// internal/inject/delivery.go
package inject

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/labelpilot/internal/datecalc"
	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

// Host timestamp element ids on the shipment detail page.
const (
	ReceivedDateID  = "received-date"
	DeliveredDateID = "delivered-date"
)

// deliverySummary injects the business-day delivery figure with a copy button.
type deliverySummary struct {
	log *zap.Logger
}

// NewDeliverySummary returns the delivery-time summary routine.
func NewDeliverySummary(log *zap.Logger) Injector {
	if log == nil {
		log = zap.NewNop()
	}
	return &deliverySummary{log: log.Named("delivery-summary")}
}

func (d *deliverySummary) Name() string { return "delivery-summary" }

func (d *deliverySummary) Apply(ctx context.Context, pc pagectx.Context, snap *dom.Snapshot, mut Mutator) error {
	if pc != pagectx.ShipmentDetail {
		return nil
	}
	if snap.HasID(DeliverySummaryID) {
		return nil
	}

	received, ok := d.timestamp(snap, ReceivedDateID)
	if !ok {
		return nil
	}
	delivered, ok := d.timestamp(snap, DeliveredDateID)
	if !ok {
		// Shipment still in transit; nothing to summarize.
		return nil
	}

	days := datecalc.BusinessDaysBetween(received, delivered)
	summary := fmt.Sprintf("Delivered in %d business day%s (received %s, delivered %s)",
		days, plural(days), received.Format("2006-01-02"), delivered.Format("2006-01-02"))

	markup := fmt.Sprintf(
		`<div id="%s" class="lp-summary"><span>%s</span>`+
			`<button type="button" id="%s" data-lp-copy="%s">Copy</button></div>`,
		DeliverySummaryID, html.EscapeString(summary), CopyButtonID, html.EscapeString(summary))
	return mut.InsertAdjacentHTML(ctx, "time#"+DeliveredDateID, "afterend", markup)
}

// timestamp reads a datetime attribute off one of the host's <time> elements.
// Malformed or missing values suppress the summary instead of failing the tick.
func (d *deliverySummary) timestamp(snap *dom.Snapshot, id string) (time.Time, bool) {
	el, ok := snap.ByID(id)
	if !ok {
		return time.Time{}, false
	}
	raw := el.Attr("datetime")
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	d.log.Debug("Unparseable datetime attribute.", zap.String("id", id), zap.String("value", raw))
	return time.Time{}, false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
