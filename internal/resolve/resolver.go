// internal/resolve/resolver.go

// Package resolve scans a DOM snapshot for the print action matching the
// current page context. Resolution is pure: the same snapshot always yields
// the same target, and no resolution path mutates anything.
package resolve

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
)

// Target is a resolved print action: the element plus the textual content,
// href and visibility observed at resolution time. Targets are never cached
// across ticks; the host replaces these nodes on every re-render.
type Target struct {
	Element dom.Element
	Text    string
	Href    string
	Visible bool
	XPath   string
	Context pagectx.Context
}

// Resolver finds the best print target for a context.
type Resolver struct {
	log *zap.Logger
}

// New returns a Resolver logging through the given logger.
func New(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log.Named("resolve")}
}

// FindBestTarget scans the snapshot for anchors carrying the marker class,
// filters by visibility and the context's text/href contracts, and returns the
// first survivor in document order. When nothing survives it logs a diagnostic
// snapshot of every discovered marker element and reports no target.
func (r *Resolver) FindBestTarget(snap *dom.Snapshot, ctx pagectx.Context) (Target, bool) {
	if snap == nil || !ctx.AutoPrints() {
		return Target{}, false
	}

	candidates := snap.FindAll(func(el dom.Element) bool {
		return el.Tag() == "a" && el.HasClass(MarkerClass)
	})

	for _, el := range candidates {
		if !dom.Visible(el) {
			continue
		}
		if !TextMatches(el, ctx) || !HrefMatches(el, ctx) {
			continue
		}
		if ctx == pagectx.ShipmentsListing && !HasSelectedIDs(el) {
			continue
		}
		return Target{
			Element: el,
			Text:    el.Text(),
			Href:    el.Attr("href"),
			Visible: true,
			XPath:   el.XPath(),
			Context: ctx,
		}, true
	}

	r.logNoTarget(candidates, ctx)
	return Target{}, false
}

// logNoTarget emits the troubleshooting view of everything the coarse scan
// found. Purely observability; resolution failures are retried on the next tick.
func (r *Resolver) logNoTarget(candidates []dom.Element, ctx pagectx.Context) {
	fields := []zap.Field{
		zap.Stringer("context", ctx),
		zap.Int("candidates", len(candidates)),
	}
	for _, el := range candidates {
		fields = append(fields, zap.Dict("candidate",
			zap.String("text", el.Text()),
			zap.String("href", el.Attr("href")),
			zap.Bool("visible", dom.Visible(el)),
		))
	}
	r.log.Debug("No dispatchable print target found.", fields...)
}
