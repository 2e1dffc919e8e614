// internal/browser/executor.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/labelpilot/internal/dispatch"
)

// Executor drives the simulated interaction primitives against the session's
// tab. Pointer events are synthesized in page JS (CDP's input domain has no
// pointer type), mouse press/release go through the input domain, and the
// trailing click plus the direct activation are DOM-level dispatches.
type Executor struct {
	s *Session
}

// NewExecutor returns the session-backed interaction executor.
func NewExecutor(s *Session) *Executor {
	return &Executor{s: s}
}

// ScrollIntoView brings the element addressed by xpath into the viewport.
func (e *Executor) ScrollIntoView(ctx context.Context, selector string) error {
	return e.s.run(ctx, chromedp.ScrollIntoView(selector, chromedp.BySearch))
}

// Focus gives the element input focus.
func (e *Executor) Focus(ctx context.Context, selector string) error {
	return e.s.run(ctx, chromedp.Focus(selector, chromedp.BySearch))
}

type centerResult struct {
	Ok bool    `json:"ok"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Center returns the element's current center in viewport coordinates.
func (e *Executor) Center(ctx context.Context, selector string) (dispatch.Point, error) {
	script := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) { return { ok: false, x: 0, y: 0 }; }
		const r = el.getBoundingClientRect();
		return { ok: true, x: r.left + r.width / 2, y: r.top + r.height / 2 };
	})()`, xpathLookupJS(selector))

	var res centerResult
	if err := e.s.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return dispatch.Point{}, fmt.Errorf("center lookup failed: %w", err)
	}
	if !res.Ok {
		return dispatch.Point{}, fmt.Errorf("element %q not found for centering", selector)
	}
	return dispatch.Point{X: res.X, Y: res.Y}, nil
}

// DispatchPointer synthesizes a PointerEvent at the event's coordinates,
// dispatched to whatever element sits under them. Environments without the
// PointerEvent constructor report dispatch.ErrPointerUnsupported.
func (e *Executor) DispatchPointer(ctx context.Context, ev dispatch.Event) error {
	script := fmt.Sprintf(`(() => {
		if (typeof PointerEvent === 'undefined') { return 'unsupported'; }
		const el = document.elementFromPoint(%f, %f);
		if (!el) { return 'missing'; }
		el.dispatchEvent(new PointerEvent(%s, {
			bubbles: true, cancelable: true, composed: true,
			pointerId: 1, pointerType: 'mouse', isPrimary: true,
			button: 0, buttons: 1,
			clientX: %f, clientY: %f,
		}));
		return 'ok';
	})()`, ev.X, ev.Y, strconv.Quote(string(ev.Type)), ev.X, ev.Y)

	var outcome string
	if err := e.s.run(ctx, chromedp.Evaluate(script, &outcome)); err != nil {
		return fmt.Errorf("pointer dispatch failed: %w", err)
	}
	switch outcome {
	case "ok":
		return nil
	case "unsupported":
		return dispatch.ErrPointerUnsupported
	default:
		return fmt.Errorf("no element under point (%.0f, %.0f)", ev.X, ev.Y)
	}
}

// DispatchMouse synthesizes one mouse event. Press and release use the CDP
// input domain so they carry browser-level trust; the click event has no
// input-domain equivalent and is dispatched as a DOM MouseEvent.
func (e *Executor) DispatchMouse(ctx context.Context, ev dispatch.Event) error {
	switch ev.Type {
	case dispatch.MouseDown:
		return e.dispatchCDPMouse(ctx, input.MousePressed, ev, 1)
	case dispatch.MouseUp:
		return e.dispatchCDPMouse(ctx, input.MouseReleased, ev, 0)
	case dispatch.Click:
		return e.dispatchDOMClick(ctx, ev)
	default:
		return fmt.Errorf("unsupported mouse event type %q", ev.Type)
	}
}

func (e *Executor) dispatchCDPMouse(ctx context.Context, typ input.MouseType, ev dispatch.Event, buttons int64) error {
	return e.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(typ, ev.X, ev.Y).
			WithButton(input.Left).
			WithButtons(buttons).
			WithClickCount(int64(ev.ClickCount)).
			Do(ctx)
	}))
}

func (e *Executor) dispatchDOMClick(ctx context.Context, ev dispatch.Event) error {
	script := fmt.Sprintf(`(() => {
		const el = document.elementFromPoint(%f, %f);
		if (!el) { return false; }
		el.dispatchEvent(new MouseEvent('click', {
			bubbles: true, cancelable: true, composed: true,
			button: 0, detail: %d,
			clientX: %f, clientY: %f,
		}));
		return true;
	})()`, ev.X, ev.Y, ev.ClickCount, ev.X, ev.Y)

	var ok bool
	if err := e.s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("click dispatch failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("no element under point (%.0f, %.0f)", ev.X, ev.Y)
	}
	return nil
}

// Activate performs the direct programmatic activation on the element
// addressed by xpath.
func (e *Executor) Activate(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) { return false; }
		el.click();
		return true;
	})()`, xpathLookupJS(selector))

	var ok bool
	if err := e.s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("direct activation failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("element %q not found for activation", selector)
	}
	return nil
}

// Sleep pauses, respecting context cancellation.
func (e *Executor) Sleep(ctx context.Context, d time.Duration) error {
	return e.s.Sleep(ctx, d)
}
