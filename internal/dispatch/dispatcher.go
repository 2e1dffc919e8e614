// internal/dispatch/dispatcher.go

// Package dispatch performs the simulated user interaction on a resolved
// print target: focus, scroll, a settle delay, a synthetic pointer/mouse
// sequence at the element's center, and a direct programmatic activation as
// the final guarantee. The sequence is deliberately redundant because the
// host's handlers bind at different layers depending on the page build.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/labelpilot/internal/resolve"
)

// ErrPointerUnsupported is returned by an Executor whose environment cannot
// synthesize PointerEvent. The dispatcher downgrades to the mouse-only tier
// for the remainder of the session.
var ErrPointerUnsupported = errors.New("pointer event primitive unsupported")

// Executor is the browser-agnostic surface the dispatcher drives. The live
// implementation speaks CDP; tests inject a recording fake.
type Executor interface {
	// ScrollIntoView brings the element into the viewport.
	ScrollIntoView(ctx context.Context, selector string) error
	// Focus gives the element input focus.
	Focus(ctx context.Context, selector string) error
	// Center returns the element's current center in viewport coordinates.
	Center(ctx context.Context, selector string) (Point, error)
	// DispatchPointer synthesizes a pointer event, or ErrPointerUnsupported.
	DispatchPointer(ctx context.Context, ev Event) error
	// DispatchMouse synthesizes a mouse event.
	DispatchMouse(ctx context.Context, ev Event) error
	// Activate performs the direct programmatic activation (element.click()).
	Activate(ctx context.Context, selector string) error
	// Sleep pauses, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}

// Dispatcher drives activation sequences against an Executor.
type Dispatcher struct {
	exec   Executor
	settle time.Duration
	log    *zap.Logger
	tier   atomic.Int32
}

// New returns a Dispatcher with the given settle delay (the pause between
// focusing the target and firing the event sequence).
func New(exec Executor, settle time.Duration, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		exec:   exec,
		settle: settle,
		log:    log.Named("dispatch"),
	}
}

// CurrentTier reports the interaction fidelity currently in use.
func (d *Dispatcher) CurrentTier() Tier {
	return Tier(d.tier.Load())
}

// Activate performs the full simulated interaction on the target. Success is
// observed externally through the host's own navigation or download behavior;
// the returned error exists only for context cancellation and logging. Every
// partial failure degrades rather than aborts: the direct activation at the
// end runs even when the synthetic event sequence could not.
func (d *Dispatcher) Activate(ctx context.Context, target resolve.Target) error {
	log := d.log.With(zap.String("xpath", target.XPath), zap.Stringer("context", target.Context))
	log.Info("Activating print target.", zap.String("text", target.Text))

	if err := d.exec.ScrollIntoView(ctx, target.XPath); err != nil {
		log.Debug("Scroll into view failed.", zap.Error(err))
	}
	if err := d.exec.Focus(ctx, target.XPath); err != nil {
		log.Debug("Focus failed.", zap.Error(err))
	}

	// Let the host's own handlers stabilize before firing.
	if err := d.exec.Sleep(ctx, d.settle); err != nil {
		return err
	}

	if err := d.fireSequence(ctx, target.XPath, log); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug("Synthetic event sequence incomplete.", zap.Error(err))
	}

	// Final guarantee: direct programmatic activation.
	if err := d.exec.Activate(ctx, target.XPath); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("Direct activation failed.", zap.Error(err))
	}
	return nil
}

func (d *Dispatcher) fireSequence(ctx context.Context, selector string, log *zap.Logger) error {
	center, err := d.exec.Center(ctx, selector)
	if err != nil {
		return err
	}

	if d.CurrentTier() == TierPointer {
		ev := Event{Type: PointerDown, X: center.X, Y: center.Y, ClickCount: 1}
		if err := d.exec.DispatchPointer(ctx, ev); err != nil {
			if !errors.Is(err, ErrPointerUnsupported) {
				return err
			}
			d.tier.Store(int32(TierMouse))
			log.Info("PointerEvent unavailable; degrading to mouse-only events.")
		}
	}

	for _, typ := range []EventType{MouseDown, MouseUp, Click} {
		ev := Event{Type: typ, X: center.X, Y: center.Y, ClickCount: 1}
		if err := d.exec.DispatchMouse(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
