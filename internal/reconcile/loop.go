// internal/reconcile/loop.go

// Package reconcile runs the self-healing loop: every DOM mutation the host
// produces triggers a fresh resolve of the current page against the desired
// state (auto-print pipeline armed, helper UI present). The loop owns no
// cached view of the page; each tick recomputes everything from the current
// snapshot, which makes it safe to run zero, one, or many times per real
// host re-render.
package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/inject"
	"github.com/xkilldash9x/labelpilot/internal/ledger"
	"github.com/xkilldash9x/labelpilot/internal/pagectx"
	"github.com/xkilldash9x/labelpilot/internal/resolve"
)

// Page is the live page surface a tick reads and mutates.
type Page interface {
	// Location returns the current navigation location.
	Location(ctx context.Context) (string, error)
	// Snapshot returns the current DOM.
	Snapshot(ctx context.Context) (*dom.Snapshot, error)

	inject.Mutator
}

// Notifier yields an infinite, non-restartable stream of "DOM changed"
// notifications. The channel closes only when the underlying page goes away.
type Notifier interface {
	Notifications() <-chan struct{}
}

// Activator schedules the simulated interaction on a resolved target.
type Activator interface {
	Activate(ctx context.Context, target resolve.Target) error
}

// Loop wires the pipeline together.
type Loop struct {
	page      Page
	notifier  Notifier
	resolver  *resolve.Resolver
	activator Activator
	ledger    *ledger.Ledger
	injectors []inject.Injector
	log       *zap.Logger

	// tickMu serializes reconciliation passes. Automatic ticks and manual
	// triggers arrive on different goroutines; two overlapping passes could
	// both observe a missing helper control and insert it twice.
	tickMu     sync.Mutex
	dispatches sync.WaitGroup
}

// New assembles a Loop.
func New(
	page Page,
	notifier Notifier,
	resolver *resolve.Resolver,
	activator Activator,
	led *ledger.Ledger,
	injectors []inject.Injector,
	log *zap.Logger,
) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		page:      page,
		notifier:  notifier,
		resolver:  resolver,
		activator: activator,
		ledger:    led,
		injectors: injectors,
		log:       log.Named("reconcile"),
	}
}

// Run performs an initial tick and then reconciles on every notification
// until the context ends or the notification stream closes. Scheduled
// dispatches run off-loop; Run waits for any still in flight before
// returning.
func (l *Loop) Run(ctx context.Context) error {
	// Taking tickMu first means no pass is mid-flight when the wait starts,
	// so every dispatches.Add happened before it.
	defer func() {
		l.tickMu.Lock()
		defer l.tickMu.Unlock()
		l.dispatches.Wait()
	}()

	l.Tick(ctx)
	notifications := l.notifier.Notifications()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-notifications:
			if !ok {
				l.log.Info("Notification stream closed; page is gone.")
				return nil
			}
			l.Tick(ctx)
		}
	}
}

// Tick runs one automatic reconciliation pass. Every failure inside a pass is
// a logged no-op; the next mutation retries from scratch.
func (l *Loop) Tick(ctx context.Context) {
	l.tick(ctx, false)
}

// TriggerManual runs the resolve-and-dispatch path on behalf of a direct user
// gesture, bypassing the cooldown ledger.
func (l *Loop) TriggerManual(ctx context.Context) {
	l.log.Info("Manual trigger invoked.")
	l.tick(ctx, true)
}

func (l *Loop) tick(ctx context.Context, manual bool) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	location, err := l.page.Location(ctx)
	if err != nil {
		l.log.Debug("Could not read location; skipping tick.", zap.Error(err))
		return
	}
	pc := pagectx.FromURL(location)

	snap, err := l.page.Snapshot(ctx)
	if err != nil {
		l.log.Debug("Could not snapshot page; skipping tick.", zap.Error(err))
		return
	}

	for _, inj := range l.injectors {
		if err := inj.Apply(ctx, pc, snap, l.page); err != nil {
			l.log.Warn("Injection routine failed; will retry next tick.",
				zap.String("injector", inj.Name()), zap.Error(err))
		}
	}

	target, ok := l.resolver.FindBestTarget(snap, pc)
	if !ok {
		return
	}
	if !resolve.Dispatchable(target.Element) {
		l.log.Debug("Target present but not dispatchable.", zap.String("text", target.Text))
		return
	}

	if !manual {
		key := pc.CooldownKey()
		if l.ledger.RecentlyFired(ctx, key) {
			l.log.Debug("Cooldown active; suppressing automatic dispatch.", zap.String("key", key))
			return
		}
		// Marked at resolution time: overlapping scheduled dispatches of an
		// already-cooled-down action are acceptable, re-marking is not.
		l.ledger.MarkFired(ctx, key)
	}

	l.dispatches.Add(1)
	go func() {
		defer l.dispatches.Done()
		if err := l.activator.Activate(ctx, target); err != nil {
			l.log.Debug("Dispatch ended early.", zap.Error(err))
		}
	}()
}
