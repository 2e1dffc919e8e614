// internal/ledger/ledger.go

// Package ledger suppresses re-triggering of automatic actions across the
// host application's rapid re-renders. Last-fired timestamps live in an
// injected string store; in production that store is the page's
// sessionStorage, so records survive mutation bursts within a browsing
// session and die with it.
package ledger

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Store is the minimal get/set contract the ledger needs. The live
// implementation is backed by the page's sessionStorage; tests inject an
// in-memory fake.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Ledger records when each logical action last fired and answers whether a
// key is still inside its cooldown window. Only automatically-triggered
// dispatches consult it; manual triggers bypass it entirely.
type Ledger struct {
	store  Store
	window time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock injects a time source, used by tests to step through windows.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns a Ledger over the given store and cooldown window.
func New(store Store, window time.Duration, log *zap.Logger, opts ...Option) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{
		store:  store,
		window: window,
		now:    time.Now,
		log:    log.Named("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecentlyFired reports whether the key fired inside the cooldown window.
// A missing or unreadable record counts as not fired: when in doubt the
// pipeline is allowed to try, because dispatch itself is idempotent from the
// host's point of view.
func (l *Ledger) RecentlyFired(ctx context.Context, key string) bool {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.log.Warn("Cooldown read failed; treating as not fired.", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		l.log.Warn("Corrupt cooldown record; treating as not fired.", zap.String("key", key), zap.String("value", raw))
		return false
	}
	elapsed := l.now().Sub(time.UnixMilli(millis))
	return elapsed >= 0 && elapsed < l.window
}

// MarkFired records the current time for the key, overwriting any prior record.
func (l *Ledger) MarkFired(ctx context.Context, key string) {
	value := strconv.FormatInt(l.now().UnixMilli(), 10)
	if err := l.store.Set(ctx, key, value); err != nil {
		l.log.Warn("Cooldown write failed.", zap.String("key", key), zap.Error(err))
	}
}
