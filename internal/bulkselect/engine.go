// internal/bulkselect/engine.go

// Package bulkselect drives the import table's selection checkboxes toward a
// fully-checked state for one country. The host's checkbox handlers are
// asynchronous and debounced, so a single clicking pass is unreliable; the
// engine trades latency for reliability with paced clicks, settle delays,
// convergence measurement, and a bounded retry budget.
package bulkselect

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/labelpilot/internal/dom"
)

// ErrBusy is returned when a selection task is already in flight. Tasks are
// user-initiated and must never run concurrently.
var ErrBusy = errors.New("bulk selection already in progress")

// Surface is the page access the engine needs. The live implementation clicks
// and forces checkboxes through the browser session; tests inject a fake that
// simulates the host's flaky debounced handlers.
type Surface interface {
	// Snapshot returns the current DOM, with checkbox state materialized.
	Snapshot(ctx context.Context) (*dom.Snapshot, error)
	// Click simulates a direct interaction on the element.
	Click(ctx context.Context, xpath string) error
	// ForceChecked sets the checkbox state outright and synthesizes the
	// input/change notifications the host's listeners expect.
	ForceChecked(ctx context.Context, xpath string, checked bool) error
	// SetControlBusy toggles the invoking helper button's disabled/label state.
	SetControlBusy(ctx context.Context, busy bool) error
	// Sleep pauses, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}

// Config carries the engine's timing and retry knobs. The defaults preserve
// the empirically tuned values the host's debounce behavior was measured
// against.
type Config struct {
	InterClickDelay time.Duration
	SettleDelay     time.Duration
	ClearTimeout    time.Duration
	PollInterval    time.Duration
	MaxRetries      int
}

// DefaultConfig returns the tuned production values.
func DefaultConfig() Config {
	return Config{
		InterClickDelay: 250 * time.Millisecond,
		SettleDelay:     600 * time.Millisecond,
		ClearTimeout:    2 * time.Second,
		PollInterval:    50 * time.Millisecond,
		MaxRetries:      2,
	}
}

// Report is the terminal outcome of one selection task. Every targeted
// checkbox ends either checked or accounted for here as not converged.
type Report struct {
	TaskID    uuid.UUID
	Country   string
	Targeted  int
	Checked   int
	Attempts  int
	Converged bool
}

// Engine runs selection tasks one at a time.
type Engine struct {
	surface Surface
	cfg     Config
	log     *zap.Logger
	busy    atomic.Bool
}

// New returns an Engine over the given surface.
func New(surface Surface, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{surface: surface, cfg: cfg, log: log.Named("bulkselect")}
}

// Run executes one "select all rows for country" task: deselect everything,
// wait for the host to clear, then check the matching rows sequentially with
// inter-click pacing, verifying convergence and retrying up to the budget.
// The invoking control is restored whatever the outcome.
func (e *Engine) Run(ctx context.Context, country string) (Report, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Report{}, ErrBusy
	}
	defer e.busy.Store(false)

	task := Report{TaskID: uuid.New(), Country: country}
	log := e.log.With(zap.String("task_id", task.TaskID.String()), zap.String("country", country))
	log.Info("Starting bulk selection task.")

	if err := e.surface.SetControlBusy(ctx, true); err != nil {
		log.Debug("Could not mark helper control busy.", zap.Error(err))
	}
	// The control is restored on every exit path, converged or not.
	defer func() {
		if err := e.surface.SetControlBusy(context.WithoutCancel(ctx), false); err != nil {
			log.Warn("Could not restore helper control.", zap.Error(err))
		}
	}()

	if err := e.deselectAll(ctx, log); err != nil {
		return task, err
	}
	if err := e.waitForClear(ctx, log); err != nil {
		return task, err
	}

	limiter := rate.NewLimiter(rate.Every(e.cfg.InterClickDelay), 1)
	maxAttempts := 1 + e.cfg.MaxRetries
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		task.Attempts = attempt
		targeted, err := e.selectPass(ctx, country, limiter, log)
		if err != nil {
			return task, err
		}
		task.Targeted = targeted
		if targeted == 0 {
			task.Converged = true
			log.Info("No rows match; nothing to select.")
			return task, nil
		}

		if err := e.surface.Sleep(ctx, e.cfg.SettleDelay); err != nil {
			return task, err
		}
		checked, err := e.countChecked(ctx, country)
		if err != nil {
			return task, err
		}
		task.Checked = checked
		if checked >= targeted {
			task.Converged = true
			log.Info("Selection converged.", zap.Int("checked", checked), zap.Int("attempts", attempt))
			return task, nil
		}
		log.Warn("Selection under target.",
			zap.Int("checked", checked), zap.Int("targeted", targeted), zap.Int("attempt", attempt))
	}

	log.Warn("Selection did not converge within the retry budget.",
		zap.Int("checked", task.Checked), zap.Int("targeted", task.Targeted))
	return task, nil
}

// deselectAll clears the current selection: through the host's own control
// when one is rendered, otherwise by unchecking every known box and the
// master toggle by hand.
func (e *Engine) deselectAll(ctx context.Context, log *zap.Logger) error {
	snap, err := e.surface.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("deselect snapshot failed: %w", err)
	}

	if control, ok := deselectAllControl(snap); ok {
		log.Debug("Using host deselect-all control.")
		if err := e.surface.Click(ctx, control.XPath()); err == nil {
			return nil
		}
		log.Debug("Host deselect-all click failed; falling back to manual unchecking.")
	}

	for _, cb := range allSelectionBoxes(snap) {
		if !isChecked(cb) {
			continue
		}
		if err := e.surface.ForceChecked(ctx, cb.XPath(), false); err != nil {
			return fmt.Errorf("manual deselect failed: %w", err)
		}
	}
	if toggle, ok := masterToggle(snap); ok && isChecked(toggle) {
		if err := e.surface.ForceChecked(ctx, toggle.XPath(), false); err != nil {
			return fmt.Errorf("master toggle deselect failed: %w", err)
		}
	}
	return nil
}

// waitForClear polls until no selection checkbox remains checked, bounded by
// the clear timeout. Hitting the timeout is not an error: the selection pass
// proceeds against whatever state the host settled into.
func (e *Engine) waitForClear(ctx context.Context, log *zap.Logger) error {
	deadline := e.cfg.ClearTimeout
	for elapsed := time.Duration(0); ; elapsed += e.cfg.PollInterval {
		snap, err := e.surface.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("clear poll snapshot failed: %w", err)
		}
		remaining := 0
		for _, cb := range allSelectionBoxes(snap) {
			if isChecked(cb) {
				remaining++
			}
		}
		if remaining == 0 {
			return nil
		}
		if elapsed >= deadline {
			log.Warn("Deselect did not fully clear before timeout.", zap.Int("remaining", remaining))
			return nil
		}
		if err := e.surface.Sleep(ctx, e.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// selectPass checks every unchecked target row sequentially with inter-click
// pacing. Returns the total number of targeted rows.
func (e *Engine) selectPass(ctx context.Context, country string, limiter *rate.Limiter, log *zap.Logger) (int, error) {
	snap, err := e.surface.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("selection snapshot failed: %w", err)
	}
	targets := targetRows(snap, country)

	for _, target := range targets {
		if target.Checked {
			continue
		}
		// Human-ish pacing so the host's debounce logic keeps up.
		if err := limiter.Wait(ctx); err != nil {
			return len(targets), err
		}
		if err := e.surface.Click(ctx, target.XPath); err != nil {
			log.Debug("Checkbox click failed; forcing state.", zap.String("xpath", target.XPath), zap.Error(err))
		}
		took, err := e.checkboxChecked(ctx, target.XPath)
		if err != nil {
			return len(targets), err
		}
		if !took {
			if err := e.surface.ForceChecked(ctx, target.XPath, true); err != nil {
				log.Warn("Could not force checkbox state.", zap.String("xpath", target.XPath), zap.Error(err))
			}
		}
	}
	return len(targets), nil
}

// checkboxChecked re-reads one checkbox's state from a fresh snapshot.
func (e *Engine) checkboxChecked(ctx context.Context, xpath string) (bool, error) {
	snap, err := e.surface.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	for _, cb := range allSelectionBoxes(snap) {
		if cb.XPath() == xpath {
			return isChecked(cb), nil
		}
	}
	// The host re-rendered the row away mid-pass; treat as not taken.
	return false, nil
}

// countChecked counts the targeted checkboxes that ended up checked.
func (e *Engine) countChecked(ctx context.Context, country string) (int, error) {
	snap, err := e.surface.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	checked := 0
	for _, target := range targetRows(snap, country) {
		if target.Checked {
			checked++
		}
	}
	return checked, nil
}
