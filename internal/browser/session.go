// internal/browser/session.go

// Package browser is the live adapter between the engines and a real Chrome
// instance. It attaches over the DevTools protocol (or launches a visible
// browser), installs the page bootstrap script, pumps mutation/hotkey/bulk
// notifications out of CDP bindings, and implements the page surfaces the
// reconcile, dispatch, and bulkselect packages are written against.
package browser

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/labelpilot/internal/config"
	"github.com/xkilldash9x/labelpilot/internal/dom"
	"github.com/xkilldash9x/labelpilot/internal/inject"
)

// Session owns one attached tab: the chromedp context, the binding pump, and
// the page-level operations built on top of them.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	log         *zap.Logger
	navTimeout  time.Duration

	// Raw channels receive binding callbacks from the CDP event listener;
	// the pump goroutine coalesces them onto the public channels and is the
	// only closer, so listener sends never race a close.
	rawMutated chan struct{}
	rawHotkey  chan struct{}
	rawBulk    chan struct{}

	notifications chan struct{}
	hotkeys       chan struct{}
	bulkRequests  chan struct{}

	closeOnce sync.Once
}

// New attaches to the browser described by cfg: over the DevTools websocket
// when RemoteURL is set, otherwise by launching a visible instance. The
// bootstrap script and CDP bindings are installed before New returns, so the
// current document is already observed.
func New(parent context.Context, cfg config.BrowserConfig, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.RemoteURL != "" {
		log.Info("Attaching to running browser.", zap.String("remote_url", cfg.RemoteURL))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, cfg.RemoteURL)
	} else {
		log.Info("Launching browser instance.")
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", false),
		)
		if cfg.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, opts...)
	}

	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:           ctx,
		cancel:        cancel,
		allocCancel:   allocCancel,
		log:           log.Named("browser"),
		navTimeout:    cfg.NavigationTimeout,
		rawMutated:    make(chan struct{}, 1),
		rawHotkey:     make(chan struct{}, 1),
		rawBulk:       make(chan struct{}, 1),
		notifications: make(chan struct{}, 1),
		hotkeys:       make(chan struct{}, 1),
		bulkRequests:  make(chan struct{}, 1),
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if call, ok := ev.(*runtime.EventBindingCalled); ok {
			s.routeBinding(string(call.Name))
		}
	})
	go s.pump()

	if err := chromedp.Run(ctx,
		runtime.AddBinding(mutatedBinding),
		runtime.AddBinding(hotkeyBinding),
		runtime.AddBinding(bulkBinding),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(bootstrapJS).Do(ctx)
			return err
		}),
		// Arm the document that is already loaded at attach time.
		chromedp.Evaluate(bootstrapJS, nil),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("session bootstrap failed: %w", err)
	}

	if cfg.RemoteURL == "" && cfg.StartURL != "" {
		if err := s.Navigate(parent, cfg.StartURL); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// routeBinding forwards one CDP binding callback onto its raw channel. Sends
// are non-blocking: a pending notification already says everything a second
// one would.
func (s *Session) routeBinding(name string) {
	var ch chan struct{}
	switch name {
	case mutatedBinding:
		ch = s.rawMutated
	case hotkeyBinding:
		ch = s.rawHotkey
	case bulkBinding:
		ch = s.rawBulk
	default:
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// pump forwards raw binding events to the public channels until the session
// context ends, then closes them so consumers observe the page going away.
func (s *Session) pump() {
	defer close(s.notifications)
	defer close(s.hotkeys)
	defer close(s.bulkRequests)
	forward := func(ch chan struct{}) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.rawMutated:
			forward(s.notifications)
		case <-s.rawHotkey:
			forward(s.hotkeys)
		case <-s.rawBulk:
			forward(s.bulkRequests)
		}
	}
}

// Notifications yields coalesced DOM-mutation signals. Closed when the
// session ends.
func (s *Session) Notifications() <-chan struct{} { return s.notifications }

// Hotkeys yields manual-trigger gestures (Ctrl+Shift+P). Closed when the
// session ends.
func (s *Session) Hotkeys() <-chan struct{} { return s.hotkeys }

// BulkRequests yields clicks on the injected bulk-selection button. Closed
// when the session ends.
func (s *Session) BulkRequests() <-chan struct{} { return s.bulkRequests }

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.allocCancel()
	})
}

// run executes chromedp actions against the session's tab while honoring the
// caller's context. A cancelled caller stops waiting immediately; the action
// itself still runs to completion inside the browser.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(s.ctx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// Navigate loads a URL, bounded by the configured navigation timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.navTimeout)
		defer cancel()
	}
	s.log.Info("Navigating.", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Location returns the tab's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("location read failed: %w", err)
	}
	return url, nil
}

// materializeJS mirrors every checkbox's live .checked property into its
// checked attribute so the state survives outerHTML serialization.
const materializeJS = `(() => {
	for (const el of document.querySelectorAll('input[type=checkbox]')) {
		if (el.checked) { el.setAttribute('checked', 'checked'); }
		else { el.removeAttribute('checked'); }
	}
	return true;
})()`

// Snapshot serializes the current document and parses it into an offline DOM
// snapshot. Checkbox state is materialized into attributes first.
func (s *Session) Snapshot(ctx context.Context) (*dom.Snapshot, error) {
	var markup string
	if err := s.run(ctx,
		chromedp.Evaluate(materializeJS, nil),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}
	return dom.ParseString(markup)
}

// InsertAdjacentHTML inserts markup relative to the first element matching
// the CSS selector, through the page's own insertAdjacentHTML.
func (s *Session) InsertAdjacentHTML(ctx context.Context, selector, position, markup string) error {
	script := fmt.Sprintf(`(() => {
		const anchor = document.querySelector(%s);
		if (!anchor) { return false; }
		anchor.insertAdjacentHTML(%s, %s);
		return true;
	})()`, strconv.Quote(selector), strconv.Quote(position), strconv.Quote(markup))

	var inserted bool
	if err := s.run(ctx, chromedp.Evaluate(script, &inserted)); err != nil {
		return fmt.Errorf("insertAdjacentHTML evaluation failed: %w", err)
	}
	if !inserted {
		return fmt.Errorf("injection anchor %q not found", selector)
	}
	return nil
}

// Click simulates a direct interaction on the element addressed by xpath.
func (s *Session) Click(ctx context.Context, xpath string) error {
	return s.run(ctx, chromedp.Click(xpath, chromedp.BySearch))
}

// ForceChecked sets a checkbox's state outright and synthesizes the input and
// change events the host's listeners key on.
func (s *Session) ForceChecked(ctx context.Context, xpath string, checked bool) error {
	script := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) { return false; }
		el.checked = %t;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, xpathLookupJS(xpath), checked)

	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("checkbox force failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("checkbox %q not found", xpath)
	}
	return nil
}

// SetControlBusy flips the injected bulk-selection button between its idle
// and in-progress presentation.
func (s *Session) SetControlBusy(ctx context.Context, busy bool) error {
	script := fmt.Sprintf(`(() => {
		const btn = document.getElementById(%s);
		if (!btn) { return false; }
		if (%t) {
			btn.dataset.lpIdleLabel = btn.textContent;
			btn.textContent = 'Selecting...';
			btn.disabled = true;
		} else {
			if (btn.dataset.lpIdleLabel) { btn.textContent = btn.dataset.lpIdleLabel; }
			btn.disabled = false;
		}
		return true;
	})()`, strconv.Quote(inject.BulkSelectID), busy)

	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("helper control update failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("helper control not present")
	}
	return nil
}

// Sleep pauses against the session, respecting the caller's context.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	return s.run(ctx, chromedp.Sleep(d))
}

// xpathLookupJS builds a JS expression resolving an XPath to a single element
// (or null).
func xpathLookupJS(xpath string) string {
	return fmt.Sprintf(
		`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`,
		strconv.Quote(xpath))
}
