// internal/browser/storage.go
package browser

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chromedp/chromedp"
)

// SessionStorage exposes the page's sessionStorage as a string store. The
// cooldown ledger lives here so records survive the host's re-renders within
// a browsing session and die with it.
type SessionStorage struct {
	s *Session
}

// Storage returns the page-backed string store.
func (s *Session) Storage() *SessionStorage {
	return &SessionStorage{s: s}
}

type storageReadResult struct {
	Ok    bool   `json:"ok"`
	Value string `json:"value"`
}

// Get reads a key, reporting whether it exists.
func (st *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	script := fmt.Sprintf(`(() => {
		const v = window.sessionStorage.getItem(%s);
		return { ok: v !== null, value: v === null ? '' : v };
	})()`, strconv.Quote(key))

	var res storageReadResult
	if err := st.s.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return "", false, fmt.Errorf("sessionStorage read failed: %w", err)
	}
	return res.Value, res.Ok, nil
}

// Set writes a key, overwriting any prior value.
func (st *SessionStorage) Set(ctx context.Context, key, value string) error {
	script := fmt.Sprintf(`(() => {
		window.sessionStorage.setItem(%s, %s);
		return true;
	})()`, strconv.Quote(key), strconv.Quote(value))

	var ok bool
	if err := st.s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("sessionStorage write failed: %w", err)
	}
	return nil
}
