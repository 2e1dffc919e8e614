// internal/resolve/payload_fuzz_test.go
//go:build go1.18
// +build go1.18

package resolve

import (
	"testing"

	fuzzheaders "github.com/AdaLogics/go-fuzz-headers"
)

// The payload guard must treat arbitrary attribute bytes as "nothing selected"
// rather than panicking; a crash here would take the host page down with it.
func FuzzParseSelectedIDs(f *testing.F) {
	f.Add([]byte(`{"ids":[42]}`))
	f.Add([]byte(`{&quot;ids&quot;:[7]}`))
	f.Add([]byte(`{{{not json`))

	f.Fuzz(func(t *testing.T, data []byte) {
		fc := fuzzheaders.NewConsumer(data)
		raw, err := fc.GetString()
		if err != nil {
			return
		}
		n := ParseSelectedIDs(raw)
		if n < 0 {
			t.Fatalf("negative id count %d for %q", n, raw)
		}
	})
}
