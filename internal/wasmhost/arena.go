package wasmhost

import "github.com/arclabs/arc-runtime/internal/telem"

// Arena is the handle-addressed object table backing the WASM bindings'
// transient allocations. Index 0 is reserved as the "invalid handle"
// sentinel for both tables, so a freshly allocated object always receives
// a non-zero handle.
//
// Every primitive element type shares one series table rather than one
// table per type: a *telem.Series already self-describes its DataType, so
// splitting storage by type buys nothing here and only multiplies the
// bookkeeping. The handle space is still append-only within a tick and
// resets to index 1 on flush, preserving the no-reuse-within-a-tick
// invariant the bindings depend on.
//
// The arena is exclusive to the tick thread; no locking is needed.
type Arena struct {
	series  []*telem.Series
	strings []string
}

// NewArena returns an arena with both tables primed past the reserved
// zero handle.
func NewArena() *Arena {
	return &Arena{
		series:  make([]*telem.Series, 1),
		strings: make([]string, 1),
	}
}

// PutSeries stores s and returns its new handle.
func (a *Arena) PutSeries(s *telem.Series) uint32 {
	a.series = append(a.series, s)
	return uint32(len(a.series) - 1)
}

// GetSeries resolves h to a series. It returns (nil, false) for handle 0
// or any handle not yet reissued since the most recent Reset.
func (a *Arena) GetSeries(h uint32) (*telem.Series, bool) {
	if h == 0 || int(h) >= len(a.series) {
		return nil, false
	}
	return a.series[h], true
}

// PutString stores s and returns its new handle.
func (a *Arena) PutString(s string) uint32 {
	a.strings = append(a.strings, s)
	return uint32(len(a.strings) - 1)
}

// GetString resolves h to a string. It returns ("", false) for handle 0 or
// any handle not yet reissued since the most recent Reset.
func (a *Arena) GetString(h uint32) (string, bool) {
	if h == 0 || int(h) >= len(a.strings) {
		return "", false
	}
	return a.strings[h], true
}

// Reset reclaims every transient handle issued since the last Reset. Every
// such handle is now invalid, including one whose data was stored into the
// persistent store (see state.PersistentAccessor), which keeps its own
// copy; the next PutSeries/PutString call reissues handle 1.
func (a *Arena) Reset() {
	a.series = a.series[:1]
	a.strings = a.strings[:1]
}
