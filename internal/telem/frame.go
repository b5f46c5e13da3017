package telem

import "fmt"

// Frame is a batch of series keyed by channel: parallel Keys/Series slices
// of equal length. It pretends to be a set but keys need not be unique per
// use; a repeated key is legal and Get returns its first occurrence. It is
// the unit of data carried across ingest/egress queues and between
// scheduler passes.
type Frame struct {
	Keys   []ChannelKey
	Series []*Series
}

// NewFrame returns an empty frame ready for appends.
func NewFrame() *Frame {
	return &Frame{}
}

// NewFrameWithCapacity preallocates room for n channel/series pairs.
func NewFrameWithCapacity(n int) *Frame {
	return &Frame{
		Keys:   make([]ChannelKey, 0, n),
		Series: make([]*Series, 0, n),
	}
}

// Append adds a (channel, series) pair. Duplicate keys are legal.
func (f *Frame) Append(key ChannelKey, s *Series) {
	f.Keys = append(f.Keys, key)
	f.Series = append(f.Series, s)
}

// Len returns the number of channel/series pairs in the frame.
func (f *Frame) Len() int { return len(f.Keys) }

// Get returns the series for key, and whether it was present.
func (f *Frame) Get(key ChannelKey) (*Series, bool) {
	for i, k := range f.Keys {
		if k == key {
			return f.Series[i], true
		}
	}
	return nil, false
}

// Validate checks the frame's one structural invariant: Keys and Series are
// the same length. Duplicate keys are legal.
func (f *Frame) Validate() error {
	if len(f.Keys) != len(f.Series) {
		return fmt.Errorf("telem: frame key/series length mismatch: %d keys, %d series", len(f.Keys), len(f.Series))
	}
	return nil
}

// DeepCopy returns a frame with independently owned series data.
func (f *Frame) DeepCopy() *Frame {
	cp := NewFrameWithCapacity(len(f.Keys))
	for i, k := range f.Keys {
		cp.Keys = append(cp.Keys, k)
		cp.Series = append(cp.Series, f.Series[i].DeepCopy())
	}
	return cp
}
