package state

import "github.com/arclabs/arc-runtime/internal/telem"

// persistentStore holds the per-node key→value, key→series, and key→string
// tables that survive flush. Slot identifiers are local to the owning node:
// node A's slot 1 and node B's slot 1 never alias.
type persistentStore struct {
	primitives map[string]map[uint32]telem.SampleValue
	series     map[string]map[uint32]*telem.Series
	strings    map[string]map[uint32]string
}

func newPersistentStore() *persistentStore {
	return &persistentStore{
		primitives: make(map[string]map[uint32]telem.SampleValue),
		series:     make(map[string]map[uint32]*telem.Series),
		strings:    make(map[string]map[uint32]string),
	}
}

// LoadPrimitive returns the value stored at (node, slot), or init if the
// node has never written that slot.
func (p *persistentStore) LoadPrimitive(node string, slot uint32, init telem.SampleValue) telem.SampleValue {
	if m, ok := p.primitives[node]; ok {
		if v, ok := m[slot]; ok {
			return v
		}
	}
	return init
}

// StorePrimitive writes a scalar value at (node, slot).
func (p *persistentStore) StorePrimitive(node string, slot uint32, v telem.SampleValue) {
	m, ok := p.primitives[node]
	if !ok {
		m = make(map[uint32]telem.SampleValue)
		p.primitives[node] = m
	}
	m[slot] = v
}

// LoadSeries returns a deep copy of the series stored at (node, slot), or
// init (also deep-copied) if the node has never written that slot.
func (p *persistentStore) LoadSeries(node string, slot uint32, init *telem.Series) *telem.Series {
	if m, ok := p.series[node]; ok {
		if s, ok := m[slot]; ok {
			return s.DeepCopy()
		}
	}
	if init == nil {
		return nil
	}
	return init.DeepCopy()
}

// StoreSeries writes a deep copy of s at (node, slot), so later mutation of
// the caller's series (e.g. reclaiming a transient arena) cannot corrupt
// the persisted value.
func (p *persistentStore) StoreSeries(node string, slot uint32, s *telem.Series) {
	m, ok := p.series[node]
	if !ok {
		m = make(map[uint32]*telem.Series)
		p.series[node] = m
	}
	m[slot] = s.DeepCopy()
}

// LoadString returns the string stored at (node, slot), or init if unset.
func (p *persistentStore) LoadString(node string, slot uint32, init string) string {
	if m, ok := p.strings[node]; ok {
		if s, ok := m[slot]; ok {
			return s
		}
	}
	return init
}

// StoreString writes a string value at (node, slot).
func (p *persistentStore) StoreString(node string, slot uint32, v string) {
	m, ok := p.strings[node]
	if !ok {
		m = make(map[uint32]string)
		p.strings[node] = m
	}
	m[slot] = v
}
