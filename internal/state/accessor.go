package state

import "github.com/arclabs/arc-runtime/internal/telem"

// PersistentAccessor scopes persistent-store reads/writes to whichever
// node State.currentNode names at call time, matching the bindings'
// requirement that slot identifiers are local to the currently-executing
// node.
type PersistentAccessor struct {
	s *State
}

// LoadPrimitive returns the value stored at (current node, slot), or init
// if never written.
func (p *PersistentAccessor) LoadPrimitive(slot uint32, init telem.SampleValue) telem.SampleValue {
	node := p.s.CurrentNodeKey()
	return p.s.persistent.LoadPrimitive(node, slot, init)
}

// StorePrimitive writes v at (current node, slot).
func (p *PersistentAccessor) StorePrimitive(slot uint32, v telem.SampleValue) {
	node := p.s.CurrentNodeKey()
	p.s.persistent.StorePrimitive(node, slot, v)
}

// LoadSeries returns a deep copy of the series at (current node, slot), or
// a deep copy of init if never written.
func (p *PersistentAccessor) LoadSeries(slot uint32, init *telem.Series) *telem.Series {
	node := p.s.CurrentNodeKey()
	return p.s.persistent.LoadSeries(node, slot, init)
}

// StoreSeries writes a deep copy of series at (current node, slot).
func (p *PersistentAccessor) StoreSeries(slot uint32, series *telem.Series) {
	node := p.s.CurrentNodeKey()
	p.s.persistent.StoreSeries(node, slot, series)
}

// LoadString returns the string at (current node, slot), or init if never
// written.
func (p *PersistentAccessor) LoadString(slot uint32, init string) string {
	node := p.s.CurrentNodeKey()
	return p.s.persistent.LoadString(node, slot, init)
}

// StoreString writes v at (current node, slot).
func (p *PersistentAccessor) StoreString(slot uint32, v string) {
	node := p.s.CurrentNodeKey()
	p.s.persistent.StoreString(node, slot, v)
}
