// Package retrieval provides an in-memory implementation of the runtime's
// channel-retrieval callback, for tests and examples that have no real
// cluster control plane to ask for channel digests.
package retrieval

import (
	"fmt"
	"sync"

	"github.com/arclabs/arc-runtime/internal/telem"
)

// shardCount is a small prime modulus, following the same "lock only the
// shards a call touches" discipline as a sharded memory backend, here
// applied to channel-key digest slots instead of byte ranges.
const shardCount = 31

// Digest is what the channel-retrieval callback reports for one channel:
// its index in the cluster and its element type.
type Digest struct {
	Key      telem.ChannelKey
	DataType telem.DataType
}

// MockRegistry is an in-memory, thread-safe channel digest table. Register
// digests up front (or let Retrieve synthesize a not-found error), then
// pass Retrieve as the runtime's channel-retrieval callback.
type MockRegistry struct {
	shards [shardCount]sync.RWMutex
	slots  [shardCount]map[telem.ChannelKey]Digest
}

// NewMockRegistry returns an empty registry.
func NewMockRegistry() *MockRegistry {
	r := &MockRegistry{}
	for i := range r.slots {
		r.slots[i] = make(map[telem.ChannelKey]Digest)
	}
	return r
}

func shardIndex(key telem.ChannelKey) int {
	return int(key) % shardCount
}

// Register records a channel's digest, overwriting any prior entry for the
// same key.
func (r *MockRegistry) Register(key telem.ChannelKey, dt telem.DataType) {
	i := shardIndex(key)
	r.shards[i].Lock()
	defer r.shards[i].Unlock()
	r.slots[i][key] = Digest{Key: key, DataType: dt}
}

// Retrieve implements the runtime's channel-retrieval callback shape:
// given a set of keys, return their digests or an error. An unregistered
// key is reported via an error rather than a partial result, matching the
// callback contract's "digests, error" pairing.
func (r *MockRegistry) Retrieve(keys []telem.ChannelKey) ([]Digest, error) {
	digests := make([]Digest, 0, len(keys))
	for _, key := range keys {
		i := shardIndex(key)
		r.shards[i].RLock()
		d, ok := r.slots[i][key]
		r.shards[i].RUnlock()
		if !ok {
			return nil, fmt.Errorf("retrieval: channel %d is not registered", key)
		}
		digests = append(digests, d)
	}
	return digests, nil
}

// Len reports how many channels are registered, across all shards.
func (r *MockRegistry) Len() int {
	n := 0
	for i := range r.slots {
		r.shards[i].RLock()
		n += len(r.slots[i])
		r.shards[i].RUnlock()
	}
	return n
}
