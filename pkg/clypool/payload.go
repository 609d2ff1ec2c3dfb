// Package clypool implements the node and payload allocators (C2): a
// fixed-size tree-node slab pool sized per tree by k, and a payload
// pool of uniform fixed-capacity buffers reserved at startup.
package clypool

import (
	"sync"

	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/config"
)

// PayloadPool hands out fixed-capacity, zero-initialized buffers
// keyed by a monotonically assigned nid. It is the in-memory
// implementation consumed by pkg/treeiface's in-memory tree.
type PayloadPool struct {
	mu       sync.Mutex
	capacity int
	maxSlots int
	slots    map[uint64][]byte
	numBytes map[uint64]uint64
}

// NewPayloadPool reserves a pool of maxSlots buffers of the given
// capacity. The teacher's config carries the prototype defaults
// (config.PayloadCapacity, config.PayloadPoolSlots); callers may
// override for tests.
func NewPayloadPool(capacity, maxSlots int) *PayloadPool {
	return &PayloadPool{
		capacity: capacity,
		maxSlots: maxSlots,
		slots:    make(map[uint64][]byte),
		numBytes: make(map[uint64]uint64),
	}
}

// NewDefaultPayloadPool reserves a pool sized per the build-time
// defaults (4 MiB x 1,500 slots).
func NewDefaultPayloadPool() *PayloadPool {
	return NewPayloadPool(config.PayloadCapacity, config.PayloadPoolSlots)
}

// Capacity returns the fixed capacity of every slot in the pool.
func (p *PayloadPool) Capacity() int {
	return p.capacity
}

// Alloc reserves a new zero-initialized buffer under nid. Returns
// AllocFailed if nid is already in use or the pool is exhausted.
func (p *PayloadPool) Alloc(nid uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.slots[nid]; exists {
		return clyerr.New(clyerr.AllocFailed, "payload slot already allocated")
	}
	if len(p.slots) >= p.maxSlots {
		return clyerr.New(clyerr.AllocFailed, "payload pool exhausted")
	}
	p.slots[nid] = make([]byte, p.capacity)
	p.numBytes[nid] = uint64(p.capacity)
	return nil
}

// Free releases the buffer backing nid, if any.
func (p *PayloadPool) Free(nid uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.slots, nid)
	delete(p.numBytes, nid)
}

// Read performs a bounds-checked copy from the nid's buffer into dst.
// off+length must lie within the payload's num_bytes, per spec §4.1.
func (p *PayloadPool) Read(nid uint64, off, length uint64, dst []byte) error {
	p.mu.Lock()
	buf, ok := p.slots[nid]
	numBytes := p.numBytes[nid]
	p.mu.Unlock()
	if !ok {
		return clyerr.New(clyerr.NoSuchNode, "no such payload")
	}
	if off+length > numBytes {
		return clyerr.ErrOutOfRange
	}
	n := copy(dst, buf[off:off+length])
	if uint64(n) != length {
		return clyerr.New(clyerr.Generic, "short read")
	}
	return nil
}

// Write performs a bounds-checked copy from src into the nid's buffer.
// off+length must lie within the payload's num_bytes, per spec §4.1.
func (p *PayloadPool) Write(nid uint64, off, length uint64, src []byte) error {
	p.mu.Lock()
	buf, ok := p.slots[nid]
	numBytes := p.numBytes[nid]
	p.mu.Unlock()
	if !ok {
		return clyerr.New(clyerr.NoSuchNode, "no such payload")
	}
	if off+length > numBytes {
		return clyerr.ErrOutOfRange
	}
	n := copy(buf[off:off+length], src[:length])
	if uint64(n) != length {
		return clyerr.New(clyerr.Generic, "short write")
	}
	return nil
}
