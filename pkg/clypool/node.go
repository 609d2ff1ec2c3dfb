package clypool

import (
	"sync"
	"sync/atomic"

	"github.com/clydefs/clydefs/pkg/clyerr"
)

// NodeSlab is a single tree node's storage: up to 2k+1 keys and an
// equal number of child references (payload nid for leaves, child
// nid for internal nodes), plus the write lock and atomic fields
// pkg/blink's latch-free descent reads without taking Mu.
//
// NumKeys and Sibling are accessed with acquire/release semantics by
// readers and the single writer holding Mu; individual Keys/Children
// slots are likewise atomic so readers never observe a torn write
// during a split or shift-left removal.
type NodeSlab struct {
	Nid      uint64
	IsLeaf   bool
	NumKeys  atomic.Uint32
	Sibling  atomic.Uint64 // 0 means none
	Keys     []atomic.Uint64
	Children []atomic.Uint64
	Mu       sync.Mutex
}

// NodePool is a per-tree slab pool sized by k: every node it hands
// out has capacity for 2k+1 keys/children, matching the tree's split
// threshold.
type NodePool struct {
	mu    sync.Mutex
	k     uint8
	slabs map[uint64]*NodeSlab
}

// NewNodePool creates a pool for a tree with split threshold k.
func NewNodePool(k uint8) *NodePool {
	return &NodePool{k: k, slabs: make(map[uint64]*NodeSlab)}
}

// width is the fixed key/child slot count for every node in this pool.
func (p *NodePool) width() int {
	return 2*int(p.k) + 1
}

// Alloc reserves a zeroed node slab for nid.
func (p *NodePool) Alloc(nid uint64, isLeaf bool) (*NodeSlab, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.slabs[nid]; exists {
		return nil, clyerr.New(clyerr.AllocFailed, "node slab already allocated")
	}
	slab := &NodeSlab{
		Nid:      nid,
		IsLeaf:   isLeaf,
		Keys:     make([]atomic.Uint64, p.width()),
		Children: make([]atomic.Uint64, p.width()),
	}
	p.slabs[nid] = slab
	return slab, nil
}

// Get returns the slab for nid, if allocated.
func (p *NodePool) Get(nid uint64) (*NodeSlab, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slabs[nid]
	return s, ok
}

// Free releases the slab for nid.
func (p *NodePool) Free(nid uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.slabs, nid)
}

// Len returns the number of live slabs, used by tests.
func (p *NodePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slabs)
}
