// Package blink implements the B-link tree engine (C3): latch-free
// descent shared by all readers, per-node write locks for writers,
// sibling links at every level, and split propagation recorded on a
// clystack descent path.
package blink

import (
	"math"
	"sync/atomic"

	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/clypool"
)

const (
	// KeyInFlight is a sentinel a reader must skip over mid-scan: it
	// marks a slot a writer is in the middle of shifting. 0 is never a
	// valid key (valid nids and itbl keys are >= 1).
	KeyInFlight uint64 = 0
	// TreeMaxNid is the "infinity" high key carried by the rightmost
	// spine of every level.
	TreeMaxNid uint64 = math.MaxUint64
)

// OnRemove is invoked with a leaf entry's value when that entry is
// physically removed, letting a caller (e.g. pkg/treeiface) free the
// payload the value addresses. May be nil.
type OnRemove func(value uint64)

// Tree is one B-link tree: a private node pool, a root reference
// readers load without locking, and a monotonic per-tree counter used
// to mint node-slab ids for the root and for nodes created by splits.
// node_insert's nids (the tree's keys) come from pkg/treeiface, not
// from this counter.
type Tree struct {
	k         uint8
	nodes     *clypool.NodePool
	root      atomic.Uint64
	nidCtr    atomic.Uint64
	onRemove  OnRemove
	destroyed atomic.Bool
	activeOps atomic.Int64
}

// Create allocates a root as an empty leaf and returns the tree.
// Matches spec §4.1's tree_create(k); the registry (pkg/registry)
// wraps the returned *Tree with a tid.
func Create(k uint8) (*Tree, error) {
	t := &Tree{k: k, nodes: clypool.NewNodePool(k)}
	rootNid := t.nextNid()
	root, err := t.nodes.Alloc(rootNid, true)
	if err != nil {
		return nil, clyerr.Wrap(err, clyerr.AllocFailed, "allocate root leaf")
	}
	t.root.Store(root.Nid)
	return t, nil
}

// SetOnRemove installs the payload-free callback. Called once by the
// tree-interface layer right after Create.
func (t *Tree) SetOnRemove(fn OnRemove) {
	t.onRemove = fn
}

// K returns the tree's split threshold.
func (t *Tree) K() uint8 { return t.k }

func (t *Tree) nextNid() uint64 {
	return t.nidCtr.Add(1)
}

// enter/leave bracket every public operation: enter refuses new work
// once Destroy has run, and activeOps counts the operations in flight.
// Nothing waits on that count; the node pool is not reclaimed.
func (t *Tree) enter() bool {
	if t.destroyed.Load() {
		return false
	}
	t.activeOps.Add(1)
	if t.destroyed.Load() {
		t.activeOps.Add(-1)
		return false
	}
	return true
}

func (t *Tree) leave() {
	t.activeOps.Add(-1)
}

// Destroy marks the tree unusable: operations that call enter() after
// it fail. Operations already past enter() complete normally, and
// Destroy blocks on none of them. Destroy frees neither the node pool
// nor the payloads the tree's values address.
func (t *Tree) Destroy() {
	t.destroyed.Store(true)
}

func (t *Tree) getNode(nid uint64) (*clypool.NodeSlab, error) {
	n, ok := t.nodes.Get(nid)
	if !ok {
		return nil, clyerr.New(clyerr.NoSuchNode, "no such tree node")
	}
	return n, nil
}

// descentHighWater tracks the largest clystack.Stack high water mark
// seen across every Insert/Remove descent in the process, supplementing
// the original's per-stack embunit diagnostic (spec.md §9) as a
// process-wide gauge (pkg/api) instead of a per-call log line.
var descentHighWater atomic.Int64

// DescentHighWater reports the deepest descent stack any Insert or
// Remove has recorded so far across every tree in the process.
func DescentHighWater() int64 {
	return descentHighWater.Load()
}

func recordDescentHighWater(n int) {
	for {
		cur := descentHighWater.Load()
		if int64(n) <= cur || descentHighWater.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}

// InOrderKeys descends to the leftmost leaf and follows sibling links
// across the leaf level, returning every live key in ascending order.
// Exposed for property/scenario testing (pkg/harness) that needs to
// assert against a tree's full contents without reaching into package
// internals.
func (t *Tree) InOrderKeys() ([]uint64, error) {
	node, err := t.getNode(t.root.Load())
	if err != nil {
		return nil, err
	}
	for !node.IsLeaf {
		child, err := t.getNode(node.Children[0].Load())
		if err != nil {
			return nil, err
		}
		node = child
	}

	var keys []uint64
	for {
		numKeys := node.NumKeys.Load()
		for i := uint32(0); i < numKeys; i++ {
			if k := node.Keys[i].Load(); k != KeyInFlight {
				keys = append(keys, k)
			}
		}
		sib := node.Sibling.Load()
		if sib == 0 {
			return keys, nil
		}
		node, err = t.getNode(sib)
		if err != nil {
			return nil, err
		}
	}
}
