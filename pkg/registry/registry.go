// Package registry implements the tree registry (C4): a singly-linked
// list of tree records guarded by one spinlock-equivalent mutex, with
// a monotonically allocated tid. The registry holds each tree by
// pointer and takes no part in a root split: blink.Tree publishes its
// new root itself with an atomic store, outside the registry lock.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/clydefs/clydefs/pkg/blink"
	"github.com/clydefs/clydefs/pkg/clyerr"
)

// entry is one node of the registry's singly-linked list.
type entry struct {
	tid  uint64
	tree *blink.Tree
	next *entry
}

// Registry maps tid -> *blink.Tree. GetOrCreateIndex's "mutex-guarded
// lookup, create-on-miss" shape is generalized here to "mutex-guarded
// list mutation, monotonic tid on create" per spec §4.2.
type Registry struct {
	mu     sync.Mutex
	head   *entry
	nextID atomic.Uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// CreateTree allocates a new B-link tree with split threshold k,
// publishes it into the registry under a fresh tid, and returns that
// tid. Matches the tree-interface ABI's tree_create.
func (r *Registry) CreateTree(k uint8) (uint64, error) {
	tree, err := blink.Create(k)
	if err != nil {
		return 0, err
	}

	tid := r.nextID.Add(1)
	e := &entry{tid: tid, tree: tree}

	r.mu.Lock()
	e.next = r.head
	r.head = e
	r.mu.Unlock()

	return tid, nil
}

// Get returns the tree registered under tid.
func (r *Registry) Get(tid uint64) (*blink.Tree, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for e := r.head; e != nil; e = e.next {
		if e.tid == tid {
			return e.tree, nil
		}
	}
	return nil, clyerr.New(clyerr.NoSuchTree, "no such tree")
}

// RemoveTree unlinks tid from the registry and marks its tree
// destroyed (blink.Tree.Destroy); the tree's memory is not reclaimed.
// Subsequent Get(tid) calls return NoSuchTree even while in-flight
// operations against the tree are still running.
func (r *Registry) RemoveTree(tid uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prev *entry
	for e := r.head; e != nil; e = e.next {
		if e.tid == tid {
			if prev == nil {
				r.head = e.next
			} else {
				prev.next = e.next
			}
			e.tree.Destroy()
			return nil
		}
		prev = e
	}
	return clyerr.New(clyerr.NoSuchTree, "no such tree")
}

// Len reports how many trees are currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for e := r.head; e != nil; e = e.next {
		n++
	}
	return n
}

// List returns every currently registered tid, in no particular
// order. Used by the debug/inspection HTTP surface (pkg/api) to list
// live trees.
func (r *Registry) List() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tids []uint64
	for e := r.head; e != nil; e = e.next {
		tids = append(tids, e.tid)
	}
	return tids
}
