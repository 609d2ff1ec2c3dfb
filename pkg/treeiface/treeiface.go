// Package treeiface implements the tree-interface ABI (C5): six
// function slots populated once at startup, letting directory-layer
// callers swap the in-memory engine for a persistent one without
// touching call sites. Mirrors the teacher's pkg/store.Store
// interface, generalized from a Put/Get/Close key-value surface to
// the six-operation tree ABI spec.md §6 defines.
package treeiface

import "github.com/clydefs/clydefs/pkg/clypool"

// Interface is the tree-interface ABI: tree_create, tree_remove,
// node_insert, node_remove, node_read, node_write.
type Interface interface {
	// TreeCreate allocates a tree with split threshold k and returns
	// its tid, or 0 on failure.
	TreeCreate(k uint8) (uint64, error)
	// TreeRemove unlinks tid. Returns NoSuchTree if unknown.
	TreeRemove(tid uint64) error
	// NodeInsert synthesizes a fresh nid, allocates its payload from
	// the fixed-capacity pool, and inserts it into tid's tree.
	NodeInsert(tid uint64) (nid uint64, err error)
	// NodeRemove removes nid from tid's tree and frees its payload.
	NodeRemove(tid, nid uint64) error
	// NodeRead copies len bytes from nid's payload at off into dst.
	NodeRead(tid, nid uint64, off, length uint64, dst []byte) error
	// NodeWrite copies len bytes from src into nid's payload at off.
	NodeWrite(tid, nid uint64, off, length uint64, src []byte) error
}

// PayloadCapacity returns the fixed capacity of the payload pool
// consumed by an implementation, exposed per spec §4.3 ("capacity is
// exposed as a constant").
type PayloadCapacity interface {
	Capacity() int
}

// PayloadStore is the payload backing store MemoryTree delegates
// node_read/node_write/alloc/free to. pkg/clypool's in-memory pool and
// pkg/paylog's append-only-log-backed store both satisfy it, letting
// pkg/config's Backend selection swap one for the other without
// touching MemoryTree itself.
type PayloadStore interface {
	PayloadCapacity
	Alloc(nid uint64) error
	Free(nid uint64)
	Read(nid uint64, off, length uint64, dst []byte) error
	Write(nid uint64, off, length uint64, src []byte) error
}

// TreeLister enumerates the tids currently registered against an
// implementation, consumed by the debug/inspection HTTP surface
// (pkg/api) to list live trees without depending on pkg/registry
// directly.
type TreeLister interface {
	ListTrees() []uint64
}

// TreeInspector exposes a tree's structural dump for debugging,
// consumed by the CLI's "tree inspect" subcommand. Only available on
// implementations built with -tags clydebug; callers see the
// clydebug-gated error message from pkg/blink.Tree.DebugWalk
// otherwise.
type TreeInspector interface {
	DebugWalk(tid uint64) ([][]uint64, error)
}

var (
	_ PayloadCapacity = (*clypool.PayloadPool)(nil)
)
