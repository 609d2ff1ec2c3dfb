package treeiface

import (
	"sync"
	"sync/atomic"

	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/clypool"
	"github.com/clydefs/clydefs/pkg/registry"
)

// MemoryTree is the in-memory tree-interface implementation: it
// wires pkg/blink (the engine), pkg/registry (tid bookkeeping) and
// pkg/clypool (payload storage) together behind the six-function ABI.
// A node's key in the underlying blink tree is its own nid — the
// value is the same nid, used only to decide which payload pool slot
// a read/write addresses.
type MemoryTree struct {
	registry *registry.Registry
	payloads PayloadStore

	mu      sync.Mutex
	nextNid map[uint64]*atomic.Uint64 // registered tids; each entry points at nidCtr
	nidCtr  atomic.Uint64             // one nid counter shared by all tids, since payload slots are keyed by nid alone
}

// NewMemoryTree builds a tree interface backed by a default-sized
// payload pool (config.PayloadCapacity x config.PayloadPoolSlots).
func NewMemoryTree() *MemoryTree {
	return NewMemoryTreeWithCapacity(clypool.NewDefaultPayloadPool())
}

// NewMemoryTreeWithCapacity builds a tree interface backed by a
// caller-supplied payload store, letting tests (e.g. pkg/itbl) size
// payloads well below the 4 MiB production default, and letting
// pkg/di wire pkg/paylog's durable store in place of pkg/clypool's
// in-memory one.
func NewMemoryTreeWithCapacity(payloads PayloadStore) *MemoryTree {
	return &MemoryTree{
		registry: registry.New(),
		payloads: payloads,
		nextNid:  make(map[uint64]*atomic.Uint64),
	}
}

var _ Interface = (*MemoryTree)(nil)

func (m *MemoryTree) TreeCreate(k uint8) (uint64, error) {
	tid, err := m.registry.CreateTree(k)
	if err != nil {
		return 0, err
	}

	tree, err := m.registry.Get(tid)
	if err != nil {
		return 0, err
	}
	tree.SetOnRemove(func(value uint64) {
		m.payloads.Free(value)
	})

	m.mu.Lock()
	m.nextNid[tid] = &m.nidCtr
	m.mu.Unlock()

	return tid, nil
}

func (m *MemoryTree) TreeRemove(tid uint64) error {
	if err := m.registry.RemoveTree(tid); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.nextNid, tid)
	m.mu.Unlock()
	return nil
}

func (m *MemoryTree) NodeInsert(tid uint64) (uint64, error) {
	tree, err := m.registry.Get(tid)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	ctr, ok := m.nextNid[tid]
	m.mu.Unlock()
	if !ok {
		return 0, clyerr.New(clyerr.NoSuchTree, "no such tree")
	}
	nid := ctr.Add(1)

	if err := m.payloads.Alloc(nid); err != nil {
		return 0, err
	}
	if err := tree.Insert(nid, nid); err != nil {
		m.payloads.Free(nid)
		return 0, err
	}
	return nid, nil
}

func (m *MemoryTree) NodeRemove(tid, nid uint64) error {
	tree, err := m.registry.Get(tid)
	if err != nil {
		return err
	}
	return tree.Remove(nid)
}

func (m *MemoryTree) NodeRead(tid, nid uint64, off, length uint64, dst []byte) error {
	if _, err := m.registry.Get(tid); err != nil {
		return err
	}
	return m.payloads.Read(nid, off, length, dst)
}

func (m *MemoryTree) NodeWrite(tid, nid uint64, off, length uint64, src []byte) error {
	if _, err := m.registry.Get(tid); err != nil {
		return err
	}
	return m.payloads.Write(nid, off, length, src)
}

// Capacity reports the fixed capacity of every payload slot.
func (m *MemoryTree) Capacity() int {
	return m.payloads.Capacity()
}

// ListTrees reports every currently registered tid, for the
// debug/inspection HTTP surface (pkg/api).
func (m *MemoryTree) ListTrees() []uint64 {
	return m.registry.List()
}

// DebugWalk returns tid's level-by-level key dump, for the CLI's
// "tree inspect" subcommand. See pkg/blink.Tree.DebugWalk.
func (m *MemoryTree) DebugWalk(tid uint64) ([][]uint64, error) {
	tree, err := m.registry.Get(tid)
	if err != nil {
		return nil, err
	}
	return tree.DebugWalk()
}
