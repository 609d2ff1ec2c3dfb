package blink

import (
	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/clypool"
	"github.com/clydefs/clydefs/pkg/clystack"
)

// Insert adds (key, value) to the tree. Inserting an already-present
// key is a no-op success, matching spec §4.1's node_insert contract.
func (t *Tree) Insert(key, value uint64) error {
	if !t.enter() {
		return clyerr.New(clyerr.NoSuchTree, "tree destroyed")
	}
	defer t.leave()

	stack := clystack.New()
	defer func() { recordDescentHighWater(stack.HighWater()) }()
	leaf, err := t.descend(key, stack)
	if err != nil {
		return err
	}

	leaf.Mu.Lock()
	leaf = t.linkRight(leaf, key)

	if idx, exists := findKey(leaf, key); exists {
		_ = idx
		leaf.Mu.Unlock()
		return nil
	}

	t.insertEntryAt(leaf, key, value)

	if leaf.NumKeys.Load() <= uint32(2*t.k) {
		leaf.Mu.Unlock()
		return nil
	}

	return t.split(leaf, stack)
}

// linkRight holds node's lock while chasing sibling links whose
// current high key is still less than targetKey, releasing the old
// node's lock only once the sibling is locked. This absorbs splits
// that completed concurrently with our descent.
func (t *Tree) linkRight(node *clypool.NodeSlab, targetKey uint64) *clypool.NodeSlab {
	for {
		numKeys := node.NumKeys.Load()
		if numKeys == 0 {
			return node
		}
		highKey := node.Keys[numKeys-1].Load()
		sib := node.Sibling.Load()
		if highKey >= targetKey || sib == 0 {
			return node
		}
		sibNode, err := t.getNode(sib)
		if err != nil {
			return node
		}
		sibNode.Mu.Lock()
		node.Mu.Unlock()
		node = sibNode
	}
}

// findKey reports the index of key within node's live entries, if any.
func findKey(node *clypool.NodeSlab, key uint64) (int, bool) {
	numKeys := node.NumKeys.Load()
	for i := uint32(0); i < numKeys; i++ {
		k := node.Keys[i].Load()
		if k == KeyInFlight {
			continue
		}
		if k == key {
			return int(i), true
		}
	}
	return 0, false
}

// insertEntryAt shifts entries right to make room for (key, value) in
// sorted order and commits the new entry by bumping NumKeys last.
func (t *Tree) insertEntryAt(node *clypool.NodeSlab, key, value uint64) {
	numKeys := node.NumKeys.Load()
	idx := numKeys
	for i := uint32(0); i < numKeys; i++ {
		if node.Keys[i].Load() > key {
			idx = i
			break
		}
	}

	for i := numKeys; i > idx; i-- {
		node.Children[i].Store(node.Children[i-1].Load())
		node.Keys[i].Store(node.Keys[i-1].Load())
	}

	node.Children[idx].Store(value)
	node.Keys[idx].Store(key) // release: publishes the new key last
	node.NumKeys.Store(numKeys + 1)
}

// split splits an overfull node (2k+1 entries) into itself (k
// entries) and a fresh right sibling (k+1 entries), then propagates
// the new separator up the descent stack, recursing if the parent
// itself becomes overfull. node must be locked on entry; split always
// unlocks it (and any sibling/parent it touches) before returning.
func (t *Tree) split(node *clypool.NodeSlab, stack *clystack.Stack) error {
	leftCount := uint32(t.k)
	rightCount := node.NumKeys.Load() - leftCount

	newNid := t.nextNid()
	newSibling, err := t.nodes.Alloc(newNid, node.IsLeaf)
	if err != nil {
		node.Mu.Unlock()
		return clyerr.Wrap(err, clyerr.AllocFailed, "allocate split sibling")
	}

	for i := uint32(0); i < rightCount; i++ {
		newSibling.Keys[i].Store(node.Keys[leftCount+i].Load())
		newSibling.Children[i].Store(node.Children[leftCount+i].Load())
	}
	newSibling.Sibling.Store(node.Sibling.Load())
	newSibling.Mu.Lock()
	newSibling.NumKeys.Store(rightCount)

	// Publish: sibling link first, then truncate numkeys — both
	// release-ordered so a concurrent reader never observes the
	// shrink without the link that makes the upper keys reachable.
	node.Sibling.Store(newSibling.Nid)
	node.NumKeys.Store(leftCount)

	newHighKey := node.Keys[leftCount-1].Load()

	parentNid, hasParent := stack.Pop()
	if !hasParent {
		return t.splitRoot(node, newSibling, newHighKey)
	}

	parent, err := t.getNode(parentNid)
	if err != nil {
		node.Mu.Unlock()
		newSibling.Mu.Unlock()
		return err
	}
	parent.Mu.Lock()
	parent = t.linkRight(parent, newHighKey)

	t.patchParent(parent, node.Nid, newSibling.Nid, newHighKey)

	node.Mu.Unlock()
	newSibling.Mu.Unlock()

	if parent.NumKeys.Load() > uint32(2*t.k) {
		return t.split(parent, stack)
	}
	parent.Mu.Unlock()
	return nil
}

// patchParent inserts an entry for newSibling keyed by self's *prior*
// high key — the separator the parent already routes to self under,
// which is parent's existing entry for selfNid (∞ on the rightmost
// spine) and not anything recomputed from self's own key array — then
// retargets self's own parent-entry key to self's new high key. Insert
// before adjust, so every key stays reachable throughout.
func (t *Tree) patchParent(parent *clypool.NodeSlab, selfNid uint64, siblingNid uint64, newHighKey uint64) {
	numKeys := parent.NumKeys.Load()
	var selfOldHighKey uint64
	for i := uint32(0); i < numKeys; i++ {
		if parent.Children[i].Load() == selfNid {
			selfOldHighKey = parent.Keys[i].Load()
			break
		}
	}

	t.insertEntryAt(parent, selfOldHighKey, siblingNid)

	numKeys = parent.NumKeys.Load()
	for i := uint32(0); i < numKeys; i++ {
		if parent.Children[i].Load() == selfNid {
			parent.Keys[i].Store(newHighKey)
			return
		}
	}
}

// splitRoot handles the stack-empty case: self was the root. A fresh
// internal root is built off to the side (not yet reachable, so no
// lock needed) and published atomically as the tree's new root.
func (t *Tree) splitRoot(left, right *clypool.NodeSlab, leftHighKey uint64) error {
	newRootNid := t.nextNid()
	newRoot, err := t.nodes.Alloc(newRootNid, false)
	if err != nil {
		left.Mu.Unlock()
		right.Mu.Unlock()
		return clyerr.Wrap(err, clyerr.AllocFailed, "allocate new root")
	}

	newRoot.Keys[0].Store(leftHighKey)
	newRoot.Children[0].Store(left.Nid)
	newRoot.Keys[1].Store(TreeMaxNid)
	newRoot.Children[1].Store(right.Nid)
	newRoot.NumKeys.Store(2)

	t.root.Store(newRoot.Nid)

	left.Mu.Unlock()
	right.Mu.Unlock()
	return nil
}
