package blink

import (
	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/clystack"
)

// Remove deletes the leaf entry for key. No merge or rebalance is
// performed — B-link policy tolerates underfull nodes at rest.
func (t *Tree) Remove(key uint64) error {
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

	idx, exists := findKey(leaf, key)
	if !exists {
		leaf.Mu.Unlock()
		return clyerr.New(clyerr.NoSuchNode, "no such entry")
	}

	value := leaf.Children[idx].Load()
	numKeys := leaf.NumKeys.Load()

	// Shift left to fill the hole: mark the slot in flight, move the
	// child in, then move the key in, so a concurrent reader never
	// sees a key without its matching child.
	for i := uint32(idx); i < numKeys-1; i++ {
		leaf.Keys[i].Store(KeyInFlight)
		leaf.Children[i].Store(leaf.Children[i+1].Load())
		leaf.Keys[i].Store(leaf.Keys[i+1].Load())
	}
	leaf.NumKeys.Store(numKeys - 1)
	leaf.Mu.Unlock()

	if t.onRemove != nil {
		t.onRemove(value)
	}
	return nil
}
