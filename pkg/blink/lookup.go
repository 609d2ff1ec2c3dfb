package blink

import "github.com/clydefs/clydefs/pkg/clyerr"

// Lookup returns the value stored under key. Readers take no locks:
// descent and the final leaf scan both rely only on the atomic
// acquire loads descend and scanForChild already perform.
func (t *Tree) Lookup(key uint64) (uint64, error) {
	if !t.enter() {
		return 0, clyerr.New(clyerr.NoSuchTree, "tree destroyed")
	}
	defer t.leave()

	leaf, err := t.descend(key, nil)
	if err != nil {
		return 0, err
	}

	numKeys := leaf.NumKeys.Load()
	for i := uint32(0); i < numKeys; i++ {
		k := leaf.Keys[i].Load()
		if k == KeyInFlight {
			continue
		}
		if k == key {
			return leaf.Children[i].Load(), nil
		}
	}
	return 0, clyerr.New(clyerr.NoSuchNode, "key not found")
}
