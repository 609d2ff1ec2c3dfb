package blink

import (
	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/clypool"
	"github.com/clydefs/clydefs/pkg/clystack"
)

// descend walks from the current root to the leaf that should hold
// key, latch-free. It records every non-leaf node it moves *down*
// through onto stack (moves to a sibling are not recorded) so splits
// can propagate back up the same path. Readers and writers share this
// exact routine; only the caller decides whether to then lock the
// returned leaf.
func (t *Tree) descend(key uint64, stack *clystack.Stack) (*clypool.NodeSlab, error) {
	nid := t.root.Load()
	node, err := t.getNode(nid)
	if err != nil {
		return nil, err
	}

	for {
		numKeys := node.NumKeys.Load()
		idx, found := scanForChild(node, numKeys, key)
		if found {
			if node.IsLeaf {
				return node, nil
			}
			if stack != nil {
				stack.Push(node.Nid)
			}
			childNid := node.Children[idx].Load()
			child, err := t.getNode(childNid)
			if err != nil {
				return nil, err
			}
			node = child
			continue
		}

		// Key exceeds every present key in this node: step right.
		sib := node.Sibling.Load()
		if sib == 0 {
			if node.IsLeaf {
				return node, nil
			}
			return nil, clyerr.ReportInvariant("non-leaf node %d has no sibling but key %d exceeds its keys", node.Nid, key)
		}
		sibNode, err := t.getNode(sib)
		if err != nil {
			return nil, err
		}
		node = sibNode
	}
}

// scanForChild finds the least index i in [0, numKeys) with key <=
// keys[i], skipping any slot mid-shift (KeyInFlight). Returns
// found=false if key exceeds every present key.
func scanForChild(node *clypool.NodeSlab, numKeys uint32, key uint64) (int, bool) {
	for i := uint32(0); i < numKeys; i++ {
		k := node.Keys[i].Load()
		if k == KeyInFlight {
			continue
		}
		if key <= k {
			return int(i), true
		}
	}
	return 0, false
}
