//go:build clydebug

package blink

// DebugWalk returns one key slice per level, top level first, each
// holding that level's keys left to right and skipping KeyInFlight
// slots. Used by treeiface.MemoryTree.DebugWalk for the CLI's
// "tree inspect" subcommand; compiled only under the clydebug build
// tag so it never ships in a release binary.
func (t *Tree) DebugWalk() ([][]uint64, error) {
	var levels [][]uint64

	nid := t.root.Load()
	frontier := []uint64{nid}
	for len(frontier) > 0 {
		var next []uint64
		var level []uint64
		seen := map[uint64]bool{}
		for _, n := range frontier {
			for n != 0 && !seen[n] {
				seen[n] = true
				node, err := t.getNode(n)
				if err != nil {
					return nil, err
				}
				numKeys := node.NumKeys.Load()
				for i := uint32(0); i < numKeys; i++ {
					k := node.Keys[i].Load()
					if k == KeyInFlight {
						continue
					}
					level = append(level, k)
					if !node.IsLeaf {
						next = append(next, node.Children[i].Load())
					}
				}
				n = node.Sibling.Load()
			}
		}
		levels = append(levels, level)
		frontier = next
	}
	return levels, nil
}
