package blink

import (
	"sort"
	"sync"
	"testing"

	"github.com/clydefs/clydefs/pkg/clypool"
)

func inOrder(t *testing.T, tree *Tree) []uint64 {
	t.Helper()
	keys, err := tree.InOrderKeys()
	if err != nil {
		t.Fatalf("InOrderKeys: %v", err)
	}
	return keys
}

func TestInsertInOrderToSplit(t *testing.T) {
	tree, err := Create(2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := uint64(1); i <= 5; i++ {
		if err := tree.Insert(i, i*100); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	root, err := tree.getNode(tree.root.Load())
	if err != nil {
		t.Fatalf("getNode(root): %v", err)
	}
	if root.IsLeaf {
		t.Fatal("expected root to have split into an internal node")
	}
	if root.NumKeys.Load() != 2 {
		t.Fatalf("expected root with 2 entries, got %d", root.NumKeys.Load())
	}

	left, err := tree.getNode(root.Children[0].Load())
	if err != nil {
		t.Fatalf("getNode(left): %v", err)
	}
	right, err := tree.getNode(root.Children[1].Load())
	if err != nil {
		t.Fatalf("getNode(right): %v", err)
	}

	wantLeft := []uint64{1, 2}
	wantRight := []uint64{3, 4, 5}
	if got := liveKeys(left); !equalKeys(got, wantLeft) {
		t.Fatalf("left leaf = %v, want %v", got, wantLeft)
	}
	if got := liveKeys(right); !equalKeys(got, wantRight) {
		t.Fatalf("right leaf = %v, want %v", got, wantRight)
	}
}

func liveKeys(n *clypool.NodeSlab) []uint64 {
	var out []uint64
	numKeys := n.NumKeys.Load()
	for i := uint32(0); i < numKeys; i++ {
		k := n.Keys[i].Load()
		if k == KeyInFlight {
			continue
		}
		out = append(out, k)
	}
	return out
}

func TestInsertOutOfOrder(t *testing.T) {
	tree, err := Create(2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, k := range []uint64{3, 1, 4, 2, 5} {
		if err := tree.Insert(k, k); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}

	got := inOrder(t, tree)
	want := []uint64{1, 2, 3, 4, 5}
	if !equalKeys(got, want) {
		t.Fatalf("in-order traversal = %v, want %v", got, want)
	}
}

func TestConcurrentInsertSplit(t *testing.T) {
	tree, err := Create(2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= 999; i += 2 {
			if err := tree.Insert(i, i); err != nil {
				t.Errorf("Insert(%d): %v", i, err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := uint64(2); i <= 1000; i += 2 {
			if err := tree.Insert(i, i); err != nil {
				t.Errorf("Insert(%d): %v", i, err)
			}
		}
	}()
	wg.Wait()

	got := inOrder(t, tree)
	if len(got) != 1000 {
		t.Fatalf("expected 1000 keys, got %d", len(got))
	}
	sorted := append([]uint64(nil), got...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := range sorted {
		if sorted[i] != uint64(i+1) {
			t.Fatalf("missing or duplicate key near %d", i+1)
		}
		if got[i] != sorted[i] {
			t.Fatalf("in-order traversal not sorted at index %d: %v", i, got)
		}
	}
}

func TestRemoveShift(t *testing.T) {
	tree, err := Create(2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, k := range []uint64{3, 1, 2, 7, 5, 6, 8, 4} {
		if err := tree.Insert(k, k); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	for _, k := range []uint64{8, 4, 2} {
		if err := tree.Remove(k); err != nil {
			t.Fatalf("Remove(%d): %v", k, err)
		}
	}

	got := inOrder(t, tree)
	want := []uint64{1, 3, 5, 6, 7}
	if !equalKeys(got, want) {
		t.Fatalf("in-order traversal after removes = %v, want %v", got, want)
	}
}

func TestLookupRoundTrip(t *testing.T) {
	tree, err := Create(2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tree.Insert(42, 4242); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, err := tree.Lookup(42)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != 4242 {
		t.Fatalf("got %d, want 4242", v)
	}
}

func TestRemoveThenLookupNotFound(t *testing.T) {
	tree, err := Create(2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tree.Insert(1, 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := tree.Lookup(1); err == nil {
		t.Fatal("expected lookup to fail after remove")
	}
}

func TestInsertDuplicateIsNoop(t *testing.T) {
	tree, err := Create(2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tree.Insert(1, 100); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Insert(1, 999); err != nil {
		t.Fatalf("Insert duplicate: %v", err)
	}
	v, err := tree.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != 100 {
		t.Fatalf("duplicate insert must be a no-op; got value %d, want original 100", v)
	}
}

func equalKeys(got, want []uint64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
