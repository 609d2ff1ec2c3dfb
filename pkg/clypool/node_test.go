package clypool

import "testing"

func TestNodePoolAllocSizing(t *testing.T) {
	p := NewNodePool(4) // k=4 -> width 2*4+1=9
	slab, err := p.Alloc(1, true)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if len(slab.Keys) != 9 || len(slab.Children) != 9 {
		t.Fatalf("expected width 9, got keys=%d children=%d", len(slab.Keys), len(slab.Children))
	}
	if !slab.IsLeaf {
		t.Fatal("expected leaf slab")
	}
	slab.NumKeys.Store(3)
	if slab.NumKeys.Load() != 3 {
		t.Fatal("expected atomic NumKeys to round trip")
	}
}

func TestNodePoolGetFree(t *testing.T) {
	p := NewNodePool(2)
	if _, err := p.Alloc(5, false); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if _, ok := p.Get(5); !ok {
		t.Fatal("expected slab 5 to exist")
	}
	p.Free(5)
	if _, ok := p.Get(5); ok {
		t.Fatal("expected slab 5 to be freed")
	}
	if p.Len() != 0 {
		t.Fatalf("expected 0 live slabs, got %d", p.Len())
	}
}

func TestNodePoolAllocDuplicate(t *testing.T) {
	p := NewNodePool(2)
	if _, err := p.Alloc(1, true); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if _, err := p.Alloc(1, true); err == nil {
		t.Fatal("expected error allocating duplicate nid")
	}
}
