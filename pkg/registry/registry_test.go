package registry

import "testing"

func TestCreateTreeAssignsMonotonicTid(t *testing.T) {
	r := New()
	tid1, err := r.CreateTree(2)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	tid2, err := r.CreateTree(2)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	if tid1 == tid2 {
		t.Fatal("expected distinct tids")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 registered trees, got %d", r.Len())
	}
}

func TestGetUnknownTid(t *testing.T) {
	r := New()
	if _, err := r.Get(999); err == nil {
		t.Fatal("expected error for unknown tid")
	}
}

func TestRemoveTreeThenGetFails(t *testing.T) {
	r := New()
	tid, err := r.CreateTree(2)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	if err := r.RemoveTree(tid); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if _, err := r.Get(tid); err == nil {
		t.Fatal("expected NoSuchTree after removal")
	}
	if r.Len() != 0 {
		t.Fatalf("expected 0 registered trees, got %d", r.Len())
	}
}

func TestRemoveUnknownTid(t *testing.T) {
	r := New()
	if err := r.RemoveTree(42); err == nil {
		t.Fatal("expected error removing unknown tid")
	}
}

func TestCreateAndUseTree(t *testing.T) {
	r := New()
	tid, err := r.CreateTree(2)
	if err != nil {
		t.Fatalf("CreateTree: %v", err)
	}
	tree, err := r.Get(tid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := tree.Insert(1, 100); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, err := tree.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != 100 {
		t.Fatalf("got %d, want 100", v)
	}
}
