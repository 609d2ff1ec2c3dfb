package clystack

import "testing"

func TestPushPopOrder(t *testing.T) {
	s := New()
	for i := uint64(1); i <= 5; i++ {
		s.Push(i)
	}
	if s.Size() != 5 {
		t.Fatalf("expected size 5, got %d", s.Size())
	}
	for i := uint64(5); i >= 1; i-- {
		v, ok := s.Pop()
		if !ok || v != i {
			t.Fatalf("expected %d, got %d (ok=%v)", i, v, ok)
		}
	}
	if _, ok := s.Pop(); ok {
		t.Fatal("expected empty stack to report !ok")
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	s := New()
	s.Push(42)
	v, ok := s.Peek()
	if !ok || v != 42 {
		t.Fatalf("peek: got %d, %v", v, ok)
	}
	if s.Size() != 1 {
		t.Fatalf("peek should not remove, size=%d", s.Size())
	}
}

func TestClearResetsSize(t *testing.T) {
	s := New()
	for i := uint64(0); i < 20; i++ {
		s.Push(i)
	}
	s.Clear()
	if s.Size() != 0 {
		t.Fatalf("expected 0 after clear, got %d", s.Size())
	}
	s.Push(1)
	if s.Size() != 1 {
		t.Fatalf("expected 1 after push post-clear, got %d", s.Size())
	}
}

func TestHighWaterTracksPeakSize(t *testing.T) {
	s := New()
	for i := uint64(0); i < 10; i++ {
		s.Push(i)
	}
	for i := 0; i < 7; i++ {
		s.Pop()
	}
	if s.HighWater() != 10 {
		t.Fatalf("expected high water 10, got %d", s.HighWater())
	}
}

func TestGrowsPastDefaultCapacity(t *testing.T) {
	s := New()
	for i := uint64(0); i < 1000; i++ {
		s.Push(i)
	}
	if s.Size() != 1000 {
		t.Fatalf("expected 1000, got %d", s.Size())
	}
	v, _ := s.Pop()
	if v != 999 {
		t.Fatalf("expected 999, got %d", v)
	}
}
