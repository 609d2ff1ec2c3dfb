package paylog

import (
	"path/filepath"
	"testing"
)

func TestAllocWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "payloads.log"), 64, 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Alloc(1); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := s.Write(1, 0, 5, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	dst := make([]byte, 5)
	if err := s.Read(1, 0, 5, dst); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(dst) != "hello" {
		t.Fatalf("expected hello, got %q", dst)
	}
}

func TestRecoverRebuildsFromLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payloads.log")

	s1, err := Open(path, 64, 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s1.Alloc(7); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := s1.Write(7, 0, 4, []byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path, 64, 4)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	dst := make([]byte, 4)
	if err := s2.Read(7, 0, 4, dst); err != nil {
		t.Fatalf("Read after recovery: %v", err)
	}
	if string(dst) != "data" {
		t.Fatalf("expected data, got %q", dst)
	}
}

func TestFreeTombstonesAcrossRecovery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payloads.log")

	s1, err := Open(path, 64, 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s1.Alloc(3); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	s1.Free(3)
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path, 64, 4)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	dst := make([]byte, 1)
	if err := s2.Read(3, 0, 1, dst); err == nil {
		t.Fatal("expected freed payload to stay freed across recovery")
	}
}

func TestAllocExhaustsMaxSlots(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "payloads.log"), 16, 1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Alloc(1); err != nil {
		t.Fatalf("Alloc(1): %v", err)
	}
	if err := s.Alloc(2); err == nil {
		t.Fatal("expected AllocFailed once maxSlots is reached")
	}
}
