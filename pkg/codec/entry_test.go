package codec

import (
	"testing"

	"github.com/clydefs/clydefs/pkg/config"
)

func TestEntryEncodeDecodeRoundTrip(t *testing.T) {
	e := &Entry{
		Ino:          42,
		Uid:          1000,
		Gid:          1000,
		Mtime:        1700000000,
		Ctime:        1700000001,
		Size:         4096,
		Mode:         0100644,
		ChildItblTid: 0,
		ChildItblNid: 0,
	}
	if err := e.SetName("hello.txt"); err != nil {
		t.Fatalf("SetName: %v", err)
	}

	buf := EncodeEntry(e)
	if len(buf) != EntrySize {
		t.Fatalf("expected %d bytes, got %d", EntrySize, len(buf))
	}

	got, err := DecodeEntry(buf)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}

	if got.Ino != e.Ino || got.Uid != e.Uid || got.Gid != e.Gid ||
		got.Mtime != e.Mtime || got.Ctime != e.Ctime || got.Size != e.Size ||
		got.Mode != e.Mode || got.NameLen != e.NameLen {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
	if got.NameString() != "hello.txt" {
		t.Fatalf("expected name %q, got %q", "hello.txt", got.NameString())
	}
}

func TestEntryHasChild(t *testing.T) {
	e := &Entry{}
	if e.HasChild() {
		t.Fatal("zero-value entry should not have a child itbl")
	}
	e.ChildItblTid = 7
	if !e.HasChild() {
		t.Fatal("expected HasChild true once ChildItblTid is set")
	}
}

func TestEntrySetNameTooLong(t *testing.T) {
	e := &Entry{}
	long := make([]byte, config.NameMax+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := e.SetName(string(long)); err == nil {
		t.Fatal("expected error for name exceeding NameMax")
	}
}

func TestEntrySetNameMaxLength(t *testing.T) {
	e := &Entry{}
	max := make([]byte, config.NameMax)
	for i := range max {
		max[i] = 'x'
	}
	if err := e.SetName(string(max)); err != nil {
		t.Fatalf("SetName at max length: %v", err)
	}
	buf := EncodeEntry(e)
	got, err := DecodeEntry(buf)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if got.NameString() != string(max) {
		t.Fatal("max-length name did not round trip")
	}
}

func TestDecodeEntryTooShort(t *testing.T) {
	if _, err := DecodeEntry(make([]byte, EntrySize-1)); err == nil {
		t.Fatal("expected error decoding truncated entry")
	}
}

func TestDecodeEntryNameLenOverflow(t *testing.T) {
	buf := make([]byte, EntrySize)
	buf[44] = 0xFF
	buf[45] = 0xFF
	buf[46] = 0xFF
	buf[47] = 0xFF
	if _, err := DecodeEntry(buf); err == nil {
		t.Fatal("expected error for out-of-range name length")
	}
}
