package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/clydefs/clydefs/pkg/config"
)

// EntrySize is the fixed on-disk size of a directory inode record:
// ino(8) + uid(4) + gid(4) + mtime(8) + ctime(8) + size(8) + mode(2) +
// reserved(2) + nlen(4) + child_itbl_tid(8) + child_itbl_nid(8) + name(NameMax).
const EntrySize = 8 + 4 + 4 + 8 + 8 + 8 + 2 + 2 + 4 + 8 + 8 + config.NameMax

// entryHeaderSize is EntrySize minus the trailing name field.
const entryHeaderSize = EntrySize - config.NameMax

// Entry is a directory inode record, one slot's worth of a chunk's
// entry array.
type Entry struct {
	Ino           uint64
	Uid           uint32
	Gid           uint32
	Mtime         uint64
	Ctime         uint64
	Size          uint64
	Mode          uint16
	NameLen       uint32
	ChildItblTid  uint64
	ChildItblNid  uint64
	Name          [config.NameMax]byte
}

// HasChild reports whether this entry addresses a child inode-table
// tree (i.e. is itself a directory).
func (e *Entry) HasChild() bool {
	return e.ChildItblTid != 0
}

// SetName copies name into the fixed-size Name field and sets NameLen.
// It returns an error if name exceeds NameMax bytes.
func (e *Entry) SetName(name string) error {
	if len(name) > config.NameMax {
		return fmt.Errorf("name %q exceeds NameMax (%d > %d)", name, len(name), config.NameMax)
	}
	var buf [config.NameMax]byte
	copy(buf[:], name)
	e.Name = buf
	e.NameLen = uint32(len(name))
	return nil
}

// NameString returns the entry's name as a Go string.
func (e *Entry) NameString() string {
	return string(e.Name[:e.NameLen])
}

// EncodeEntry serializes an entry into its fixed-size on-disk form.
func EncodeEntry(e *Entry) []byte {
	buf := make([]byte, EntrySize)
	binary.LittleEndian.PutUint64(buf[0:8], e.Ino)
	binary.LittleEndian.PutUint32(buf[8:12], e.Uid)
	binary.LittleEndian.PutUint32(buf[12:16], e.Gid)
	binary.LittleEndian.PutUint64(buf[16:24], e.Mtime)
	binary.LittleEndian.PutUint64(buf[24:32], e.Ctime)
	binary.LittleEndian.PutUint64(buf[32:40], e.Size)
	binary.LittleEndian.PutUint16(buf[40:42], e.Mode)
	// buf[42:44] reserved, left zero
	binary.LittleEndian.PutUint32(buf[44:48], e.NameLen)
	binary.LittleEndian.PutUint64(buf[48:56], e.ChildItblTid)
	binary.LittleEndian.PutUint64(buf[56:64], e.ChildItblNid)
	copy(buf[entryHeaderSize:], e.Name[:])
	return buf
}

// DecodeEntry parses a fixed-size on-disk entry record.
func DecodeEntry(data []byte) (*Entry, error) {
	if len(data) < EntrySize {
		return nil, fmt.Errorf("entry record too short: %d bytes, need %d", len(data), EntrySize)
	}

	e := &Entry{
		Ino:          binary.LittleEndian.Uint64(data[0:8]),
		Uid:          binary.LittleEndian.Uint32(data[8:12]),
		Gid:          binary.LittleEndian.Uint32(data[12:16]),
		Mtime:        binary.LittleEndian.Uint64(data[16:24]),
		Ctime:        binary.LittleEndian.Uint64(data[24:32]),
		Size:         binary.LittleEndian.Uint64(data[32:40]),
		Mode:         binary.LittleEndian.Uint16(data[40:42]),
		NameLen:      binary.LittleEndian.Uint32(data[44:48]),
		ChildItblTid: binary.LittleEndian.Uint64(data[48:56]),
		ChildItblNid: binary.LittleEndian.Uint64(data[56:64]),
	}
	if e.NameLen > config.NameMax {
		return nil, fmt.Errorf("entry name length %d exceeds NameMax (%d)", e.NameLen, config.NameMax)
	}
	copy(e.Name[:], data[entryHeaderSize:entryHeaderSize+config.NameMax])
	return e, nil
}
