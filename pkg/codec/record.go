package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// Record represents a key-value record with metadata for storage
type Record struct {
	CRC32     uint32 // CRC32 checksum for integrity
	KeySize   uint32 // Size of the key in bytes
	ValueSize uint32 // Size of the value in bytes
	Timestamp uint64 // Unix timestamp in nanoseconds
	Key       []byte // Key data
	Value     []byte // Value data
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a key-value pair into a binary record format
// Format: [CRC32(4)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
func (c *RecordCodec) Encode(key, value []byte) ([]byte, error) {
	r := NewRecord(key, value)
	r.CRC32 = r.calculateCRC32()

	buf := make([]byte, r.Size())
	binary.LittleEndian.PutUint32(buf[0:4], r.CRC32)
	binary.LittleEndian.PutUint32(buf[4:8], r.KeySize)
	binary.LittleEndian.PutUint32(buf[8:12], r.ValueSize)
	binary.LittleEndian.PutUint64(buf[12:20], r.Timestamp)
	copy(buf[20:20+len(key)], key)
	copy(buf[20+len(key):], value)
	return buf, nil
}

// Decode deserializes a binary record into a Record struct
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	if len(data) < 20 {
		return nil, fmt.Errorf("record too short: %d bytes, need at least 20", len(data))
	}

	r := &Record{
		CRC32:     binary.LittleEndian.Uint32(data[0:4]),
		KeySize:   binary.LittleEndian.Uint32(data[4:8]),
		ValueSize: binary.LittleEndian.Uint32(data[8:12]),
		Timestamp: binary.LittleEndian.Uint64(data[12:20]),
	}

	want := 20 + int(r.KeySize) + int(r.ValueSize)
	if want < 20 || len(data) < want {
		return nil, fmt.Errorf("record truncated: have %d bytes, need %d", len(data), want)
	}

	keyEnd := 20 + int(r.KeySize)
	r.Key = append([]byte(nil), data[20:keyEnd]...)
	r.Value = append([]byte(nil), data[keyEnd:want]...)

	return r, nil
}

// Validate checks the integrity of a record using CRC32
func (r *Record) Validate() error {
	if got := r.calculateCRC32(); got != r.CRC32 {
		return fmt.Errorf("crc32 mismatch: stored %d, computed %d", r.CRC32, got)
	}
	return nil
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	// Header: CRC32(4) + KeySize(4) + ValueSize(4) + Timestamp(8) = 20 bytes
	// Data: len(Key) + len(Value)
	return 20 + len(r.Key) + len(r.Value)
}

// NewRecord creates a new record with current timestamp
func NewRecord(key, value []byte) *Record {
	return &Record{
		KeySize:   uint32(len(key)),
		ValueSize: uint32(len(value)),
		Timestamp: uint64(time.Now().UnixNano()),
		Key:       key,
		Value:     value,
	}
}

// calculateCRC32 computes CRC32 checksum over KeySize + ValueSize +
// Timestamp + Key + Value (the CRC32 field itself is excluded).
func (r *Record) calculateCRC32() uint32 {
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:4], r.KeySize)
	binary.LittleEndian.PutUint32(hdr[4:8], r.ValueSize)
	binary.LittleEndian.PutUint64(hdr[8:16], r.Timestamp)

	crc := crc32.NewIEEE()
	crc.Write(hdr[:])
	crc.Write(r.Key)
	crc.Write(r.Value)
	return crc.Sum32()
}
