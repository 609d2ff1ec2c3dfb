package clypool

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"

	"github.com/clydefs/clydefs/pkg/clyerr"
)

// PebblePayloadPool is the persistent payload-pool variant stored in
// pebble. pkg/treeiface has no pebble-backed tree implementation, and
// this type does not satisfy treeiface.PayloadStore (its Free returns
// an error). Keys are the node's 8-byte big-endian nid; values are the
// node's fixed-capacity payload buffer.
type PebblePayloadPool struct {
	db       *pebble.DB
	capacity int
}

// NewPebblePayloadPool opens (or creates) a pebble store at path.
func NewPebblePayloadPool(path string, capacity int) (*PebblePayloadPool, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, clyerr.Wrap(err, clyerr.IoFail, "open pebble payload store")
	}
	return &PebblePayloadPool{db: db, capacity: capacity}, nil
}

// Capacity returns the fixed capacity of every payload in the pool.
func (p *PebblePayloadPool) Capacity() int {
	return p.capacity
}

func nidKey(nid uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nid)
	return buf[:]
}

// Alloc reserves a zero-initialized payload under nid.
func (p *PebblePayloadPool) Alloc(nid uint64) error {
	buf := make([]byte, p.capacity)
	if err := p.db.Set(nidKey(nid), buf, pebble.NoSync); err != nil {
		return clyerr.Wrap(err, clyerr.AllocFailed, "alloc persistent payload")
	}
	return nil
}

// Free deletes the payload stored under nid.
func (p *PebblePayloadPool) Free(nid uint64) error {
	if err := p.db.Delete(nidKey(nid), pebble.NoSync); err != nil {
		return clyerr.Wrap(err, clyerr.IoFail, "free persistent payload")
	}
	return nil
}

// Read performs a bounds-checked read from the nid's persisted payload.
func (p *PebblePayloadPool) Read(nid uint64, off, length uint64, dst []byte) error {
	data, closer, err := p.db.Get(nidKey(nid))
	if err != nil {
		return clyerr.Wrap(err, clyerr.NoSuchNode, "no such persistent payload")
	}
	defer closer.Close()

	if off+length > uint64(len(data)) {
		return clyerr.ErrOutOfRange
	}
	copy(dst, data[off:off+length])
	return nil
}

// Write performs a bounds-checked, read-modify-write update of the
// nid's persisted payload.
func (p *PebblePayloadPool) Write(nid uint64, off, length uint64, src []byte) error {
	data, closer, err := p.db.Get(nidKey(nid))
	if err != nil {
		return clyerr.Wrap(err, clyerr.NoSuchNode, "no such persistent payload")
	}
	buf := append([]byte(nil), data...)
	closer.Close()

	if off+length > uint64(len(buf)) {
		return clyerr.ErrOutOfRange
	}
	copy(buf[off:off+length], src[:length])

	if err := p.db.Set(nidKey(nid), buf, pebble.NoSync); err != nil {
		return clyerr.Wrap(err, clyerr.IoFail, "write persistent payload")
	}
	return nil
}

// Close closes the underlying pebble database.
func (p *PebblePayloadPool) Close() error {
	return p.db.Close()
}
