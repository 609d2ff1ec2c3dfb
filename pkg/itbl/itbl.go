// Package itbl implements the directory / inode-table layer (C7): it
// walks a directory's chunk sequence inside a single tree node,
// binary-searching each chunk for a name and appending a fresh tail
// chunk on overflow.
//
// Grounded on original_source/fs/clydefs/chunk.c's
// cfsc_ientry_find/cfsc_ientry_insert/cfsc_ientry_update/
// cfsc_ientry_delete for the read-modify-write cycle and the
// append-on-overflow pathway (cfs_mk_chunk, here chunk.New plus a
// NodeWrite), generalized from raw block_device reads to the
// tree-interface ABI (pkg/treeiface) spec.md §6 defines, and from the
// original's single global chunk buffer to an explicit per-directory
// write lock (spec §5: "One lock per directory... held by the
// directory layer across a single logical operation").
package itbl

import (
	"github.com/clydefs/clydefs/pkg/chunk"
	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/codec"
	"github.com/clydefs/clydefs/pkg/config"
	"github.com/clydefs/clydefs/pkg/treeiface"

	"sync"
)

// Stride is the on-device byte distance between successive chunk
// starts: chunk payload plus tail slack (spec §6: "CHUNK_SIZE +
// CHUNK_TAIL_SLACK").
func Stride() uint64 {
	return uint64(chunk.Size() + config.ChunkTailSlack)
}

// ChildRef addresses a child directory's own inode table, read out of
// an entry's child_itbl_tid/child_itbl_nid fields (spec §6). This is
// what lets a directory tree form: an entry in one itbl can point at
// the root node of another.
type ChildRef struct {
	Tid uint64
	Nid uint64
}

// Loc pins a directory entry to the chunk it lives in and its slot
// within that chunk's entry array, letting Update/Delete skip the
// find-by-name walk a caller already paid for.
type Loc struct {
	ChunkOff uint64
	Slot     uint8
}

// Directory addresses one directory's chunk sequence: a single tree
// node (tid, nid) holding chunks back-to-back from byte offset 0, plus
// the write lock spec §5 requires around each logical operation.
type Directory struct {
	tree treeiface.Interface
	tid  uint64
	nid  uint64
	mu   sync.Mutex
}

// Open addresses an existing directory's chunk-sequence node.
func Open(tree treeiface.Interface, tid, nid uint64) *Directory {
	return &Directory{tree: tree, tid: tid, nid: nid}
}

// Create allocates a fresh tree node and writes a single empty tail
// chunk into it, returning the new directory. The node's payload
// capacity (pkg/clypool, config.PayloadCapacity) must be large enough
// to hold at least one Stride; the default 4 MiB capacity holds
// hundreds of them.
func Create(tree treeiface.Interface, tid uint64) (*Directory, error) {
	nid, err := tree.NodeInsert(tid)
	if err != nil {
		return nil, clyerr.Wrap(err, clyerr.IoFail, "allocate directory node")
	}
	d := &Directory{tree: tree, tid: tid, nid: nid}
	if err := d.writeChunk(0, chunk.New()); err != nil {
		return nil, err
	}
	return d, nil
}

// Tid and Nid expose the directory's own tree-node address, e.g. so a
// parent can store it as an entry's ChildItblTid/ChildItblNid.
func (d *Directory) Tid() uint64 { return d.tid }
func (d *Directory) Nid() uint64 { return d.nid }

func (d *Directory) readChunk(off uint64) (*chunk.Chunk, error) {
	buf := make([]byte, chunk.Size())
	if err := d.tree.NodeRead(d.tid, d.nid, off, uint64(len(buf)), buf); err != nil {
		return nil, clyerr.Wrap(err, clyerr.IoFail, "read chunk")
	}
	c, err := chunk.Decode(buf)
	if err != nil {
		return nil, clyerr.Wrap(err, clyerr.IoFail, "decode chunk")
	}
	return c, nil
}

func (d *Directory) writeChunk(off uint64, c *chunk.Chunk) error {
	buf := c.Encode()
	if err := d.tree.NodeWrite(d.tid, d.nid, off, uint64(len(buf)), buf); err != nil {
		return clyerr.Wrap(err, clyerr.IoFail, "write chunk")
	}
	return nil
}

// Find walks the chunk sequence looking for name, binary-searching
// each chunk in turn and advancing to the next until a chunk that
// reports last_chunk has been searched. Matches spec §4.5's find(name).
func (d *Directory) Find(name string) (*codec.Entry, Loc, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.find(name)
}

func (d *Directory) find(name string) (*codec.Entry, Loc, error) {
	off := uint64(0)
	for {
		c, err := d.readChunk(off)
		if err != nil {
			return nil, Loc{}, err
		}
		if slot, found := c.Lookup(name); found {
			e := c.Entries[slot]
			return &e, Loc{ChunkOff: off, Slot: slot}, nil
		}
		if c.Header.LastChunk {
			return nil, Loc{}, clyerr.ErrNotFound
		}
		off += Stride()
	}
}

// Insert appends e to the directory's chunk sequence: the first chunk
// with a free slot receives it, appending a fresh empty tail chunk
// first whenever the insert fills the current tail (spec §4.5's
// insert(entry), step 2's allocate-before-truncate ordering keeps a
// failed append from ever leaving the current chunk's last_chunk bit
// cleared with no reachable successor).
//
// Duplicate names are a directory-contract violation, not a condition
// this layer normalizes (spec §9): callers are expected to have
// already resolved the name is absent via Find.
func (d *Directory) Insert(e *codec.Entry) (Loc, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	off := uint64(0)
	for {
		c, err := d.readChunk(off)
		if err != nil {
			return Loc{}, err
		}

		if c.Header.EntriesFree == 0 {
			if c.Header.LastChunk {
				if err := d.appendTailChunk(off); err != nil {
					return Loc{}, err
				}
				c.Header.LastChunk = false
				if err := d.writeChunk(off, c); err != nil {
					return Loc{}, err
				}
			}
			off += Stride()
			continue
		}

		slot, err := c.EntryInsert(e)
		if err != nil {
			return Loc{}, clyerr.Wrap(err, clyerr.IoFail, "insert entry into chunk")
		}
		c.Sort()

		if c.Header.EntriesFree == 0 && c.Header.LastChunk {
			if err := d.appendTailChunk(off); err != nil {
				return Loc{}, err
			}
			c.Header.LastChunk = false
		}

		if err := d.writeChunk(off, c); err != nil {
			return Loc{}, err
		}
		return Loc{ChunkOff: off, Slot: slot}, nil
	}
}

// appendTailChunk writes a fresh empty chunk.New() at off+Stride()
// before the caller clears the current chunk's last_chunk bit, so a
// crash (or allocation failure) between the two leaves the directory
// either fully extended or entirely untouched, never with a dangling
// last_chunk=0 and no successor chunk on disk.
func (d *Directory) appendTailChunk(off uint64) error {
	return d.writeChunk(off+Stride(), chunk.New())
}

// Update patches the entry at loc in place. If patch changes the
// entry's name, the chunk is re-sorted so off_list stays name-ordered;
// loc.Slot remains valid since slot indices, not off_list positions,
// identify an entry.
func (d *Directory) Update(loc Loc, patch func(*codec.Entry)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.readChunk(loc.ChunkOff)
	if err != nil {
		return err
	}

	before := c.Entries[loc.Slot].NameString()
	patch(&c.Entries[loc.Slot])
	if c.Entries[loc.Slot].NameString() != before {
		c.Sort()
	}

	return d.writeChunk(loc.ChunkOff, c)
}

// Delete removes the entry at loc and re-sorts its chunk.
func (d *Directory) Delete(loc Loc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.readChunk(loc.ChunkOff)
	if err != nil {
		return err
	}
	c.EntryDelete(loc.Slot)
	c.Sort()
	return d.writeChunk(loc.ChunkOff, c)
}

// List walks the full chunk sequence and returns every live entry, in
// on-disk (chunk, off_list) order. Intended for diagnostics (pkg/api,
// cmd/clydefs) rather than the hot insert/find path.
func (d *Directory) List() ([]codec.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []codec.Entry
	off := uint64(0)
	for {
		c, err := d.readChunk(off)
		if err != nil {
			return nil, err
		}
		used := int(config.N) - int(c.Header.EntriesFree)
		for i := 0; i < used; i++ {
			slot := c.Header.OffList[i]
			out = append(out, c.Entries[slot])
		}
		if c.Header.LastChunk {
			return out, nil
		}
		off += Stride()
	}
}

// Sub resolves name to its child directory's own (tid, nid), for
// directories-of-directories (original inode.c's child_itbl_tid/nid
// usage, supplemented into spec.md per SPEC_FULL.md §12).
func (d *Directory) Sub(name string) (*ChildRef, error) {
	e, _, err := d.Find(name)
	if err != nil {
		return nil, err
	}
	if !e.HasChild() {
		return nil, clyerr.New(clyerr.Generic, "entry has no child inode table")
	}
	return &ChildRef{Tid: e.ChildItblTid, Nid: e.ChildItblNid}, nil
}
