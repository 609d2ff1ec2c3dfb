// Package chunk implements the on-node chunk format (C6): a fixed-size
// directory-entry container with a bitmap freelist, a sorted order
// vector (off_list) and up to config.N entries, append-on-overflow
// semantics being the directory layer's (pkg/itbl) job, not this
// package's.
//
// Grounded directly on original_source/fs/clydefs/chunk.c
// (cfsc_chunk_init/__flist_entry_alloc/cfsc_chunk_entry_insert/
// cfsc_chunk_sort/cfsc_chunk_entry_delete/chunk_lookup): the freelist
// scan order (LSB-first within a byte), the off_list append position,
// and the binary-search lookup are all taken from there. The
// original's hand-rolled heapsort over off_list is re-expressed with
// the standard library's sort.Slice — no pack example reaches for a
// third-party sort package for an in-memory slice of ~32 elements.
package chunk

import (
	"sort"

	"github.com/clydefs/clydefs/pkg/clyerr"
	"github.com/clydefs/clydefs/pkg/codec"
	"github.com/clydefs/clydefs/pkg/config"
)

// OffsetUnused is the off_list sentinel marking an unused slot
// (spec §6: "OFFSET_UNUSED = 0xFF"). config.N must stay <= 254 so this
// value never collides with a live slot index.
const OffsetUnused uint8 = 0xFF

// Header is a chunk's trailing bookkeeping block.
type Header struct {
	EntriesFree uint8
	LastChunk   bool
	Freelist    []byte // len config.FreelistBytes()
	OffList     []byte // len config.N, off_list[0:used] = live slot indices, name-sorted
}

// HeaderSize is the on-disk size of Header: entries_free(1) +
// last_chunk(1) + freelist + off_list.
func HeaderSize() int {
	return 2 + config.FreelistBytes() + int(config.N)
}

// Size is a chunk's total on-disk size: config.N entry records plus
// the trailing header. This is CHUNK_SIZE per spec §6; the directory
// layer (pkg/itbl) adds config.ChunkTailSlack to get CHUNK_STRIDE.
func Size() int {
	return int(config.N)*codec.EntrySize + HeaderSize()
}

// Chunk is the decoded, in-memory form of one on-node chunk.
type Chunk struct {
	Entries []codec.Entry // len config.N, indexed by slot
	Header  Header
}

// used returns the number of live entries: config.N - EntriesFree.
func (c *Chunk) used() int {
	return int(config.N) - int(c.Header.EntriesFree)
}

// New allocates and initializes an empty tail chunk, matching the
// original's cfsc_chunk_alloc followed by cfsc_chunk_init (the
// original kept allocation and initialization as separate calls
// because the pool allocator could return already-zeroed memory; Go
// always zeroes on make, so there is nothing left for a raw Alloc to
// do beyond what New already does).
func New() *Chunk {
	c := &Chunk{
		Entries: make([]codec.Entry, config.N),
		Header: Header{
			Freelist: make([]byte, config.FreelistBytes()),
			OffList:  make([]byte, config.N),
		},
	}
	c.Init()
	return c
}

// Init resets c to a fresh, empty tail chunk: every slot free, every
// off_list entry unused.
func (c *Chunk) Init() {
	c.Header.EntriesFree = config.N
	c.Header.LastChunk = true

	for i := range c.Header.Freelist {
		c.Header.Freelist[i] = 0xFF
	}
	// Clear any bits beyond config.N when N isn't a multiple of 8, so
	// entry_alloc never hands out a slot index >= N.
	if rem := int(config.N) % 8; rem != 0 {
		lastByte := len(c.Header.Freelist) - 1
		c.Header.Freelist[lastByte] = (1 << uint(rem)) - 1
	}
	for i := range c.Header.OffList {
		c.Header.OffList[i] = OffsetUnused
	}
}

// EntryAlloc finds the lowest-indexed free slot, reserves it and
// returns its index. Fails with ErrChunkFull if no free slot remains;
// per spec §4.4 the tail chunk must never be full without the
// directory layer having already appended a new tail, so a full
// LastChunk chunk here is a structural invariant violation.
func (c *Chunk) EntryAlloc() (uint8, error) {
	if c.Header.EntriesFree == 0 {
		if c.Header.LastChunk {
			return 0, clyerr.ReportInvariant("chunk full (entries_free=0) while still last_chunk")
		}
		return 0, clyerr.ErrChunkFull
	}

	for i, b := range c.Header.Freelist {
		if b == 0 {
			continue
		}
		for j := 0; j < 8; j++ {
			mask := byte(1) << uint(j)
			if b&mask != 0 {
				c.Header.Freelist[i] &^= mask
				return uint8(i*8 + j), nil
			}
		}
	}
	return 0, clyerr.ReportInvariant("entries_free indicated a free slot but none was found in the freelist")
}

// EntryInsert allocates a slot, stores e there and appends the slot to
// the tail of off_list, returning the slot index. Callers must call
// Sort afterward to restore name order (mirrors the original: "you
// may have to sort the chunk entries").
func (c *Chunk) EntryInsert(e *codec.Entry) (uint8, error) {
	before := c.used()
	slot, err := c.EntryAlloc()
	if err != nil {
		return 0, err
	}
	c.Entries[slot] = *e
	c.Header.OffList[before] = slot
	c.Header.EntriesFree--
	return slot, nil
}

// EntryDelete frees slot: marks its freelist bit, clears its off_list
// position, and bumps entries_free. Callers must call Sort afterward
// to compact off_list's name ordering.
func (c *Chunk) EntryDelete(slot uint8) {
	c.Header.Freelist[slot/8] |= 1 << uint(slot%8)
	for i, s := range c.Header.OffList {
		if s == slot {
			c.Header.OffList[i] = OffsetUnused
			break
		}
	}
	c.Header.EntriesFree++
}

// Sort restores off_list[0:used] to ascending name order, compacting
// away the OffsetUnused hole EntryDelete leaves in the middle of the
// live range (entries_free entries are always trailing, never
// interleaved with live ones, once Sort has run).
func (c *Chunk) Sort() {
	used := c.used()
	live := make([]uint8, 0, used)
	for _, s := range c.Header.OffList {
		if s != OffsetUnused {
			live = append(live, s)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return c.Entries[live[i]].NameString() < c.Entries[live[j]].NameString()
	})
	for i := 0; i < used; i++ {
		c.Header.OffList[i] = live[i]
	}
	for i := used; i < len(c.Header.OffList); i++ {
		c.Header.OffList[i] = OffsetUnused
	}
}

// Lookup binary-searches off_list[0:used] for name, returning the
// entry's slot index on success.
func (c *Chunk) Lookup(name string) (slot uint8, found bool) {
	used := c.used()
	lo, hi := 0, used
	for lo < hi {
		mid := lo + (hi-lo)/2
		s := c.Header.OffList[mid]
		cand := c.Entries[s].NameString()
		switch {
		case name < cand:
			hi = mid
		case name > cand:
			lo = mid + 1
		default:
			return s, true
		}
	}
	return 0, false
}

// Encode serializes the chunk into its exact on-disk byte layout:
// config.N entry records followed by the trailing header
// (entries_free, last_chunk, freelist, off_list).
func (c *Chunk) Encode() []byte {
	buf := make([]byte, Size())
	off := 0
	for i := range c.Entries {
		copy(buf[off:off+codec.EntrySize], codec.EncodeEntry(&c.Entries[i]))
		off += codec.EntrySize
	}

	buf[off] = c.Header.EntriesFree
	off++
	if c.Header.LastChunk {
		buf[off] = 1
	}
	off++
	copy(buf[off:], c.Header.Freelist)
	off += len(c.Header.Freelist)
	copy(buf[off:], c.Header.OffList)
	return buf
}

// Decode parses a chunk from its exact on-disk byte layout.
func Decode(data []byte) (*Chunk, error) {
	if len(data) < Size() {
		return nil, clyerr.Newf(clyerr.Generic, "chunk record too short: %d bytes, need %d", len(data), Size())
	}

	c := &Chunk{
		Entries: make([]codec.Entry, config.N),
		Header: Header{
			Freelist: make([]byte, config.FreelistBytes()),
			OffList:  make([]byte, config.N),
		},
	}

	off := 0
	for i := range c.Entries {
		e, err := codec.DecodeEntry(data[off : off+codec.EntrySize])
		if err != nil {
			return nil, err
		}
		c.Entries[i] = *e
		off += codec.EntrySize
	}

	c.Header.EntriesFree = data[off]
	off++
	c.Header.LastChunk = data[off] != 0
	off++
	copy(c.Header.Freelist, data[off:off+len(c.Header.Freelist)])
	off += len(c.Header.Freelist)
	copy(c.Header.OffList, data[off:off+len(c.Header.OffList)])

	return c, nil
}
