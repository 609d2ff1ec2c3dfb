//go:build clydebug

package chunk

import "fmt"

// DebugString renders off_list, the freelist bitmap and every live
// entry's name in slot order, for harness failure output. Compiled
// only under the clydebug build tag so it never ships in a release
// binary.
func (c *Chunk) DebugString() string {
	s := fmt.Sprintf("entries_free=%d last_chunk=%v off_list=%v\n", c.Header.EntriesFree, c.Header.LastChunk, c.Header.OffList)
	used := c.used()
	for i := 0; i < used; i++ {
		slot := c.Header.OffList[i]
		s += fmt.Sprintf("  [%d] slot=%d name=%q ino=%d\n", i, slot, c.Entries[slot].NameString(), c.Entries[slot].Ino)
	}
	return s
}
