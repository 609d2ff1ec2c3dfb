//go:build !clydebug

package chunk

// DebugString is unavailable in release builds; rebuild with
// -tags clydebug to get a per-slot entry dump.
func (c *Chunk) DebugString() string {
	return "chunk debug dump requires a build with -tags clydebug"
}
