//go:build !clydebug

package blink

import "github.com/clydefs/clydefs/pkg/clyerr"

// DebugWalk is unavailable in release builds; rebuild with
// -tags clydebug to get a level-by-level key dump.
func (t *Tree) DebugWalk() ([][]uint64, error) {
	return nil, clyerr.New(clyerr.Generic, "DebugWalk requires a build with -tags clydebug")
}
