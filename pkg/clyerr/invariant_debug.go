//go:build clydebug

package clyerr

// reportInvariant panics with a stack dump in debug builds, per spec §7:
// "Invariant violations are fatal: abort in debug builds with stack dump".
func reportInvariant(msg string) {
	panic(msg + "\n" + debugStack())
}
