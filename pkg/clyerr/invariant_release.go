//go:build !clydebug

package clyerr

// reportInvariant reports the violation to Sentry and returns,
// per spec §7: "in release, return Generic" instead of aborting.
func reportInvariant(msg string) {
	captureInvariant(msg)
}
