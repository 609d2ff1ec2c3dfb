package clyerr

import (
	"fmt"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
)

// ReportInvariant is called whenever a structural invariant documented
// in spec §8 is found violated at runtime. It is fatal by design: spec
// §7 classifies invariant violations as unrecoverable.
//
// Debug builds (-tags clydebug) panic with a stack dump so the
// violation is caught at the point of corruption. Release builds
// report the violation to Sentry (best-effort; a missing DSN is a
// silent no-op, matching sentry-go's own documented behavior) and
// return Generic so a caller can unwind cleanly instead of crashing a
// long-running process.
func ReportInvariant(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	reportInvariant(msg)
	return New(Generic, msg)
}

func captureInvariant(msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "clydefs-invariant")
		sentry.CaptureMessage(msg)
	})
}

// debugStack captures a stack dump the same way a debug build's panic
// would, for inclusion in non-fatal release-mode reports.
func debugStack() string {
	return string(debug.Stack())
}
