// Package clyerr defines the domain error taxonomy shared by the tree
// engine, the directory layer and the tree-interface ABI.
//
// Errors carry both a Go-native sentinel (usable with errors.Is) and a
// Code that encodes the bitmask the external ABI (spec §6) exposes to
// callers that only speak integers across the tree-interface boundary.
package clyerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code is the ABI-level error classification. Values are chosen so the
// Generic bit (1) is always set, matching the bitmask layout documented
// for the tree-interface ABI.
type Code uint32

const (
	Generic     Code = 1
	AllocFailed Code = 5
	NoSuchTree  Code = 9
	NoSuchNode  Code = 17
	Busy        Code = 33
	IoFail      Code = 65
)

func (c Code) String() string {
	switch c {
	case Generic:
		return "generic"
	case AllocFailed:
		return "alloc_failed"
	case NoSuchTree:
		return "no_such_tree"
	case NoSuchNode:
		return "no_such_node"
	case Busy:
		return "busy"
	case IoFail:
		return "io"
	default:
		return fmt.Sprintf("code(%d)", uint32(c))
	}
}

// domainError is the concrete error type returned across the module.
// It wraps an optional cause with cockroachdb/errors so callers get a
// real cause chain (errors.Is / errors.As keep working) while still
// exposing the ABI code via Encode.
type domainError struct {
	code  Code
	msg   string
	cause error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *domainError) Unwrap() error { return e.cause }

// Encode recovers the ABI bitmask for this error.
func (e *domainError) Encode() uint32 { return uint32(e.code) }

// New creates a domain error with no cause.
func New(code Code, msg string) error {
	return &domainError{code: code, msg: msg}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...interface{}) error {
	return &domainError{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Code to an existing error, preserving it as the cause.
func Wrap(cause error, code Code, msg string) error {
	if cause == nil {
		return nil
	}
	return &domainError{code: code, msg: msg, cause: cause}
}

// Encode returns the ABI bitmask for any error produced by this
// package, or Generic for an error from elsewhere. A nil error encodes
// to 0, matching the ABI's "0 on success" convention.
func Encode(err error) uint32 {
	if err == nil {
		return 0
	}
	var de *domainError
	if errors.As(err, &de) {
		return de.Encode()
	}
	return uint32(Generic)
}

// Is reports whether err (or any error in its chain) carries the given
// Code.
func Is(err error, code Code) bool {
	for err != nil {
		var de *domainError
		if !errors.As(err, &de) {
			return false
		}
		if de.code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// Sentinel errors for conditions spec §7 classifies as "domain errors
// recovered locally": callers are expected to branch on these with
// errors.Is rather than inspect a Code.
var (
	// ErrKeyExists names the key-already-present condition. blink's
	// Insert treats that condition as a no-op success and returns nil,
	// not this error.
	ErrKeyExists = errors.New("key already exists")
	// ErrNotFound covers both NoSuchEntry (chunk/itbl level) and
	// NoSuchNode (engine level) "not found" conditions.
	ErrNotFound = errors.New("not found")
	// ErrChunkFull is returned by the chunk module when entry_alloc
	// finds no free slot; the directory layer reacts by appending a
	// new tail chunk.
	ErrChunkFull = errors.New("chunk full")
	// ErrOutOfRange is returned when a node_read/node_write offset+len
	// falls outside the addressed payload.
	ErrOutOfRange = errors.New("offset+len out of range")
)
