// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import "errors"

// Logs errors. These are programming or lookup errors, distinct from
// RejectReason which records an ordinary admission outcome.
var (
	// ErrUnknownFragment is returned when a status or removal lookup
	// names an id the Logs index does not hold (never inserted, or
	// since evicted).
	ErrUnknownFragment = errors.New("fragment: unknown fragment id")

	// ErrTerminalStatus is returned by an attempt to overwrite a status
	// that has already reached a terminal state with a second, different
	// terminal state. Transitioning the same terminal status twice with
	// an identical value is a no-op, not an error.
	ErrTerminalStatus = errors.New("fragment: fragment status is already terminal")

	// ErrProcessorClosed is returned by Processor methods invoked after
	// Shutdown has been called.
	ErrProcessorClosed = errors.New("fragment: processor is shut down")
)

// PersistentLogError wraps a failure from the persistent log writer with
// the operation being attempted, mirroring how luxfi/evm wraps low-level
// I/O failures (see core/rawdb error wrapping) instead of leaking a bare
// *os.PathError up through the processing core.
type PersistentLogError struct {
	Op  string // "open", "write", "sync"
	Dir string
	Err error
}

func (e *PersistentLogError) Error() string {
	return "fragment: persistent log " + e.Op + " in " + e.Dir + ": " + e.Err.Error()
}

func (e *PersistentLogError) Unwrap() error { return e.Err }
