// Package a2lerr defines the sentinel error kinds a session handler can
// fail with, plus a Phase-wrapping error type so a failure names both the
// kind of check that failed and the FSM transition it failed during.
package a2lerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMessage indicates an unknown type string or a malformed frame.
	ErrInvalidMessage = errors.New("a2l: invalid message")

	// ErrInvalidProof indicates a ZK-DL verification failure.
	ErrInvalidProof = errors.New("a2l: invalid proof")

	// ErrInvalidCommitment indicates a decommitment mismatch.
	ErrInvalidCommitment = errors.New("a2l: invalid commitment")

	// ErrBadPartialSig indicates a counterparty's partial signature does not check.
	ErrBadPartialSig = errors.New("a2l: bad partial signature")

	// ErrBadSolution indicates the final Schnorr verification failed.
	ErrBadSolution = errors.New("a2l: bad solution")

	// ErrCrypto indicates an underlying primitive reported failure.
	ErrCrypto = errors.New("a2l: crypto error")

	// ErrTransport indicates a send/recv/bind/connect failure.
	ErrTransport = errors.New("a2l: transport error")

	// ErrState indicates a handler ran with missing state or an incompatible phase.
	ErrState = errors.New("a2l: state error")

	// ErrUnknownMessage indicates the router has no handler for a type string.
	ErrUnknownMessage = errors.New("a2l: unknown message type")
)

// Error wraps a sentinel kind with the FSM phase that was executing when it
// occurred, so callers get a single diagnostic line naming both.
type Error struct {
	Phase string // e.g. "S1_PromiseStarted->S2_AwaitPromiseSign"
	Kind  error  // one of the sentinels above
	Err   error  // underlying detail, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("a2l[%s]: %v: %v", e.Phase, e.Kind, e.Err)
	}
	return fmt.Sprintf("a2l[%s]: %v", e.Phase, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Wrap builds a phase-tagged Error. detail may be nil.
func Wrap(phase string, kind error, detail error) error {
	return &Error{Phase: phase, Kind: kind, Err: detail}
}
