// Package session holds the per-role in-memory state a protocol session
// accumulates as it runs (C6): long-term key material, transient
// randomness, received commitments/ciphertexts, and completion flags. A
// session is created on protocol entry, mutated only by its owning role's
// handlers in response to one inbound message at a time, and released on
// every exit path via Close, matching spec.md §4.6's "opaque allocation
// with scoped acquisition and guaranteed release" and the teacher's
// zeroizeBytes/cbmpc.ZeroizeBytes discipline for secret material (see e.g.
// pkg/cbmpc/curve/scalar.go in the teacher repo).
package session

import (
	"github.com/a2lprotocol/a2l-go/pkg/commitment"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/keys"
	"github.com/a2lprotocol/a2l-go/pkg/paillier"
	"github.com/a2lprotocol/a2l-go/pkg/transport"
)

// BobState is the explicit FSM state recorded on the session in place of the
// distilled source's global completion flags. pkg/bob's outer loops poll the
// session's completion flags (PromiseCompleted, PuzzleShared, PuzzleSolved),
// never package-level variables; State records which transition last ran.
type BobState int

const (
	S0Init BobState = iota
	S1PromiseStarted
	S2AwaitPromiseSign
	S3AwaitPromiseEnd
	S4PromiseDone
	S5PuzzleShareSent
	S6PuzzleShared
	S7AwaitSolution
	S8PuzzleSolved
)

func (s BobState) String() string {
	names := [...]string{
		"S0_Init", "S1_PromiseStarted", "S2_AwaitPromiseSign", "S3_AwaitPromiseEnd",
		"S4_PromiseDone", "S5_PuzzleShareSent", "S6_PuzzleShared", "S7_AwaitSolution",
		"S8_PuzzleSolved",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "S?_Unknown"
	}
	return names[s]
}

// BobSession is Bob's full per-session memory, exactly spec.md §3's
// BobSession plus the sockets and FSM state needed to drive it.
type BobSession struct {
	Keys keys.KeyBundle
	Tx   []byte // the transaction Bob wants a signature over

	State BobState

	// Fields received from the Tumbler during the promise phase.
	GToAlpha *curve.Point
	CtxAlpha *paillier.Ciphertext
	Com      commitment.Commitment

	// Bob's own signing nonce for the promise phase.
	K1Prime *curve.Scalar
	R1Prime *curve.Point

	// The almost-signature under construction.
	EPrime *curve.Scalar
	SPrime *curve.Scalar

	// Beta is the blinding scalar Bob draws to re-randomize the puzzle
	// before forwarding it to Alice.
	Beta *curve.Scalar

	// Completion flags, retained (per spec.md §3) as session fields the
	// outer loop polls, even though State now also encodes phase progress.
	PromiseCompleted bool
	PuzzleShared     bool
	PuzzleSolved     bool

	// verified records the outcome of the final Schnorr check independent
	// of PuzzleSolved, addressing spec.md §9's own suggestion that
	// implementers "may prefer to distinguish" a solved-but-invalid session
	// from a genuinely successful one, without changing the wire-visible
	// flag semantics (see DESIGN.md Open Question decision #2).
	verified bool
	SFinal   *curve.Scalar

	// Sockets currently bound to this session. During the promise phase only
	// TumblerSocket is set, during the puzzle-share phase only AliceReqSocket,
	// and during the solution phase both AliceRepListener and the
	// AliceRepSocket it accepted. Close closes whichever are set,
	// unconditionally, per spec.md §9's open-question resolution.
	TumblerSocket   *transport.Socket
	AliceReqSocket  *transport.Socket
	AliceRepListener *transport.Listener
	AliceRepSocket  *transport.Socket
}

// NewBobSession allocates a fresh session in state S0_Init.
func NewBobSession(k keys.KeyBundle, tx []byte) *BobSession {
	return &BobSession{Keys: k, Tx: tx, State: S0Init}
}

// Verified reports whether the final Schnorr verification in
// puzzle_solution_share's handler actually succeeded. PuzzleSolved is set
// whenever that handler runs to completion (even on a bad solution, per
// spec.md's preserved behavior) so the outer loop exits either way;
// Verified lets a caller tell the two cases apart.
func (s *BobSession) Verified() bool { return s.verified }

// MarkVerified records the final verification outcome; called only by
// pkg/bob's puzzle_solution_share handler.
func (s *BobSession) MarkVerified(ok bool) { s.verified = ok }

// Close zeroizes every secret scalar this session holds and releases
// whichever socket is currently bound, on every exit path (success, error,
// or abort) per spec.md §5's resource discipline. It is safe to call more
// than once.
func (s *BobSession) Close() error {
	zeroizeIfSet(s.K1Prime)
	zeroizeIfSet(s.SPrime)
	zeroizeIfSet(s.EPrime)
	zeroizeIfSet(s.Beta)
	zeroizeIfSet(s.SFinal)

	var err error
	if s.TumblerSocket != nil {
		err = firstErr(err, s.TumblerSocket.Close())
	}
	if s.AliceReqSocket != nil {
		err = firstErr(err, s.AliceReqSocket.Close())
	}
	if s.AliceRepSocket != nil {
		err = firstErr(err, s.AliceRepSocket.Close())
	}
	if s.AliceRepListener != nil {
		err = firstErr(err, s.AliceRepListener.Close())
	}
	return err
}

func zeroizeIfSet(s *curve.Scalar) {
	if s != nil {
		s.Zeroize()
	}
}

func firstErr(existing, next error) error {
	if existing != nil {
		return existing
	}
	return next
}

// TumblerSession is the Tumbler's per-session memory: its own long-term
// keys, the secret alpha it chose for this session, the nonce/commitment
// opening it owes Bob, and completion flags mirroring Bob's, per
// SPEC_FULL.md §3.
type TumblerSession struct {
	Keys keys.KeyBundle
	Tx   []byte

	Alpha    *curve.Scalar
	GToAlpha *curve.Point
	CtxAlpha *paillier.Ciphertext

	// K2Prime/R2Prime is the Tumbler's own signing nonce for the promise
	// phase. CommitOpening names the blinder of the commitment to R2Prime+A2;
	// pkg/tumbler does not set it, since that blinder travels to Bob as part
	// of the commitment in promise_init_done.
	K2Prime       *curve.Scalar
	R2Prime       *curve.Point
	CommitOpening *curve.Point

	BobSPrime *curve.Scalar

	PromiseInitSent bool
	PromiseSignSent bool
	Done            bool

	BobSocket *transport.Socket
}

// NewTumblerSession allocates a fresh Tumbler session.
func NewTumblerSession(k keys.KeyBundle, tx []byte) *TumblerSession {
	return &TumblerSession{Keys: k, Tx: tx}
}

// Close zeroizes the Tumbler's session-local secrets and its bound socket.
func (s *TumblerSession) Close() error {
	zeroizeIfSet(s.Alpha)
	zeroizeIfSet(s.K2Prime)
	if s.BobSocket != nil {
		return s.BobSocket.Close()
	}
	return nil
}

// AliceSession is Alice's per-session memory: the transaction she wants
// Tumbler's signature over (relayed through Bob), the puzzle share Bob
// forwards, and the solved alpha_hat, per SPEC_FULL.md §3.
type AliceSession struct {
	Keys keys.KeyBundle
	Tx   []byte

	GToAlphaPlusBeta *curve.Point
	CtAlphaPlusBeta  *paillier.Ciphertext
	AlphaHat         *curve.Scalar

	PuzzleReceived bool
	SolutionSent   bool

	BobReqSocket *transport.Socket
	BobRepSocket *transport.Socket
}

// NewAliceSession allocates a fresh Alice session.
func NewAliceSession(k keys.KeyBundle, tx []byte) *AliceSession {
	return &AliceSession{Keys: k, Tx: tx}
}

// Close zeroizes Alice's session-local secrets and releases her sockets.
func (s *AliceSession) Close() error {
	zeroizeIfSet(s.AlphaHat)
	var err error
	if s.BobReqSocket != nil {
		err = firstErr(err, s.BobReqSocket.Close())
	}
	if s.BobRepSocket != nil {
		err = firstErr(err, s.BobRepSocket.Close())
	}
	return err
}
