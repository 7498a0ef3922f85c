// Package bob implements Bob's side of the A2L tumbler protocol (C8): the
// three-phase state machine described in spec.md §4.8, built entirely on
// top of the shared codec, ZK-DL, commitment, Paillier, Schnorr-core,
// session, router, and transport packages. This is this repository's
// primary deliverable.
package bob

import (
	"context"
	"time"

	"github.com/a2lprotocol/a2l-go/internal/logging"
	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
	"github.com/a2lprotocol/a2l-go/pkg/commitment"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/paillier"
	"github.com/a2lprotocol/a2l-go/pkg/router"
	"github.com/a2lprotocol/a2l-go/pkg/schnorrcore"
	"github.com/a2lprotocol/a2l-go/pkg/session"
	"github.com/a2lprotocol/a2l-go/pkg/transport"
	"github.com/a2lprotocol/a2l-go/pkg/wire"
	"github.com/a2lprotocol/a2l-go/pkg/zkdl"
)

// Table returns Bob's static message-type dispatch table (C7 instantiated
// for *session.BobSession), matching spec.md §4.7's recognized type set:
// promise_init_done, promise_sign_done, promise_end_done, puzzle_share_done,
// puzzle_solution_share.
func Table() router.Table[*session.BobSession] {
	return router.Table[*session.BobSession]{
		wire.TypePromiseInitDone:     handlePromiseInitDone,
		wire.TypePromiseSignDone:     handlePromiseSignDone,
		wire.TypePromiseEndDone:      handlePromiseEndDone,
		wire.TypePuzzleShareDone:     handlePuzzleShareDone,
		wire.TypePuzzleSolutionShare: handlePuzzleSolutionShare,
	}
}

// handlePromiseInitDone implements S1->S2 of spec.md §4.8: store the
// puzzle Tumbler published, verify its proof, draw Bob's own signing
// nonce, and reply with promise_sign.
func handlePromiseInitDone(_ context.Context, s *session.BobSession, sock *transport.Socket, data []byte) error {
	const phase = "S1_PromiseStarted->S2_AwaitPromiseSign"

	body, err := wire.UnmarshalPromiseInitDone(data)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}

	if err := zkdl.Verify(body.Proof, body.GToAlpha); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidProof, err)
	}

	ctxAlpha, err := paillier.CiphertextFromBytes(s.Keys.TumblerPK, body.CtxAlpha)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}

	s.GToAlpha = body.GToAlpha
	s.Com = body.Com
	s.CtxAlpha = ctxAlpha

	k1, r1, err := schnorrcore.GenerateNonce()
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	s.K1Prime = k1
	s.R1Prime = r1

	pi1, err := zkdl.Prove(k1, r1)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}

	outBody := wire.PromiseSignBody{R1: r1, Proof: pi1}
	if err := sock.Send(wire.Frame{Type: wire.TypePromiseSign, Data: outBody.Marshal()}); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}

	s.State = session.S2AwaitPromiseSign
	return nil
}

// handlePromiseSignDone implements S2->S3 of spec.md §4.8: decommit and
// verify Tumbler's nonce and proof, derive the shared challenge, verify
// Tumbler's partial signature, combine Bob's own partial, and reply with
// promise_end.
func handlePromiseSignDone(_ context.Context, s *session.BobSession, sock *transport.Socket, data []byte) error {
	const phase = "S2_AwaitPromiseSign->S3_AwaitPromiseEnd"

	body, err := wire.UnmarshalPromiseSignDone(data)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}

	committed, err := body.R2.Add(body.Proof.A)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	if err := commitment.Decommit(s.Com, committed); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidCommitment, err)
	}

	if err := zkdl.Verify(body.Proof, body.R2); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidProof, err)
	}

	rCombined, err := s.R1Prime.Add(body.R2)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	rCombined, err = rCombined.Add(s.GToAlpha)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}

	e, err := schnorrcore.Challenge(s.Tx, rCombined)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	s.EPrime = e

	pkT, err := tumblerPublicShare(s)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	if err := schnorrcore.VerifyPartial(body.S2, body.R2, pkT, e); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrBadPartialSig, err)
	}

	s1 := schnorrcore.PartialSign(s.K1Prime, s.Keys.Schnorr.SK, e)
	s.SPrime = schnorrcore.CombinePartial(s1, body.S2)

	outBody := wire.PromiseEndBody{SPrime: s.SPrime}
	if err := sock.Send(wire.Frame{Type: wire.TypePromiseEnd, Data: outBody.Marshal()}); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}

	s.State = session.S3AwaitPromiseEnd
	return nil
}

// handlePromiseEndDone implements S3->S4 of spec.md §4.8: the promise
// phase is complete, and Bob's socket to the Tumbler is closed.
func handlePromiseEndDone(_ context.Context, s *session.BobSession, _ *transport.Socket, _ []byte) error {
	s.PromiseCompleted = true
	s.State = session.S4PromiseDone
	if s.TumblerSocket != nil {
		_ = s.TumblerSocket.Close()
		s.TumblerSocket = nil
	}
	return nil
}

// handlePuzzleShareDone implements S5->S6 of spec.md §4.8: the puzzle-
// share round trip to Alice is acknowledged; close that REQ socket so a
// fresh REP listener can be bound for the solution phase.
func handlePuzzleShareDone(_ context.Context, s *session.BobSession, _ *transport.Socket, _ []byte) error {
	s.PuzzleShared = true
	s.State = session.S6PuzzleShared
	if s.AliceReqSocket != nil {
		_ = s.AliceReqSocket.Close()
		s.AliceReqSocket = nil
	}
	return nil
}

// handlePuzzleSolutionShare implements S6->S7->S8 of spec.md §4.8: recover
// alpha from Alice's re-randomized solution, complete the almost-signature,
// and run the final Schnorr verification. PUZZLE_SOLVED is set whether or
// not the final check passes (spec.md's preserved behavior, so the outer
// loop always exits); session.BobSession.Verified reports which happened
// (see DESIGN.md Open Question decision #2).
func handlePuzzleSolutionShare(_ context.Context, s *session.BobSession, _ *transport.Socket, data []byte) error {
	const phase = "S6_PuzzleShared->S8_PuzzleSolved"

	body, err := wire.UnmarshalPuzzleSolutionShare(data)
	if err != nil {
		s.PuzzleSolved = true
		s.State = session.S8PuzzleSolved
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}

	alpha := body.AlphaHat.Sub(s.Beta)
	sFinal := schnorrcore.CompleteWithWitness(s.SPrime, alpha)
	s.SFinal = sFinal

	pk := s.Keys.ChannelPK
	verifyErr := schnorrcore.VerifyFinal(s.Tx, pk, sFinal, s.EPrime)

	s.PuzzleSolved = true
	s.State = session.S8PuzzleSolved
	s.MarkVerified(verifyErr == nil)

	if verifyErr != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrBadSolution, verifyErr)
	}
	return nil
}

// tumblerPublicShare derives pk_T = ChannelPK - g^sk_B, the Tumbler's own
// public key expressed algebraically from the combined channel key and
// Bob's own key, per spec.md §4.5.
func tumblerPublicShare(s *session.BobSession) (*curve.Point, error) {
	pkB := s.Keys.Schnorr.PK
	return s.Keys.ChannelPK.Add(pkB.Negate())
}

// Endpoints bundles the three fixed transport addresses spec.md §6 names.
type Endpoints struct {
	Tumbler string
	Alice   string
	Bob     string // BOB_ENDPOINT, where Bob listens for Alice's solution
}

// Run drives Bob's FSM end to end over real or in-process sockets: dial
// the Tumbler and run the promise phase, then dial Alice and run the
// puzzle-share phase, then bind BOB_ENDPOINT and run the solution phase.
// It returns nil only if the session completed AND the final signature
// verified; otherwise it returns the first fatal error encountered (which
// may be a2lerr.ErrBadSolution even though PuzzleSolved ends up true, per
// spec.md §9's open question).
func Run(ctx context.Context, s *session.BobSession, ep Endpoints, log logging.Logger) error {
	defer func() { _ = s.Close() }()

	if err := runPromisePhase(ctx, s, ep.Tumbler, log); err != nil {
		return err
	}
	if err := runPuzzleSharePhase(ctx, s, ep.Alice, log); err != nil {
		return err
	}
	if err := runSolutionPhase(ctx, s, ep.Bob, log); err != nil {
		return err
	}
	if !s.Verified() {
		return a2lerr.Wrap("S8_PuzzleSolved", a2lerr.ErrBadSolution, nil)
	}
	return nil
}

func runPromisePhase(ctx context.Context, s *session.BobSession, tumblerAddr string, log logging.Logger) error {
	sock, err := transport.Dial(ctx, tumblerAddr)
	if err != nil {
		return a2lerr.Wrap("S0_Init->S1_PromiseStarted", a2lerr.ErrTransport, err)
	}
	s.TumblerSocket = sock

	if err := sock.Send(wire.Frame{Type: wire.TypePromiseInit}); err != nil {
		return a2lerr.Wrap("S0_Init->S1_PromiseStarted", a2lerr.ErrTransport, err)
	}
	s.State = session.S1PromiseStarted
	log.Info(ctx, "sent promise_init")

	table := Table()
	for !s.PromiseCompleted {
		f, ok, err := sock.TryReceive(transport.DefaultPollInterval)
		if err != nil {
			return a2lerr.Wrap("promise phase", a2lerr.ErrTransport, err)
		}
		if !ok {
			continue
		}
		if err := router.Dispatch(ctx, table, s, sock, f); err != nil {
			return err
		}
	}
	return nil
}

func runPuzzleSharePhase(ctx context.Context, s *session.BobSession, aliceAddr string, log logging.Logger) error {
	const phase = "S4_PromiseDone->S5_PuzzleShareSent"

	beta, err := curve.RandomScalar()
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	s.Beta = beta

	gBeta := curve.MulGenerator(beta)
	gAlphaPlusBeta, err := s.GToAlpha.Add(gBeta)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}

	ctBeta, err := paillier.Encrypt(s.Keys.TumblerPK, beta.Bytes())
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	ctAlphaPlusBeta := paillier.Add(s.Keys.TumblerPK, s.CtxAlpha, ctBeta)

	sock, err := transport.Dial(ctx, aliceAddr)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.AliceReqSocket = sock

	outBody := wire.PuzzleShareBody{GToAlphaPlusBeta: gAlphaPlusBeta, CtAlphaPlusBeta: ctAlphaPlusBeta.Bytes()}
	if err := sock.Send(wire.Frame{Type: wire.TypePuzzleShare, Data: outBody.Marshal()}); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.State = session.S5PuzzleShareSent
	log.Info(ctx, "sent puzzle_share")

	table := Table()
	for !s.PuzzleShared {
		f, ok, err := sock.TryReceive(transport.DefaultPollInterval)
		if err != nil {
			return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
		}
		if !ok {
			continue
		}
		if err := router.Dispatch(ctx, table, s, sock, f); err != nil {
			return err
		}
	}
	return nil
}

func runSolutionPhase(ctx context.Context, s *session.BobSession, bobAddr string, log logging.Logger) error {
	const phase = "S6_PuzzleShared->S7_AwaitSolution"

	ln, err := transport.Listen(bobAddr)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.AliceRepListener = ln

	acceptCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	sock, err := ln.Accept(acceptCtx)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.AliceRepSocket = sock
	s.State = session.S7AwaitSolution
	log.Info(ctx, "listening for puzzle_solution_share")

	table := Table()
	for !s.PuzzleSolved {
		f, ok, err := sock.TryReceive(transport.DefaultPollInterval)
		if err != nil {
			return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
		}
		if !ok {
			continue
		}
		if dispatchErr := router.Dispatch(ctx, table, s, sock, f); dispatchErr != nil {
			// handlePuzzleSolutionShare sets PUZZLE_SOLVED itself even on a
			// bad solution, so the loop exits either way; the error still
			// propagates to the caller as the session's failure reason.
			return dispatchErr
		}
	}
	return nil
}
