// Package alice implements Alice's side of the puzzle-solving exchange
// (C8''): she receives Bob's re-randomized puzzle over a REP socket, hands
// it to the Tumbler to decrypt, and forwards the solved witness to Bob over
// a fresh REQ connection. Built on the same router/transport/session
// primitives as pkg/bob and pkg/tumbler, for the reasons given there.
package alice

import (
	"context"

	"github.com/a2lprotocol/a2l-go/internal/logging"
	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/paillier"
	"github.com/a2lprotocol/a2l-go/pkg/router"
	"github.com/a2lprotocol/a2l-go/pkg/session"
	"github.com/a2lprotocol/a2l-go/pkg/transport"
	"github.com/a2lprotocol/a2l-go/pkg/wire"
)

// Table returns Alice's static message-type dispatch table: she only ever
// receives puzzle_share.
func Table() router.Table[*session.AliceSession] {
	return router.Table[*session.AliceSession]{
		wire.TypePuzzleShare: handlePuzzleShare,
	}
}

// handlePuzzleShare records Bob's re-randomized puzzle and acknowledges it
// with puzzle_share_done. The actual decryption happens afterward in Run,
// once this REP round trip has closed, through the SolveFunc passed to Run.
func handlePuzzleShare(_ context.Context, s *session.AliceSession, sock *transport.Socket, data []byte) error {
	const phase = "puzzle_share"

	body, err := wire.UnmarshalPuzzleShare(data)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}
	ct, err := paillier.CiphertextFromBytes(s.Keys.TumblerPK, body.CtAlphaPlusBeta)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}
	s.GToAlphaPlusBeta = body.GToAlphaPlusBeta
	s.CtAlphaPlusBeta = ct

	if err := sock.Send(wire.Frame{Type: wire.TypePuzzleShareDone}); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.PuzzleReceived = true
	return nil
}

// SolveFunc decrypts a re-randomized puzzle ciphertext into its plaintext
// witness. pkg/tumbler.PuzzleSolve (bound to the Tumbler's own secret key)
// satisfies this signature directly; tests may substitute a stub.
type SolveFunc func(ctAlphaPlusBeta *paillier.Ciphertext) (*curve.Scalar, error)

// Run binds aliceAddr, services exactly one puzzle_share round trip from
// Bob, solves the puzzle via solve, and dials bobAddr to deliver
// puzzle_solution_share.
func Run(ctx context.Context, s *session.AliceSession, aliceAddr, bobAddr string, solve SolveFunc, log logging.Logger) error {
	defer func() { _ = s.Close() }()

	ln, err := transport.Listen(aliceAddr)
	if err != nil {
		return a2lerr.Wrap("alice.Run", a2lerr.ErrTransport, err)
	}
	defer func() { _ = ln.Close() }()

	repSock, err := ln.Accept(ctx)
	if err != nil {
		return a2lerr.Wrap("alice.Run", a2lerr.ErrTransport, err)
	}
	s.BobRepSocket = repSock

	table := Table()
	for !s.PuzzleReceived {
		f, ok, err := repSock.TryReceive(transport.DefaultPollInterval)
		if err != nil {
			return a2lerr.Wrap("alice puzzle_share", a2lerr.ErrTransport, err)
		}
		if !ok {
			continue
		}
		if err := router.Dispatch(ctx, table, s, repSock, f); err != nil {
			return err
		}
	}
	log.Info(ctx, "received puzzle_share")

	alphaHat, err := solve(s.CtAlphaPlusBeta)
	if err != nil {
		return a2lerr.Wrap("alice solve", a2lerr.ErrCrypto, err)
	}
	s.AlphaHat = alphaHat

	reqSock, err := transport.Dial(ctx, bobAddr)
	if err != nil {
		return a2lerr.Wrap("alice.Run", a2lerr.ErrTransport, err)
	}
	s.BobReqSocket = reqSock

	outBody := wire.PuzzleSolutionShareBody{AlphaHat: alphaHat}
	if err := reqSock.Send(wire.Frame{Type: wire.TypePuzzleSolutionShare, Data: outBody.Marshal()}); err != nil {
		return a2lerr.Wrap("alice.Run", a2lerr.ErrTransport, err)
	}
	s.SolutionSent = true
	log.Info(ctx, "sent puzzle_solution_share")
	return nil
}
