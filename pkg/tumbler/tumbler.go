// Package tumbler implements the Tumbler's side of the promise phase
// (SPEC_FULL.md §4.8'), the counterpart spec.md treats as an external
// collaborator to Bob's normatively specified FSM. It is shipped here,
// alongside pkg/alice, so the shared codec/ZK-DL/commitment/Paillier/
// Schnorr-core/session/router/transport modules can be exercised end to
// end (spec.md §8's E1-E5 scenarios) rather than left untested.
package tumbler

import (
	"context"
	"math/big"

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

// pi2Store carries the Tumbler's own nonce proof between promise_init and
// promise_sign. It is not part of session.TumblerSession's normative field
// set (which only names the data spec.md's BobSession-shaped invariants
// require); keeping it in a side table keyed by session pointer avoids
// widening the shared session package with a Tumbler-only implementation
// detail.
var pi2Store = map[*session.TumblerSession]zkdl.Proof{}

// Table returns the Tumbler's static message-type dispatch table.
func Table() router.Table[*session.TumblerSession] {
	return router.Table[*session.TumblerSession]{
		wire.TypePromiseInit: handlePromiseInit,
		wire.TypePromiseSign: handlePromiseSign,
		wire.TypePromiseEnd:  handlePromiseEnd,
	}
}

// handlePromiseInit draws the session's secret alpha and the Tumbler's own
// promise-phase nonce, commits to the nonce's public form, and replies
// with promise_init_done.
func handlePromiseInit(_ context.Context, s *session.TumblerSession, sock *transport.Socket, _ []byte) error {
	const phase = "T0_Init->T1_PromiseInitSent"

	alpha, err := curve.RandomScalar()
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	gAlpha := curve.MulGenerator(alpha)

	ctxAlpha, err := paillier.Encrypt(s.Keys.Paillier.PK, alpha.Bytes())
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}

	piAlpha, err := zkdl.Prove(alpha, gAlpha)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}

	k2, r2, err := schnorrcore.GenerateNonce()
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	pi2, err := zkdl.Prove(k2, r2)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}

	committedPoint, err := r2.Add(pi2.A)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}
	com, err := commitment.Commit(committedPoint)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrCrypto, err)
	}

	s.Alpha = alpha
	s.GToAlpha = gAlpha
	s.CtxAlpha = ctxAlpha
	s.K2Prime = k2
	s.R2Prime = r2
	pi2Store[s] = pi2

	outBody := wire.PromiseInitDoneBody{
		GToAlpha: gAlpha,
		Com:      com,
		Proof:    piAlpha,
		CtxAlpha: ctxAlpha.Bytes(),
	}
	if err := sock.Send(wire.Frame{Type: wire.TypePromiseInitDone, Data: outBody.Marshal()}); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.PromiseInitSent = true
	return nil
}

// handlePromiseSign derives the shared challenge from Bob's nonce, its own
// nonce, and the puzzle point, computes its own partial signature, and
// replies with promise_sign_done: the Tumbler's own nonce and proof
// (already fixed at promise_init time, now revealed) plus s_2'.
func handlePromiseSign(_ context.Context, s *session.TumblerSession, sock *transport.Socket, data []byte) error {
	const phase = "T1_PromiseInitSent->T2_PromiseSignSent"

	body, err := wire.UnmarshalPromiseSign(data)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}
	if err := zkdl.Verify(body.Proof, body.R1); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidProof, err)
	}

	rCombined, err := body.R1.Add(s.R2Prime)
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

	s2 := schnorrcore.PartialSign(s.K2Prime, s.Keys.Schnorr.SK, e)

	pi2 := pi2Store[s]
	outBody := wire.PromiseSignDoneBody{R2: s.R2Prime, Proof: pi2, S2: s2}
	if err := sock.Send(wire.Frame{Type: wire.TypePromiseSignDone, Data: outBody.Marshal()}); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.PromiseSignSent = true
	return nil
}

// handlePromiseEnd records Bob's completed almost-signature and replies
// with promise_end_done, completing the promise phase.
func handlePromiseEnd(_ context.Context, s *session.TumblerSession, sock *transport.Socket, data []byte) error {
	const phase = "T2_PromiseSignSent->T3_Done"

	body, err := wire.UnmarshalPromiseEnd(data)
	if err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrInvalidMessage, err)
	}
	s.BobSPrime = body.SPrime

	if err := sock.Send(wire.Frame{Type: wire.TypePromiseEndDone}); err != nil {
		return a2lerr.Wrap(phase, a2lerr.ErrTransport, err)
	}
	s.Done = true
	delete(pi2Store, s)
	return nil
}

// RunPromisePhase binds a REP listener at tumblerAddr, accepts Bob's
// connection, and services promise_init/promise_sign/promise_end until the
// session is Done.
func RunPromisePhase(ctx context.Context, s *session.TumblerSession, tumblerAddr string, log logging.Logger) error {
	ln, err := transport.Listen(tumblerAddr)
	if err != nil {
		return a2lerr.Wrap("tumbler.RunPromisePhase", a2lerr.ErrTransport, err)
	}
	defer func() { _ = ln.Close() }()

	sock, err := ln.Accept(ctx)
	if err != nil {
		return a2lerr.Wrap("tumbler.RunPromisePhase", a2lerr.ErrTransport, err)
	}
	s.BobSocket = sock
	defer func() { _ = s.Close() }()

	table := Table()
	for !s.Done {
		f, ok, err := sock.TryReceive(transport.DefaultPollInterval)
		if err != nil {
			return a2lerr.Wrap("tumbler promise phase", a2lerr.ErrTransport, err)
		}
		if !ok {
			continue
		}
		if err := router.Dispatch(ctx, table, s, sock, f); err != nil {
			return err
		}
	}
	log.Info(ctx, "promise phase complete")
	return nil
}

// PuzzleSolve decrypts a re-randomized puzzle ciphertext and returns the
// underlying plaintext scalar (alpha+beta from Bob's blinding), reduced mod
// q. Per SPEC_FULL.md §4.8', the full Tumbler-Alice promise/solve exchange
// that would normally produce this value is out of scope; this direct call
// stands in for it.
func PuzzleSolve(sk *paillier.SecretKey, ctAlphaPlusBeta *paillier.Ciphertext) (*curve.Scalar, error) {
	plain := paillier.Decrypt(sk, ctAlphaPlusBeta)
	s, err := curve.NewScalarFromBytes(padToScalar(plain))
	if err != nil {
		return nil, a2lerr.Wrap("tumbler.PuzzleSolve", a2lerr.ErrCrypto, err)
	}
	return s, nil
}

func padToScalar(b []byte) []byte {
	if len(b) == curve.ScalarBytes {
		return b
	}
	if len(b) > curve.ScalarBytes {
		// Reduce mod the secp256k1 group order q rather than dropping the
		// high bytes, so alpha+beta >= 2^256 still maps to (alpha+beta) mod q.
		q, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
		return new(big.Int).Mod(new(big.Int).SetBytes(b), q).FillBytes(make([]byte, curve.ScalarBytes))
	}
	out := make([]byte, curve.ScalarBytes)
	copy(out[curve.ScalarBytes-len(b):], b)
	return out
}
