// Package zkdl implements the non-interactive Schnorr proof of knowledge of
// a discrete logarithm (C2 in the protocol's message flow): Bob proves to
// the Tumbler, and the Tumbler proves to Bob, that it knows the scalar
// behind a published point, without revealing the scalar itself.
package zkdl

import (
	"crypto/sha256"
	"errors"

	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
)

var (
	errMismatch     = errors.New("zkdl: verification equation does not hold")
	errMissingField = errors.New("zkdl: proof is missing A or Z")
)

// Proof is a non-interactive Schnorr proof of knowledge of x such that
// X = x*G, for the generator G of the secp256k1 group.
type Proof struct {
	A *curve.Point  // commitment k*G
	Z *curve.Scalar // response k + e*x
}

// Prove produces a proof that the prover knows x, the discrete log of X
// base the group generator. Callers must pass the X that actually
// corresponds to x; Prove does not recompute or check it.
func Prove(x *curve.Scalar, X *curve.Point) (Proof, error) {
	k, err := curve.RandomScalar()
	if err != nil {
		return Proof{}, a2lerr.Wrap("zkdl.Prove", a2lerr.ErrCrypto, err)
	}
	A := curve.MulGenerator(k)

	e := challenge(X, A)
	z := k.Add(e.Mul(x))

	return Proof{A: A, Z: z}, nil
}

// Verify checks that pi is a valid proof of knowledge of the discrete log
// of X. It returns a2lerr.ErrInvalidProof (wrapped) on any failure.
func Verify(pi Proof, X *curve.Point) error {
	if pi.A == nil || pi.Z == nil {
		return a2lerr.Wrap("zkdl.Verify", a2lerr.ErrInvalidProof, errMissingField)
	}

	e := challenge(X, pi.A)

	lhs := curve.MulGenerator(pi.Z)

	eX, err := X.Mul(e)
	if err != nil {
		return a2lerr.Wrap("zkdl.Verify", a2lerr.ErrInvalidProof, err)
	}
	rhs, err := pi.A.Add(eX)
	if err != nil {
		return a2lerr.Wrap("zkdl.Verify", a2lerr.ErrInvalidProof, err)
	}

	if !lhs.Equal(rhs) {
		return a2lerr.Wrap("zkdl.Verify", a2lerr.ErrInvalidProof, errMismatch)
	}
	return nil
}

// challenge derives the Fiat-Shamir challenge e = H(g || X || A) mod q.
func challenge(X, A *curve.Point) *curve.Scalar {
	h := sha256.New()
	h.Write(curve.Generator().Bytes())
	h.Write(X.Bytes())
	h.Write(A.Bytes())
	sum := h.Sum(nil)

	e, err := curve.NewScalarFromBytes(sum)
	if err != nil {
		// sha256 always yields exactly 32 bytes, so this cannot fail.
		panic(err)
	}
	return e
}

