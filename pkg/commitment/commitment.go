// Package commitment implements the hash-based commitment Bob and the
// Tumbler use to commit to a nonce point before revealing it, so neither
// side can choose its nonce after seeing the other's (C3 in the protocol's
// message flow).
package commitment

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
)

var errOpenMismatch = errors.New("commitment: decommitment does not match commitment")

// Commitment is com = (c, r): c is the commitment value (a scalar, the
// digest of X and the blinder reduced mod q), r is the freshly drawn
// point-sized blinder used as opening randomness.
type Commitment struct {
	C *curve.Scalar
	R *curve.Point
}

// Commit produces a commitment to X. The blinder r is drawn by sampling a
// fresh scalar and multiplying it by the generator, matching the "point
// sized" blinder the data model calls for.
func Commit(X *curve.Point) (Commitment, error) {
	blindScalar, err := curve.RandomScalar()
	if err != nil {
		return Commitment{}, a2lerr.Wrap("commitment.Commit", a2lerr.ErrCrypto, err)
	}
	r := curve.MulGenerator(blindScalar)

	c, err := digest(X, r)
	if err != nil {
		return Commitment{}, a2lerr.Wrap("commitment.Commit", a2lerr.ErrCrypto, err)
	}
	return Commitment{C: c, R: r}, nil
}

// Decommit checks that X actually opens com, using com's own stored
// blinder R. It returns a2lerr.ErrInvalidCommitment on any mismatch.
func Decommit(com Commitment, X *curve.Point) error {
	want, err := digest(X, com.R)
	if err != nil {
		return a2lerr.Wrap("commitment.Decommit", a2lerr.ErrCrypto, err)
	}
	if subtle.ConstantTimeCompare(want.Bytes(), com.C.Bytes()) != 1 {
		return a2lerr.Wrap("commitment.Decommit", a2lerr.ErrInvalidCommitment, errOpenMismatch)
	}
	return nil
}

func digest(X, r *curve.Point) (*curve.Scalar, error) {
	h := sha256.New()
	h.Write(X.Bytes())
	h.Write(r.Bytes())
	sum := h.Sum(nil)
	return curve.NewScalarFromBytes(sum)
}
