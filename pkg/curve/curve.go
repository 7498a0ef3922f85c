// Package curve wraps secp256k1 scalar and point arithmetic behind the
// Scalar/Point shape used throughout the A2L protocol packages. It replaces
// the cgo-backed curve package of the teacher repo with a pure-Go
// implementation over github.com/decred/dcrd/dcrec/secp256k1/v4, the library
// btcsuite/btcd/btcec/v2 itself wraps.
package curve

import (
	"crypto/rand"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ScalarBytes is the fixed big-endian width of a canonically reduced scalar.
const ScalarBytes = 32

// PointBytes is the fixed width of a compressed curve point encoding.
const PointBytes = 33

// OrderBitLen is the bit length of the secp256k1 group order q, used by
// schnorrcore's challenge hash truncation rule.
const OrderBitLen = 256

// Generator returns the curve's base point g.
func Generator() *Point {
	var j secp256k1.JacobianPoint
	one := new(secp256k1.ModNScalar).SetInt(1)
	secp256k1.ScalarBaseMultNonConst(one, &j)
	j.ToAffine()
	return &Point{x: j.X, y: j.Y}
}

// RandomScalar draws a uniformly random nonzero scalar mod q using crypto/rand.
func RandomScalar() (*Scalar, error) {
	for {
		var buf [ScalarBytes]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, err
		}
		s := new(secp256k1.ModNScalar)
		overflow := s.SetBytes((*[32]byte)(&buf))
		if overflow != 0 || s.IsZero() {
			continue
		}
		return &Scalar{v: *s}, nil
	}
}
