package curve

import (
	"errors"
	"runtime"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Scalar is an integer mod the secp256k1 group order q, stored internally in
// Montgomery-friendly form by secp256k1.ModNScalar. All arithmetic is
// reduced mod q at construction time, matching spec.md invariant 5.
type Scalar struct {
	v secp256k1.ModNScalar
}

// NewScalarFromBytes reduces a big-endian byte string mod q. Overflowing
// input is reduced, not rejected, matching the "canonically reduced at
// storage time" invariant.
func NewScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarBytes {
		return nil, errors.New("curve: scalar must be exactly 32 bytes")
	}
	s := new(secp256k1.ModNScalar)
	s.SetByteSlice(b)
	return &Scalar{v: *s}, nil
}

// Bytes returns the canonical big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.v.Bytes()
	out := make([]byte, ScalarBytes)
	copy(out, b[:])
	return out
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.v.IsZero()
}

// Add returns s + other mod q.
func (s *Scalar) Add(other *Scalar) *Scalar {
	r := s.v
	r.Add(&other.v)
	return &Scalar{v: r}
}

// Sub returns s - other mod q.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	neg := other.v
	neg.Negate()
	r := s.v
	r.Add(&neg)
	return &Scalar{v: r}
}

// Mul returns s * other mod q.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	r := s.v
	r.Mul(&other.v)
	return &Scalar{v: r}
}

// Negate returns -s mod q.
func (s *Scalar) Negate() *Scalar {
	r := s.v
	r.Negate()
	return &Scalar{v: r}
}

// Equal reports whether s and other hold the same residue.
func (s *Scalar) Equal(other *Scalar) bool {
	return s.v.Equals(&other.v)
}

// Zeroize overwrites the scalar's backing bytes. Callers that hold a Scalar
// in session state should call this on session teardown, matching the
// teacher's zeroizeBytes/cbmpc.ZeroizeBytes discipline for secret material.
func (s *Scalar) Zeroize() {
	s.v.Zero()
	runtime.KeepAlive(s)
}
