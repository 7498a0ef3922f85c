package curve

import (
	"errors"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrPointAtInfinity is returned when a group operation collapses to the
// identity element, which no party in this protocol should ever construct
// from honestly chosen scalars.
var ErrPointAtInfinity = errors.New("curve: point at infinity")

// Point is an affine secp256k1 group element, encoded/decoded in compressed
// SEC1 form (PointBytes wide).
type Point struct {
	x, y secp256k1.FieldVal
}

func (p *Point) jacobian() secp256k1.JacobianPoint {
	var j secp256k1.JacobianPoint
	j.X = p.x
	j.Y = p.y
	j.Z.SetInt(1)
	return j
}

func fromJacobian(j *secp256k1.JacobianPoint) (*Point, error) {
	if j.Z.IsZero() {
		return nil, ErrPointAtInfinity
	}
	j.ToAffine()
	return &Point{x: j.X, y: j.Y}, nil
}

// NewPointFromBytes decodes a compressed SEC1 point.
func NewPointFromBytes(b []byte) (*Point, error) {
	if len(b) != PointBytes {
		return nil, errors.New("curve: point must be exactly 33 bytes")
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	return &Point{x: *pub.X(), y: *pub.Y()}, nil
}

// Bytes returns the compressed SEC1 encoding of p.
func (p *Point) Bytes() []byte {
	pub := secp256k1.NewPublicKey(&p.x, &p.y)
	return pub.SerializeCompressed()
}

// Add returns p + other.
func (p *Point) Add(other *Point) (*Point, error) {
	pj, oj := p.jacobian(), other.jacobian()
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&pj, &oj, &r)
	return fromJacobian(&r)
}

// Negate returns -p (same x, negated y).
func (p *Point) Negate() *Point {
	y := p.y
	y.Negate(1)
	y.Normalize()
	return &Point{x: p.x, y: y}
}

// Mul returns scalar*p.
func (p *Point) Mul(scalar *Scalar) (*Point, error) {
	pj := p.jacobian()
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&scalar.v, &pj, &r)
	return fromJacobian(&r)
}

// MulGenerator returns scalar*g.
func MulGenerator(scalar *Scalar) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&scalar.v, &r)
	r.ToAffine()
	return &Point{x: r.X, y: r.Y}
}

// Equal reports whether p and other encode the same affine point.
func (p *Point) Equal(other *Point) bool {
	return p.x.Equals(&other.x) && p.y.Equals(&other.y)
}

// XCoordScalar reduces p's affine x-coordinate mod the group order q, as
// required by the Schnorr challenge derivation in schnorrcore.Challenge.
func (p *Point) XCoordScalar() *Scalar {
	xBytes := p.x.Bytes()
	s := new(secp256k1.ModNScalar)
	s.SetByteSlice(xBytes[:])
	return &Scalar{v: *s}
}
