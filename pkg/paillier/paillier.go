// Package paillier implements the probabilistic Paillier cryptosystem used
// to carry Tumbler's secret alpha as an encrypted witness: Bob only ever
// encrypts and homomorphically adds ciphertexts (never decrypts); Tumbler
// additionally decrypts to solve a re-randomized puzzle for Alice.
//
// Modular arithmetic on the N/N^2 rings is done with saferith.Nat/Modulus,
// the constant-time big-integer type the retrieved teslamotors-vehicle-command
// Schnorr signer (internal/schnorr/sign.go) uses for its own secret-dependent
// scalar arithmetic, rather than math/big directly. Prime generation is not
// on any per-message secret-dependent path here (it runs once at key setup),
// so it uses math/big's probable-prime search.
package paillier

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/cronokirby/saferith"
)

// DefaultBits is the default bit length of the Paillier modulus N.
const DefaultBits = 2048

var one = new(saferith.Nat).SetUint64(1)

// PublicKey is a Paillier public key (N, N^2).
type PublicKey struct {
	n      *saferith.Nat
	nSq    *saferith.Nat
	nMod   *saferith.Modulus
	nSqMod *saferith.Modulus
	// ctBytes is the fixed wire width (CT_BYTES) of any ciphertext under
	// this key: 2*len(N) bytes, wide enough for any residue mod N^2.
	ctBytes int
}

// SecretKey is a Paillier secret key, holding enough of the factorization to
// decrypt under PublicKey.
type SecretKey struct {
	*PublicKey
	lambda *saferith.Nat // (p-1)(q-1)
	mu     *saferith.Nat // lambda^-1 mod n
}

// Ciphertext is a Paillier ciphertext, an integer mod N^2, stored as a
// fixed-width big-endian byte string (CT_BYTES wide, per spec.md §3).
type Ciphertext struct {
	c       *saferith.Nat
	ctBytes int
}

// N returns the big-endian encoding of the public modulus.
func (pk *PublicKey) N() []byte {
	return pk.n.Bytes()
}

// CiphertextBytes returns CT_BYTES for this key: every ciphertext produced
// or accepted under pk is exactly this many bytes wide.
func (pk *PublicKey) CiphertextBytes() int {
	return pk.ctBytes
}

// PublicKeyFromN reconstructs a PublicKey from a previously serialized
// modulus, as loaded from a key file (pkg/keys).
func PublicKeyFromN(n []byte) *PublicKey {
	nNat := new(saferith.Nat).SetBytes(n)
	nSq := new(saferith.Nat).Mul(nNat, nNat, -1)
	return &PublicKey{
		n:       nNat,
		nSq:     nSq,
		nMod:    saferith.ModulusFromNat(nNat),
		nSqMod:  saferith.ModulusFromNat(nSq),
		ctBytes: 2 * len(n),
	}
}

// GenerateKeyPair generates a fresh Paillier key pair with an N of the given
// total bit length (DefaultBits is a reasonable default).
func GenerateKeyPair(bits int) (*PublicKey, *SecretKey, error) {
	if bits < 256 || bits%2 != 0 {
		return nil, nil, errors.New("paillier: bits must be even and >= 256")
	}
	half := bits / 2

	p, err := randPrime(half)
	if err != nil {
		return nil, nil, err
	}
	q, err := randPrime(half)
	if err != nil {
		return nil, nil, err
	}

	pNat := new(saferith.Nat).SetBytes(p.Bytes())
	qNat := new(saferith.Nat).SetBytes(q.Bytes())

	nNat := new(saferith.Nat).Mul(pNat, qNat, -1)
	nSq := new(saferith.Nat).Mul(nNat, nNat, -1)

	pMinus1 := new(saferith.Nat).Sub(pNat, one, -1)
	qMinus1 := new(saferith.Nat).Sub(qNat, one, -1)
	lambda := new(saferith.Nat).Mul(pMinus1, qMinus1, -1)

	nMod := saferith.ModulusFromNat(nNat)
	mu := new(saferith.Nat).ModInverse(lambda, nMod)

	pk := &PublicKey{
		n:       nNat,
		nSq:     nSq,
		nMod:    nMod,
		nSqMod:  saferith.ModulusFromNat(nSq),
		ctBytes: 2 * len(nNat.Bytes()),
	}
	sk := &SecretKey{
		PublicKey: pk,
		lambda:    lambda,
		mu:        mu,
	}
	return pk, sk, nil
}

func randPrime(bits int) (*big.Int, error) {
	return rand.Prime(rand.Reader, bits)
}

// SecretKeyFromParts reconstructs a SecretKey from a previously serialized
// (lambda, mu) pair under pk, as loaded from a key file (pkg/keys).
func SecretKeyFromParts(pk *PublicKey, lambda, mu []byte) (*SecretKey, error) {
	if pk == nil {
		return nil, errors.New("paillier: nil public key")
	}
	return &SecretKey{
		PublicKey: pk,
		lambda:    new(saferith.Nat).SetBytes(lambda),
		mu:        new(saferith.Nat).SetBytes(mu),
	}, nil
}

// Parts returns the big-endian encoding of sk's (lambda, mu) pair, the
// minimal state pkg/keys needs to persist and later reconstruct sk via
// SecretKeyFromParts.
func (sk *SecretKey) Parts() (lambda, mu []byte) {
	return sk.lambda.Bytes(), sk.mu.Bytes()
}

// Encrypt encrypts a scalar-sized plaintext m (big-endian, reduced mod N)
// using fresh internal randomness and the g = N+1 simplification: c =
// (1 + m*N mod N^2) * r^N mod N^2.
func Encrypt(pk *PublicKey, m []byte) (*Ciphertext, error) {
	mNat := new(saferith.Nat).SetBytes(m)
	return EncryptNat(pk, mNat)
}

// EncryptNat is the Nat-typed form of Encrypt, for a plaintext that is
// already a saferith.Nat. Encrypt delegates to it.
func EncryptNat(pk *PublicKey, m *saferith.Nat) (*Ciphertext, error) {
	r, err := randomUnit(pk.nMod, pk.n)
	if err != nil {
		return nil, err
	}

	mTimesN := new(saferith.Nat).Mul(m, pk.n, -1)
	base := new(saferith.Nat).ModAdd(one, mTimesN, pk.nSqMod)

	rToN := new(saferith.Nat).Exp(r, pk.n, pk.nSqMod)
	c := new(saferith.Nat).ModMul(base, rToN, pk.nSqMod)

	return &Ciphertext{c: c, ctBytes: pk.ctBytes}, nil
}

// randomUnit draws a uniformly random element of [1, n-1]. Paillier
// requires gcd(r, n) = 1; since n is a product of two large primes the
// probability of an accidental factor is negligible, so this does not
// retry on a gcd check (matching the complexity the teacher's own
// primitives accept for randomness draws).
func randomUnit(nMod *saferith.Modulus, n *saferith.Nat) (*saferith.Nat, error) {
	nBytes := n.Bytes()
	for {
		buf := make([]byte, len(nBytes))
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		r := new(saferith.Nat).SetBytes(buf)
		// Reduce into range and reject the identity, matching "fresh
		// randomness, probabilistic" from spec.md §4.4.
		reduced := new(saferith.Nat).Mod(r, nMod)
		if reduced.Big().Sign() != 0 {
			return reduced, nil
		}
	}
}

// Add returns the ciphertext corresponding to the sum of the two
// ciphertexts' plaintexts, via Paillier's homomorphic ciphertext
// multiplication mod N^2 (spec.md §4.4: "mul(pk, c1, c2) -> c1+c2").
func Add(pk *PublicKey, c1, c2 *Ciphertext) *Ciphertext {
	sum := new(saferith.Nat).ModMul(c1.c, c2.c, pk.nSqMod)
	return &Ciphertext{c: sum, ctBytes: pk.ctBytes}
}

// Decrypt recovers the plaintext scalar underlying ct. Bob's side of the
// protocol never calls this (spec.md §4.4); only the Tumbler role does, to
// solve Alice's re-randomized puzzle.
func Decrypt(sk *SecretKey, ct *Ciphertext) []byte {
	u := new(saferith.Nat).Exp(ct.c, sk.lambda, sk.nSqMod)
	uMinus1 := new(saferith.Nat).Sub(u, one, -1)
	l := new(saferith.Nat).Div(uMinus1, sk.nMod, -1)
	m := new(saferith.Nat).ModMul(l, sk.mu, sk.nMod)
	return m.Bytes()
}

// Bytes returns the fixed-width (CiphertextBytes) big-endian encoding of ct.
func (ct *Ciphertext) Bytes() []byte {
	raw := ct.c.Bytes()
	if len(raw) == ct.ctBytes {
		return raw
	}
	out := make([]byte, ct.ctBytes)
	copy(out[ct.ctBytes-len(raw):], raw)
	return out
}

// CiphertextFromBytes decodes a fixed-width ciphertext under pk.
func CiphertextFromBytes(pk *PublicKey, b []byte) (*Ciphertext, error) {
	if len(b) != pk.ctBytes {
		return nil, errors.New("paillier: ciphertext has wrong width for this key")
	}
	return &Ciphertext{c: new(saferith.Nat).SetBytes(b), ctBytes: pk.ctBytes}, nil
}
