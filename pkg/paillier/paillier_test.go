package paillier_test

import (
	"math/big"
	"testing"

	"github.com/a2lprotocol/a2l-go/pkg/paillier"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	pk, sk, err := paillier.GenerateKeyPair(512)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	m := big.NewInt(424242)
	ct, err := paillier.Encrypt(pk, m.Bytes())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ct.Bytes()) != pk.CiphertextBytes() {
		t.Fatalf("ciphertext width = %d, want %d", len(ct.Bytes()), pk.CiphertextBytes())
	}

	got := new(big.Int).SetBytes(paillier.Decrypt(sk, ct))
	if got.Cmp(m) != 0 {
		t.Fatalf("Decrypt(Encrypt(m)) = %v, want %v", got, m)
	}
}

// TestHomomorphicAdd exercises the puzzle-share identity from the blind
// re-randomization property: alpha and beta independently encrypted, then
// homomorphically added, decrypt to (alpha + beta) mod N.
func TestHomomorphicAdd(t *testing.T) {
	pk, sk, err := paillier.GenerateKeyPair(512)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	alpha := big.NewInt(123456789)
	beta := big.NewInt(987654321)

	ctAlpha, err := paillier.Encrypt(pk, alpha.Bytes())
	if err != nil {
		t.Fatalf("Encrypt(alpha): %v", err)
	}
	ctBeta, err := paillier.Encrypt(pk, beta.Bytes())
	if err != nil {
		t.Fatalf("Encrypt(beta): %v", err)
	}

	ctSum := paillier.Add(pk, ctAlpha, ctBeta)
	gotSum := new(big.Int).SetBytes(paillier.Decrypt(sk, ctSum))

	n := new(big.Int).SetBytes(pk.N())
	wantSum := new(big.Int).Add(alpha, beta)
	wantSum.Mod(wantSum, n)

	if gotSum.Cmp(wantSum) != 0 {
		t.Fatalf("Decrypt(Add(Enc(alpha), Enc(beta))) = %v, want %v", gotSum, wantSum)
	}
}

func TestPublicKeyFromNRoundTrip(t *testing.T) {
	pk, sk, err := paillier.GenerateKeyPair(512)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	reloaded := paillier.PublicKeyFromN(pk.N())
	m := big.NewInt(7)
	ct, err := paillier.Encrypt(reloaded, m.Bytes())
	if err != nil {
		t.Fatalf("Encrypt under reloaded key: %v", err)
	}

	got := new(big.Int).SetBytes(paillier.Decrypt(sk, ct))
	if got.Cmp(m) != 0 {
		t.Fatalf("Decrypt(Encrypt-under-reloaded-key) = %v, want %v", got, m)
	}
}

func TestCiphertextFromBytesRejectsWrongWidth(t *testing.T) {
	pk, _, err := paillier.GenerateKeyPair(512)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if _, err := paillier.CiphertextFromBytes(pk, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error decoding undersized ciphertext")
	}
}
