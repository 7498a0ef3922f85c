package session_test

import (
	"testing"

	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/keys"
	"github.com/a2lprotocol/a2l-go/pkg/session"
)

func TestBobStateString(t *testing.T) {
	if got := session.S0Init.String(); got != "S0_Init" {
		t.Fatalf("S0Init.String() = %q", got)
	}
	if got := session.S8PuzzleSolved.String(); got != "S8_PuzzleSolved" {
		t.Fatalf("S8PuzzleSolved.String() = %q", got)
	}
	if got := session.BobState(99).String(); got != "S?_Unknown" {
		t.Fatalf("out-of-range state = %q, want S?_Unknown", got)
	}
}

func TestBobSessionVerifiedDefaultsFalse(t *testing.T) {
	sk, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	kb := keys.KeyBundle{Schnorr: &keys.SchnorrKeyPair{SK: sk, PK: curve.MulGenerator(sk)}}
	s := session.NewBobSession(kb, []byte("tx"))

	if s.Verified() {
		t.Fatal("fresh session should not be verified")
	}
	s.MarkVerified(true)
	if !s.Verified() {
		t.Fatal("MarkVerified(true) did not stick")
	}
}

func TestBobSessionCloseIsIdempotent(t *testing.T) {
	sk, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	kb := keys.KeyBundle{Schnorr: &keys.SchnorrKeyPair{SK: sk, PK: curve.MulGenerator(sk)}}
	s := session.NewBobSession(kb, []byte("tx"))
	nonce, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	s.K1Prime = nonce

	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
