package zkdl_test

import (
	"testing"

	"github.com/a2lprotocol/a2l-go/pkg/curve"
	"github.com/a2lprotocol/a2l-go/pkg/zkdl"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	X := curve.MulGenerator(x)

	pi, err := zkdl.Prove(x, X)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := zkdl.Verify(pi, X); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	X := curve.MulGenerator(x)

	pi, err := zkdl.Prove(x, X)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	one, err := curve.NewScalarFromBytes(append(make([]byte, 31), 1))
	if err != nil {
		t.Fatalf("NewScalarFromBytes: %v", err)
	}
	pi.Z = pi.Z.Add(one)

	if err := zkdl.Verify(pi, X); err == nil {
		t.Fatal("expected verification failure for tampered response")
	}
}

func TestVerifyRejectsWrongStatement(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	X := curve.MulGenerator(x)

	pi, err := zkdl.Prove(x, X)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	other, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	wrongX := curve.MulGenerator(other)

	if err := zkdl.Verify(pi, wrongX); err == nil {
		t.Fatal("expected verification failure for mismatched statement")
	}
}
